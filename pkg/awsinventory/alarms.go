package awsinventory

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
	"github.com/function61/lambda-queuealarms/pkg/qaexec"
)

type Alarms struct {
	cloudwatchSvc cloudwatchiface.CloudWatchAPI
}

var _ qaexec.AlarmWriter = (*Alarms)(nil)

func NewAlarms(sess *session.Session) *Alarms {
	return NewAlarmsWithClient(cloudwatch.New(sess))
}

func NewAlarmsWithClient(cloudwatchSvc cloudwatchiface.CloudWatchAPI) *Alarms {
	return &Alarms{cloudwatchSvc}
}

// DescribeAlarms only filters by prefix, so we filter by suffix ourselves
func (a *Alarms) ListAlarmNames(ctx context.Context, suffix string) ([]string, error) {
	names := []string{}

	if err := a.cloudwatchSvc.DescribeAlarmsPagesWithContext(ctx, &cloudwatch.DescribeAlarmsInput{
		AlarmTypes: aws.StringSlice([]string{cloudwatch.AlarmTypeMetricAlarm}),
	}, func(page *cloudwatch.DescribeAlarmsOutput, _ bool) bool {
		for _, alarm := range page.MetricAlarms {
			name := aws.StringValue(alarm.AlarmName)

			if strings.HasSuffix(name, suffix) {
				names = append(names, name)
			}
		}

		return true
	}); err != nil {
		return nil, err
	}

	return names, nil
}

func (a *Alarms) PutAlarm(ctx context.Context, spec qaexec.AlarmSpec) error {
	_, err := a.cloudwatchSvc.PutMetricAlarmWithContext(ctx, &cloudwatch.PutMetricAlarmInput{
		AlarmName:        aws.String(spec.Name),
		AlarmDescription: aws.String(spec.Description),
		Namespace:        aws.String(spec.Namespace),
		MetricName:       aws.String(spec.MetricName),
		Dimensions: []*cloudwatch.Dimension{
			{
				Name:  aws.String(spec.DimensionName),
				Value: aws.String(spec.DimensionValue),
			},
		},
		Statistic:          aws.String(spec.Statistic),
		Period:             aws.Int64(int64(spec.PeriodSeconds)),
		EvaluationPeriods:  aws.Int64(int64(spec.EvaluationPeriods)),
		Threshold:          aws.Float64(float64(spec.Threshold)),
		ComparisonOperator: aws.String(spec.ComparisonOperator),
		TreatMissingData:   aws.String(spec.TreatMissingData),
		AlarmActions:       aws.StringSlice(spec.AlarmActions),
		OKActions:          aws.StringSlice(spec.OkActions),
	})
	return err
}

func (a *Alarms) DeleteAlarm(ctx context.Context, alarmName string) error {
	_, err := a.cloudwatchSvc.DeleteAlarmsWithContext(ctx, &cloudwatch.DeleteAlarmsInput{
		AlarmNames: aws.StringSlice([]string{alarmName}),
	})
	return err
}
