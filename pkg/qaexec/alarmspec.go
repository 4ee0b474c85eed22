package qaexec

import (
	"fmt"

	"github.com/function61/lambda-queuealarms/pkg/qaplan"
)

const (
	MetricNamespace      = "AWS/SQS"
	MetricName           = "ApproximateNumberOfMessagesVisible"
	MetricDimension      = "QueueName"
	Statistic            = "Average"
	ComparisonOperator   = "GreaterThanThreshold"
	TreatMissingData     = "notBreaching"
	EvaluationPeriods    = 1
	DefaultPeriodSeconds = 60
)

// same for every alarm in a run
type EvaluationConfig struct {
	PeriodSeconds int
	ActionTarget  string // notification destination for both ALARM and OK transitions
}

// everything needed to create one alarm
type AlarmSpec struct {
	Name               string
	Description        string
	Namespace          string
	MetricName         string
	DimensionName      string
	DimensionValue     string // queue name
	Statistic          string
	PeriodSeconds      int
	EvaluationPeriods  int
	Threshold          int
	ComparisonOperator string
	TreatMissingData   string
	AlarmActions       []string
	OkActions          []string
}

func (e EvaluationConfig) AlarmSpecFor(region string, create qaplan.CreateAlarm) AlarmSpec {
	period := e.PeriodSeconds
	if period <= 0 {
		period = DefaultPeriodSeconds
	}

	actions := []string{}
	if e.ActionTarget != "" {
		actions = append(actions, e.ActionTarget)
	}

	return AlarmSpec{
		Name:               create.Alarm,
		Description:        fmt.Sprintf("Messages visible in SQS queue %s (%s) above %d", create.Queue, region, create.Threshold),
		Namespace:          MetricNamespace,
		MetricName:         MetricName,
		DimensionName:      MetricDimension,
		DimensionValue:     create.Queue,
		Statistic:          Statistic,
		PeriodSeconds:      period,
		EvaluationPeriods:  EvaluationPeriods,
		Threshold:          create.Threshold,
		ComparisonOperator: ComparisonOperator,
		TreatMissingData:   TreatMissingData,
		AlarmActions:       actions,
		OkActions:          actions,
	}
}
