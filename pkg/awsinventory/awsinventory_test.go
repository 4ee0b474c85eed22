package awsinventory

import (
	"context"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
	"github.com/aws/aws-sdk-go/service/sns"
	"github.com/aws/aws-sdk-go/service/sns/snsiface"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
	"github.com/function61/gokit/assert"
	"github.com/function61/lambda-queuealarms/pkg/qaexec"
	"github.com/function61/lambda-queuealarms/pkg/qaplan"
)

func TestListQueueNamesPages(t *testing.T) {
	lister := NewQueueListerWithClient(&testSqs{pages: [][]string{
		{
			"https://sqs.eu-west-1.amazonaws.com/123456789012/orders",
			"https://sqs.eu-west-1.amazonaws.com/123456789012/orders-dlq",
		},
		{
			"https://sqs.eu-west-1.amazonaws.com/123456789012/payments",
		},
	}})

	names, err := lister.ListQueueNames(context.Background())
	assert.Ok(t, err)

	assert.EqualString(t, strings.Join(names, ","), "orders,orders-dlq,payments")
}

func TestListAlarmNamesFiltersBySuffix(t *testing.T) {
	alarms := NewAlarmsWithClient(&testCloudwatch{existing: [][]string{
		{"orders-cloudwatch-alarm", "cpu-high"},
		{"legacy-dlq-cloudwatch-alarm"},
	}})

	names, err := alarms.ListAlarmNames(context.Background(), "-cloudwatch-alarm")
	assert.Ok(t, err)

	assert.EqualString(t, strings.Join(names, ","), "orders-cloudwatch-alarm,legacy-dlq-cloudwatch-alarm")
}

func TestPutAlarm(t *testing.T) {
	cw := &testCloudwatch{}

	spec := qaexec.EvaluationConfig{ActionTarget: "arn:aws:sns:eu-west-1:123:alerts"}.AlarmSpecFor(
		"eu-west-1",
		qaplan.CreateAlarm{Queue: "orders-dlq", Alarm: "orders-dlq-cloudwatch-alarm", Threshold: 1})

	assert.Ok(t, NewAlarmsWithClient(cw).PutAlarm(context.Background(), spec))

	input := cw.put
	assert.EqualString(t, aws.StringValue(input.AlarmName), "orders-dlq-cloudwatch-alarm")
	assert.EqualString(t, aws.StringValue(input.Namespace), "AWS/SQS")
	assert.EqualString(t, aws.StringValue(input.Dimensions[0].Name), "QueueName")
	assert.EqualString(t, aws.StringValue(input.Dimensions[0].Value), "orders-dlq")
	assert.EqualString(t, aws.StringValue(input.Statistic), "Average")
	assert.EqualString(t, aws.StringValue(input.ComparisonOperator), "GreaterThanThreshold")
	assert.EqualString(t, aws.StringValue(input.TreatMissingData), "notBreaching")
	assert.EqualString(t, aws.StringValue(input.OKActions[0]), "arn:aws:sns:eu-west-1:123:alerts")
	assert.Assert(t, aws.Int64Value(input.Period) == 60)
	assert.Assert(t, aws.Int64Value(input.EvaluationPeriods) == 1)
	assert.Assert(t, aws.Float64Value(input.Threshold) == 1)
}

func TestDeleteAlarm(t *testing.T) {
	cw := &testCloudwatch{}

	assert.Ok(t, NewAlarmsWithClient(cw).DeleteAlarm(context.Background(), "legacy-dlq-cloudwatch-alarm"))

	assert.EqualString(t, strings.Join(aws.StringValueSlice(cw.deleted.AlarmNames), ","), "legacy-dlq-cloudwatch-alarm")
}

func TestNotify(t *testing.T) {
	topic := &testSns{}

	assert.Ok(t, NewTopicNotifierWithClient(topic, "arn:aws:sns:eu-west-1:123:alerts").Notify(
		context.Background(),
		qaexec.Report{
			Subject: "Queue alarm reconciliation OK (eu-west-1)",
			Body:    "Created: 2",
		}))

	assert.EqualString(t, aws.StringValue(topic.published.TopicArn), "arn:aws:sns:eu-west-1:123:alerts")
	assert.EqualString(t, aws.StringValue(topic.published.MessageStructure), "json")
	assert.EqualString(t, aws.StringValue(topic.published.Message), `{"default":"Queue alarm reconciliation OK (eu-west-1)\n\nCreated: 2","sms":"Queue alarm reconciliation OK (eu-west-1)"}`)
}

type testSqs struct {
	sqsiface.SQSAPI
	pages [][]string
}

func (s *testSqs) ListQueuesWithContext(_ aws.Context, input *sqs.ListQueuesInput, _ ...request.Option) (*sqs.ListQueuesOutput, error) {
	pageIdx := 0
	if input.NextToken != nil {
		pageIdx = len(aws.StringValue(input.NextToken))
	}

	output := &sqs.ListQueuesOutput{
		QueueUrls: aws.StringSlice(s.pages[pageIdx]),
	}

	if pageIdx+1 < len(s.pages) {
		// token length encodes next page index
		output.NextToken = aws.String(strings.Repeat("x", pageIdx+1))
	}

	return output, nil
}

type testCloudwatch struct {
	cloudwatchiface.CloudWatchAPI
	existing [][]string
	put      *cloudwatch.PutMetricAlarmInput
	deleted  *cloudwatch.DeleteAlarmsInput
}

func (c *testCloudwatch) DescribeAlarmsPagesWithContext(
	_ aws.Context,
	_ *cloudwatch.DescribeAlarmsInput,
	fn func(*cloudwatch.DescribeAlarmsOutput, bool) bool,
	_ ...request.Option,
) error {
	for idx, page := range c.existing {
		output := &cloudwatch.DescribeAlarmsOutput{}
		for _, name := range page {
			output.MetricAlarms = append(output.MetricAlarms, &cloudwatch.MetricAlarm{
				AlarmName: aws.String(name),
			})
		}

		if !fn(output, idx == len(c.existing)-1) {
			break
		}
	}

	return nil
}

func (c *testCloudwatch) PutMetricAlarmWithContext(_ aws.Context, input *cloudwatch.PutMetricAlarmInput, _ ...request.Option) (*cloudwatch.PutMetricAlarmOutput, error) {
	c.put = input
	return &cloudwatch.PutMetricAlarmOutput{}, nil
}

func (c *testCloudwatch) DeleteAlarmsWithContext(_ aws.Context, input *cloudwatch.DeleteAlarmsInput, _ ...request.Option) (*cloudwatch.DeleteAlarmsOutput, error) {
	c.deleted = input
	return &cloudwatch.DeleteAlarmsOutput{}, nil
}

type testSns struct {
	snsiface.SNSAPI
	published *sns.PublishInput
}

func (s *testSns) PublishWithContext(_ aws.Context, input *sns.PublishInput, _ ...request.Option) (*sns.PublishOutput, error) {
	s.published = input
	return &sns.PublishOutput{}, nil
}
