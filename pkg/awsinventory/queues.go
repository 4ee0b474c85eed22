package awsinventory

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
	"github.com/function61/lambda-queuealarms/pkg/qadiff"
)

type QueueLister struct {
	sqsSvc sqsiface.SQSAPI
}

func NewQueueLister(sess *session.Session) *QueueLister {
	return NewQueueListerWithClient(sqs.New(sess))
}

func NewQueueListerWithClient(sqsSvc sqsiface.SQSAPI) *QueueLister {
	return &QueueLister{sqsSvc}
}

// names of all queues in the region
func (q *QueueLister) ListQueueNames(ctx context.Context) ([]string, error) {
	names := []string{}

	input := &sqs.ListQueuesInput{
		MaxResults: aws.Int64(1000),
	}

	for {
		output, err := q.sqsSvc.ListQueuesWithContext(ctx, input)
		if err != nil {
			return nil, err
		}

		for _, queueUrl := range output.QueueUrls {
			names = append(names, qadiff.QueueNameFromUrl(aws.StringValue(queueUrl)))
		}

		if aws.StringValue(output.NextToken) == "" {
			return names, nil
		}

		input.NextToken = output.NextToken
	}
}
