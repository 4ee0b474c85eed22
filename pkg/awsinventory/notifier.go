package awsinventory

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sns"
	"github.com/aws/aws-sdk-go/service/sns/snsiface"
	"github.com/function61/gokit/stringutils"
	"github.com/function61/lambda-queuealarms/pkg/qaexec"
)

type TopicNotifier struct {
	snsSvc   snsiface.SNSAPI
	topicArn string
}

var _ qaexec.Notifier = (*TopicNotifier)(nil)

func NewTopicNotifier(sess *session.Session, topicArn string) *TopicNotifier {
	return NewTopicNotifierWithClient(sns.New(sess), topicArn)
}

func NewTopicNotifierWithClient(snsSvc snsiface.SNSAPI, topicArn string) *TopicNotifier {
	return &TopicNotifier{snsSvc, topicArn}
}

func (t *TopicNotifier) Notify(ctx context.Context, report qaexec.Report) error {
	subject := report.Subject

	message, err := messagePerProtocol(subject, report.Body)
	if err != nil {
		return err
	}

	_, err = t.snsSvc.PublishWithContext(ctx, &sns.PublishInput{
		TopicArn:         aws.String(t.topicArn),
		Subject:          aws.String(stringutils.Truncate(subject, 100-3)), // SNS max subject length is 100
		Message:          aws.String(message),
		MessageStructure: aws.String("json"),
	})
	return err
}

func messagePerProtocol(subject string, body string) (string, error) {
	messageText := subject + "\n\n" + body

	perProtocol := struct {
		Default string `json:"default"` // email etc.
		Sms     string `json:"sms"`
	}{
		Default: stringutils.Truncate(messageText, 4*1024),
		Sms:     stringutils.Truncate(subject, 160-7), // -7 for "ALERT >" prefix in SMS messages
	}

	asJson, err := json.Marshal(&perProtocol)
	if err != nil {
		return "", err
	}

	return string(asJson), nil
}
