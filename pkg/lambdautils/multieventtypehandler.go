package lambdautils

// This design is not pretty.. https://stackoverflow.com/a/52572943

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
)

type multiEventTypeHandlerFn func(ctx context.Context, polymorphicEvent interface{}) ([]byte, error)

type multiEventTypeHandler struct {
	fn multiEventTypeHandlerFn
}

func NewMultiEventTypeHandler(fn multiEventTypeHandlerFn) lambda.Handler {
	return &multiEventTypeHandler{fn}
}

func (m *multiEventTypeHandler) Invoke(ctx context.Context, reqRaw []byte) ([]byte, error) {
	polymorphicEvent, err := IdentifyAndUnmarshal(reqRaw)
	if err != nil {
		return nil, err
	}

	return m.fn(ctx, polymorphicEvent)
}

// we introduce just enough fields to determine what type of trigger this is, so we can
// deserialize JSON with proper type
type eventTypeProbe struct {
	DetailType string `json:"detail-type"` // CloudWatchEvent
	Records    []struct {
		EventSource string `json:"eventSource"` // "aws:s3"
	} `json:"Records"`
}

// triggers we need to handle:
// - CloudWatch scheduled event (=> plan)
// - S3 object created (=> apply the plan that was written)
func (e *eventTypeProbe) Identify() (interface{}, error) {
	if e.DetailType == "Scheduled Event" {
		return &events.CloudWatchEvent{}, nil
	}

	if len(e.Records) > 0 && e.Records[0].EventSource == "aws:s3" {
		return &events.S3Event{}, nil
	}

	return nil, errors.New("cannot identify type of request")
}

func IdentifyAndUnmarshal(reqRaw []byte) (interface{}, error) {
	probe := &eventTypeProbe{}
	if err := json.Unmarshal(reqRaw, probe); err != nil {
		return nil, err
	}

	typeOfRequest, err := probe.Identify()
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(reqRaw, typeOfRequest); err != nil {
		return nil, fmt.Errorf("request unmarshal: %v", err)
	}

	return typeOfRequest, nil
}
