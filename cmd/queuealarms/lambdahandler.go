package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/function61/gokit/logex"
	"github.com/function61/lambda-queuealarms/pkg/lambdautils"
	"github.com/function61/lambda-queuealarms/pkg/planstore"
)

// scheduled event => plan (written to $PLAN_LOCATION, normally in S3)
// plan object created in S3 => apply it
func lambdaHandler() {
	logger := logex.StandardLogger()

	handler := func(ctx context.Context, polymorphicEvent interface{}) ([]byte, error) {
		switch event := polymorphicEvent.(type) {
		case *events.CloudWatchEvent:
			location, err := lambdaPlanLocation()
			if err != nil {
				return nil, err
			}

			return nil, runPlan(ctx, location, logex.Prefix("plan", logger))
		case *events.S3Event:
			locations, err := planLocationsFromS3Event(*event)
			if err != nil {
				return nil, err
			}

			for _, location := range locations {
				if err := runApply(ctx, location, true, logex.Prefix("apply", logger)); err != nil {
					return nil, err
				}
			}

			return nil, nil
		default:
			return nil, errors.New("cannot identify type of request")
		}
	}

	lambda.StartHandler(lambdautils.NewMultiEventTypeHandler(handler))
}

// Lambda's filesystem is read-only (and gone after the invocation), so the plan must
// go to S3, where its creation also triggers the apply
func lambdaPlanLocation() (string, error) {
	location := os.Getenv("PLAN_LOCATION")
	if !planstore.IsS3Location(location) {
		return "", fmt.Errorf("in Lambda PLAN_LOCATION must be s3://bucket/key; got '%s'", location)
	}

	if _, _, err := planstore.ParseS3Location(location); err != nil {
		return "", err
	}

	return location, nil
}

func planLocationsFromS3Event(event events.S3Event) ([]string, error) {
	locations := []string{}

	for _, record := range event.Records {
		// keys in S3 notifications are URL-encoded
		key, err := url.QueryUnescape(record.S3.Object.Key)
		if err != nil {
			return nil, fmt.Errorf("bad object key %s: %v", record.S3.Object.Key, err)
		}

		locations = append(locations, planstore.S3Location(record.S3.Bucket.Name, key))
	}

	return locations, nil
}
