// Persists the plan between the planning and execution stages
package planstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/function61/lambda-queuealarms/pkg/qaplan"
)

var ErrPlanNotFound = errors.New("plan not found")

type Store interface {
	Write(ctx context.Context, plan *qaplan.Plan) error
	// ErrPlanNotFound if there's nothing to read
	Read(ctx context.Context) (*qaplan.Plan, error)
	Discard(ctx context.Context) error
	Location() string
}

const s3Scheme = "s3://"

// location is either a local path or "s3://bucket/key". s3Svc is only needed for the latter.
func Open(location string, s3Svc s3iface.S3API) (Store, error) {
	if location == "" {
		return nil, errors.New("plan location empty")
	}

	if !strings.HasPrefix(location, s3Scheme) {
		return &fileStore{location}, nil
	}

	bucket, key, err := ParseS3Location(location)
	if err != nil {
		return nil, err
	}

	if s3Svc == nil {
		return nil, fmt.Errorf("no S3 client for %s", location)
	}

	return &s3Store{s3Svc, bucket, key}, nil
}

func IsS3Location(location string) bool {
	return strings.HasPrefix(location, s3Scheme)
}

func ParseS3Location(location string) (string, string, error) {
	parts := strings.SplitN(strings.TrimPrefix(location, s3Scheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("bad S3 location: %s", location)
	}

	return parts[0], parts[1], nil
}

func S3Location(bucket string, key string) string {
	return s3Scheme + bucket + "/" + key
}
