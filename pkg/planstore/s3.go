package planstore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/function61/lambda-queuealarms/pkg/qaplan"
)

type s3Store struct {
	s3Svc  s3iface.S3API
	bucket string
	key    string
}

func (s *s3Store) Location() string {
	return S3Location(s.bucket, s.key)
}

func (s *s3Store) Write(ctx context.Context, plan *qaplan.Plan) error {
	serialized, err := qaplan.Serialize(plan)
	if err != nil {
		return err
	}

	_, err = s.s3Svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(serialized),
		ContentType: aws.String("application/json"),
	})
	return err
}

func (s *s3Store) Read(ctx context.Context) (*qaplan.Plan, error) {
	output, err := s.s3Svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrPlanNotFound, s.Location())
		}

		return nil, err
	}
	defer output.Body.Close()

	plan, err := qaplan.Parse(output.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Location(), err)
	}

	return plan, nil
}

func (s *s3Store) Discard(ctx context.Context) error {
	_, err := s.s3Svc.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	return err
}

func isNotFound(err error) bool {
	if awsErr, ok := err.(awserr.Error); ok {
		switch awsErr.Code() {
		case s3.ErrCodeNoSuchKey, s3.ErrCodeNoSuchBucket, "NotFound":
			return true
		}
	}

	return false
}
