package planstore

import (
	"bytes"
	"context"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/function61/gokit/assert"
	"github.com/function61/lambda-queuealarms/pkg/qaplan"
)

func testPlan() *qaplan.Plan {
	return qaplan.New(
		"eu-west-1",
		"-cloudwatch-alarm",
		[]qaplan.CreateAlarm{{Queue: "orders", Alarm: "orders-cloudwatch-alarm", Threshold: 5}},
		[]qaplan.DeleteAlarm{{Alarm: "legacy-dlq-cloudwatch-alarm"}})
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()

	dir, err := ioutil.TempDir("", "planstore")
	assert.Ok(t, err)
	defer os.RemoveAll(dir)

	store, err := Open(filepath.Join(dir, "plan.json"), nil)
	assert.Ok(t, err)

	_, err = store.Read(ctx)
	assert.Assert(t, errors.Is(err, ErrPlanNotFound))

	assert.Ok(t, store.Write(ctx, testPlan()))

	plan, err := store.Read(ctx)
	assert.Ok(t, err)
	assert.Assert(t, reflect.DeepEqual(plan, testPlan()))

	assert.Ok(t, store.Discard(ctx))

	_, err = store.Read(ctx)
	assert.Assert(t, errors.Is(err, ErrPlanNotFound))

	// discarding twice is fine
	assert.Ok(t, store.Discard(ctx))
}

func TestFileStoreReplacesWholeFile(t *testing.T) {
	ctx := context.Background()

	dir, err := ioutil.TempDir("", "planstore")
	assert.Ok(t, err)
	defer os.RemoveAll(dir)

	store, err := Open(filepath.Join(dir, "plan.json"), nil)
	assert.Ok(t, err)

	assert.Ok(t, store.Write(ctx, testPlan()))
	assert.Ok(t, store.Write(ctx, qaplan.New("eu-west-1", "-cloudwatch-alarm", nil, nil)))

	plan, err := store.Read(ctx)
	assert.Ok(t, err)
	assert.Assert(t, plan.Empty())

	// no leftover temp files
	entries, err := ioutil.ReadDir(dir)
	assert.Ok(t, err)
	assert.Assert(t, len(entries) == 1)
	assert.EqualString(t, entries[0].Name(), "plan.json")

	// invalid plan never reaches the disk
	broken := testPlan()
	broken.Summary.ToCreate = 42
	assert.Assert(t, errors.Is(store.Write(ctx, broken), qaplan.ErrInvalidPlan))

	plan, err = store.Read(ctx)
	assert.Ok(t, err)
	assert.Assert(t, plan.Empty())
}

func TestFileStoreUnparsable(t *testing.T) {
	dir, err := ioutil.TempDir("", "planstore")
	assert.Ok(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "plan.json")
	assert.Ok(t, ioutil.WriteFile(path, []byte("{garbage"), 0600))

	store, err := Open(path, nil)
	assert.Ok(t, err)

	_, err = store.Read(context.Background())
	assert.Assert(t, err != nil)
	assert.Assert(t, !errors.Is(err, ErrPlanNotFound))
}

func TestS3Store(t *testing.T) {
	ctx := context.Background()

	s3Svc := &testS3{objects: map[string][]byte{}}

	store, err := Open("s3://plans-bucket/queuealarms/plan.json", s3Svc)
	assert.Ok(t, err)
	assert.EqualString(t, store.Location(), "s3://plans-bucket/queuealarms/plan.json")

	_, err = store.Read(ctx)
	assert.Assert(t, errors.Is(err, ErrPlanNotFound))

	assert.Ok(t, store.Write(ctx, testPlan()))
	assert.Assert(t, strings.Contains(string(s3Svc.objects["plans-bucket/queuealarms/plan.json"]), `"legacy-dlq-cloudwatch-alarm"`))

	plan, err := store.Read(ctx)
	assert.Ok(t, err)
	assert.Assert(t, reflect.DeepEqual(plan, testPlan()))

	assert.Ok(t, store.Discard(ctx))
	assert.Assert(t, len(s3Svc.objects) == 0)
}

func TestOpen(t *testing.T) {
	_, err := Open("", nil)
	assert.EqualString(t, err.Error(), "plan location empty")

	_, err = Open("s3://bucket-only", &testS3{})
	assert.EqualString(t, err.Error(), "bad S3 location: s3://bucket-only")

	_, err = Open("s3://bucket/key", nil)
	assert.EqualString(t, err.Error(), "no S3 client for s3://bucket/key")
}

type testS3 struct {
	s3iface.S3API
	objects map[string][]byte
}

func (s *testS3) PutObjectWithContext(_ aws.Context, input *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	buf, err := ioutil.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}

	s.objects[*input.Bucket+"/"+*input.Key] = buf

	return &s3.PutObjectOutput{}, nil
}

func (s *testS3) GetObjectWithContext(_ aws.Context, input *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	buf, found := s.objects[*input.Bucket+"/"+*input.Key]
	if !found {
		return nil, awserr.New(s3.ErrCodeNoSuchKey, "The specified key does not exist.", nil)
	}

	return &s3.GetObjectOutput{
		Body: ioutil.NopCloser(bytes.NewReader(buf)),
	}, nil
}

func (s *testS3) DeleteObjectWithContext(_ aws.Context, input *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	delete(s.objects, *input.Bucket+"/"+*input.Key)

	return &s3.DeleteObjectOutput{}, nil
}
