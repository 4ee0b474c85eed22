package planstore

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/function61/gokit/atomicfilewrite"
	"github.com/function61/lambda-queuealarms/pkg/qaplan"
)

type fileStore struct {
	path string
}

func (f *fileStore) Location() string {
	return f.path
}

func (f *fileStore) Write(_ context.Context, plan *qaplan.Plan) error {
	serialized, err := qaplan.Serialize(plan)
	if err != nil {
		return err
	}

	// readers never see a partial plan
	return atomicfilewrite.Write(f.path, func(w io.Writer) error {
		_, err := w.Write(serialized)
		return err
	})
}

func (f *fileStore) Read(_ context.Context) (*qaplan.Plan, error) {
	file, err := os.Open(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrPlanNotFound, f.path)
		}

		return nil, err
	}
	defer file.Close()

	plan, err := qaplan.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.path, err)
	}

	return plan, nil
}

func (f *fileStore) Discard(_ context.Context) error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}
