package qaexec

import (
	"context"
	"fmt"
	"strings"
)

// fans out to every notifier, even if some fail
type Notifiers []Notifier

func (n Notifiers) Notify(ctx context.Context, report Report) error {
	failures := []string{}

	for _, notifier := range n {
		if err := notifier.Notify(ctx, report); err != nil {
			failures = append(failures, err.Error())
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("%d notifier(s) failed: %s", len(failures), strings.Join(failures, "; "))
	}

	return nil
}

// for destinations where every message is a page (like an alert manager): clean runs
// are not passed on
type FailuresOnly struct {
	Notifier Notifier
}

func (f FailuresOnly) Notify(ctx context.Context, report Report) error {
	if report.Outcome.Failed == 0 {
		return nil
	}

	return f.Notifier.Notify(ctx, report)
}
