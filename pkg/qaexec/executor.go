// Applies a plan: creates missing alarms, deletes orphaned ones and reports the outcome
package qaexec

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/function61/gokit/logex"
	"github.com/function61/lambda-queuealarms/pkg/qaplan"
)

var ErrActionsFailed = errors.New("one or more alarm actions failed")

type AlarmWriter interface {
	PutAlarm(ctx context.Context, spec AlarmSpec) error
	DeleteAlarm(ctx context.Context, alarmName string) error
}

// best-effort
type Notifier interface {
	Notify(ctx context.Context, report Report) error
}

// what notifiers get after a run
type Report struct {
	Subject string
	Body    string
	Outcome Outcome
}

type Outcome struct {
	Created      int `json:"created"`
	Deleted      int `json:"deleted"`
	Failed       int `json:"failed"`
	CreateFailed int `json:"create_failed"`
	DeleteFailed int `json:"delete_failed"`
}

// any failure fails the whole run, regardless of how much succeeded
func (o Outcome) Err() error {
	if o.Failed > 0 {
		return fmt.Errorf("%w: %d failed", ErrActionsFailed, o.Failed)
	}

	return nil
}

type Executor struct {
	writer      AlarmWriter
	notifier    Notifier
	evaluation  EvaluationConfig
	concurrency int
	logl        *logex.Leveled
}

func New(
	writer AlarmWriter,
	notifier Notifier,
	evaluation EvaluationConfig,
	concurrency int,
	logger *log.Logger,
) *Executor {
	if concurrency < 1 {
		concurrency = 1
	}

	return &Executor{
		writer:      writer,
		notifier:    notifier,
		evaluation:  evaluation,
		concurrency: concurrency,
		logl:        logex.Levels(logger),
	}
}

// runs every action of the plan to completion. individual failures are counted, not
// returned. no retries. all creates finish before any delete starts.
func (e *Executor) Execute(ctx context.Context, plan *qaplan.Plan) Outcome {
	outcome := Outcome{}

	e.runPhase(ctx, plan, plan.CreateActions(), &outcome)
	e.runPhase(ctx, plan, plan.DeleteActions(), &outcome)

	outcome.Failed = outcome.CreateFailed + outcome.DeleteFailed

	e.logl.Info.Printf(
		"created %d, deleted %d, failed %d",
		outcome.Created,
		outcome.Deleted,
		outcome.Failed)

	e.notify(ctx, plan, outcome)

	return outcome
}

func (e *Executor) runPhase(ctx context.Context, plan *qaplan.Plan, actions []qaplan.Action, outcome *Outcome) {
	outcomeMu := sync.Mutex{}

	work := make(chan qaplan.Action)

	concurrently(e.concurrency, func() {
		for action := range work {
			err := e.apply(ctx, plan, action)

			outcomeMu.Lock()
			tally(outcome, action, err)
			outcomeMu.Unlock()
		}
	}, func() {
		for _, action := range actions {
			work <- action
		}

		close(work)
	})
}

func (e *Executor) apply(ctx context.Context, plan *qaplan.Plan, action qaplan.Action) error {
	switch a := action.(type) {
	case qaplan.CreateAlarm:
		return e.create(ctx, plan, a)
	case qaplan.DeleteAlarm:
		return e.delete(ctx, a)
	default:
		return fmt.Errorf("unsupported action %T for %s", action, action.AlarmName())
	}
}

func tally(outcome *Outcome, action qaplan.Action, err error) {
	switch action.(type) {
	case qaplan.CreateAlarm:
		if err != nil {
			outcome.CreateFailed++
		} else {
			outcome.Created++
		}
	case qaplan.DeleteAlarm:
		if err != nil {
			outcome.DeleteFailed++
		} else {
			outcome.Deleted++
		}
	}
}

func (e *Executor) create(ctx context.Context, plan *qaplan.Plan, create qaplan.CreateAlarm) error {
	spec := e.evaluation.AlarmSpecFor(plan.Region, create)

	if err := e.writer.PutAlarm(ctx, spec); err != nil {
		e.logl.Error.Printf("❌ create %s (queue %s, threshold %d): %v", create.Alarm, create.Queue, create.Threshold, err)
		return err
	}

	e.logl.Info.Printf("✔️ create %s (queue %s, threshold %d)", create.Alarm, create.Queue, create.Threshold)

	return nil
}

func (e *Executor) delete(ctx context.Context, del qaplan.DeleteAlarm) error {
	if err := e.writer.DeleteAlarm(ctx, del.Alarm); err != nil {
		e.logl.Error.Printf("❌ delete %s: %v", del.Alarm, err)
		return err
	}

	e.logl.Info.Printf("✔️ delete %s", del.Alarm)

	return nil
}

func (e *Executor) notify(ctx context.Context, plan *qaplan.Plan, outcome Outcome) {
	if e.notifier == nil {
		return
	}

	subject, body := SummaryText(plan, outcome)

	// failure to notify doesn't change the outcome
	if err := e.notifier.Notify(ctx, Report{subject, body, outcome}); err != nil {
		e.logl.Error.Printf("notify: %v", err)
	}
}

func SummaryText(plan *qaplan.Plan, outcome Outcome) (string, string) {
	status := "OK"
	if outcome.Failed > 0 {
		status = "FAILED"
	}

	subject := fmt.Sprintf("Queue alarm reconciliation %s (%s)", status, plan.Region)

	body := fmt.Sprintf(
		"Region: %s\nAlarm suffix: %s\n\nPlanned: %d to create, %d to delete\nCreated: %d\nDeleted: %d\nFailed: %d (%d create, %d delete)",
		plan.Region,
		plan.AlarmSuffix,
		plan.Summary.ToCreate,
		plan.Summary.ToDelete,
		outcome.Created,
		outcome.Deleted,
		outcome.Failed,
		outcome.CreateFailed,
		outcome.DeleteFailed)

	return subject, body
}

func concurrently(numWorkers int, worker func(), produceWork func()) {
	workersDone := sync.WaitGroup{}

	for i := 0; i < numWorkers; i++ {
		workersDone.Add(1)
		go func() {
			defer workersDone.Done()

			worker()
		}()
	}

	produceWork()

	workersDone.Wait()
}
