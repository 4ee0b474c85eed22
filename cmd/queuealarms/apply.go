package main

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/function61/gokit/logex"
	"github.com/function61/lambda-queuealarms/pkg/alertmanagerclient"
	"github.com/function61/lambda-queuealarms/pkg/awsinventory"
	"github.com/function61/lambda-queuealarms/pkg/planstore"
	"github.com/function61/lambda-queuealarms/pkg/qaconfig"
	"github.com/function61/lambda-queuealarms/pkg/qaexec"
	"github.com/function61/lambda-queuealarms/pkg/qaplan"
)

// the executor is built only after reading the plan, because the plan dictates the region
type executorFactoryFn func(plan *qaplan.Plan) (*qaexec.Executor, error)

func runApply(ctx context.Context, planLocationOverride string, discard bool, logger *log.Logger) error {
	conf, err := qaconfig.FromEnv()
	if err != nil {
		return err
	}

	if err := conf.RequireAlertTopic(); err != nil {
		return err
	}

	awsSession, err := awsinventory.NewSession(conf.Region)
	if err != nil {
		return err
	}

	store, err := planstore.Open(
		firstNonEmpty(planLocationOverride, conf.PlanLocation),
		s3.New(awsSession))
	if err != nil {
		return err
	}

	_, err = applyStage(ctx, store, awsExecutorFactory(conf, logger), discard, logger)
	return err
}

func awsExecutorFactory(conf *qaconfig.Config, logger *log.Logger) executorFactoryFn {
	return func(plan *qaplan.Plan) (*qaexec.Executor, error) {
		planRegionSession, err := awsinventory.NewSession(plan.Region)
		if err != nil {
			return nil, err
		}

		return qaexec.New(
			awsinventory.NewAlarms(planRegionSession),
			outcomeNotifiers(conf, awsinventory.NewTopicNotifier(planRegionSession, conf.AlertTopic)),
			conf.EvaluationConfig(),
			conf.Concurrency,
			logex.Prefix("executor", logger)), nil
	}
}

// topic hears about every run, alertmanager (if configured) only about failed ones
func outcomeNotifiers(conf *qaconfig.Config, topic qaexec.Notifier) qaexec.Notifiers {
	notifiers := qaexec.Notifiers{topic}

	if conf.AlertmanagerUrl != "" {
		notifiers = append(notifiers, qaexec.FailuresOnly{
			Notifier: alertmanagerclient.New(conf.AlertmanagerUrl),
		})
	}

	return notifiers
}

// reads the plan (fatal if missing or broken), executes it and fails if any action failed
func applyStage(
	ctx context.Context,
	store planstore.Store,
	newExecutor executorFactoryFn,
	discard bool,
	logger *log.Logger,
) (*qaexec.Outcome, error) {
	logl := logex.Levels(logger)

	plan, err := store.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}

	logl.Info.Printf(
		"applying %s (%s): %d to create, %d to delete",
		store.Location(),
		plan.Region,
		plan.Summary.ToCreate,
		plan.Summary.ToDelete)

	if plan.Empty() {
		logl.Info.Println("nothing to create or delete; notifying only")
	}

	executor, err := newExecutor(plan)
	if err != nil {
		return nil, err
	}

	if discard {
		// plan is read only once. discarding before executing would lose it if we crash
		// mid-way, so only after.
		defer func() {
			if err := store.Discard(ctx); err != nil {
				logl.Error.Printf("discard plan: %v", err)
			}
		}()
	}

	outcome := executor.Execute(ctx, plan)

	fmt.Printf("Created: %d\nDeleted: %d\nFailed: %d\n", outcome.Created, outcome.Deleted, outcome.Failed)

	return &outcome, outcome.Err()
}
