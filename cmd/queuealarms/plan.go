package main

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/function61/gokit/logex"
	"github.com/function61/lambda-queuealarms/pkg/awsinventory"
	"github.com/function61/lambda-queuealarms/pkg/planstore"
	"github.com/function61/lambda-queuealarms/pkg/qaconfig"
	"github.com/function61/lambda-queuealarms/pkg/qadiff"
	"github.com/function61/lambda-queuealarms/pkg/qaplan"
)

type queueLister interface {
	ListQueueNames(ctx context.Context) ([]string, error)
}

type alarmLister interface {
	ListAlarmNames(ctx context.Context, suffix string) ([]string, error)
}

func runPlan(ctx context.Context, planLocationOverride string, logger *log.Logger) error {
	conf, err := qaconfig.FromEnv()
	if err != nil {
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

	plan, err := planStage(
		ctx,
		conf,
		awsinventory.NewQueueLister(awsSession),
		awsinventory.NewAlarms(awsSession),
		store,
		logger)
	if err != nil {
		return err
	}

	fmt.Println(renderPlan(plan))

	return nil
}

// queries both inventories, diffs them and persists the plan
func planStage(
	ctx context.Context,
	conf *qaconfig.Config,
	queues queueLister,
	alarms alarmLister,
	store planstore.Store,
	logger *log.Logger,
) (*qaplan.Plan, error) {
	logl := logex.Levels(logger)

	queueNames, err := queues.ListQueueNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list queues: %w", err)
	}

	alarmNames, err := alarms.ListAlarmNames(ctx, conf.AlarmSuffix)
	if err != nil {
		return nil, fmt.Errorf("list alarms: %w", err)
	}

	logl.Info.Printf(
		"%s: %d queue(s), %d alarm(s) ending in %s",
		conf.Region,
		len(queueNames),
		len(alarmNames),
		conf.AlarmSuffix)

	for _, queue := range qadiff.AmbiguousQueues(queueNames, conf.AlarmSuffix) {
		logl.Error.Printf("queue %s ends in alarm suffix %s; its alarm may later look orphaned", queue, conf.AlarmSuffix)
	}

	plan := qadiff.Diff(
		conf.Region,
		queueNames,
		alarmNames,
		conf.AlarmSuffix,
		conf.DefaultThreshold)

	for _, create := range plan.Create {
		logl.Info.Printf("+ %s (queue %s, threshold %d)", create.Alarm, create.Queue, create.Threshold)
	}

	for _, del := range plan.Delete {
		logl.Info.Printf("- %s", del.Alarm)
	}

	if err := store.Write(ctx, plan); err != nil {
		return nil, fmt.Errorf("write plan: %w", err)
	}

	logl.Info.Printf(
		"plan written to %s: %d to create, %d to delete",
		store.Location(),
		plan.Summary.ToCreate,
		plan.Summary.ToDelete)

	return plan, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}

	return ""
}
