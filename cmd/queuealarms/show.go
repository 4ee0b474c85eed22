package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/function61/lambda-queuealarms/pkg/awsinventory"
	"github.com/function61/lambda-queuealarms/pkg/planstore"
	"github.com/function61/lambda-queuealarms/pkg/qaconfig"
	"github.com/function61/lambda-queuealarms/pkg/qadiff"
	"github.com/function61/lambda-queuealarms/pkg/qaplan"
	"github.com/scylladb/termtables"
)

func runShow(ctx context.Context, planLocationOverride string) error {
	location := firstNonEmpty(
		planLocationOverride,
		os.Getenv("PLAN_LOCATION"),
		qaconfig.DefaultPlanLocation)

	var s3Svc s3iface.S3API
	if planstore.IsS3Location(location) {
		awsSession, err := awsinventory.NewSession(os.Getenv("AWS_REGION"))
		if err != nil {
			return err
		}

		s3Svc = s3.New(awsSession)
	}

	store, err := planstore.Open(location, s3Svc)
	if err != nil {
		return err
	}

	plan, err := store.Read(ctx)
	if err != nil {
		return err
	}

	fmt.Println(renderPlan(plan))

	return nil
}

func renderPlan(plan *qaplan.Plan) string {
	view := termtables.CreateTable()
	view.AddHeaders("Action", "Alarm", "Queue", "Threshold")

	for _, action := range plan.Actions() {
		switch a := action.(type) {
		case qaplan.CreateAlarm:
			threshold := strconv.Itoa(a.Threshold)
			if qadiff.IsDeadLetterQueue(a.Queue) {
				threshold += " (DLQ)"
			}

			view.AddRow("create", a.Alarm, a.Queue, threshold)
		case qaplan.DeleteAlarm:
			view.AddRow("delete", a.Alarm, qadiff.QueueNameFor(a.Alarm, plan.AlarmSuffix), "")
		}
	}

	return fmt.Sprintf(
		"%s\n%s: %d to create, %d to delete",
		view.Render(),
		plan.Region,
		plan.Summary.ToCreate,
		plan.Summary.ToDelete)
}
