package main

import (
	"fmt"
	"os"

	"github.com/function61/gokit/dynversion"
	"github.com/function61/gokit/logex"
	"github.com/function61/gokit/ossignal"
	"github.com/spf13/cobra"
)

func main() {
	app := &cobra.Command{
		Use:     os.Args[0],
		Short:   "Keeps CloudWatch alarms in sync with SQS queues",
		Version: dynversion.Version,
	}

	app.AddCommand(planEntry())

	app.AddCommand(applyEntry())

	app.AddCommand(showEntry())

	app.AddCommand(&cobra.Command{
		Use:    "lambda",
		Hidden: true,
		Run: func(*cobra.Command, []string) {
			lambdaHandler()
		},
	})

	exitIfError(app.Execute())
}

func planEntry() *cobra.Command {
	planLocation := ""

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Diff queues against alarms and write the plan",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			logger := logex.StandardLogger()

			exitIfError(runPlan(
				ossignal.InterruptOrTerminateBackgroundCtx(logger),
				planLocation,
				logger))
		},
	}

	cmd.Flags().StringVarP(&planLocation, "plan", "p", planLocation, "Plan location (path or s3://bucket/key). Default from $PLAN_LOCATION")

	return cmd
}

func applyEntry() *cobra.Command {
	planLocation := ""
	discard := false

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Create and delete alarms as planned",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			logger := logex.StandardLogger()

			exitIfError(runApply(
				ossignal.InterruptOrTerminateBackgroundCtx(logger),
				planLocation,
				discard,
				logger))
		},
	}

	cmd.Flags().StringVarP(&planLocation, "plan", "p", planLocation, "Plan location (path or s3://bucket/key). Default from $PLAN_LOCATION")
	cmd.Flags().BoolVarP(&discard, "discard", "d", discard, "Remove the plan after reading it")

	return cmd
}

func showEntry() *cobra.Command {
	planLocation := ""

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display a plan",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			exitIfError(runShow(
				ossignal.InterruptOrTerminateBackgroundCtx(nil),
				planLocation))
		},
	}

	cmd.Flags().StringVarP(&planLocation, "plan", "p", planLocation, "Plan location (path or s3://bucket/key). Default from $PLAN_LOCATION")

	return cmd
}

func exitIfError(err error) {
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
