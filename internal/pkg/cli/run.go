package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ticketrush/ticketrush/internal/pkg/idgenerator"
	"github.com/ticketrush/ticketrush/internal/pkg/model"
	"github.com/ticketrush/ticketrush/internal/pkg/orchestrator"
	"github.com/ticketrush/ticketrush/internal/pkg/utils/errors"
)

const runShortDescription = `Submit an application for every task in the tasks file`
const runLongDescription = `Command "run"

Loads the tasks file, acquires and validates egress routes
and runs the reservation protocol for every task.

With the "--start-at" flag the tasks are prepared upfront
and the submission starts at the given instant.
`

func runCommand(root *rootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: runShortDescription,
		Long:  runLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := root.ValidateOptions([]string{"TasksFile", "RouteClass", "EgressURL", "BackendURL", "ProbeURL"}); err != nil {
				return err
			}
			startAt, err := root.options.StartAtTime()
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			tasks, err := model.LoadTasksFile(ctx, root.options.TasksFile)
			if err != nil {
				return err
			}

			runID := idgenerator.RunId()
			root.logger.Infof(`run "%s", %d tasks loaded from "%s"`, runID, len(tasks), root.options.TasksFile)

			d := newDependencies(root.logger, root.clock, root.options, runID)
			o := orchestrator.NewOrchestrator(d, orchestrator.DefaultConfig())
			if err := o.Prepare(tasks, model.RouteClass(root.options.RouteClass)); err != nil {
				return err
			}

			// Wait for the scheduled start instant
			if delay := startAt.Sub(root.clock.Now()); !startAt.IsZero() && delay > 0 {
				root.logger.Infof(`waiting %s, submission starts at %s`, delay.Truncate(time.Second), startAt.Format("15:04:05"))
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-root.clock.After(delay):
				}
			}

			summary, err := o.Start(ctx)
			if err != nil {
				return err
			}

			printSummary(root, summary)
			if summary.Succeeded() == 0 {
				return errors.New("no application was accepted")
			}
			return nil
		},
	}

	root.options.BindRunFlags(cmd.Flags())
	return cmd
}

func printSummary(root *rootCommand, summary *model.Summary) {
	for _, o := range summary.Outcomes {
		switch o.Outcome.Status {
		case model.StatusSuccess:
			root.logger.Infof(`[%s] success: %s`, o.Task, o.Outcome.Message)
		case model.StatusDuplicate:
			root.logger.Infof(`[%s] duplicate, the account already has an accepted application`, o.Task)
		default:
			root.logger.Warnf(`[%s] failed (%s): %s`, o.Task, o.Outcome.Reason, o.Outcome.Message)
		}
	}
	root.logger.Infof(
		`Done: %d succeeded, %d duplicates, %d failed, %d total.`,
		summary.Succeeded(), summary.Duplicates(), summary.Failed(), summary.Total(),
	)
}
