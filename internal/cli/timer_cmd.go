package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"punchclock/internal/domain"
	"punchclock/internal/repository"
	"punchclock/internal/tracker"
)

func newStartCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the work timer",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			sess, err := app.Tracker.Start(ctx)
			if errors.Is(err, tracker.ErrSessionActive) {
				elapsed, elapsedErr := app.Tracker.Elapsed(ctx)
				if elapsedErr != nil {
					return elapsedErr
				}
				fmt.Printf("Timer already running (%s elapsed). Use 'punchclock stop' to finish.\n",
					domain.FormatElapsed(elapsed))
				return nil
			}
			if errors.Is(err, tracker.ErrAlreadyLogged) {
				fmt.Println("Today's work session is already logged. One session per day.")
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Printf("Timer started at %s. Run 'punchclock watch' for a live view.\n",
				domain.FormatWallClock(sess.StartedAt))
			return nil
		},
	}
}

func newStopCmd(app *App) *cobra.Command {
	var activity string
	var breakMinutes int

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the timer and log the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			// An open break ends implicitly with the session.
			if running, err := app.Breaks.Running(ctx); err != nil {
				return err
			} else if running {
				if _, err := app.Breaks.EndBreak(ctx); err != nil {
					return err
				}
			}

			minutes := breakMinutes
			if !cmd.Flags().Changed("break-minutes") {
				tracked, err := app.Breaks.Minutes(ctx)
				if err != nil {
					return err
				}
				minutes = tracked
			}

			result, err := app.Tracker.Finalize(ctx, minutes, activity)
			if errors.Is(err, tracker.ErrNoSession) {
				fmt.Println("No timer is running.")
				return nil
			}
			if errors.Is(err, domain.ErrInvalidSession) {
				if resetErr := app.Breaks.Reset(ctx); resetErr != nil {
					return resetErr
				}
				return fmt.Errorf("session discarded: %w", err)
			}
			if err != nil {
				return err
			}
			if err := app.Breaks.Reset(ctx); err != nil {
				return err
			}

			entry := result.Entry
			fmt.Printf("Logged %.2fh (%s–%s, %d min break) for %s\n",
				entry.TotalHours, entry.StartTime, entry.EndTime,
				entry.BreakMinutes, domain.FormatDay(entry.Date))

			if result.SubmissionErr != nil {
				fmt.Println(styleWarn.Render(
					"Could not reach the log store; entry saved locally. Run 'punchclock sync' to retry."))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&activity, "activity", "", "What you worked on")
	cmd.Flags().IntVar(&breakMinutes, "break-minutes", 0, "Break minutes to subtract (overrides tracked breaks)")

	return cmd
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current timer and today's log",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			sess, err := app.Tracker.Resume(ctx)
			switch {
			case errors.Is(err, tracker.ErrNoSession):
				fmt.Println(styleLabel.Render("No timer running."))
			case err != nil:
				return err
			default:
				elapsed := sess.ElapsedSeconds(time.Now())
				fmt.Printf("%s %s (started %s)\n",
					styleLabel.Render("Working:"),
					styleTimer.Render(domain.FormatElapsed(elapsed)),
					domain.FormatWallClock(sess.StartedAt))
			}

			if running, err := app.Breaks.Running(ctx); err == nil && running {
				minutes, _ := app.Breaks.Minutes(ctx)
				fmt.Printf("%s %d min so far\n", styleWarn.Render("On break:"), minutes)
			} else if minutes, err := app.Breaks.Minutes(ctx); err == nil && minutes > 0 {
				fmt.Printf("%s %d min\n", styleLabel.Render("Breaks today:"), minutes)
			}

			entry, err := app.Logs.GetByDate(ctx, time.Now())
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Printf("%s %.2fh, %s%s\n",
				styleLabel.Render("Logged today:"),
				entry.TotalHours, entry.Status, syncSuffix(entry))
			return nil
		},
	}
}

func syncSuffix(e *domain.TimeLogEntry) string {
	if e.Synced() {
		return ""
	}
	return styleWarn.Render(" (not synced)")
}
