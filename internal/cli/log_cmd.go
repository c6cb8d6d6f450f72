package cli

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"punchclock/internal/domain"
)

func newLogCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Manage time-log entries",
	}

	cmd.AddCommand(
		newLogListCmd(app),
		newLogAddCmd(app),
	)

	return cmd
}

func newLogListCmd(app *App) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached time-log entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := app.Logs.ListRecent(context.Background(), days)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No entries in the last", days, "days.")
				return nil
			}

			fmt.Println(styleHeader.Render(fmt.Sprintf("%-12s %-10s %-10s %7s %7s  %-11s %s",
				"DATE", "START", "END", "BREAK", "HOURS", "STATUS", "ACTIVITY")))
			for _, e := range entries {
				line := fmt.Sprintf("%-12s %-10s %-10s %6dm %6.2fh  %-11s %s",
					domain.FormatDay(e.Date), e.StartTime, e.EndTime,
					e.BreakMinutes, e.TotalHours, e.Status, e.Activity)
				if !e.Synced() {
					line += styleWarn.Render(" *")
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 14, "How many days back to list")

	return cmd
}

func newLogAddCmd(app *App) *cobra.Command {
	var date, start, end, activity string
	var breakMinutes int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a time-log entry manually",
		RunE: func(cmd *cobra.Command, args []string) error {
			if start == "" || end == "" {
				if app.IsInteractive == nil || !app.IsInteractive() {
					return errors.New("--start and --end are required in non-interactive mode")
				}
				if err := runLogAddForm(&date, &start, &end, &breakMinutes, &activity); err != nil {
					return err
				}
			}
			if date == "" {
				date = domain.FormatDay(time.Now())
			}

			entry, err := buildManualEntry(date, start, end, breakMinutes, activity)
			if err != nil {
				return err
			}
			return submitEntry(context.Background(), app, entry)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Entry date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&start, "start", "", "Start time (HH:MM)")
	cmd.Flags().StringVar(&end, "end", "", "End time (HH:MM)")
	cmd.Flags().IntVar(&breakMinutes, "break-minutes", 0, "Break minutes")
	cmd.Flags().StringVar(&activity, "activity", "", "What you worked on")

	return cmd
}

func runLogAddForm(date, start, end *string, breakMinutes *int, activity *string) error {
	if *date == "" {
		*date = domain.FormatDay(time.Now())
	}
	breaks := strconv.Itoa(*breakMinutes)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Date (YYYY-MM-DD)").Value(date),
			huh.NewInput().Title("Start time (HH:MM)").Value(start),
			huh.NewInput().Title("End time (HH:MM)").Value(end),
		),
		huh.NewGroup(
			huh.NewInput().Title("Break minutes").Value(&breaks),
			huh.NewInput().Title("Activity (optional)").Value(activity),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	if n, err := strconv.Atoi(breaks); err == nil && n >= 0 {
		*breakMinutes = n
	}
	return nil
}

// buildManualEntry assembles an entry from wall-clock strings, applying the
// same zero/24h bounds finalization applies.
func buildManualEntry(date, start, end string, breakMinutes int, activity string) (*domain.TimeLogEntry, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}
	startAt, err := parseWallClock(day, start)
	if err != nil {
		return nil, err
	}
	endAt, err := parseWallClock(day, end)
	if err != nil {
		return nil, err
	}
	if endAt.Before(startAt) {
		return nil, fmt.Errorf("end %q precedes start %q", end, start)
	}
	if breakMinutes < 0 {
		breakMinutes = 0
	}

	hours := (endAt.Sub(startAt).Seconds() - float64(breakMinutes*60)) / 3600
	if hours < 0 {
		hours = 0
	}
	if hours > domain.MaxSessionHours {
		hours = domain.MaxSessionHours
	}
	hours = math.Round(hours*100) / 100

	return &domain.TimeLogEntry{
		ID:           uuid.New().String(),
		Date:         domain.DayOf(day),
		StartTime:    domain.FormatWallClock(startAt),
		EndTime:      domain.FormatWallClock(endAt),
		BreakMinutes: breakMinutes,
		TotalHours:   hours,
		Status:       domain.StatusPending,
		Activity:     activity,
		SyncState:    domain.SyncPending,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func parseWallClock(day time.Time, value string) (time.Time, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Date(day.Year(), day.Month(), day.Day(),
				t.Hour(), t.Minute(), t.Second(), 0, day.Location()), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q (want HH:MM)", value)
}

// submitEntry pushes a manual entry to the log store with the same
// optimistic local fallback finalization uses.
func submitEntry(ctx context.Context, app *App, entry *domain.TimeLogEntry) error {
	remoteID, submitErr := app.Store.Submit(ctx, entry)
	if submitErr == nil {
		entry.RemoteID = remoteID
		entry.SyncState = domain.SyncSynced
	}

	if err := app.Logs.Create(ctx, entry); err != nil {
		return err
	}

	fmt.Printf("Added %.2fh on %s\n", entry.TotalHours, domain.FormatDay(entry.Date))
	if submitErr != nil {
		fmt.Println(styleWarn.Render(
			"Could not reach the log store; entry saved locally. Run 'punchclock sync' to retry."))
	}
	return nil
}
