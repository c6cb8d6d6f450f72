package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"punchclock/internal/tracker"
)

func newBreakCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "break",
		Short: "Track breaks within the current session",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "start",
			Short: "Start a break",
			RunE: func(cmd *cobra.Command, args []string) error {
				err := app.Breaks.StartBreak(context.Background())
				if errors.Is(err, tracker.ErrBreakActive) {
					fmt.Println("A break is already running.")
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Println("Break started.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "end",
			Short: "End the running break",
			RunE: func(cmd *cobra.Command, args []string) error {
				minutes, err := app.Breaks.EndBreak(context.Background())
				if errors.Is(err, tracker.ErrNoBreak) {
					fmt.Println("No break is running.")
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Printf("Break ended. %d min accumulated today.\n", minutes)
				return nil
			},
		},
	)

	return cmd
}
