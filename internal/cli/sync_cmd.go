package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Resubmit entries that failed to reach the log store",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := app.Resubmitter.RunOnce(context.Background())
			if err != nil {
				if summary.Attempted > 0 {
					fmt.Printf("Synced %d of %d pending entries before the store became unreachable.\n",
						summary.Synced, summary.Attempted)
				}
				return err
			}

			switch {
			case summary.Attempted == 0:
				fmt.Println(styleOK.Render("Everything is synced."))
			case summary.Rejected > 0:
				fmt.Printf("Synced %d entries; %d were rejected by the store and remain pending.\n",
					summary.Synced, summary.Rejected)
			default:
				fmt.Println(styleOK.Render(fmt.Sprintf("Synced %d pending entries.", summary.Synced)))
			}
			return nil
		},
	}
}
