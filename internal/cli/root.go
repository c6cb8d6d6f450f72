package cli

import (
	"github.com/spf13/cobra"

	"punchclock/internal/auth"
	"punchclock/internal/remote"
	"punchclock/internal/repository"
	"punchclock/internal/tracker"
)

// App holds references to all collaborators used by CLI commands.
type App struct {
	Tracker     *tracker.Tracker
	Breaks      *tracker.BreakTracker
	Poller      *tracker.Poller
	Resubmitter *tracker.Resubmitter
	Logs        repository.LogEntryRepo
	Store       remote.Store
	Sessions    *auth.FileStore

	// IsInteractive reports whether stdin is a terminal.
	IsInteractive func() bool
}

// NewRootCmd creates the top-level "punchclock" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "punchclock",
		Short: "Work-session timer and timesheet client",
	}

	root.AddCommand(
		newStartCmd(app),
		newStopCmd(app),
		newStatusCmd(app),
		newBreakCmd(app),
		newWatchCmd(app),
		newLogCmd(app),
		newSyncCmd(app),
		newLoginCmd(app),
		newLogoutCmd(app),
	)

	return root
}
