package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"punchclock/internal/domain"
	"punchclock/internal/tracker"
)

func newWatchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Live timer view for the active session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			if _, err := app.Tracker.Elapsed(ctx); err != nil {
				if errors.Is(err, tracker.ErrNoSession) {
					fmt.Println("No active session. Start one with 'punchclock start'.")
					return nil
				}
				return err
			}

			// The reconciliation loop and the day poller run behind the
			// view; quitting cancels both.
			go app.Tracker.Run(ctx)
			if app.Poller != nil {
				go app.Poller.Run(ctx)
			}

			model := newWatchModel(app, cancel)
			_, err := tea.NewProgram(model).Run()
			return err
		},
	}
}

// ── messages ─────────────────────────────────────────────────────────────────

type watchTickMsg time.Time

// watchStateMsg carries the freshly read session state for a tick.
type watchStateMsg struct {
	elapsed      int64
	breakRunning bool
	breakMinutes int
	err          error
}

// ── keys ─────────────────────────────────────────────────────────────────────

type watchKeyMap struct {
	Break key.Binding
	Quit  key.Binding
}

func (k watchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Break, k.Quit}
}

func (k watchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Break, k.Quit}}
}

var watchKeys = watchKeyMap{
	Break: key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "toggle break")),
	Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// ── model ────────────────────────────────────────────────────────────────────

type watchModel struct {
	app    *App
	cancel context.CancelFunc
	help   help.Model

	elapsed      int64
	breakRunning bool
	breakMinutes int
	err          error
	gone         bool // session finalized or lost while watching
}

func newWatchModel(app *App, cancel context.CancelFunc) *watchModel {
	return &watchModel{
		app:    app,
		cancel: cancel,
		help:   help.New(),
	}
}

func (m *watchModel) Init() tea.Cmd {
	return tea.Batch(m.readState(), watchTick())
}

func watchTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return watchTickMsg(t)
	})
}

func (m *watchModel) readState() tea.Cmd {
	app := m.app
	return func() tea.Msg {
		ctx := context.Background()

		elapsed, err := app.Tracker.Elapsed(ctx)
		if err != nil {
			return watchStateMsg{err: err}
		}
		running, err := app.Breaks.Running(ctx)
		if err != nil {
			return watchStateMsg{elapsed: elapsed, err: err}
		}
		minutes, err := app.Breaks.Minutes(ctx)
		if err != nil {
			return watchStateMsg{elapsed: elapsed, breakRunning: running, err: err}
		}

		return watchStateMsg{elapsed: elapsed, breakRunning: running, breakMinutes: minutes}
	}
}

func (m *watchModel) toggleBreak() tea.Cmd {
	app := m.app
	running := m.breakRunning
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		if running {
			_, err = app.Breaks.EndBreak(ctx)
		} else {
			err = app.Breaks.StartBreak(ctx)
		}
		if err != nil {
			return watchStateMsg{err: err}
		}
		msg := m.readState()()
		return msg
	}
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case watchTickMsg:
		if m.gone {
			return m, tea.Quit
		}
		return m, tea.Batch(m.readState(), watchTick())

	case watchStateMsg:
		if msg.err != nil {
			if errors.Is(msg.err, tracker.ErrNoSession) {
				m.gone = true
				return m, nil
			}
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.elapsed = msg.elapsed
		m.breakRunning = msg.breakRunning
		m.breakMinutes = msg.breakMinutes
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, watchKeys.Quit):
			m.cancel()
			return m, tea.Quit
		case key.Matches(msg, watchKeys.Break):
			return m, m.toggleBreak()
		}
	}

	return m, nil
}

func (m *watchModel) View() string {
	var b strings.Builder

	b.WriteString("\n  " + styleHeader.Render("SESSION") + "\n\n")

	if m.gone {
		b.WriteString("  Session ended.\n")
		return b.String()
	}

	b.WriteString("  " + styleTimer.Render(domain.FormatElapsed(m.elapsed)) + "\n\n")

	switch {
	case m.breakRunning:
		b.WriteString("  " + styleWarn.Render("on break") + "\n")
	case m.breakMinutes > 0:
		b.WriteString(fmt.Sprintf("  %s %dm\n", styleLabel.Render("breaks"), m.breakMinutes))
	}

	if m.err != nil {
		b.WriteString("\n  " + styleWarn.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n  " + m.help.View(watchKeys) + "\n")
	return b.String()
}
