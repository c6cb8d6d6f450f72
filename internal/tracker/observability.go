package tracker

import (
	"context"
	"io"
	"log/slog"
)

// Event captures lightweight execution telemetry for a tracker operation.
type Event struct {
	Name   string
	Fields map[string]any
	Err    error
}

// Observer receives tracker lifecycle events.
type Observer interface {
	ObserveEvent(ctx context.Context, event Event)
}

// NoopObserver ignores all events.
type NoopObserver struct{}

func (NoopObserver) ObserveEvent(context.Context, Event) {}

type logObserver struct {
	logger *slog.Logger
}

// NewLogObserver writes tracker events to the provided writer.
func NewLogObserver(w io.Writer) Observer {
	if w == nil {
		return NoopObserver{}
	}
	return &logObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (o *logObserver) ObserveEvent(ctx context.Context, event Event) {
	attrs := make([]any, 0, 4+len(event.Fields)*2)
	attrs = append(attrs, "event", event.Name)
	for k, v := range event.Fields {
		attrs = append(attrs, k, v)
	}
	if event.Err != nil {
		attrs = append(attrs, "error", event.Err.Error())
		o.logger.ErrorContext(ctx, "tracker_event", attrs...)
		return
	}
	o.logger.InfoContext(ctx, "tracker_event", attrs...)
}

func observerOrNoop(obs Observer) Observer {
	if obs == nil {
		return NoopObserver{}
	}
	return obs
}
