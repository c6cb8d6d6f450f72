package remote

import (
	"io"
	"log/slog"
)

// CallEvent records metadata about a single log-store API call.
type CallEvent struct {
	Op        string
	LatencyMs int64
	Success   bool
	ErrorCode string
}

// Observer receives events about log-store calls for logging and metrics.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}

// LogObserver writes call events to an io.Writer as structured logs.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates an Observer that logs events to w.
func NewLogObserver(w io.Writer) *LogObserver {
	return &LogObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (o *LogObserver) OnCallComplete(event CallEvent) {
	attrs := []any{
		slog.String("op", event.Op),
		slog.Int64("latency_ms", event.LatencyMs),
		slog.Bool("success", event.Success),
	}
	if !event.Success {
		attrs = append(attrs, slog.String("error_code", event.ErrorCode))
		o.logger.Error("logstore_call", attrs...)
		return
	}
	o.logger.Info("logstore_call", attrs...)
}
