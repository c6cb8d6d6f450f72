package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"punchclock/internal/domain"
)

// Store is the remote log-store boundary. Submit returns the server-issued
// identifier for the created record.
type Store interface {
	Submit(ctx context.Context, e *domain.TimeLogEntry) (string, error)
	Update(ctx context.Context, remoteID string, e *domain.TimeLogEntry) error
	ListByDay(ctx context.Context, day time.Time) ([]*domain.TimeLogEntry, error)
}

// TokenSource supplies the bearer token attached to every call. The token
// lives in a locally persisted user session, shared by all API clients.
type TokenSource interface {
	Token() (string, error)
}

// Config holds the log-store client settings.
type Config struct {
	BaseURL    string
	TimeoutMs  int
	MaxRetries int
}

// Client implements Store against the timesheet REST API.
type Client struct {
	cfg      Config
	tokens   TokenSource
	http     *http.Client
	observer Observer
}

// NewClient creates a log-store client.
func NewClient(cfg Config, tokens TokenSource, observer Observer) *Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &Client{
		cfg:    cfg,
		tokens: tokens,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
	}
}

// logPayload is the wire shape of a submitted entry. Field names are fixed
// by the existing backend.
type logPayload struct {
	Date          string  `json:"date"`
	StartTime     string  `json:"startTime"`
	EndTime       *string `json:"endTime"`
	BreakDuration int     `json:"breakDuration"`
	TotalHours    float64 `json:"totalHours"`
	Activity      string  `json:"activity,omitempty"`
}

// envelope is the response wrapper every endpoint uses.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data"`
	Errors  []string        `json:"errors,omitempty"`
}

// rawLogEntry mirrors the server's JSON for a stored entry.
type rawLogEntry struct {
	ID            string  `json:"id"`
	Date          string  `json:"date"`
	StartTime     string  `json:"startTime"`
	EndTime       *string `json:"endTime"`
	BreakDuration int     `json:"breakDuration"`
	TotalHours    float64 `json:"totalHours"`
	Status        string  `json:"status"`
	Activity      string  `json:"activity"`
}

func (c *Client) Submit(ctx context.Context, e *domain.TimeLogEntry) (string, error) {
	var created rawLogEntry
	err := c.call(ctx, "submit", http.MethodPost, "/api/time-logs", entryToPayload(e), &created)
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

func (c *Client) Update(ctx context.Context, remoteID string, e *domain.TimeLogEntry) error {
	path := "/api/time-logs/" + url.PathEscape(remoteID)
	return c.call(ctx, "update", http.MethodPut, path, entryToPayload(e), nil)
}

func (c *Client) ListByDay(ctx context.Context, day time.Time) ([]*domain.TimeLogEntry, error) {
	path := "/api/time-logs?date=" + domain.FormatDay(day)
	var raw []rawLogEntry
	if err := c.call(ctx, "list", http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}

	out := make([]*domain.TimeLogEntry, 0, len(raw))
	for _, r := range raw {
		entry, err := entryFromRaw(r)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

// call performs one API operation with the configured timeout and bounded
// retry, reporting the outcome to the observer.
func (c *Client) call(ctx context.Context, op, method, path string, payload any, out any) error {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutMs)*time.Millisecond)
	defer cancel()

	var lastErr error
	attempts := 1 + c.cfg.MaxRetries

	for i := 0; i < attempts; i++ {
		err := c.doRequest(ctx, method, path, payload, out)
		if err == nil {
			c.observer.OnCallComplete(CallEvent{
				Op:        op,
				LatencyMs: time.Since(start).Milliseconds(),
				Success:   true,
			})
			return nil
		}
		lastErr = err

		// Don't retry on context cancellation/timeout or terminal outcomes.
		if ctx.Err() != nil || errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrRejected) {
			break
		}
	}

	classified := classify(ctx, lastErr)
	c.observer.OnCallComplete(CallEvent{
		Op:        op,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   false,
		ErrorCode: errorCode(classified),
	})
	return classified
}

func (c *Client) doRequest(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	token, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode >= 400:
		return fmt.Errorf("log store returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("decoding response envelope: %w", err)
	}
	if !env.Success {
		msg := env.Message
		if msg == "" && len(env.Errors) > 0 {
			msg = strings.Join(env.Errors, "; ")
		}
		return fmt.Errorf("%w: %s", ErrRejected, msg)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decoding response data: %w", err)
		}
	}
	return nil
}

func entryToPayload(e *domain.TimeLogEntry) logPayload {
	var end *string
	if e.EndTime != "" {
		end = &e.EndTime
	}
	return logPayload{
		Date:          domain.FormatDay(e.Date),
		StartTime:     e.StartTime,
		EndTime:       end,
		BreakDuration: e.BreakMinutes,
		TotalHours:    e.TotalHours,
		Activity:      e.Activity,
	}
}

func entryFromRaw(r rawLogEntry) (*domain.TimeLogEntry, error) {
	date, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return nil, fmt.Errorf("parsing entry date: %w", err)
	}
	end := ""
	if r.EndTime != nil {
		end = *r.EndTime
	}
	return &domain.TimeLogEntry{
		RemoteID:     r.ID,
		Date:         date,
		StartTime:    r.StartTime,
		EndTime:      end,
		BreakMinutes: r.BreakDuration,
		TotalHours:   r.TotalHours,
		Status:       parseStatus(r.Status),
		Activity:     r.Activity,
		SyncState:    domain.SyncSynced,
	}, nil
}

func parseStatus(s string) domain.LogStatus {
	switch strings.ToLower(s) {
	case "approved":
		return domain.StatusApproved
	case "rejected":
		return domain.StatusRejected
	case "inprogress", "in_progress":
		return domain.StatusInProgress
	default:
		return domain.StatusPending
	}
}

func classify(ctx context.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ErrTimeout
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrRejected):
		return err
	case isConnectionError(err):
		return ErrUnavailable
	default:
		return fmt.Errorf("%w: %v", ErrRetryExhausted, err)
	}
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrRejected):
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}
