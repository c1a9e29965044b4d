// CLAUDE:SUMMARY Progress reporter for long-running commands — structured events fanned out to sinks.
// Package progress builds and emits structured progress events for
// long-running commands. A Reporter is bound to one command invocation and
// guarantees the event-stream invariants: the command ID never changes, and
// the progress percentage never decreases.
package progress

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Status is the lifecycle stage an event describes.
type Status string

const (
	StatusStarted    Status = "started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Event is one command_progress message. Chunk fields are present only for
// chunked batch commands.
type Event struct {
	CommandID      string    `json:"commandId"`
	CommandType    string    `json:"commandType"`
	Status         Status    `json:"status"`
	Progress       int       `json:"progress"` // 0-100
	TotalItems     int       `json:"totalItems"`
	ProcessedItems int       `json:"processedItems"`
	Message        string    `json:"message,omitempty"`
	CurrentChunk   int       `json:"currentChunk,omitempty"`
	TotalChunks    int       `json:"totalChunks,omitempty"`
	ChunkSize      int       `json:"chunkSize,omitempty"`
	Payload        any       `json:"payload,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Sink delivers events to one backend. Implementations must be safe for
// concurrent use; delivery errors are logged by the Reporter and never
// propagate to the command.
type Sink interface {
	Send(ctx context.Context, ev Event) error
}

// Reporter emits the event stream for one command. Create one per top-level
// command invocation and discard it with the command.
type Reporter struct {
	commandID   string
	commandType string
	sinks       []Sink
	logger      *slog.Logger
	now         func() time.Time

	mu   sync.Mutex
	last int // highest progress emitted so far
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithLogger sets the logger used for sink delivery failures.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reporter) { r.logger = l }
}

// WithClock overrides the timestamp source (tests).
func WithClock(now func() time.Time) Option {
	return func(r *Reporter) { r.now = now }
}

// NewReporter creates a Reporter for one command invocation.
func NewReporter(commandID, commandType string, sinks []Sink, opts ...Option) *Reporter {
	r := &Reporter{
		commandID:   commandID,
		commandType: commandType,
		sinks:       sinks,
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// CommandID returns the ID threaded through every event of this reporter.
func (r *Reporter) CommandID() string { return r.commandID }

// Emit sends one event, filling in command identity and timestamp and
// clamping progress to be non-decreasing.
func (r *Reporter) Emit(ctx context.Context, ev Event) {
	ev.CommandID = r.commandID
	ev.CommandType = r.commandType
	ev.Timestamp = r.now()

	r.mu.Lock()
	if ev.Progress < r.last {
		ev.Progress = r.last
	}
	r.last = ev.Progress
	r.mu.Unlock()

	for _, s := range r.sinks {
		if err := s.Send(ctx, ev); err != nil {
			r.logger.Warn("progress sink delivery failed",
				"command_id", r.commandID, "status", ev.Status, "error", err)
		}
	}
}

// Started emits the started event at 0%.
func (r *Reporter) Started(ctx context.Context, total int, msg string) {
	r.Emit(ctx, Event{Status: StatusStarted, Progress: 0, TotalItems: total, Message: msg})
}

// Completed emits the terminal completed event at 100%.
func (r *Reporter) Completed(ctx context.Context, total, processed int, payload any, msg string) {
	r.Emit(ctx, Event{
		Status: StatusCompleted, Progress: 100,
		TotalItems: total, ProcessedItems: processed,
		Payload: payload, Message: msg,
	})
}

// Error emits the terminal error event. Progress stays wherever it was.
func (r *Reporter) Error(ctx context.Context, msg string) {
	r.mu.Lock()
	p := r.last
	r.mu.Unlock()
	r.Emit(ctx, Event{Status: StatusError, Progress: p, Message: msg})
}

// Stdout is a Sink writing JSON lines to an io.Writer (default os.Stdout).
type Stdout struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewStdout creates a Stdout sink. If w is nil, os.Stdout is used.
func NewStdout(w io.Writer) *Stdout {
	if w == nil {
		w = os.Stdout
	}
	return &Stdout{enc: json.NewEncoder(w)}
}

// Send writes the event as one JSON line.
func (s *Stdout) Send(_ context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(envelope{Type: "command_progress", Data: ev})
}

type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Callback is an in-process Sink for tests and embedding — zero serialisation.
type Callback func(ctx context.Context, ev Event) error

// Send invokes the callback.
func (f Callback) Send(ctx context.Context, ev Event) error { return f(ctx, ev) }

// Collector is a Sink that records every event it receives, for tests.
type Collector struct {
	mu     sync.Mutex
	events []Event
}

// Send records the event.
func (c *Collector) Send(_ context.Context, ev Event) error {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
	return nil
}

// Events returns a copy of everything recorded so far.
func (c *Collector) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}
