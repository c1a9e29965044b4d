// CLAUDE:SUMMARY Command dispatcher wiring — bridge state, options, audit middleware, progress reporters.
// Package bridge routes incoming commands to the batch scheduler, the QA
// engine, and the locator, and exposes them as MCP tools. It is the thin
// orchestration seam between the remote caller and the document mirror; the
// hard work lives in the packages it wires together.
package bridge

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hazyhaar/canvasqa/audit"
	"github.com/hazyhaar/canvasqa/batch"
	"github.com/hazyhaar/canvasqa/canvas"
	"github.com/hazyhaar/canvasqa/idgen"
	"github.com/hazyhaar/canvasqa/kit"
	"github.com/hazyhaar/canvasqa/locator"
	"github.com/hazyhaar/canvasqa/progress"
)

// Config tunes command behaviour. Zero values fall back to defaults.
type Config struct {
	// ChunkSize is the default batch chunk size when the caller passes none.
	ChunkSize int
	// ChunkPause is the pause between batch chunks.
	ChunkPause time.Duration
	// HighlightDelay is how long a flash highlight stays before revert.
	HighlightDelay time.Duration
	// RequiredTypeface overrides the typeface rule's required family.
	RequiredTypeface string
	// Weights are the locator scoring weights.
	Weights locator.Weights
}

func (c *Config) applyDefaults() {
	if c.ChunkSize <= 0 {
		c.ChunkSize = batch.DefaultChunkSize
	}
	if c.ChunkPause <= 0 {
		c.ChunkPause = 50 * time.Millisecond
	}
	if c.HighlightDelay <= 0 {
		c.HighlightDelay = locator.DefaultRevertDelay
	}
	if c.Weights == (locator.Weights{}) {
		c.Weights = locator.DefaultWeights()
	}
}

// Bridge holds the wiring for one canvasqa instance.
type Bridge struct {
	doc    *canvas.Document
	host   canvas.Host
	store  *audit.Store // nil disables audit and report export
	sinks  []progress.Sink
	logger *slog.Logger
	newID  idgen.Generator
	cfg    Config
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the bridge logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bridge) { b.logger = l }
}

// WithAudit attaches an audit store for command rows and saved reports.
func WithAudit(s *audit.Store) Option {
	return func(b *Bridge) { b.store = s }
}

// WithProgressSinks sets the sinks receiving command_progress events.
func WithProgressSinks(sinks ...progress.Sink) Option {
	return func(b *Bridge) { b.sinks = sinks }
}

// WithIDGenerator sets the command-ID generator (tests).
func WithIDGenerator(gen idgen.Generator) Option {
	return func(b *Bridge) { b.newID = idgen.Prefixed("cmd_", gen) }
}

// New creates a Bridge over a document mirror and its host boundary.
func New(doc *canvas.Document, host canvas.Host, cfg Config, opts ...Option) *Bridge {
	cfg.applyDefaults()
	b := &Bridge{
		doc:    doc,
		host:   host,
		logger: slog.Default(),
		newID:  idgen.Prefixed("cmd_", idgen.Default),
		cfg:    cfg,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// commandID returns the command ID for this invocation: the caller-supplied
// one when present (threaded in by the decode step), a fresh one otherwise.
func (b *Bridge) commandID(ctx context.Context) string {
	if id := kit.GetCommandID(ctx); id != "" {
		return id
	}
	return b.newID()
}

// reporter builds the progress reporter for one command invocation.
func (b *Bridge) reporter(commandID, commandType string) *progress.Reporter {
	return progress.NewReporter(commandID, commandType, b.sinks, progress.WithLogger(b.logger))
}

// auditMiddleware records every invocation of the named command. Audit
// failures are swallowed inside the store; the command result is untouched.
func (b *Bridge) auditMiddleware(command string) kit.Middleware {
	return func(next kit.Endpoint) kit.Endpoint {
		return func(ctx context.Context, req any) (any, error) {
			if b.store == nil {
				return next(ctx, req)
			}
			start := time.Now()
			resp, err := next(ctx, req)

			params, merr := json.Marshal(req)
			if merr != nil {
				params = []byte("{}")
			}
			rec := audit.CommandRecord{
				CommandID: kit.GetCommandID(ctx),
				Command:   command,
				Params:    string(params),
				Success:   err == nil,
				Duration:  time.Since(start),
			}
			if err != nil {
				rec.Error = err.Error()
			}
			b.store.LogCommand(ctx, rec)
			return resp, err
		}
	}
}
