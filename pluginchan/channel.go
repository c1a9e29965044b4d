// CLAUDE:SUMMARY WebSocket channel to the design-tool plugin — snapshot intake, mutation write-through, ack correlation.
// Package pluginchan carries the channel between canvasqa and the companion
// plugin running inside the design tool. The plugin connects out to us,
// pushes document snapshots and selection changes, and executes the mutation
// ops we forward. One plugin connection at a time; a new connect replaces the
// previous one.
package pluginchan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hazyhaar/canvasqa/canvas"
	"github.com/hazyhaar/canvasqa/idgen"
	"github.com/hazyhaar/canvasqa/progress"
)

// ErrNotConnected is returned when a mutation is requested while no plugin
// connection is live. Read commands keep working against the mirror.
var ErrNotConnected = errors.New("pluginchan: plugin not connected")

// Message types on the wire.
const (
	typeSnapshot  = "snapshot"
	typeSelection = "selection"
	typeApply     = "apply"
	typeAck       = "ack"
	typeProgress  = "command_progress"
)

// envelope is the wire frame. Payload is interpreted per Type.
type envelope struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ack is the plugin's per-op reply.
type ack struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type selectionPayload struct {
	IDs []string `json:"ids"`
}

const (
	defaultCallTimeout = 10 * time.Second
	outboundBuffer     = 64
	writeTimeout       = 5 * time.Second
)

// conn is one live plugin connection with its single writer goroutine.
type conn struct {
	ws   *websocket.Conn
	out  chan envelope
	done chan struct{}
	once sync.Once
}

func (c *conn) close() {
	c.once.Do(func() {
		close(c.done)
		c.ws.Close()
	})
}

// Channel owns the plugin connection and implements canvas.Host by
// forwarding mutation ops and mirroring acknowledged ones. It also
// implements progress.Sink so command_progress events reach the plugin UI.
type Channel struct {
	doc         *canvas.Document
	mirror      *canvas.Loopback
	logger      *slog.Logger
	newID       idgen.Generator
	callTimeout time.Duration

	mu      sync.Mutex
	current *conn
	pending map[string]chan ack
}

// Option configures a Channel.
type Option func(*Channel)

// WithLogger sets the channel logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Channel) { c.logger = l }
}

// WithCallTimeout bounds how long Apply waits for a plugin ack.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Channel) { c.callTimeout = d }
}

// WithIDGenerator sets the message-ID generator (tests).
func WithIDGenerator(gen idgen.Generator) Option {
	return func(c *Channel) { c.newID = idgen.Prefixed("msg_", gen) }
}

// New creates a Channel feeding the given document mirror.
func New(doc *canvas.Document, opts ...Option) *Channel {
	c := &Channel{
		doc:         doc,
		mirror:      &canvas.Loopback{Doc: doc},
		logger:      slog.Default(),
		newID:       idgen.Prefixed("msg_", idgen.Default),
		callTimeout: defaultCallTimeout,
		pending:     make(map[string]chan ack),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Connected reports whether a plugin connection is currently live.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

// attach installs a new connection, displacing any previous one.
func (c *Channel) attach(ws *websocket.Conn) *conn {
	nc := &conn{
		ws:   ws,
		out:  make(chan envelope, outboundBuffer),
		done: make(chan struct{}),
	}
	c.mu.Lock()
	old := c.current
	c.current = nc
	c.mu.Unlock()
	if old != nil {
		c.logger.Info("plugin reconnected, closing previous connection")
		old.close()
	}
	go c.writePump(nc)
	return nc
}

// detach clears the connection if it is still the current one.
func (c *Channel) detach(nc *conn) {
	c.mu.Lock()
	if c.current == nc {
		c.current = nil
	}
	c.mu.Unlock()
	nc.close()
}

func (c *Channel) writePump(nc *conn) {
	for {
		select {
		case env := <-nc.out:
			nc.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := nc.ws.WriteJSON(env); err != nil {
				c.logger.Warn("plugin write failed", "type", env.Type, "error", err)
				c.detach(nc)
				return
			}
		case <-nc.done:
			return
		}
	}
}

// readLoop consumes inbound frames until the connection dies.
func (c *Channel) readLoop(nc *conn) {
	defer c.detach(nc)
	for {
		var env envelope
		if err := nc.ws.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn("plugin read failed", "error", err)
			}
			return
		}
		c.handle(env)
	}
}

func (c *Channel) handle(env envelope) {
	switch env.Type {
	case typeSnapshot:
		if err := c.doc.LoadJSON(env.Payload); err != nil {
			c.logger.Error("snapshot load failed", "error", err)
			return
		}
		c.logger.Info("document snapshot loaded")
	case typeSelection:
		var sel selectionPayload
		if err := json.Unmarshal(env.Payload, &sel); err != nil {
			c.logger.Warn("selection payload malformed", "error", err)
			return
		}
		c.doc.SetSelection(sel.IDs)
	case typeAck:
		var a ack
		if err := json.Unmarshal(env.Payload, &a); err != nil {
			c.logger.Warn("ack payload malformed", "id", env.ID, "error", err)
			return
		}
		c.mu.Lock()
		ch, ok := c.pending[env.ID]
		delete(c.pending, env.ID)
		c.mu.Unlock()
		if ok {
			ch <- a
		}
	default:
		c.logger.Warn("unknown message type", "type", env.Type)
	}
}

// enqueue hands an envelope to the writer. It never blocks; a full buffer
// means the plugin has stopped draining and the frame is dropped.
func (c *Channel) enqueue(env envelope) error {
	c.mu.Lock()
	nc := c.current
	c.mu.Unlock()
	if nc == nil {
		return ErrNotConnected
	}
	select {
	case nc.out <- env:
		return nil
	default:
		return fmt.Errorf("pluginchan: outbound buffer full, dropping %s", env.Type)
	}
}

// Apply forwards one mutation op to the plugin, waits for its ack, and on
// success applies the same op to the mirror so both sides stay aligned.
func (c *Channel) Apply(ctx context.Context, op canvas.Op) error {
	payload, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("pluginchan: marshal op: %w", err)
	}

	id := c.newID()
	reply := make(chan ack, 1)
	c.mu.Lock()
	c.pending[id] = reply
	c.mu.Unlock()

	if err := c.enqueue(envelope{ID: id, Type: typeApply, Payload: payload}); err != nil {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return err
	}

	select {
	case a := <-reply:
		if !a.Success {
			return fmt.Errorf("pluginchan: %s rejected: %s", op.Kind, a.Error)
		}
		return c.mirror.Apply(ctx, op)
	case <-ctx.Done():
		c.dropPending(id)
		return ctx.Err()
	case <-time.After(c.callTimeout):
		c.dropPending(id)
		return fmt.Errorf("pluginchan: %s timed out after %s", op.Kind, c.callTimeout)
	}
}

func (c *Channel) dropPending(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// Send implements progress.Sink: command_progress events are broadcast to
// the plugin so it can render progress in its UI. No ack; best-effort.
func (c *Channel) Send(_ context.Context, ev progress.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("pluginchan: marshal progress: %w", err)
	}
	if err := c.enqueue(envelope{Type: typeProgress, Payload: payload}); err != nil {
		if errors.Is(err, ErrNotConnected) {
			return nil // no plugin, nothing to render
		}
		return err
	}
	return nil
}
