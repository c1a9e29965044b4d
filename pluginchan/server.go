package pluginchan

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  64 * 1024,
	WriteBufferSize: 64 * 1024,
	// The plugin runs inside the design tool's embedded browser; the Origin
	// header there is not something we can pin.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Router returns the HTTP surface of the channel: the plugin WebSocket
// endpoint and a health probe.
func (c *Channel) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", c.handleHealthz)
	r.Get("/plugin", c.handlePlugin)
	return r
}

func (c *Channel) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":           "ok",
		"plugin_connected": c.Connected(),
	})
}

func (c *Channel) handlePlugin(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.Warn("plugin upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	c.logger.Info("plugin connected", "remote", r.RemoteAddr)
	nc := c.attach(ws)
	c.readLoop(nc)
	c.logger.Info("plugin disconnected", "remote", r.RemoteAddr)
}
