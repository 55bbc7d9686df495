// Package ws is the connection gateway: it accepts WebSocket clients,
// assigns each a role against the session registry, feeds move frames into
// the pipeline, and fans broadcasts out over independent per-client queues.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/park285/chess-live/internal/session"
	"github.com/park285/chess-live/pkg/wire"
)

// Options tunes the gateway; zero values fall back to defaults.
type Options struct {
	AllowedOrigins []string
	PingInterval   time.Duration
	SendBuffer     int
}

const (
	defaultPingInterval = 15 * time.Second
	defaultSendBuffer   = 64
)

// Client is one connected party. Its outbound queue is buffered and written
// by a dedicated goroutine so a slow socket never blocks a broadcast.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub is the single gateway instance. It implements session.Broadcaster.
type Hub struct {
	reg    *session.Registry
	pipe   *session.Pipeline
	logger *zap.Logger

	allowOrigins map[string]bool
	pingInterval time.Duration
	sendBuf      int

	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub(reg *session.Registry, opts Options, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	allow := map[string]bool{}
	for _, o := range opts.AllowedOrigins {
		if o != "" {
			allow[o] = true
		}
	}
	ping := opts.PingInterval
	if ping <= 0 {
		ping = defaultPingInterval
	}
	buf := opts.SendBuffer
	if buf <= 0 {
		buf = defaultSendBuffer
	}
	return &Hub{
		reg:          reg,
		logger:       logger,
		allowOrigins: allow,
		pingInterval: ping,
		sendBuf:      buf,
		clients:      map[*Client]struct{}{},
	}
}

// AttachPipeline wires the move pipeline. The hub and pipeline reference
// each other (the pipeline broadcasts through the hub), so the hub is built
// first and the pipeline attached after.
func (h *Hub) AttachPipeline(p *session.Pipeline) { h.pipe = p }

// Broadcast delivers one event to every connected client, fire-and-forget.
// Clients whose queue is full are skipped, never waited on.
func (h *Hub) Broadcast(ev wire.Envelope) {
	b := ev.Encode()
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			h.logger.Warn("broadcast_drop", zap.String("conn_id", c.id), zap.String("event", ev.T))
		}
	}
}

// ServeWS upgrades the request, assigns a role, and runs the read loop until
// the client goes away. Disconnect frees any seat the client held.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin != "" && len(h.allowOrigins) > 0 && !h.allowOrigins[origin] {
		http.Error(w, "forbidden origin", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		h.logger.Warn("ws_accept_error", zap.Error(err))
		return
	}

	client := &Client{id: uuid.NewString(), conn: conn, send: make(chan []byte, h.sendBuf)}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	role := h.reg.AssignRole(client.id)
	h.logger.Info("ws_connect", zap.String("conn_id", client.id), zap.String("role", string(role)))

	// Role notification goes only to this connection.
	if side, ok := role.Side(); ok {
		h.sendTo(client, wire.PlayerRole(side))
	} else {
		h.sendTo(client, wire.SpectatorRole())
	}

	go h.writeLoop(r.Context(), client)

	for {
		_, data, err := conn.Read(r.Context())
		if err != nil {
			break
		}
		h.handleFrame(client, data)
	}

	h.mu.Lock()
	delete(h.clients, client)
	close(client.send)
	h.mu.Unlock()

	h.reg.Release(client.id)
	h.logger.Info("ws_disconnect", zap.String("conn_id", client.id))
}

func (h *Hub) writeLoop(ctx context.Context, c *Client) {
	ping := time.NewTicker(h.pingInterval)
	defer func() {
		ping.Stop()
		_ = c.conn.Close(websocket.StatusNormalClosure, "bye")
	}()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		case <-ping.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		}
	}
}

// handleFrame parses one inbound frame at the transport boundary. Malformed
// input never reaches the pipeline as anything but a validated request.
func (h *Hub) handleFrame(c *Client, data []byte) {
	var env wire.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		h.logger.Debug("frame_malformed", zap.String("conn_id", c.id), zap.Error(err))
		h.sendTo(c, wire.InvalidMove(wire.MoveRequest{}, string(session.RejectMalformed)))
		return
	}

	switch env.T {
	case wire.EventMove:
		req, err := wire.DecodeMoveRequest(env.D)
		if err != nil {
			h.sendTo(c, wire.InvalidMove(req, string(session.RejectMalformed)))
			return
		}
		out := h.pipe.Submit(c.id, req)
		if !out.Accepted {
			// Rejection notice goes to the submitter only; accepted moves
			// were already broadcast by the pipeline.
			h.sendTo(c, wire.InvalidMove(req, string(out.Reason)))
		}
	default:
		h.logger.Debug("frame_ignored", zap.String("conn_id", c.id), zap.String("type", env.T))
	}
}

func (h *Hub) sendTo(c *Client, ev wire.Envelope) {
	select {
	case c.send <- ev.Encode():
	default:
		h.logger.Warn("send_drop", zap.String("conn_id", c.id), zap.String("event", ev.T))
	}
}
