// Package ops exposes a small operational HTTP surface on its own listener:
// liveness plus a JSON snapshot of the current session.
package ops

import (
	"encoding/json"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/chess-live/internal/session"
)

type Server struct {
	addr   string
	reg    *session.Registry
	logger *zap.Logger
	srv    *fasthttp.Server
}

func New(addr string, reg *session.Registry, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{addr: addr, reg: reg, logger: logger}
	s.srv = &fasthttp.Server{
		Handler: s.handle,
		Name:    "chess-live-ops",
	}
	return s
}

// Run blocks serving until Shutdown. A no-op when no address is configured.
func (s *Server) Run() error {
	if s.addr == "" {
		return nil
	}
	s.logger.Info("ops_listen", zap.String("addr", s.addr))
	return s.srv.ListenAndServe(s.addr)
}

func (s *Server) Shutdown() error {
	if s.addr == "" {
		return nil
	}
	return s.srv.Shutdown()
}

func (s *Server) handle(ctx *fasthttp.RequestCtx) {
	switch string(ctx.Path()) {
	case "/healthz":
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	case "/status":
		snap := s.reg.SnapshotState()
		body, err := json.Marshal(snap)
		if err != nil {
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			return
		}
		ctx.SetContentType("application/json; charset=utf-8")
		ctx.SetBody(body)
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
	}
}
