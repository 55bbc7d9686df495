package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	appcfg "github.com/park285/chess-live/internal/config"
	"github.com/park285/chess-live/internal/obslog"
	"github.com/park285/chess-live/internal/ops"
	"github.com/park285/chess-live/internal/oracle"
	"github.com/park285/chess-live/internal/session"
	"github.com/park285/chess-live/internal/web"
	"github.com/park285/chess-live/internal/ws"
)

func main() {
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	cfg, err := appcfg.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logger.Fatal("config_error", zap.Error(err))
	}

	reg := session.NewRegistry(logger)
	hub := ws.NewHub(reg, ws.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		PingInterval:   time.Duration(cfg.PingIntervalSec) * time.Second,
		SendBuffer:     cfg.SendBufferSize,
	}, logger)
	pipe := session.NewPipeline(reg, oracle.NewEngine(), hub, logger)
	hub.AttachPipeline(pipe)

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           web.Handler(hub),
		ReadHeaderTimeout: 10 * time.Second,
	}
	opsSrv := ops.New(cfg.OpsAddr, reg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http_listen", zap.String("addr", cfg.ListenAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if cfg.OpsAddr != "" {
		g.Go(opsSrv.Run)
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
		_ = opsSrv.Shutdown()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server_error", zap.Error(err))
	}
	logger.Info("shutdown_complete")
}
