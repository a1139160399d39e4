package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alnah/go-html2pdf/internal/hints"
	"github.com/alnah/go-html2pdf/internal/server"
)

// runServe starts the HTTP service and blocks until ctx is canceled, then
// stops the server before closing the engine pool.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(flags.common.config, env)
	if err != nil {
		return err
	}
	if flags.host != "" {
		cfg.Server.Host = flags.host
	}
	if flags.port != 0 {
		cfg.Server.Port = flags.port
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := newLogger(cfg.Log, flags.common.verbose)
	if err != nil {
		return usageError("logger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	undo := setMaxProcs(log)
	defer undo()
	warnUnknownEnvVars(log, env)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	renderer, pool := buildRenderer(cfg, log, env)
	defer pool.Close()

	srv := server.NewHTTPServer(cfg, server.New(cfg, renderer,
		server.WithLogger(log),
		server.WithVersion(Version),
	).Handler())

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("%w: %v%s", ErrListen, err, hints.ForPortInUse(srv.Addr))
	}

	log.Info("PDF service started",
		zap.String("addr", ln.Addr().String()),
		zap.String("version", Version),
		zap.String("environment", cfg.Server.Environment),
		zap.Bool("auth", cfg.AuthEnabled()),
		zap.Strings("cors_origins", cfg.CORS.AllowedOrigins),
	)

	return serveUntilDone(ctx, srv, ln, cfg.Server.ShutdownTimeout.Std(), log)
}

// serveUntilDone runs srv on ln until ctx is done, then shuts it down within
// timeout.
func serveUntilDone(ctx context.Context, srv *http.Server, ln net.Listener, timeout time.Duration, log *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("graceful shutdown incomplete", zap.Error(err))
		_ = srv.Close()
	}
	<-errCh
	log.Info("server stopped")
	return nil
}
