package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sonnybell/linechat/internal/audit"
	"github.com/sonnybell/linechat/internal/chat"
	"github.com/sonnybell/linechat/internal/config"
	"github.com/sonnybell/linechat/internal/game"
	"github.com/sonnybell/linechat/internal/logging"
	"github.com/sonnybell/linechat/internal/server"
	"github.com/sonnybell/linechat/internal/web"
)

func main() {
	configPath := flag.String("config", "", "path to config file (yaml or json)")
	flag.Parse()

	cfg, err := config.Load(config.LoadOptions{Path: *configPath})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	auditLog, closeAudit, err := audit.Open(cfg.Audit.Path, logger)
	if err != nil {
		logger.Error("failed to open message log", "path", cfg.Audit.Path, "error", err)
		os.Exit(1)
	}
	defer closeAudit()

	history := chat.NewHistory(cfg.History.Capacity)
	registry := chat.NewRegistry(logger)
	router := chat.NewRouter(registry, history, auditLog, logger)

	gameCfg := game.DefaultConfig()
	gameCfg.WinningScore = cfg.Game.WinningScore
	gameCfg.QuestionTimeout = cfg.Game.QuestionTimeout
	engine := game.NewEngine(router, gameCfg, logger)

	users := web.NewUserSet()
	moderator := chat.NewModerator(registry, router, logger, chat.WithExternalPresence(users))
	bridge := web.NewHandler(cfg.Server.Password, registry, router, engine, moderator, users, logger)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Mount("/", bridge.Routes())

	httpSrv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port),
		Handler:      r,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
	}

	tcpSrv := server.New(cfg.Server, registry, router, engine, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)

	go func() {
		errCh <- tcpSrv.ListenAndServe(ctx)
	}()

	go func() {
		logger.Info("web server listening", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("web server shutdown failed", "error", err)
	}
}
