package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/app"
	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/config"
	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/logging"
	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/web"
)

func main() {
	cfgPath := flag.String("config", "", "path to a YAML config file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	level := flag.String("log-level", "", "debug|info|warn|error (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *level != "" {
		cfg.LogLevel = *level
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer log.Sync()

	svc := app.NewService(app.WithLogger(log.Named("app")))
	opts := []web.Option{
		web.WithLogger(log.Named("http")),
		web.WithDefaults(app.Settings{Opponent: cfg.OpponentKind(), HumanSide: cfg.Side()}),
		web.WithHeartbeat(cfg.Heartbeat),
	}
	if cfg.AllowedOrigin != "" {
		opts = append(opts, web.WithCheckOrigin(web.AllowOrigin(cfg.AllowedOrigin)))
	}
	handler := web.NewServer(svc, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SessionTTL > 0 {
		go prune(ctx, svc, cfg.SessionTTL)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr), zap.String("opponent", cfg.Opponent))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
}

// prune drops idle sessions every ttl/2 until ctx is done.
func prune(ctx context.Context, svc *app.Service, ttl time.Duration) {
	t := time.NewTicker(ttl / 2)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			svc.Prune(ttl)
		}
	}
}
