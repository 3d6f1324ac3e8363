/*
Package main
File: main.go
Description: Server entry point. Loads the balance and airport seed, opens the
profile database, starts the real-time WebSocket hub and serves the game API.
*/

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/everforgeworks/chronoquest/internal/api"
	"github.com/everforgeworks/chronoquest/internal/config"
	"github.com/everforgeworks/chronoquest/internal/game"
	"github.com/everforgeworks/chronoquest/internal/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level, _ := cfg.SlogLevel()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	if cfg.DefaultSecret() {
		slog.Warn("CHRONOSECRET is not set; using the development secret")
	}

	// 1. Balance and airport seed from YAML
	uni, err := game.LoadUniverse(cfg.BalancePath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Profile database and airport catalog
	store, err := storage.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	catalog, err := store.LoadCatalog(ctx, uni.Balance.HomeAirport, uni.Airports)
	if err != nil {
		return err
	}
	slog.Info("airports loaded", "count", len(catalog.List()), "home", catalog.Home())

	svc := game.NewService(game.NewResolver(uni.Balance, game.NewDice()), store, catalog)

	// 3. Real-time hub
	hub := api.NewHub()
	go hub.Run()
	defer hub.Stop()

	// 4. Hot-reload: SIGHUP re-reads the balance without a restart
	go reloadOnHangup(ctx, cfg.BalancePath, svc, hub)

	// 5. Router and server
	srv := api.NewServer(svc, store, api.NewSessionStore([]byte(cfg.Secret), 24*time.Hour), hub, api.Options{
		LoginRate:  cfg.LoginRate,
		LoginBurst: cfg.LoginBurst,
		StaticDir:  cfg.StaticDir,
	})
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("CHRONOQUEST server live", "addr", cfg.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func reloadOnHangup(ctx context.Context, path string, svc *game.Service, hub *api.Hub) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sigChan:
		}

		uni, err := game.LoadUniverse(path)
		if err != nil {
			slog.Error("balance reload failed; keeping the current balance", "error", err)
			continue
		}
		if uni.Balance.HomeAirport != svc.Balance().HomeAirport {
			slog.Error("balance reload rejected: home airport cannot change at runtime",
				"current", svc.Balance().HomeAirport, "requested", uni.Balance.HomeAirport)
			continue
		}
		svc.SetBalance(uni.Balance)
		slog.Info("balance reloaded", "path", path)
		hub.Announce(api.MsgSystem, "Game balance updated", "server")
	}
}
