package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mapnav-server/config"
	"mapnav-server/db"
	"mapnav-server/handlers"
	"mapnav-server/hoster"
	"mapnav-server/logging"
	"mapnav-server/mapdata"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("error loading config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.SetupLogger(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		slog.Error("error setting up logger", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)
	defer logging.CloseFile()

	if err := db.Connect(); err != nil {
		slog.Error("error initializing database", "error", err)
		os.Exit(1)
	}

	if err := db.MigrationsUp(); err != nil {
		slog.Error("error running migrations", "error", err)
		os.Exit(1)
	}

	mapIndex := mapdata.NewIndex()
	if err := mapIndex.LoadDir(cfg.MapPackageDir); err != nil {
		slog.Error("error loading map package", "dir", cfg.MapPackageDir, "error", err)
		os.Exit(1)
	}
	slog.Info("loaded map package", "package", mapIndex.Package().Name, "levels", len(mapIndex.Levels()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := mapIndex.Watch(ctx, cfg.MapPackageDir, logger); err != nil {
			slog.Error("map package watcher stopped", "error", err)
		}
	}()

	var hosterClient hoster.Client
	switch cfg.Hoster.Name {
	case "":
		slog.Info("no hoster configured, edit proposals run in manual fallback mode")
	case "github":
		hosterClient = hoster.NewGitHub(hoster.GitHubConfig{
			Title:          cfg.Hoster.Title,
			BaseUrl:        cfg.Hoster.BaseUrl,
			ApiUrl:         cfg.Hoster.ApiUrl,
			ClientId:       cfg.Hoster.ClientId,
			ClientSecret:   cfg.Hoster.ClientSecret,
			RedirectUrl:    cfg.Hoster.RedirectUrl,
			RequiredScopes: cfg.Hoster.Scopes,
		})
		slog.Info("hoster configured", "hoster", cfg.Hoster.Name)
	default:
		slog.Error("unsupported hoster", "hoster", cfg.Hoster.Name)
		os.Exit(1)
	}

	handlers.Setup(hosterClient, mapIndex, time.Duration(cfg.HosterTimeoutSeconds)*time.Second, cfg.ProposalPageUrl)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: routes(),
	}

	go func() {
		slog.Info("started server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigTermChan := make(chan os.Signal, 1)
	signal.Notify(sigTermChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigTermChan

	slog.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("error shutting down server", "error", err)
	}
}
