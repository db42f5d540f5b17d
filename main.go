package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/ytget/leech-bot/internal/bot"
	"github.com/ytget/leech-bot/internal/config"
	"github.com/ytget/leech-bot/internal/download"
	"github.com/ytget/leech-bot/internal/httpserver"
	"github.com/ytget/leech-bot/internal/logger"
	"github.com/ytget/leech-bot/internal/platform"
	"github.com/ytget/leech-bot/internal/session"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)
	log.Info().Str("version", version).Msg("leech-bot starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := platform.CreateDirectoryIfNotExists(cfg.DownloadDir); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.DownloadDir).Msg("ensure download dir")
	}

	gateway, err := bot.NewGateway(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to Telegram")
	}
	log.Info().Str("account", gateway.Username()).Msg("authenticated")

	fetcher := download.NewHTTPFetcher(cfg.FetchTimeout)
	prober := download.NewBreakerProber(cfg.ResolverTimeout)
	tool := download.NewYTDLPTool(cfg.ToolRetries, log)
	dispatcher := download.NewService(cfg, fetcher, prober, tool, gateway, log)

	clock := session.SystemClock{}
	store := session.NewStore(clock)
	machine := session.NewMachine(cfg, store, dispatcher, gateway, clock, log)
	gateway.Attach(machine)

	httpServer := httpserver.New(cfg, log)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return httpServer.Run(ctx)
	})
	eg.Go(func() error {
		return gateway.Run(ctx)
	})
	eg.Go(func() error {
		machine.RunSweep(ctx)
		return nil
	})

	if err := eg.Wait(); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}
	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
