package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"watchdeck/fetch"
	"watchdeck/service"
	"watchdeck/watchlist"
	"watchdeck/web"
)

// handleTermination processes context cancellation signals or interrupt signals from the OS.
func handleTermination(ctx context.Context, cancel context.CancelFunc) {
	// Listen for interrupt signals.
	signals := []os.Signal{os.Interrupt}
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, signals...)

	// Wait for the context to be cancelled or an interrupt signal.
	for {
		select {
		case <-ctx.Done():
			return

		case <-interrupt:
			cancel()
		}
	}
}

func main() {
	var cfg Config
	err := loadConfig(&cfg, "")
	if err != nil {
		log.Printf("loading config: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var store watchlist.SymbolStorer
	if cfg.DBEndpoint != "" {
		storeLogger := zlog.With().Str("component", "watchliststore").Logger()
		rqliteStore, err := watchlist.NewStore(ctx, &watchlist.StoreConfig{
			Endpoint: cfg.DBEndpoint,
			User:     cfg.DBUser,
			Pass:     cfg.DBPass,
			Logger:   &storeLogger,
		})
		if err != nil {
			log.Printf("creating watchlist store: %v", err)
			return
		}

		store = rqliteStore
	}

	client := fetch.NewClient(&fetch.Config{
		BaseURL:     fetch.BaseURL,
		FallbackURL: fetch.FallbackURL,
	})

	svc, err := service.NewService(ctx, &service.Config{
		Symbols:         cfg.Symbols,
		RefreshInterval: time.Duration(cfg.RefreshIntervalSecs) * time.Second,
		Client:          client,
		Store:           store,
		Cancel:          cancel,
	})
	if err != nil {
		log.Printf("creating service: %v", err)
		return
	}

	server, err := web.NewServer(&web.ServerConfig{
		Listen:  cfg.Listen,
		Service: svc,
		Cancel:  cancel,
	})
	if err != nil {
		log.Printf("creating web server: %v", err)
		return
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	go handleTermination(ctx, cancel)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		svc.Run(ctx)
		wg.Done()
	}()

	go func() {
		server.Run(ctx)
		wg.Done()
	}()

	wg.Wait()
}
