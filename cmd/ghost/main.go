// cmd/ghost/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/keshon/server-ghost/internal/agent"
	"github.com/keshon/server-ghost/internal/ai"
	"github.com/keshon/server-ghost/internal/config"
	"github.com/keshon/server-ghost/internal/discord"
	"github.com/keshon/server-ghost/internal/storage"
	v "github.com/keshon/server-ghost/internal/version"
)

func main() {
	log.Printf("[INFO] Starting %v %v...", v.AppName, v.AppVersion)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.New()

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	recorder := storage.NewAsyncRecorder(store)
	defer recorder.Close()

	provider, err := ai.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	gateway := agent.NewGateway(provider, cfg.PriorityGuildID)

	bot, err := discord.NewBot(cfg)
	if err != nil {
		log.Fatal(err)
	}

	runner := agent.NewRunner(cfg, gateway, bot, recorder)
	bot.SetRunner(runner)

	errCh := make(chan error, 1)
	go func() {
		if err := bot.Run(ctx); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Printf("[INFO] Received signal %s, shutting down...\n", s)
		cancel()
	case err := <-errCh:
		if err != nil {
			log.Println("[ERR] Discord bot error:", err)
		}
		cancel()
	case <-ctx.Done():
	}

	log.Println("[INFO] Agent exited cleanly")
}
