// Package main is the entry point for BandBattle.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/samdwyer/bandbattle/internal/config"
	"github.com/samdwyer/bandbattle/internal/game"
	"github.com/samdwyer/bandbattle/internal/logging"
	"github.com/samdwyer/bandbattle/internal/telemetry"
)

func main() {
	balancePath := flag.String("balance", "", "YAML file overriding the default combat balance")
	seed := flag.Int64("seed", 0, "encounter seed (0 uses the balance seed or the clock)")
	flag.Parse()

	// Load .env file for local development
	// This makes HONEYCOMB_BANDBATTLE_API_KEY available
	if err := godotenv.Load(); err != nil {
		// Not fatal - env vars might be set directly
		log.Printf("Note: .env file not loaded: %v", err)
	}

	telemetry.ConfigureHoneycomb(os.LookupEnv, os.Setenv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(ctx)
	if err != nil {
		log.Printf("Warning: telemetry setup failed: %v", err)
		log.Printf("Game will run without observability")
	} else {
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Printf("Error shutting down telemetry: %v", err)
			}
		}()
	}

	bal, err := config.Load(*balancePath)
	if err != nil {
		log.Fatalf("Failed to load balance: %v", err)
	}
	if err := bal.ApplyEnv(os.LookupEnv); err != nil {
		log.Fatalf("Invalid environment: %v", err)
	}

	// The terminal UI owns the screen, so logs go to a file unless
	// BANDBATTLE_LOG_FILE says otherwise.
	if _, ok := os.LookupEnv("BANDBATTLE_LOG_FILE"); !ok {
		os.Setenv("BANDBATTLE_LOG_FILE", "bandbattle.log")
	}
	logger, err := logging.FromEnv(bal.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	g, err := game.New(game.Config{
		Balance:     bal,
		Seed:        *seed,
		Logger:      logger,
		ActionDelay: game.DefaultActionDelay,
	})
	if err != nil {
		logger.Error("failed to initialize game", zap.Error(err))
		log.Fatalf("Failed to initialize game: %v", err)
	}

	if err := g.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("game error", zap.Error(err))
		log.Fatalf("Game error: %v", err)
	}
}
