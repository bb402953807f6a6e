// Package main is the entry point for the raid-api CLI
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shuffleraid/raid-api/internal/config"
	"github.com/shuffleraid/raid-api/internal/engine"
	"github.com/shuffleraid/raid-api/internal/narrative"
	"github.com/shuffleraid/raid-api/internal/orchestrators/raid"
	"github.com/shuffleraid/raid-api/internal/pkg/clock"
	"github.com/shuffleraid/raid-api/internal/pkg/idgen"
	"github.com/shuffleraid/raid-api/internal/pkg/roller"
	"github.com/shuffleraid/raid-api/internal/realtime"
	redisclient "github.com/shuffleraid/raid-api/internal/redis"
	raidsession "github.com/shuffleraid/raid-api/internal/repositories/raid_session"
)

var rootCmd = &cobra.Command{
	Use:   "raid-api",
	Short: "Cooperative raid session service",
	Long:  `raid-api runs and joins turn-based raid sessions synchronized through a shared Redis document.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(hostCmd)
	rootCmd.AddCommand(watchCmd)
}

// app bundles everything a command needs after wiring
type app struct {
	cfg     *config.Config
	service raid.Service
	feed    realtime.Feed
}

// buildApp wires the service from environment configuration
func buildApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	client, err := redisclient.NewClient(cfg.RedisAddr, &redisclient.Options{UseTLS: cfg.RedisTLS})
	if err != nil {
		return nil, err
	}

	clk := clock.New()
	repo, err := raidsession.NewRedisRepository(&raidsession.Config{
		Client: client,
		Clock:  clk,
		TTL:    cfg.SessionTTL,
	})
	if err != nil {
		return nil, err
	}

	feed, err := realtime.NewRedisFeed(&realtime.Config{Client: client})
	if err != nil {
		return nil, err
	}

	seed := cfg.RandomSeed
	if seed == 0 {
		seed = clk.Now().UnixNano()
	}
	eng, err := engine.New(&engine.Config{Roller: roller.NewSeeded(seed)})
	if err != nil {
		return nil, err
	}

	var describer narrative.Describer
	if cfg.OpenAIAPIKey != "" {
		describer, err = narrative.NewOpenAIDescriber(&narrative.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
		})
		if err != nil {
			return nil, err
		}
	} else {
		describer = narrative.NewTemplated()
	}

	service, err := raid.NewOrchestrator(&raid.Config{
		SessionRepo: repo,
		Engine:      eng,
		Feed:        feed,
		CodeGen:     idgen.NewCode(),
		Clock:       clk,
		Describer:   describer,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Wired raid service",
		"redis_addr", cfg.RedisAddr,
		"narration", cfg.OpenAIAPIKey != "")
	return &app{cfg: cfg, service: service, feed: feed}, nil
}
