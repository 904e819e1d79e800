package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kaayakalpa/healthfinder/internal/adapters/database"
	"github.com/kaayakalpa/healthfinder/internal/adapters/search"
	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
	"github.com/kaayakalpa/healthfinder/internal/infrastructure/clients/postgres"
	"github.com/kaayakalpa/healthfinder/internal/infrastructure/clients/typesense"
	"github.com/kaayakalpa/healthfinder/internal/infrastructure/observability"
	"github.com/kaayakalpa/healthfinder/pkg/config"
	"github.com/kaayakalpa/healthfinder/pkg/secrets"
)

func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "drop the centers collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if result, err := secrets.Apply(ctx, secrets.VaultConfigFromEnv("")); err != nil {
		log.Fatal().Err(err).Msg("failed to load secrets from Vault")
	} else if result.Loaded > 0 {
		log.Info().Int("loaded", result.Loaded).Str("path", result.Path).Msg("secrets loaded from Vault")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	observability.InitLogger("healthfinder-indexer", cfg.Server.Env)

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}
	var interval time.Duration
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil || interval <= 0 {
			log.Fatal().Str("interval", intervalValue).Msg("interval must be a positive duration")
		}
	}
	reset = reset || os.Getenv("RESET_TYPESENSE") == "true"

	for {
		if err := indexOnce(ctx, cfg, reset); err != nil {
			log.Error().Err(err).Msg("reindex failed")
		}
		if interval <= 0 {
			return
		}
		reset = false
		log.Info().Dur("next_in", interval).Msg("reindex complete")

		select {
		case <-ctx.Done():
			log.Info().Msg("indexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

// indexOnce pushes every approved center into the search collection
func indexOnce(ctx context.Context, cfg *config.Config, reset bool) error {
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}

	if reset {
		log.Warn().Str("collection", typesense.CentersCollection).Msg("dropping search collection")
		if _, err := tsClient.Client().Collection(typesense.CentersCollection).Delete(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to drop collection")
		}
	}
	if err := tsClient.InitSchema(ctx); err != nil {
		return err
	}

	approved, err := database.NewCenterAdapter(pgClient).ListByStatus(ctx, entities.CenterStatusApproved)
	if err != nil {
		return err
	}

	index := search.NewTypesenseAdapter(tsClient)
	indexed := 0
	for _, center := range approved {
		if err := index.Index(ctx, center); err != nil {
			log.Warn().Err(err).Str("center_id", center.ID).Msg("failed to index center")
			continue
		}
		indexed++
	}
	log.Info().Int("indexed", indexed).Int("approved", len(approved)).Msg("center index rebuilt")
	return nil
}
