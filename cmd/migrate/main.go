// Command migrate applies the ledger schema to the configured sqlite
// database and exits. The API server also migrates on start; this exists
// for provisioning a database ahead of first boot.
package main

import (
	"flag"

	"github.com/dvloznov/portfolio-tracker/internal/config"
	"github.com/dvloznov/portfolio-tracker/internal/ledger"
	"github.com/dvloznov/portfolio-tracker/internal/logger"
)

func main() {
	var configPath = flag.String("config", "", "directory containing config.yaml (optional)")
	flag.Parse()

	log := logger.New("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	store, err := ledger.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("Migration failed")
	}
	defer store.Close()

	log.Info().Str("path", cfg.Database.Path).Msg("Schema applied")
}
