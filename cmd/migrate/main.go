// cmd/migrate applies or rolls back the embedded schema migrations.
// Usage: migrate [up|down|status]
package main

import (
	"os"
	"time"

	"attendance/internal/config"
	"attendance/internal/infra"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL, 2)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	switch cmd {
	case "up":
		err = infra.Migrate(db)
	case "down":
		err = infra.MigrateDown(db)
	case "status":
		err = infra.MigrationStatus(db)
	default:
		log.Fatal().Str("command", cmd).Msg("unknown command, expected up, down or status")
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", cmd).Msg("migration failed")
	}
	log.Info().Str("command", cmd).Msg("done")
}
