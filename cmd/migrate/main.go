// migrate applies the embedded device binding schema to the IDM_PG_* database.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/tendant/devicegate/pkg/config"
	"github.com/tendant/devicegate/pkg/migrate"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	envFile := flag.String("env", ".env", "Optional .env file")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		slog.Debug("No .env file loaded", "path", *envFile, "err", err)
	}

	dbConfig := config.DatabaseConfig{}
	if err := cleanenv.ReadEnv(&dbConfig); err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}
	if err := dbConfig.Validate(); err != nil {
		slog.Error("Invalid database configuration", "err", err)
		os.Exit(1)
	}

	if err := migrate.Run(dbConfig.ToDatabaseURL(), *direction); err != nil {
		slog.Error("Migration failed", "direction", *direction, "host", dbConfig.Host, "database", dbConfig.Database, "err", err)
		os.Exit(1)
	}
}
