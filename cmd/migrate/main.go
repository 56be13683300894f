// migrate applies the embedded SQL migrations: go run ./cmd/migrate -direction up|down.
package main

import (
	"flag"
	"fmt"
	"os"

	"employee-management/backend/internal/config"
	"employee-management/backend/internal/db/migrate"
	"employee-management/backend/internal/logs"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logs.Init(logs.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if cfg.DatabaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is not set; create a .env or set DATABASE_URL")
		os.Exit(1)
	}

	if err := migrate.Run(cfg.DatabaseURL, *direction); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
	version, dirty, err := migrate.Version(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Warn("read migration version")
		return
	}
	log.WithField("direction", *direction).WithField("version", version).WithField("dirty", dirty).Info("migrations done")
}
