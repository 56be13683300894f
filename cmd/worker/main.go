// Worker consumes activity events from Kafka and pushes them to Loki, and reaps expired refresh sessions
// and reset tokens on SESSION_REAP_SCHEDULE. Set KAFKA_BROKERS, ACTIVITY_KAFKA_TOPIC, KAFKA_GROUP_ID,
// LOKI_URL and DATABASE_URL. Without brokers only the reaper runs.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/segmentio/kafka-go"

	"employee-management/backend/internal/config"
	"employee-management/backend/internal/db"
	"employee-management/backend/internal/logs"
	principalrepo "employee-management/backend/internal/principal/repository"
	sessionrepo "employee-management/backend/internal/session/repository"
	"employee-management/backend/internal/telemetry/loki"
	"employee-management/backend/internal/worker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "worker:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log := logs.Init(logs.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}).WithField("component", "worker")
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer conn.Close()

	reaper := worker.NewReaper(sessionrepo.NewPostgresRepository(conn), principalrepo.NewPostgresRepository(conn))
	c := cron.New()
	if _, err := reaper.Schedule(ctx, c, cfg.SessionReapSchedule); err != nil {
		return fmt.Errorf("reaper schedule %q: %w", cfg.SessionReapSchedule, err)
	}
	c.Start()
	defer func() { <-c.Stop().Done() }()
	log.WithField("schedule", cfg.SessionReapSchedule).Info("reaper scheduled")

	brokers := cfg.KafkaBrokersList()
	if len(brokers) == 0 {
		log.Info("KAFKA_BROKERS not set; activity forwarding disabled")
		<-ctx.Done()
		return nil
	}
	if cfg.LokiURL == "" {
		return fmt.Errorf("LOKI_URL is required when KAFKA_BROKERS is set")
	}
	lokiClient, err := loki.NewClient(cfg.LokiURL, &http.Client{Timeout: 15 * time.Second})
	if err != nil {
		return fmt.Errorf("loki: %w", err)
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    cfg.ActivityKafkaTopic,
		GroupID:  cfg.KafkaGroupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
		MaxWait:  time.Second,
	})
	defer reader.Close()

	log.WithField("topic", cfg.ActivityKafkaTopic).WithField("group", cfg.KafkaGroupID).
		WithField("loki", cfg.LokiURL).Info("forwarding activity events")
	err = worker.NewForwarder(reader, lokiClient).Run(ctx)
	log.Info("stopped")
	return err
}
