// outbox-relay publica en Kafka los eventos del outbox de PostgreSQL, en orden de creación.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/estoque-cd/internal/infrastructure/kafka"
	"github.com/jhoicas/estoque-cd/internal/infrastructure/metrics"
	"github.com/jhoicas/estoque-cd/internal/infrastructure/outbox"
	"github.com/jhoicas/estoque-cd/internal/infrastructure/postgres"
	"github.com/jhoicas/estoque-cd/pkg/config"
	"github.com/jhoicas/estoque-cd/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	producer := kafka.NewProducer(kafka.Config{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
	defer func() {
		if err := producer.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar productor kafka")
		}
	}()

	m := metrics.New()
	relay := outbox.NewRelay(postgres.NewOutboxRepository(pool), producer, m, log, outbox.Config{
		PollInterval: cfg.Outbox.PollInterval,
		BatchSize:    cfg.Outbox.BatchSize,
	})

	// /metrics del relay en el puerto HTTP configurado.
	srv := &http.Server{Addr: cfg.HTTP.Addr(), Handler: m.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("servidor de métricas")
		}
	}()

	if err := relay.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("iniciar relay")
	}
	log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("relay del outbox iniciado")

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida")
	if err := relay.Stop(); err != nil {
		log.Error().Err(err).Msg("detener relay")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
