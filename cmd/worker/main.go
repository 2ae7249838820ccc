package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/hotelbot/config"
	"github.com/Domenick1991/hotelbot/internal/audit"
	"github.com/Domenick1991/hotelbot/internal/kafka"
	"github.com/Domenick1991/hotelbot/internal/logger"
	"github.com/rs/zerolog/log"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadWorker(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.BookingsTopic)
	defer consumer.Close()

	recorder := audit.NewRecorder(log.Logger)

	log.Info().Str("topic", cfg.Kafka.BookingsTopic).Str("group", cfg.Kafka.GroupID).Msg("audit worker started")
	if err := consumer.Consume(ctx, recorder.Handle); err != nil {
		logger.ErrorWithStack(err)
	}
	log.Info().Interface("recorded", recorder.Counts()).Msg("audit worker stopped")
}
