package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/hotelbot/api"
	"github.com/Domenick1991/hotelbot/config"
	"github.com/Domenick1991/hotelbot/internal/bootstrap"
	"github.com/Domenick1991/hotelbot/internal/cache"
	"github.com/Domenick1991/hotelbot/internal/domain"
	"github.com/Domenick1991/hotelbot/internal/kafka"
	"github.com/Domenick1991/hotelbot/internal/logger"
	"github.com/Domenick1991/hotelbot/internal/repository"
	"github.com/Domenick1991/hotelbot/internal/service/booking"
	"github.com/Domenick1991/hotelbot/internal/service/conversation"
	"github.com/Domenick1991/hotelbot/internal/session"
	"github.com/Domenick1991/hotelbot/internal/telegram"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []booking.BookingServiceOption{
		booking.WithOperator(cfg.Telegram.AdminID),
		booking.WithProviderToken(cfg.Telegram.PaymentProviderToken),
	}
	if cfg.Telegram.AdminID == 0 {
		log.Warn().Msg("ADMIN_ID not set, paid bookings will not be forwarded to an operator")
	}
	if cfg.Telegram.PaymentProviderToken == "" {
		log.Warn().Msg("PAYMENT_PROVIDER_TOKEN not set, invoices cannot be issued")
	}

	var reader api.BookingReader
	if cfg.Database.Enabled() {
		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			logger.ErrorWithStack(err)
			log.Warn().Msg("postgres unavailable, bookings will not be persisted")
		} else {
			defer pool.Close()
			bookingRepo := repository.NewBookingRepository(pool)
			if err := bookingRepo.EnsureSchema(ctx); err != nil {
				logger.ErrorWithStack(err)
				log.Warn().Msg("could not ensure bookings table, inserts may fail")
			}
			opts = append(opts, booking.WithRepository(bookingRepo))
			reader = bookingRepo
		}
	} else {
		log.Warn().Msg("DATABASE_URL not set, bookings will not be persisted")
	}

	var sessions session.Store
	if cfg.Redis.Enabled() {
		client := cache.NewRedisClient(cfg.Redis)
		defer client.Close()
		store := cache.NewRedisSessionStore(client, cfg.Session.TTL)
		if err := store.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis not reachable yet")
		}
		sessions = store
	} else {
		store := session.NewMemoryStore(cfg.Session.TTL)
		go sweepSessions(ctx, store, cfg.Session.SweepInterval)
		sessions = store
	}

	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		opts = append(opts, booking.WithEvents(producer, cfg.Kafka.BookingsTopic))
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("connect telegram")
	}
	log.Info().Str("bot", botAPI.Self.UserName).Msg("authorized")

	prices := domain.DefaultPriceTable()
	bookingService := booking.NewBookingService(telegram.NewMessenger(botAPI), prices, opts...)
	machine := conversation.NewMachine(sessions, prices, bookingService)
	bot := telegram.NewBot(botAPI, machine, bookingService, cfg.Telegram.Workers, cfg.Telegram.PollingTimeout)

	if err := bootstrap.Run(ctx, cfg, bot, api.NewRouter(reader)); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("stopped")
}

func sweepSessions(ctx context.Context, store *session.MemoryStore, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := store.Sweep(); n > 0 {
				log.Debug().Int("evicted", n).Msg("expired sessions removed")
			}
		case <-ctx.Done():
			return
		}
	}
}
