package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/hotelbot/config"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

// Runner is a long-running component that stops when its context is done.
type Runner interface {
	Run(ctx context.Context) error
}

// Run starts the bot and the operations HTTP server and blocks until ctx is
// canceled or one of them fails.
func Run(ctx context.Context, cfg *config.Config, bot Runner, handler http.Handler) error {
	httpServer := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	botCtx, stopBot := context.WithCancel(ctx)
	defer stopBot()

	errCh := make(chan error, 2)
	botDone := make(chan struct{})

	go func() {
		defer close(botDone)
		if err := bot.Run(botCtx); err != nil {
			errCh <- fmt.Errorf("bot: %w", err)
			return
		}
		errCh <- nil
	}()

	go func() {
		log.Info().Str("address", cfg.HTTP.Address).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var runErr error
	select {
	case runErr = <-errCh:
		if runErr == nil && ctx.Err() == nil {
			runErr = errors.New("bot stopped unexpectedly")
		}
	case <-ctx.Done():
	}

	stopBot()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	select {
	case <-botDone:
	case <-shutdownCtx.Done():
		log.Warn().Msg("bot did not stop before shutdown timeout")
	}
	return runErr
}
