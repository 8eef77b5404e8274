// cmd/notifier consumes the e-mail queue filled by the API server and
// delivers each job over SMTP. Failed jobs land in the dead letter queue.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskmanager/internal/config"
	"taskmanager/internal/infra"
	"taskmanager/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	if cfg.SMTPHost == "" {
		log.Fatal().Msg("SMTP_HOST is required by the notifier")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.ReplayDeadLetters {
		n, err := worker.Requeue(ctx, rdb, worker.QueueEmail, 1000)
		if err != nil {
			log.Error().Err(err).Msg("dead letter replay failed")
		}
		log.Info().Int("jobs", n).Msg("dead letters requeued")
	} else if n, err := worker.DLQLength(ctx, rdb, worker.QueueEmail); err == nil && n > 0 {
		log.Warn().Int64("entries", n).Msg("email dead letter queue is not empty, set NOTIFIER_REPLAY_DLQ=true to retry")
	}

	pool := worker.NewPool(rdb, cfg.WorkerPoolSize, worker.NewEmailWorker(infra.NewMailer(cfg)))
	pool.Start(ctx)

	<-ctx.Done()
	log.Info().Msg("notifier shutting down…")
	pool.Wait()
	log.Info().Msg("notifier exited")
}
