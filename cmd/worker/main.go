package main

import (
	"log"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/config"
	"github.com/BruksfildServices01/barber-booking/internal/logger"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
)

// worker delivers the notification tasks enqueued by the API.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisQueueDB,
		},
		asynq.Config{
			Concurrency: 10,
			Logger:      zl.Sugar(),
		},
	)

	mailer := notify.LogMailer{From: cfg.EmailFrom, Log: zl}

	zl.Info("worker running", zap.String("redis", cfg.RedisAddr), zap.Int("db", cfg.RedisQueueDB))
	if err := srv.Run(notify.NewServeMux(mailer, zl)); err != nil {
		zl.Fatal("worker stopped", zap.Error(err))
	}
}
