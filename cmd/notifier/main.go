package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-rental-booking.git/internal/config"
	"github.com/ariefcatur/go-rental-booking.git/internal/logx"
	"github.com/ariefcatur/go-rental-booking.git/internal/notify"
	"github.com/ariefcatur/go-rental-booking.git/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logx.New(cfg.AppEnv, "rental-notifier")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	worker := &notify.Worker{Redis: rdb, Log: logger, ServiceName: "rental-notifier"}
	consumer := notify.NewConsumer(cfg.KafkaBrokers, cfg.NotifierGroup, notify.TopicNotify, cfg.NotifierWorkers, logger)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		logger.Info("shutting down...")
		cancel()
	}()

	logger.Info("notifier consuming",
		zap.String("topic", notify.TopicNotify),
		zap.String("group", cfg.NotifierGroup),
		zap.Int("workers", cfg.NotifierWorkers))
	if err := consumer.Start(ctx, worker.HandleMessage); err != nil {
		logger.Fatal("consumer stopped", zap.Error(err))
	}
}
