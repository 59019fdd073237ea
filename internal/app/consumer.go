package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"timetrack/internal/config"
	"timetrack/internal/events"
	"timetrack/internal/messaging/kafka/consumer"
	"timetrack/internal/notification"
	"timetrack/internal/shared/connection"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer projects vacation status events into per-user notifications.
func RunConsumer(cfg *config.Config) error {
	logger := zap.L().Named("app.consumer")

	if cfg.Kafka.Broker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	rdb, err := connection.ConnectRedisWithRetry(cfg.Redis, cfg.Database.MaxRetries)
	if err != nil {
		return err
	}
	defer rdb.Close()

	notificationService := notification.NewService(notification.NewRepository(rdb), logger)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.Kafka.Broker},
		Topic:          events.VacationStatusTopic,
		GroupID:        cfg.Kafka.GroupID,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeVacationStatusChanged(ctx, reader, notificationService, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
