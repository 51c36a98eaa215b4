// cmd/worker/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/arbiter-gg/arbiter/internal/cache"
	"github.com/arbiter-gg/arbiter/internal/chat"
	"github.com/arbiter-gg/arbiter/internal/config"
	"github.com/arbiter-gg/arbiter/internal/database"
	"github.com/arbiter-gg/arbiter/internal/models"
	"github.com/arbiter-gg/arbiter/internal/queue"
	"github.com/arbiter-gg/arbiter/internal/reminders"
	"github.com/arbiter-gg/arbiter/internal/scheduler"
)

func main() {
	database.ConnectDB()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	cfg := config.Load()

	if err := cache.ConnectRedis(); err != nil {
		log.Fatalf("redis connect failed: %v", err)
	}

	conn, err := queue.Connect(cfg.AMQPURL, logger)
	if err != nil {
		log.Fatalf("amqp connect failed: %v", err)
	}
	defer conn.Close()

	if err := queue.SetupTopology(conn); err != nil {
		log.Fatalf("queue topology setup failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store := database.LobbyStore{}
	pub := queue.NewPublisher(conn, logger)

	scanner := reminders.NewScanner(store, pub, logger)
	messenger := chat.NewClient(cfg.ChatAPIURL, os.Getenv("CHAT_BOT_TOKEN"), logger)
	sender := reminders.NewSender(store, cache.NewDeliveryLedger(), messenger, cfg.SendMaxAttempts, logger)

	// one scan consumer and one send consumer per lobby kind
	for _, kind := range models.Kinds {
		scanConsumer := queue.NewConsumer(conn, logger, queue.ConsumerConfig{
			Queue:   queue.ScanQueue(kind),
			Handler: scanner.HandleJob,
		})
		sendConsumer := queue.NewConsumer(conn, logger, queue.ConsumerConfig{
			Queue:    queue.SendQueue(kind),
			Handler:  sender.HandleJob,
			Prefetch: 4,
		})
		go func() {
			if err := scanConsumer.Start(ctx); err != nil && ctx.Err() == nil {
				logger.Errorf("scan consumer stopped: %v", err)
			}
		}()
		go func() {
			if err := sendConsumer.Start(ctx); err != nil && ctx.Err() == nil {
				logger.Errorf("send consumer stopped: %v", err)
			}
		}()
	}

	// cron trigger fanning scan jobs into the scan queues
	trigger := scheduler.NewTrigger(pub, cfg, logger)
	if err := trigger.Start(ctx); err != nil {
		log.Fatalf("scan trigger failed: %v", err)
	}
	defer trigger.Stop()

	logger.Info("worker running")
	<-ctx.Done()
	logger.Info("worker shutting down")
}
