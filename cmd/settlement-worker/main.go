// Command settlement-worker settles payment confirmations delivered through RabbitMQ.
//
// With -publish it instead reads one JSON payment confirmation from stdin and
// enqueues it, which is how provider callbacks and manual replays reach the queue.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"lifelessons-backend-go/internal/config"
	"lifelessons-backend-go/internal/core"
	"lifelessons-backend-go/internal/db"
	"lifelessons-backend-go/internal/models"
	"lifelessons-backend-go/internal/worker"
	"lifelessons-backend-go/pkg/messagequeue"
)

const (
	prefetch = 8
	// unknownPayerDelay is how long a confirmation for a payer without a user
	// record waits before its single retry.
	unknownPayerDelay = 30 * time.Second
)

func main() {
	publish := flag.Bool("publish", false, "read a payment confirmation from stdin and enqueue it")
	flag.Parse()

	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load application configuration: %v", err)
	}

	var logger *zap.Logger
	if appConfig.IsRelease() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer logger.Sync()

	if appConfig.RabbitMQURL == "" {
		logger.Fatal("RABBITMQ_URL is required")
	}
	queue, err := messagequeue.NewRabbitMQService(messagequeue.NewRabbitMQServiceConfig{
		URL:      appConfig.RabbitMQURL,
		Prefetch: prefetch,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer queue.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *publish {
		if err := publishFrom(ctx, os.Stdin, queue, appConfig.SettlementQueue); err != nil {
			logger.Fatal("Failed to publish payment confirmation", zap.Error(err))
		}
		logger.Info("Payment confirmation enqueued", zap.String("queue", appConfig.SettlementQueue))
		return
	}

	initCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := db.InitFirestore(initCtx, appConfig, logger); err != nil {
		logger.Fatal("CRITICAL_ERROR: Failed to initialize Firestore", zap.Error(err))
	}
	client := db.GetFirestoreClient()
	defer client.Close()

	billingService := core.NewBillingService(
		db.NewFirestoreUserRepository(client),
		db.NewFirestorePaymentRepository(client),
		nil,
		logger,
	)

	logger.Info("Settlement worker started", zap.String("queue", appConfig.SettlementQueue))
	err = queue.Consume(ctx, appConfig.SettlementQueue, worker.SettlementHandler(billingService, logger, unknownPayerDelay))
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("Settlement consumer stopped", zap.Error(err))
	}
	logger.Info("Settlement worker exiting")
}

// publishFrom decodes a single confirmation from r and publishes it to queueName.
// The message is validated before it is sent so a typo never reaches the consumer.
func publishFrom(ctx context.Context, r io.Reader, mq messagequeue.MessageQueue, queueName string) error {
	var confirmation models.PaymentConfirmation
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&confirmation); err != nil {
		return err
	}
	if confirmation.CallerEmail == "" || confirmation.TransactionID == "" {
		return errors.New("callerEmail and transactionId are required")
	}
	body, err := json.Marshal(confirmation)
	if err != nil {
		return err
	}
	return mq.Publish(ctx, queueName, body)
}
