// Package worker holds the queue consumers that run outside the HTTP server.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"lifelessons-backend-go/internal/core"
	"lifelessons-backend-go/internal/models"
	"lifelessons-backend-go/pkg/messagequeue"
)

// SettlementHandler settles PaymentConfirmation events read from the queue.
//
// Settled and not-yet-paid confirmations are acknowledged. Server errors are
// requeued; the message ID keys the payment record, so a retry of the same
// delivery never appends a second one. Malformed and invalid messages are
// rejected. A payer without a user record may still be signing up: the first
// delivery is requeued after unknownPayerDelay, a redelivery is rejected.
func SettlementHandler(billing core.BillingService, logger *zap.Logger, unknownPayerDelay time.Duration) messagequeue.Handler {
	return func(ctx context.Context, msg messagequeue.Message) messagequeue.Outcome {
		var confirmation models.PaymentConfirmation
		if err := json.Unmarshal(msg.Body, &confirmation); err != nil {
			logger.Error("Rejecting malformed payment confirmation", zap.Error(err), zap.ByteString("body", msg.Body))
			return messagequeue.Reject
		}
		confirmation.DeliveryID = msg.ID

		fields := []zap.Field{
			zap.String("message_id", msg.ID),
			zap.String("email", confirmation.CallerEmail),
			zap.String("transaction_id", confirmation.TransactionID),
		}
		if msg.ID == "" {
			logger.Warn("Payment confirmation has no message id; retries will append records", fields...)
		}

		result, err := billing.Settle(ctx, confirmation)
		switch {
		case err == nil && result.Settled:
			logger.Info("Payment confirmation settled", fields...)
			return messagequeue.Ack
		case err == nil:
			logger.Info("Payment confirmation not settled", append(fields, zap.String("reason", result.Message))...)
			return messagequeue.Ack
		case errors.Is(err, core.ErrInvalidInput):
			logger.Warn("Rejecting payment confirmation", append(fields, zap.Error(err))...)
			return messagequeue.Reject
		case errors.Is(err, core.ErrNotFound):
			if msg.Redelivered {
				logger.Error("Rejecting payment confirmation for unknown payer; replay it once the user exists",
					append(fields, zap.Error(err))...)
				return messagequeue.Reject
			}
			logger.Warn("Payer not found, requeueing once", append(fields, zap.Duration("delay", unknownPayerDelay))...)
			wait(ctx, unknownPayerDelay)
			return messagequeue.Requeue
		default:
			logger.Error("Payment settlement failed, requeueing", append(fields, zap.Error(err))...)
			return messagequeue.Requeue
		}
	}
}

func wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
