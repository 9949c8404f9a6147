package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lifelessons-backend-go/internal/core"
	"lifelessons-backend-go/internal/db/dbtest"
	"lifelessons-backend-go/internal/models"
	"lifelessons-backend-go/pkg/messagequeue"
)

func newHandler() (*dbtest.Store, messagequeue.Handler) {
	store := dbtest.NewStore()
	billing := core.NewBillingService(store.Users(), store.Payments(), nil, zap.NewNop())
	return store, SettlementHandler(billing, zap.NewNop(), 0)
}

func message(t *testing.T, id string, c models.PaymentConfirmation) messagequeue.Message {
	body, err := json.Marshal(c)
	require.NoError(t, err)
	return messagequeue.Message{ID: id, Body: body}
}

func paid(email string) models.PaymentConfirmation {
	return models.PaymentConfirmation{
		CallerEmail:     email,
		AmountPaid:      15,
		TransactionID:   "pi_1",
		PaymentStatus:   models.PaymentStatusPaid,
		TransactionType: models.TransactionTypePremiumUpgrade,
	}
}

func TestSettlementHandler_AcksSettledPayment(t *testing.T) {
	store, handle := newHandler()
	store.PutUser(models.User{Email: "a@example.com"})

	outcome := handle(context.Background(), message(t, "msg-1", paid("a@example.com")))
	assert.Equal(t, messagequeue.Ack, outcome)

	user, err := store.Users().GetByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.True(t, user.IsPremium)
	assert.Len(t, store.AllPayments(), 1)
}

func TestSettlementHandler_AcksUnpaid(t *testing.T) {
	store, handle := newHandler()
	c := paid("a@example.com")
	c.PaymentStatus = "unpaid"

	assert.Equal(t, messagequeue.Ack, handle(context.Background(), message(t, "msg-1", c)))
	assert.Empty(t, store.AllPayments())
}

func TestSettlementHandler_RejectsMalformedAndInvalid(t *testing.T) {
	_, handle := newHandler()
	ctx := context.Background()
	assert.Equal(t, messagequeue.Reject, handle(ctx, messagequeue.Message{ID: "msg-1", Body: []byte("{not json")}))
	assert.Equal(t, messagequeue.Reject, handle(ctx, message(t, "msg-2", paid("not-an-email"))))
	assert.Equal(t, messagequeue.Reject, handle(ctx, message(t, "msg-3", paid("Mallory <a@example.com>"))))
}

func TestSettlementHandler_UnknownPayerRetriedOnce(t *testing.T) {
	store, handle := newHandler()
	ctx := context.Background()
	msg := message(t, "msg-1", paid("late@example.com"))

	assert.Equal(t, messagequeue.Requeue, handle(ctx, msg))

	msg.Redelivered = true
	assert.Equal(t, messagequeue.Reject, handle(ctx, msg))
	assert.Len(t, store.AllPayments(), 1)
}

func TestSettlementHandler_UnknownPayerSettlesAfterSignUp(t *testing.T) {
	store, handle := newHandler()
	ctx := context.Background()
	msg := message(t, "msg-1", paid("late@example.com"))

	assert.Equal(t, messagequeue.Requeue, handle(ctx, msg))
	store.PutUser(models.User{Email: "late@example.com"})

	msg.Redelivered = true
	assert.Equal(t, messagequeue.Ack, handle(ctx, msg))
	assert.Len(t, store.AllPayments(), 1)
	user, err := store.Users().GetByEmail(ctx, "late@example.com")
	require.NoError(t, err)
	assert.True(t, user.IsPremium)
}

func TestSettlementHandler_RequeuesServerErrors(t *testing.T) {
	store, handle := newHandler()
	store.PutUser(models.User{Email: "a@example.com"})
	store.FailNext("payments.Create", errors.New("deadline exceeded"))

	msg := message(t, "msg-1", paid("a@example.com"))
	assert.Equal(t, messagequeue.Requeue, handle(context.Background(), msg))
	msg.Redelivered = true
	assert.Equal(t, messagequeue.Ack, handle(context.Background(), msg))
	assert.Len(t, store.AllPayments(), 1)
}

func TestSettlementHandler_RedeliveriesAppendOneRecord(t *testing.T) {
	store, handle := newHandler()
	store.PutUser(models.User{Email: "a@example.com"})
	for i := 0; i < 3; i++ {
		store.FailNext("users.MarkPremium", errors.New("unavailable"))
	}

	msg := message(t, "msg-1", paid("a@example.com"))
	var outcomes []messagequeue.Outcome
	for i := 0; i < 4; i++ {
		outcomes = append(outcomes, handle(context.Background(), msg))
		msg.Redelivered = true
	}

	assert.Equal(t, []messagequeue.Outcome{
		messagequeue.Requeue, messagequeue.Requeue, messagequeue.Requeue, messagequeue.Ack,
	}, outcomes)
	assert.Len(t, store.AllPayments(), 1)
}

func TestSettlementHandler_DistinctMessagesAppendSeparately(t *testing.T) {
	store, handle := newHandler()
	store.PutUser(models.User{Email: "a@example.com"})

	assert.Equal(t, messagequeue.Ack, handle(context.Background(), message(t, "msg-1", paid("a@example.com"))))
	assert.Equal(t, messagequeue.Ack, handle(context.Background(), message(t, "msg-2", paid("a@example.com"))))
	assert.Len(t, store.AllPayments(), 2)
}
