package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"lifelessons-backend-go/internal/db"
	"lifelessons-backend-go/internal/models"
)

// billingService implements the BillingService interface.
type billingService struct {
	userRepo    db.UserRepository
	paymentRepo db.PaymentRepository
	sessions    CheckoutSessionFetcher
	logger      *zap.Logger
}

// NewBillingService creates a new BillingService. sessions may be nil when
// confirmations only arrive through the settlement queue.
func NewBillingService(userRepo db.UserRepository, paymentRepo db.PaymentRepository, sessions CheckoutSessionFetcher, logger *zap.Logger) BillingService {
	return &billingService{
		userRepo:    userRepo,
		paymentRepo: paymentRepo,
		sessions:    sessions,
		logger:      logger,
	}
}

// Settle upgrades the payer to premium for a paid confirmation. The payment
// record is appended first so that every paid delivery leaves a trace even if
// the user update fails. Repeated deliveries append again and overwrite the
// transaction id, which leaves the user in the same state. A retry of the same
// queue delivery (same DeliveryID) reuses the record written by the first attempt.
func (s *billingService) Settle(ctx context.Context, c models.PaymentConfirmation) (*models.SettlementResult, error) {
	if c.PaymentStatus != models.PaymentStatusPaid {
		s.logger.Info("Payment not settled, status is not paid",
			zap.String("email", c.CallerEmail), zap.String("status", c.PaymentStatus))
		return &models.SettlementResult{Settled: false, Message: "Payment not completed"}, nil
	}
	if err := validateEmail(c.CallerEmail); err != nil {
		return nil, err
	}
	if c.TransactionID == "" {
		return nil, InvalidInputError("transaction id is required")
	}
	if c.AmountPaid < 0 {
		return nil, InvalidInputError("amount cannot be negative")
	}

	payment := &models.Payment{
		Email:         c.CallerEmail,
		Amount:        c.AmountPaid,
		Currency:      c.Currency,
		TransactionID: c.TransactionID,
		Type:          firstNonEmpty(c.TransactionType, models.TransactionTypePremiumUpgrade),
		Description:   c.LineItemDescription,
		SessionID:     c.SessionID,
		CreatedAt:     time.Now().UTC(),
	}
	if c.DeliveryID != "" {
		payment.ID = db.PaymentID(c.DeliveryID)
	}
	if _, err := s.paymentRepo.Create(ctx, payment); err != nil {
		if !errors.Is(err, db.ErrAlreadyExists) {
			return nil, fmt.Errorf("failed to record payment '%s': %w", c.TransactionID, err)
		}
		s.logger.Info("Payment already recorded for delivery",
			zap.String("delivery_id", c.DeliveryID), zap.String("transaction_id", c.TransactionID))
	}

	if err := s.userRepo.MarkPremium(ctx, c.CallerEmail, c.TransactionID); err != nil {
		return nil, storeErr(err, "User not found", "failed to upgrade user")
	}

	s.logger.Info("Payment settled",
		zap.String("email", c.CallerEmail),
		zap.String("transaction_id", c.TransactionID),
		zap.Float64("amount", c.AmountPaid))
	return &models.SettlementResult{Settled: true}, nil
}

// ConfirmCheckout settles the checkout session sessionID for caller.
func (s *billingService) ConfirmCheckout(ctx context.Context, caller models.Identity, sessionID string) (*models.SettlementResult, error) {
	if sessionID == "" {
		return nil, InvalidInputError("Session ID missing")
	}
	if s.sessions == nil {
		return nil, errors.New("checkout session lookup is not configured")
	}

	confirmation, err := s.sessions.FetchConfirmation(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if confirmation.PaymentStatus != models.PaymentStatusPaid {
		return &models.SettlementResult{Settled: false, Message: "Payment not completed"}, nil
	}
	if confirmation.CallerEmail != caller.Email {
		s.logger.Warn("Checkout session belongs to another user",
			zap.String("session_id", sessionID), zap.String("caller", caller.Email))
		return nil, ForbiddenError("Forbidden access")
	}
	if confirmation.TransactionType != models.TransactionTypePremiumUpgrade {
		return &models.SettlementResult{Settled: false, Message: "Unsupported transaction type"}, nil
	}
	return s.Settle(ctx, *confirmation)
}

// History returns the payments recorded for email, newest first.
func (s *billingService) History(ctx context.Context, email string) ([]*models.Payment, error) {
	payments, err := s.paymentRepo.ListByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments for '%s': %w", email, err)
	}
	if payments == nil {
		payments = []*models.Payment{}
	}
	return payments, nil
}
