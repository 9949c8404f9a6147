package models

import "time"

const (
	// PaymentStatusPaid is the only confirmation status that settles a payment.
	PaymentStatusPaid = "paid"
	// TransactionTypePremiumUpgrade marks a checkout that buys premium membership.
	TransactionTypePremiumUpgrade = "premium-upgrade"
)

// PaymentConfirmation is the event a payment provider emits once a hosted checkout completes.
type PaymentConfirmation struct {
	CallerEmail         string  `json:"callerEmail"`
	AmountPaid          float64 `json:"amountPaid"`
	Currency            string  `json:"currency,omitempty"`
	TransactionID       string  `json:"transactionId"`
	PaymentStatus       string  `json:"paymentStatus"`
	LineItemDescription string  `json:"lineItemDescription,omitempty"`
	TransactionType     string  `json:"transactionType,omitempty"`
	SessionID           string  `json:"sessionId,omitempty"`
	// DeliveryID identifies the queue message that carried the confirmation.
	// Settling the same delivery again does not append a second record.
	DeliveryID string `json:"-"`
}

// Payment is an append-only settlement record. Every delivery of a paid
// confirmation appends one, duplicates included.
type Payment struct {
	ID            string    `json:"id" firestore:"-"`
	Email         string    `json:"email" firestore:"email"`
	Amount        float64   `json:"amount" firestore:"amount"`
	Currency      string    `json:"currency,omitempty" firestore:"currency"`
	TransactionID string    `json:"transactionId" firestore:"transactionId"`
	Type          string    `json:"type" firestore:"type"`
	Description   string    `json:"description,omitempty" firestore:"description"`
	SessionID     string    `json:"sessionId,omitempty" firestore:"sessionId"`
	CreatedAt     time.Time `json:"createdAt" firestore:"createdAt"`
}

// SettlementResult is the outcome of processing a payment confirmation.
// Settled is false for legitimate "not yet paid" outcomes, which are not errors.
type SettlementResult struct {
	Settled bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
