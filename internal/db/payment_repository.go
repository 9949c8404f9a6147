package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"lifelessons-backend-go/internal/models"
)

// firestorePaymentRepository implements the PaymentRepository interface using Firestore.
type firestorePaymentRepository struct {
	client *firestore.Client
}

// NewFirestorePaymentRepository creates a new instance of firestorePaymentRepository.
func NewFirestorePaymentRepository(client *firestore.Client) PaymentRepository {
	return &firestorePaymentRepository{client: client}
}

// paymentNamespace scopes the deterministic IDs of payment records created from queue deliveries.
var paymentNamespace = uuid.MustParse("0c6b8f3e-2d1a-4f57-b6e4-8a9d7c3e5f21")

// PaymentID returns the document ID of the payment record for a queue delivery.
func PaymentID(deliveryID string) string {
	return uuid.NewSHA1(paymentNamespace, []byte(deliveryID)).String()
}

// Create appends a payment record. Records are never updated or deleted.
// When payment.ID is set the record is created under that ID and ErrAlreadyExists
// is returned if it was recorded before.
func (r *firestorePaymentRepository) Create(ctx context.Context, payment *models.Payment) (string, error) {
	docRef := r.client.Collection(paymentsCollection).NewDoc()
	if payment.ID != "" {
		docRef = r.client.Collection(paymentsCollection).Doc(payment.ID)
	}
	payment.ID = docRef.ID
	if _, err := docRef.Create(ctx, payment); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return docRef.ID, fmt.Errorf("payment '%s' already recorded: %w", docRef.ID, ErrAlreadyExists)
		}
		return "", fmt.Errorf("failed to record payment '%s' for '%s': %w", payment.TransactionID, payment.Email, err)
	}
	return docRef.ID, nil
}

// ListByEmail returns the settlement history of email, newest first.
func (r *firestorePaymentRepository) ListByEmail(ctx context.Context, email string) ([]*models.Payment, error) {
	iter := r.client.Collection(paymentsCollection).
		Where("email", "==", email).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var payments []*models.Payment
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate payments for '%s': %w", email, err)
		}
		var payment models.Payment
		if err := doc.DataTo(&payment); err != nil {
			return nil, fmt.Errorf("failed to decode payment '%s': %w", doc.Ref.ID, err)
		}
		payment.ID = doc.Ref.ID
		payments = append(payments, &payment)
	}
	return payments, nil
}
