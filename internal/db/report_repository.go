package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"lifelessons-backend-go/internal/models"
)

// firestoreReportRepository implements the ReportRepository interface using Firestore.
type firestoreReportRepository struct {
	client *firestore.Client
}

// NewFirestoreReportRepository creates a new instance of firestoreReportRepository.
func NewFirestoreReportRepository(client *firestore.Client) ReportRepository {
	return &firestoreReportRepository{client: client}
}

// Create adds a new report document with an auto-generated ID.
func (r *firestoreReportRepository) Create(ctx context.Context, report *models.Report) (string, error) {
	docRef := r.client.Collection(reportsCollection).NewDoc()
	report.ID = docRef.ID
	if _, err := docRef.Create(ctx, report); err != nil {
		return "", fmt.Errorf("failed to create report on lesson '%s': %w", report.LessonID, err)
	}
	return docRef.ID, nil
}

// Delete removes a single report. Deleting a missing report is not an error.
func (r *firestoreReportRepository) Delete(ctx context.Context, reportID string) error {
	if _, err := r.client.Collection(reportsCollection).Doc(reportID).Delete(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil
		}
		return fmt.Errorf("failed to delete report '%s': %w", reportID, err)
	}
	return nil
}

// ListByLesson returns the reports filed against lessonID, newest first.
func (r *firestoreReportRepository) ListByLesson(ctx context.Context, lessonID string) ([]*models.Report, error) {
	iter := r.client.Collection(reportsCollection).
		Where("lessonId", "==", lessonID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var reports []*models.Report
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate reports for lesson '%s': %w", lessonID, err)
		}
		var report models.Report
		if err := doc.DataTo(&report); err != nil {
			return nil, fmt.Errorf("failed to decode report '%s': %w", doc.Ref.ID, err)
		}
		report.ID = doc.Ref.ID
		reports = append(reports, &report)
	}
	return reports, nil
}

// DeleteByLesson removes every report filed against lessonID.
func (r *firestoreReportRepository) DeleteByLesson(ctx context.Context, lessonID string) (int, error) {
	query := r.client.Collection(reportsCollection).Where("lessonId", "==", lessonID)
	deleted, err := deleteMatching(ctx, r.client, query)
	if err != nil {
		return deleted, fmt.Errorf("failed to delete reports for lesson '%s': %w", lessonID, err)
	}
	return deleted, nil
}
