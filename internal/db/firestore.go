package db

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"lifelessons-backend-go/internal/config"
)

// Collection names used by the repositories.
const (
	usersCollection        = "users"
	lessonsCollection      = "lessons"
	savedLessonsCollection = "savedLessons"
	commentsCollection     = "comments"
	reportsCollection      = "reports"
	paymentsCollection     = "payments"
)

// maxBatchWrites is the Firestore limit on writes in a single batch.
const maxBatchWrites = 500

var (
	// fsClient is the process-wide Firestore client. It is safe for concurrent use.
	fsClient *firestore.Client
	// fbAuthClient is the process-wide Firebase Auth client.
	fbAuthClient *auth.Client
)

// InitFirestore initializes the Firebase Admin SDK and sets up the Firestore and Auth clients.
// Credentials are taken from a service account file, a base64 encoded service
// account JSON, or Application Default Credentials, in that order.
func InitFirestore(ctx context.Context, appConfig *config.Config, logger *zap.Logger) error {
	if appConfig == nil {
		return errors.New("InitFirestore: appConfig cannot be nil")
	}

	var opts []option.ClientOption
	switch {
	case appConfig.GoogleApplicationCredentials != "" && credentialsFileExists(appConfig.GoogleApplicationCredentials):
		opts = append(opts, option.WithCredentialsFile(appConfig.GoogleApplicationCredentials))
		logger.Info("Initializing Firebase with credentials file", zap.String("path", appConfig.GoogleApplicationCredentials))
	case appConfig.FirebaseServiceAccountJSONBase64 != "":
		decodedJSON, err := base64.StdEncoding.DecodeString(appConfig.FirebaseServiceAccountJSONBase64)
		if err != nil {
			return fmt.Errorf("failed to decode FirebaseServiceAccountJSONBase64: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(decodedJSON))
		logger.Info("Initializing Firebase with base64 encoded service account JSON")
	default:
		if appConfig.GoogleApplicationCredentials != "" {
			logger.Warn("Credentials file does not exist; falling back on Application Default Credentials",
				zap.String("path", appConfig.GoogleApplicationCredentials))
		}
		logger.Info("Initializing Firebase using Application Default Credentials")
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: appConfig.FirebaseProjectID}, opts...)
	if err != nil {
		return fmt.Errorf("firebase.NewApp: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return fmt.Errorf("app.Firestore: %w", err)
	}

	authCl, err := app.Auth(ctx)
	if err != nil {
		client.Close()
		return fmt.Errorf("app.Auth: %w", err)
	}

	fsClient = client
	fbAuthClient = authCl
	logger.Info("Firestore and Firebase Auth clients initialized", zap.String("projectID", appConfig.FirebaseProjectID))
	return nil
}

// GetFirestoreClient returns the global Firestore client, or nil before InitFirestore succeeds.
func GetFirestoreClient() *firestore.Client {
	return fsClient
}

// GetFirebaseAuthClient returns the global Firebase Auth client, or nil before InitFirestore succeeds.
func GetFirebaseAuthClient() *auth.Client {
	return fbAuthClient
}

// Ping performs a minimal read to check that Firestore is reachable.
func Ping(ctx context.Context, client *firestore.Client) error {
	if client == nil {
		return errors.New("firestore client is not initialized")
	}
	iter := client.Collection(usersCollection).Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return err
	}
	return nil
}

// credentialsFileExists reports whether path names an existing regular file.
func credentialsFileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
