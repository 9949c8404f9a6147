package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lifelessons-backend-go/internal/api"
	"lifelessons-backend-go/internal/billing"
	"lifelessons-backend-go/internal/config"
	"lifelessons-backend-go/internal/core"
	"lifelessons-backend-go/internal/db"
	"lifelessons-backend-go/internal/middleware"
	"lifelessons-backend-go/pkg/cache"
)

const (
	serviceName    = "lifelessons-backend"
	serviceVersion = "1.0.0"
)

func main() {
	// --- 1. Load Application Configuration ---
	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load application configuration: %v", err)
	}

	// --- 2. Initialize Logger (Zap) ---
	var zapLogger *zap.Logger
	if appConfig.IsRelease() {
		zapLogger, err = zap.NewProduction()
	} else {
		zapLogger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger.Info("Application configuration loaded", zap.String("ginMode", appConfig.GinMode))

	// --- 3. Initialize Firebase Admin SDK (Firestore and Auth clients) ---
	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()
	if err := db.InitFirestore(initCtx, appConfig, zapLogger); err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firestore and Firebase Admin SDK", zap.Error(err))
	}
	firestoreClient := db.GetFirestoreClient()
	firebaseAuthClient := db.GetFirebaseAuthClient()
	if firestoreClient == nil || firebaseAuthClient == nil {
		zapLogger.Fatal("CRITICAL_ERROR: Firestore or Firebase Auth client is nil after initialization")
	}
	defer firestoreClient.Close()

	// --- 4. Initialize Repositories ---
	userRepo := db.NewFirestoreUserRepository(firestoreClient)
	lessonRepo := db.NewFirestoreLessonRepository(firestoreClient)
	savedRepo := db.NewFirestoreSavedLessonRepository(firestoreClient)
	commentRepo := db.NewFirestoreCommentRepository(firestoreClient)
	reportRepo := db.NewFirestoreReportRepository(firestoreClient)
	paymentRepo := db.NewFirestorePaymentRepository(firestoreClient)

	// --- 5. Read-side cache ---
	var viewCache cache.Cache = cache.NoopCache{}
	if appConfig.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(initCtx, cache.NewRedisCacheConfig{
			Address:  appConfig.RedisAddr,
			Password: appConfig.RedisPassword,
			DB:       appConfig.RedisDB,
		})
		if err != nil {
			zapLogger.Warn("Redis unavailable, serving rankings uncached", zap.String("addr", appConfig.RedisAddr), zap.Error(err))
		} else {
			defer redisCache.Close()
			viewCache = redisCache
			zapLogger.Info("Redis cache enabled", zap.String("addr", appConfig.RedisAddr), zap.Duration("ttl", appConfig.CacheTTL))
		}
	}

	// --- 6. Payment provider ---
	gateway, err := billing.NewStripeGateway(appConfig.StripeSecretKey)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Stripe gateway", zap.Error(err))
	}

	// --- 7. Initialize Services ---
	userService := core.NewUserService(userRepo, lessonRepo, savedRepo, zapLogger)
	lessonService := core.NewLessonService(lessonRepo, userRepo, savedRepo, reportRepo, viewCache, appConfig.CacheTTL, zapLogger)
	interactionService := core.NewInteractionService(lessonRepo, savedRepo, reportRepo, userRepo, zapLogger)
	moderationService := core.NewModerationService(lessonRepo, reportRepo, userRepo, viewCache, appConfig.CacheTTL, zapLogger)
	commentService := core.NewCommentService(commentRepo, lessonRepo, userRepo)
	billingService := core.NewBillingService(userRepo, paymentRepo, gateway, zapLogger)

	// --- 8. Setup Gin HTTP Engine ---
	if appConfig.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()

	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware(appConfig))

	healthHandler := api.NewHealthHandler(serviceName, serviceVersion, func(ctx context.Context) error {
		return db.Ping(ctx, firestoreClient)
	})

	api.SetupRoutes(
		router,
		appConfig,
		zapLogger,
		middleware.NewAuthMiddleware(firebaseAuthClient, zapLogger),
		userService,
		lessonService,
		interactionService,
		moderationService,
		commentService,
		billingService,
		healthHandler,
	)

	// --- 9. Configure and Start HTTP Server ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	zapLogger.Info("Starting HTTP server", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- 10. Graceful Shutdown Handling ---
	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), appConfig.ShutdownTimeout)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	zapLogger.Info("Server exiting gracefully")
}
