package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"medialib/internal/adapter/api"
	"medialib/internal/adapter/api/handler"
	apimiddleware "medialib/internal/adapter/api/middleware"
	"medialib/internal/adapter/api/router"
	"medialib/internal/adapter/repository"
	"medialib/internal/domain/entity"
	domainrepo "medialib/internal/domain/repository"
	"medialib/internal/domain/service"
	"medialib/internal/infrastructure/firebase"
	"medialib/internal/infrastructure/httpfetch"
	"medialib/internal/infrastructure/ratelimit"
	"medialib/internal/infrastructure/storage"
	"medialib/internal/infrastructure/websocket"
	"medialib/internal/usecase"
	"medialib/pkg/config"
	"medialib/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Init(cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := credentialOptions(cfg)

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{
		ProjectID:     cfg.FirebaseProject,
		StorageBucket: cfg.StorageBucket,
	}, opts...)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	records, closeRecords := newRecordStores(ctx, cfg, opts)
	defer closeRecords()

	objectStore, localStore, closeStore := newObjectStore(ctx, cfg, opts)
	defer closeStore()

	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient, cfg.FirebaseAPIKey)

	authUseCase := usecase.NewAuthUseCase(firebaseAuthClient)
	cleanupUseCase := usecase.NewCleanupUseCase(objectStore, records.pending, cfg.CleanupAttempts)
	relocator := usecase.NewBlobRelocator(objectStore, httpfetch.NewFetcher(cfg.FetchTimeout))
	mediaUseCase := usecase.NewMediaUseCase(records.media, records.folders, objectStore, relocator, cleanupUseCase)
	folderUseCase := usecase.NewFolderUseCase(records.folders, records.media)

	unsubscribeSessions := authUseCase.OnSessionChange(func(uid string, session *entity.Session) {
		if session == nil {
			logger.Info("Session ended for %s", uid)
			return
		}
		logger.Info("Session started for %s", uid)
	})
	defer unsubscribeSessions()

	cleanupUseCase.StartSweepJob(ctx, cfg.CleanupInterval)

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	limiter := ratelimit.NewRateLimiter(cfg.UploadRatePerMinute, cfg.UploadRateBurst)
	limiter.StartCleanupRoutine(ctx.Done())

	handlers := handler.New(handler.Dependencies{
		AuthUseCase:   authUseCase,
		FolderUseCase: folderUseCase,
		MediaUseCase:  mediaUseCase,
		WSManager:     wsManager,
		MaxUploadSize: cfg.MaxUploadSize,
	})

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit(bodyLimit(cfg.MaxUploadSize)))

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authUseCase)

	router.Setup(e, handlers, authMiddleware, limiter)
	if localStore != nil {
		router.SetupFilesRouter(e, localStore)
	}

	go func() {
		logger.Info("Starting server on port %s (documents: %s, storage: %s)",
			cfg.ServerPort, cfg.DocumentBackend, cfg.StorageBackend)
		if err := e.Start(":" + cfg.ServerPort); err != nil {
			logger.Info("Server stopped: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
}

type recordStores struct {
	media   domainrepo.MediaRepository
	folders domainrepo.FolderRepository
	pending domainrepo.PendingDeletionRepository
}

func credentialOptions(cfg *config.Config) []option.ClientOption {
	if cfg.FirebaseServiceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cfg.FirebaseServiceAccountJSON))}
	}

	if cfg.FirebaseServiceAccountPath != "" {
		if _, err := os.Stat(cfg.FirebaseServiceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", cfg.FirebaseServiceAccountPath)
		}
		log.Printf("Using Firebase service account from file: %s", cfg.FirebaseServiceAccountPath)
		return []option.ClientOption{option.WithCredentialsFile(cfg.FirebaseServiceAccountPath)}
	}

	log.Printf("Using application default credentials")
	return nil
}

func newRecordStores(ctx context.Context, cfg *config.Config, opts []option.ClientOption) (recordStores, func()) {
	if cfg.DocumentBackend == config.DocumentBackendMemory {
		logger.Warn("Using in-memory record stores, data is lost on restart")
		return recordStores{
			media:   repository.NewMemoryMediaRepository(),
			folders: repository.NewMemoryFolderRepository(),
			pending: repository.NewMemoryPendingDeletionRepository(),
		}, func() {}
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}

	return recordStores{
		media:   repository.NewFirestoreMediaRepository(firestoreClient),
		folders: repository.NewFirestoreFolderRepository(firestoreClient),
		pending: repository.NewFirestorePendingDeletionRepository(firestoreClient),
	}, func() { firestoreClient.Close() }
}

func newObjectStore(ctx context.Context, cfg *config.Config, opts []option.ClientOption) (service.ObjectStore, *storage.LocalStore, func()) {
	switch cfg.StorageBackend {
	case config.StorageBackendMinIO:
		store, err := storage.NewMinIOStore(ctx, storage.MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			UseSSL:    cfg.MinIOUseSSL,
			Bucket:    cfg.StorageBucket,
			PublicURL: cfg.MinIOPublicURL,
		})
		if err != nil {
			log.Fatalf("Failed to initialize MinIO: %v", err)
		}
		return store, nil, func() {}

	case config.StorageBackendLocal:
		store, err := storage.NewLocalStore(cfg.LocalStorageDir, cfg.PublicBaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize local storage: %v", err)
		}
		return store, store, func() {}

	default:
		store, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, opts...)
		if err != nil {
			log.Fatalf("Failed to initialize Cloud Storage: %v", err)
		}
		return store, nil, func() { store.Close() }
	}
}

// bodyLimit leaves room for multipart framing around the largest upload.
func bodyLimit(maxUploadSize int64) string {
	const slackMB = 1
	return strconv.FormatInt(maxUploadSize/(1024*1024)+slackMB, 10) + "M"
}
