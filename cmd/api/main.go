package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"neodrive/internal/config"
	"neodrive/internal/database"
	"neodrive/internal/domain/auth"
	"neodrive/internal/domain/billing"
	"neodrive/internal/domain/file"
	"neodrive/internal/domain/quota"
	"neodrive/internal/domain/session"
	"neodrive/internal/domain/user"
	"neodrive/internal/middleware"
	"neodrive/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.AutoMigrate(
		&user.User{},
		&file.FileRecord{},
		&billing.SubscriptionPlan{},
		&billing.PaymentHistory{},
	); err != nil {
		log.Fatal(err)
	}

	objectStore, err := storage.NewMinioStore(
		cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3UseSSL,
	)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sessions := session.NewStore(cfg.SessionTTL)
	sessions.StartSweeper(ctx, cfg.SweepInterval)

	userRepo := user.NewRepository(db)
	fileRepo := file.NewRepository(db)
	billingRepo := billing.NewRepository(db)

	stripeProvider := billing.NewStripeProvider(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	evaluator := quota.NewEvaluator(fileRepo)

	authService := auth.NewService(userRepo, sessions, stripeProvider)
	userService := user.NewService(userRepo, sessions)
	fileService := file.NewService(fileRepo, objectStore, evaluator, cfg.PresignExpiry)
	billingService := billing.NewService(billingRepo, userRepo, stripeProvider, sessions)

	cookieMaxAge := int(cfg.SessionTTL / time.Second)
	authHandler := auth.NewHandler(authService, cookieMaxAge, cfg.CookieSecure)
	userHandler := user.NewHandler(userService)
	fileHandler := file.NewHandler(fileService)
	billingHandler := billing.NewHandler(billingService)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.ErrorLogger())

	api := r.Group("/api")
	{
		auth.RegisterPublicRoutes(api, authHandler)
		billing.RegisterWebhookRoutes(api, billingHandler)

		protected := api.Group("/")
		protected.Use(middleware.SessionAuth(sessions, cookieMaxAge, cfg.CookieSecure))
		{
			auth.RegisterProtectedRoutes(protected, authHandler)
			user.RegisterRoutes(protected, userHandler)
			file.RegisterRoutes(protected, fileHandler)
			billing.RegisterRoutes(protected, billingHandler)
		}
	}

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	go func() {
		log.Printf("listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	os.Exit(0)
}
