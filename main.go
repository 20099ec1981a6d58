package main

import (
	"context"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"storefront-admin/cache"
	"storefront-admin/common/auth"
	apperrors "storefront-admin/common/errors"
	"storefront-admin/common/logger"
	commonmw "storefront-admin/common/middleware"
	"storefront-admin/controllers"
	"storefront-admin/database"
	"storefront-admin/middleware"
	"storefront-admin/models"
	aws_pkg "storefront-admin/pkg/aws"
	"storefront-admin/repository"
	"storefront-admin/routes"
	"storefront-admin/sender"
	"storefront-admin/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	// Load .env file (optional, falls back to system env)
	_ = godotenv.Load()

	cfg, err := LoadConfig()
	if err != nil {
		bootLogger := logger.Initialize(getEnv("APP_ENV", "development"))
		bootLogger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// AWS is optional: without it the service runs with S3, SNS, SQS and
	// CloudWatch disabled.
	awsCfg, awsErr := aws_pkg.LoadAWSConfig(ctx)
	awsEnabled := awsErr == nil

	var logSink io.Writer
	if awsEnabled && cfg.LogGroup != "" {
		if w, err := aws_pkg.NewCloudWatchLogsWriter(ctx, awsCfg, cfg.LogGroup, cfg.ServiceName); err == nil {
			logSink = w
		}
	}
	log := logger.InitializeWithWriter(cfg.Env, logSink)
	defer log.Sync()
	zap.ReplaceGlobals(log)

	if !awsEnabled {
		log.Warn("AWS config unavailable, S3/SNS/SQS/CloudWatch disabled", zap.Error(awsErr))
	}

	// --- Persistence ---
	db, err := database.Connect(cfg.Database(), log, database.DefaultOptions,
		&models.AdminUser{},
		&models.Product{}, &models.ProductVariant{}, &models.ProductMedia{},
		&models.Order{}, &models.OrderItem{}, &models.OrderEvent{},
	)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	rdb, err := cache.NewClient(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		log.Warn("Redis unavailable, caching disabled", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
	}
	ordersCache := cache.NewVersioned(rdb, cache.NamespaceOrders, cache.DefaultTTL, log)
	catalogCache := cache.NewVersioned(rdb, cache.NamespaceCatalog, cache.DefaultTTL, log)

	// --- AWS side channels ---
	var (
		snsClient aws_pkg.SNSPublisher
		store     services.ObjectStore
		metrics   *aws_pkg.MetricsClient
	)
	if awsEnabled {
		snsClient = aws_pkg.NewSNSClient(awsCfg)
		metrics = aws_pkg.NewMetricsClient(awsCfg, cfg.MetricsNamespace, cfg.MetricsEnabled)
		if cfg.S3Bucket != "" {
			store = aws_pkg.NewObjectStore(awsCfg, cfg.S3Bucket, cfg.S3PublicBase)
		}
	}

	var whatsApp sender.WhatsAppSender
	if cfg.TwilioAccountSID != "" {
		twilio, err := sender.NewTwilioWhatsAppSender(sender.TwilioConfig{
			AccountSID: cfg.TwilioAccountSID,
			AuthToken:  cfg.TwilioAuthToken,
			FromNumber: cfg.TwilioFrom,
		})
		if err != nil {
			log.Warn("Twilio config incomplete, WhatsApp sending disabled", zap.Error(err))
		} else {
			whatsApp = twilio
		}
	}

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL, time.Now)
	if err != nil {
		log.Fatal("Failed to create token manager", zap.Error(err))
	}

	// --- Wiring ---
	orderRepo := repository.NewGormOrderRepository(db)
	productRepo := repository.NewGormProductRepository(db)

	orderService := services.NewOrderService(orderRepo, ordersCache, snsClient, cfg.SNSTopicArn, metrics, time.Now, log)
	productService := services.NewProductService(productRepo, repository.NewGormVariantRepository(db), catalogCache,
		snsClient, cfg.SNSTopicArn, metrics, time.Now, log)
	mediaService := services.NewMediaService(repository.NewGormMediaRepository(db), productRepo, store, catalogCache, metrics, log)
	contactService := services.NewContactService(orderRepo, whatsApp, ordersCache, metrics, log)
	authService := services.NewAuthService(repository.NewGormUserRepository(db), tokens, metrics, log)

	handlers := appHandlers{
		auth:     controllers.NewAuthController(authService),
		orders:   controllers.NewOrderController(orderService),
		contact:  controllers.NewContactController(contactService),
		products: controllers.NewProductController(productService),
		media:    controllers.NewMediaController(mediaService),
	}

	limiter := commonmw.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst, 10*time.Minute)
	loginLimiter := commonmw.NewRateLimiter(rate.Limit(cfg.LoginRPS), cfg.LoginBurst, 10*time.Minute)
	go limiter.Run(ctx)
	go loginLimiter.Run(ctx)

	r := newRouter(cfg, log, metrics, limiter, loginLimiter, middleware.AdminAuth(authService), handlers)

	// --- Order events from the storefront ---
	if awsEnabled && cfg.OrderQueueURL != "" {
		consumer := services.NewOrderEventsConsumer(log, ordersCache, catalogCache)
		sqsConsumer := aws_pkg.NewSQSConsumer(awsCfg, cfg.OrderQueueURL, log)
		go func() {
			if err := sqsConsumer.StartPolling(ctx, consumer.Handle); err != nil && ctx.Err() == nil {
				log.Error("Order events consumer stopped", zap.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Storefront admin starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down storefront admin...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Storefront admin stopped gracefully")
}

type appHandlers struct {
	auth     *controllers.AuthController
	orders   *controllers.OrderController
	contact  *controllers.ContactController
	products *controllers.ProductController
	media    *controllers.MediaController
}

func newRouter(
	cfg *Config,
	log *zap.Logger,
	metrics commonmw.MetricsRecorder,
	limiter, loginLimiter *commonmw.RateLimiter,
	adminAuth gin.HandlerFunc,
	h appHandlers,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	// LegacyRedirects owns trailing-slash handling under /admin.
	r.RedirectTrailingSlash = false

	r.Use(gin.Recovery())
	r.Use(logger.RequestID())
	r.Use(commonmw.RequestLogger(log))
	r.Use(commonmw.SecurityHeaders())
	r.Use(commonmw.CORS(commonmw.ParseOrigins(cfg.AllowedOrigins)))
	r.Use(middleware.LegacyRedirects())
	r.Use(commonmw.MetricsMiddleware(metrics, cfg.ServiceName))
	r.Use(limiter.Middleware())
	r.Use(commonmw.Timeout(30 * time.Second))
	r.Use(apperrors.ErrorMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": cfg.ServiceName})
	})

	routes.RegisterAuthRoutes(r, h.auth, loginLimiter.Middleware())
	admin := routes.RegisterAdminGroup(r, adminAuth)
	routes.RegisterOrderRoutes(admin, h.orders, h.contact)
	routes.RegisterProductRoutes(admin, h.products, h.media)
	return r
}
