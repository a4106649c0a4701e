package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"sherpa/internal/config"
	"sherpa/internal/constants"
	"sherpa/internal/logger"
	"sherpa/internal/queue"
	"sherpa/internal/receiver"
	"sherpa/internal/secrets"
	"sherpa/pkg/bootstrap"
	"sherpa/pkg/health"
	"sherpa/pkg/metrics"
	"sherpa/pkg/middleware"
)

type App struct {
	*bootstrap.Base
	producer queue.Producer
	service  *receiver.Service
	server   *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName("receiver")
	}
	return &App{
		Base: bootstrap.NewBase(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if a.Config.Secrets.SigningSecretID == "" {
		return fmt.Errorf("secrets.signing_secret_id is required for the receiver")
	}

	producer, err := queue.NewProducer(ctx, a.Config.Queue, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize queue producer: %w", err)
	}
	a.producer = producer
	a.RegisterCloser("queue producer", producer)

	secretCache, err := a.initSecretCache(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize secret cache: %w", err)
	}

	a.service = receiver.NewService(a.producer, secretCache, a.Config.Secrets, a.Logger)

	metrics.RegisterReceiverMetrics()

	a.initHTTPServer(ctx)

	return nil
}

func (a *App) initSecretCache(ctx context.Context) (*secrets.Cache, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	provider := secrets.NewManagerProvider(secretsmanager.NewFromConfig(awsCfg))
	refreshInterval := time.Duration(a.Config.Secrets.RefreshIntervalSeconds) * time.Second

	return secrets.NewCache(provider, refreshInterval), nil
}

func (a *App) initHTTPServer(ctx context.Context) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(a.Logger))
	router.Use(middleware.RecoveryMiddleware(a.Logger))

	handler := receiver.NewHandler(a.service, a.Logger)
	handler.RegisterRoutes(router)

	healthRegistry := health.NewCheckerRegistry()
	if sqsClient, err := queue.NewSQSClient(ctx, a.Config.Queue.SQS); err == nil {
		healthRegistry.Register(health.NewSQSChecker(sqsClient, a.Config.Queue.SQS.QueueURL))
	}

	router.GET("/health", func(c *gin.Context) {
		h := healthRegistry.Check(c.Request.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(a.Config.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(a.Config.Server.WriteTimeoutSeconds) * time.Second,
	}
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfowCtx(ctx, "HTTP server starting", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server shutdown error: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func (a *App) Shutdown(ctx context.Context) error {
	return a.Base.Shutdown(ctx, nil)
}
