package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"sherpa/internal/chat"
	"sherpa/internal/config"
	"sherpa/internal/constants"
	"sherpa/internal/knowledge"
	"sherpa/internal/logger"
	"sherpa/internal/queue"
	"sherpa/internal/secrets"
	"sherpa/internal/worker"
	"sherpa/pkg/bootstrap"
	"sherpa/pkg/health"
	"sherpa/pkg/metrics"
	"sherpa/pkg/middleware"
)

type App struct {
	*bootstrap.Base
	consumer queue.Consumer
	service  *worker.Service
	poster   *chat.SlackPoster
	server   *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName("worker")
	}
	return &App{
		Base: bootstrap.NewBase(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if a.Config.Secrets.BotTokenID == "" {
		return fmt.Errorf("secrets.bot_token_id is required for the worker")
	}
	if a.Config.Knowledge.KnowledgeBaseID == "" {
		return fmt.Errorf("knowledge.knowledge_base_id is required for the worker")
	}

	consumer, err := queue.NewConsumer(ctx, a.Config.Queue, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize queue consumer: %w", err)
	}
	consumer.SetServiceName("worker")
	a.consumer = consumer
	a.RegisterCloser("queue consumer", consumer)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}

	provider := secrets.NewManagerProvider(secretsmanager.NewFromConfig(awsCfg))
	refreshInterval := time.Duration(a.Config.Secrets.RefreshIntervalSeconds) * time.Second
	secretCache := secrets.NewCache(provider, refreshInterval)

	var retriever knowledge.Retriever = knowledge.NewBedrockRetriever(
		bedrockagentruntime.NewFromConfig(awsCfg), a.Config.Knowledge, a.Logger)
	if a.Config.CircuitBreaker.Enabled {
		retriever = knowledge.NewBreakerRetriever(retriever, a.Config.CircuitBreaker)
	}

	a.poster = chat.NewSlackPoster(secretCache, a.Config.Secrets.BotTokenID, a.Logger)

	a.service = worker.NewService(retriever, a.poster, a.Logger)

	metrics.RegisterWorkerMetrics()
	if a.Config.CircuitBreaker.Enabled {
		metrics.RegisterCircuitBreakerMetrics()
	}

	a.initHTTPServer(ctx)

	return nil
}

func (a *App) initHTTPServer(ctx context.Context) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(a.Logger))
	router.Use(middleware.RecoveryMiddleware(a.Logger))

	healthRegistry := health.NewCheckerRegistry()
	if sqsClient, err := queue.NewSQSClient(ctx, a.Config.Queue.SQS); err == nil {
		healthRegistry.Register(health.NewSQSChecker(sqsClient, a.Config.Queue.SQS.QueueURL))
	}
	healthRegistry.Register(health.NewChatChecker(a.poster))

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

	g.Go(func() error {
		return a.consumer.Consume(gCtx, a.service.ProcessBatch)
	})

	return g.Wait()
}

func (a *App) Shutdown(ctx context.Context) error {
	return a.Base.Shutdown(ctx, nil)
}
