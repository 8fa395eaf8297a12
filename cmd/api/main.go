package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/retail-platform/order-fulfillment/internal/api/dto"
	"github.com/retail-platform/order-fulfillment/internal/application"
	"github.com/retail-platform/order-fulfillment/internal/config"
	"github.com/retail-platform/order-fulfillment/internal/domain"
	"github.com/retail-platform/order-fulfillment/internal/infrastructure/events"
	"github.com/retail-platform/order-fulfillment/internal/infrastructure/memory"
	mongoRepo "github.com/retail-platform/order-fulfillment/internal/infrastructure/mongodb"
	"github.com/retail-platform/order-fulfillment/internal/notification"
	"github.com/retail-platform/order-fulfillment/pkg/errors"
	"github.com/retail-platform/order-fulfillment/pkg/kafka"
	"github.com/retail-platform/order-fulfillment/pkg/logging"
	"github.com/retail-platform/order-fulfillment/pkg/metrics"
	"github.com/retail-platform/order-fulfillment/pkg/middleware"
	"github.com/retail-platform/order-fulfillment/pkg/tracing"
)

const serviceName = "order-fulfillment"

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logging.New(logging.DefaultConfig(serviceName)).WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(cfg.Logging.Level)
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting order-fulfillment API")

	ctx := context.Background()

	// OpenTelemetry tracing
	tracingConfig := tracing.DefaultConfig(serviceName)
	tracingConfig.OTLPEndpoint = cfg.Tracing.OTLPEndpoint
	tracingConfig.SampleRate = cfg.Tracing.SampleRatio
	tracingConfig.Enabled = cfg.Tracing.Enabled

	tracerProvider, err := tracing.Initialize(ctx, tracingConfig)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
		// Continue without tracing
	} else if tracerProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("Failed to shutdown tracer")
			}
		}()
		logger.Info("Tracing initialized", "endpoint", tracingConfig.OTLPEndpoint)
	}

	// Prometheus metrics
	m := metrics.New(metrics.DefaultConfig(serviceName))

	// Order repository: MongoDB in production, in-memory otherwise
	var orderRepo domain.OrderRepository
	var mongoClient *mongo.Client
	if cfg.MongoDB.Enabled {
		mongoClient, err = mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
		if err != nil {
			logger.WithError(err).Error("Failed to connect to MongoDB")
			os.Exit(1)
		}
		defer func() {
			_ = mongoClient.Disconnect(context.Background())
		}()
		orderRepo = mongoRepo.NewOrderRepository(mongoClient.Database(cfg.MongoDB.Database))
		logger.Info("Connected to MongoDB", "database", cfg.MongoDB.Database)
	} else {
		orderRepo = memory.NewOrderRepository()
		logger.Info("Using in-memory order repository")
	}

	// Kafka: domain event publishing, notifications, carrier tracking
	var publisher domain.EventPublisher
	var notifier notification.Trigger
	if cfg.Kafka.Enabled {
		kafkaConfig := kafka.DefaultConfig()
		kafkaConfig.Brokers = cfg.Kafka.Brokers

		producer := kafka.NewProductionProducer(kafkaConfig, m, logger)
		defer producer.Close()
		logger.Info("Kafka producer initialized", "brokers", cfg.Kafka.Brokers)

		publisher = events.NewKafkaEventPublisher(producer, "/"+serviceName)
		notifier = buildNotifier(cfg.Notifications.Channel, producer, logger, m)

		consumer := kafka.NewProductionConsumer(kafkaConfig, m, logger)
		defer consumer.Close()

		service := application.NewOrderWorkflowService(orderRepo, publisher, notifier, logger, m)
		application.RegisterCarrierTracking(consumer, service, logger)
		go func() {
			if err := consumer.Start(ctx); err != nil {
				logger.WithError(err).Error("Carrier tracking consumer stopped")
			}
		}()
		logger.Info("Carrier tracking consumer started", "topic", kafka.Topics.CarrierTracking)

		runServer(cfg, service, mongoClient, m, logger)
		return
	}

	notifier = notification.NewLogTrigger(logger, m)
	service := application.NewOrderWorkflowService(orderRepo, nil, notifier, logger, m)
	runServer(cfg, service, mongoClient, m, logger)
}

// buildNotifier selects the notification channel. The log channel skips the
// broker even when Kafka is up.
func buildNotifier(channel string, producer *kafka.CircuitBreakerProducer, logger *logging.Logger, m *metrics.Metrics) notification.Trigger {
	switch channel {
	case "sms":
		return notification.NewSMSSender(producer, logger, m, serviceName)
	case "log":
		return notification.NewLogTrigger(logger, m)
	default:
		return notification.NewEmailSender(producer, logger, m, serviceName)
	}
}

func runServer(cfg *config.Config, service *application.OrderWorkflowService, mongoClient *mongo.Client, m *metrics.Metrics, logger *logging.Logger) {
	middleware.InitValidator()

	router := gin.New()

	middlewareConfig := middleware.DefaultConfig(serviceName, logger.Logger)
	middleware.Setup(router, middlewareConfig)

	router.Use(middleware.MetricsMiddleware(m))
	router.Use(middleware.SimpleTracingMiddleware(serviceName))

	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		if mongoClient == nil {
			return nil
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return mongoClient.Ping(pingCtx, readpref.Primary())
	}))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	v1 := router.Group("/api/v1")
	{
		orders := v1.Group("/orders")
		{
			orders.POST("", createOrderHandler(service, logger))
			orders.GET("", listOrdersHandler(service, logger))
			orders.GET("/:orderId", getOrderHandler(service, logger))
			orders.POST("/:orderId/payment", payOrderHandler(service, logger))
			orders.POST("/:orderId/payment/installments", payInstallmentsHandler(service, logger))
			orders.PUT("/:orderId/cancel", cancelOrderHandler(service, logger))
			orders.PUT("/:orderId/shipment", advanceShipmentHandler(service, logger))
			orders.PUT("/:orderId/cash-collection", cashCollectionHandler(service, logger))
		}
		v1.GET("/shipments/:trackingNumber", trackShipmentHandler(service, logger))
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server error")
		}
	}()
	logger.Info("Server started", "addr", cfg.Server.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}

func respondError(responder *middleware.ErrorResponder, err error) {
	if appErr, ok := errors.AsAppError(err); ok {
		responder.RespondWithAppError(appErr)
		return
	}
	responder.RespondInternalError(err)
}

func createOrderHandler(service *application.OrderWorkflowService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req dto.CreateOrderRequest
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"customer.id": req.CustomerID,
			"order.items": len(req.Items),
		})

		order, err := service.Create(c.Request.Context(), req.ToCommand())
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusCreated, order)
	}
}

func getOrderHandler(service *application.OrderWorkflowService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		order, err := service.Get(c.Request.Context(), application.GetOrderQuery{
			OrderID: c.Param("orderId"),
		})
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

func trackShipmentHandler(service *application.OrderWorkflowService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		order, err := service.Track(c.Request.Context(), application.TrackShipmentQuery{
			TrackingNumber: c.Param("trackingNumber"),
		})
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

func listOrdersHandler(service *application.OrderWorkflowService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
		pageSize, _ := strconv.ParseInt(c.DefaultQuery("pageSize", "20"), 10, 64)
		if page < 1 {
			page = 1
		}
		if pageSize < 1 || pageSize > 100 {
			pageSize = 20
		}

		query := application.ListOrdersQuery{Page: page, PageSize: pageSize}
		if customerID := c.Query("customerId"); customerID != "" {
			query.CustomerID = &customerID
		}
		if status := c.Query("status"); status != "" {
			query.Status = &status
		}

		result, err := service.List(c.Request.Context(), query)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func payOrderHandler(service *application.OrderWorkflowService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req dto.PayOrderRequest
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		cmd := application.PayOrderCommand{
			OrderID: c.Param("orderId"),
			Amount:  req.Amount,
			Method:  req.Method.ToInput(),
		}

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"order.id":       cmd.OrderID,
			"payment.method": req.Method.Kind,
		})

		result, err := service.Pay(c.Request.Context(), cmd)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func payInstallmentsHandler(service *application.OrderWorkflowService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req dto.PayInstallmentsRequest
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		cmd := application.PayWithInstallmentsCommand{
			OrderID: c.Param("orderId"),
			Months:  req.Months,
			Method:  req.Method.ToInput(),
		}

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"order.id":           cmd.OrderID,
			"payment.method":     req.Method.Kind,
			"installment.months": req.Months,
		})

		result, err := service.PayWithInstallments(c.Request.Context(), cmd)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func cancelOrderHandler(service *application.OrderWorkflowService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req dto.CancelOrderRequest
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		cmd := application.CancelOrderCommand{
			OrderID: c.Param("orderId"),
			Reason:  req.Reason,
		}

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"order.id":      cmd.OrderID,
			"cancel.reason": cmd.Reason,
		})

		result, err := service.Cancel(c.Request.Context(), cmd)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func advanceShipmentHandler(service *application.OrderWorkflowService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req dto.AdvanceShipmentRequest
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		cmd := application.AdvanceShipmentCommand{
			OrderID:     c.Param("orderId"),
			Status:      req.Status,
			Description: req.Description,
		}

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"order.id":        cmd.OrderID,
			"shipment.status": cmd.Status,
		})

		order, err := service.AdvanceShipment(c.Request.Context(), cmd)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

func cashCollectionHandler(service *application.OrderWorkflowService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req dto.CashCollectionRequest
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		cmd := application.MarkCashCollectedCommand{
			OrderID: c.Param("orderId"),
			AgentID: req.AgentID,
		}

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"order.id": cmd.OrderID,
			"agent.id": cmd.AgentID,
		})

		order, err := service.MarkCashCollected(c.Request.Context(), cmd)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, order)
	}
}
