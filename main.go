package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"realty-chat-service/internal/auth"
	"realty-chat-service/internal/bus"
	"realty-chat-service/internal/db"
	"realty-chat-service/internal/events"
	"realty-chat-service/internal/handlers"
	"realty-chat-service/internal/middleware"
	"realty-chat-service/internal/observability"
	"realty-chat-service/internal/rabbitmq"
	"realty-chat-service/internal/repositories"
	"realty-chat-service/internal/telemetry"
	"realty-chat-service/internal/ws"
)

const serviceName = "realty-chat-service"

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	environment := getEnv("ENVIRONMENT", "development")

	shutdownTracing, err := telemetry.SetupTracing(ctx, getEnv("OTLP_GRPC_ENDPOINT", ""), serviceName, environment)
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}
	defer shutdownTracing(ctx)

	database, err := db.Connect()
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	amqpURL := getEnv("AMQP_URL", "")
	if wsEvents, err := observability.NewAMQPPublisher(amqpURL, getEnv("AMQP_WS_EXCHANGE", "realty_chat_ws_events")); err != nil {
		log.Printf("ws event publisher disabled: %v", err)
	} else {
		observability.SetPublisher(wsEvents)
		defer wsEvents.Close()
	}

	auditPublisher := rabbitmq.NewPublisher(amqpURL, getEnv("AMQP_AUDIT_EXCHANGE", "realty_audit"))
	defer auditPublisher.Close()
	log.Printf("audit publisher mode=%s", rabbitmq.PublisherMode(auditPublisher))
	audit := telemetry.NewAuditEmitter(auditPublisher, "audit.realty_chat", serviceName, environment)

	roomRepo := repositories.NewRoomRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	userRepo := repositories.NewUserRepo(database)
	propertyRepo := repositories.NewPropertyRepo(database)
	inquiryRepo := repositories.NewInquiryRepo(database)
	notificationRepo := repositories.NewNotificationRepo(database)

	validator := auth.NewValidator([]byte(getEnv("JWT_SECRET", "dev-secret")), userRepo)

	local := bus.NewLocalBus()
	var fabric bus.Bus = local
	if addr := getEnv("REDIS_ADDR", ""); addr != "" {
		redisBus := bus.NewRedisBus(ctx, redis.NewClient(&redis.Options{Addr: addr}), local)
		defer redisBus.Close()
		fabric = redisBus
		log.Printf("broadcast bus: redis %s", addr)
	} else {
		log.Printf("broadcast bus: in-process only")
	}

	notifier := events.NewNotifier(notificationRepo, userRepo, fabric, audit)

	authn := ws.NewAuthenticator(validator)
	chatWS := ws.NewChatWebSocketHandler(fabric, roomRepo, messageRepo, authn)
	notificationWS := ws.NewNotificationWebSocketHandler(fabric, authn)

	roomHandler := handlers.NewRoomHandler(roomRepo, messageRepo, userRepo, fabric, notifier)
	inquiryHandler := handlers.NewInquiryHandler(inquiryRepo, propertyRepo, roomRepo, notifier)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	broadcastHandler := handlers.NewBroadcastHandler(notifier)

	router := gin.Default()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(validator)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/rooms", authMiddleware, roomHandler.ListRooms)
	router.POST("/rooms/direct", authMiddleware, roomHandler.CreateDirectRoom)
	router.GET("/rooms/:room_id/messages", authMiddleware, roomHandler.GetRoomMessages)
	router.POST("/rooms/:room_id/messages", authMiddleware, roomHandler.PostRoomMessage)

	router.POST("/inquiries", authMiddleware, inquiryHandler.CreateInquiry)
	router.GET("/inquiries", authMiddleware, inquiryHandler.ListInquiries)
	router.GET("/inquiries/received", authMiddleware, inquiryHandler.ListReceivedInquiries)

	router.GET("/notifications", authMiddleware, notificationHandler.ListNotifications)
	router.POST("/notifications/:notification_id/read", authMiddleware, notificationHandler.MarkRead)
	router.POST("/notifications/read_all", authMiddleware, notificationHandler.MarkAllRead)

	router.POST("/internal/broadcast", authMiddleware, broadcastHandler.Broadcast)

	router.GET("/ws/rooms/:room_id", chatWS.Handle)
	router.GET("/ws/notifications", notificationWS.Handle)

	port := getEnv("PORT", "8083")
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
