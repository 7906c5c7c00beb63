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

	"hrdesk/internal/config"
	"hrdesk/internal/database"
	"hrdesk/internal/middleware"
	"hrdesk/internal/modules/booking"
	"hrdesk/internal/modules/catalog"
	"hrdesk/internal/modules/notification"
	jwtsvc "hrdesk/internal/pkg/jwt"
	"hrdesk/internal/pkg/rabbitmq"
	"hrdesk/internal/pkg/response"
	"hrdesk/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("dotenv_load_failed error=%q", err.Error())
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatalf("migrate failed: %v", err)
	}

	roomRepo := repository.NewRoomRepository(db)
	bookingRepo := repository.NewBookingRepository(db).WithMaxRetries(cfg.BookingTxRetries)
	userRoleRepo := repository.NewUserRoleRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	var publisher notification.Publisher
	if cfg.AMQPURL != "" {
		p, err := rabbitmq.NewPublisher(cfg.AMQPURL)
		if err != nil {
			// broker delivery is optional; in-app notifications still work
			log.Printf("rabbitmq_unavailable error=%q", err.Error())
		} else {
			defer p.Close()
			publisher = p
		}
	}

	hub := notification.NewHub()
	defer hub.Close()

	notificationService := notification.NewService(notificationRepo, hub, publisher)
	notificationHandler := notification.NewHandler(notificationService, hub, cfg.CORSAllowedOrigins)

	catalogHandler := catalog.NewHandler(catalog.NewService(roomRepo))

	bookingService := booking.NewService(bookingRepo, roomRepo, userRoleRepo, notificationService, cfg.OrgTimezone)
	bookingHandler := booking.NewHandler(bookingService)

	if config.IsProdLike(cfg.AppEnv) {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), middleware.ErrorLogger(), middleware.CORS(cfg.CORSAllowedOrigins))

	r.GET("/health", healthHandler(db))

	v1 := r.Group("/api/v1")
	{
		auth := middleware.JWTAuth(j)

		// long-lived, so no request deadline
		stream := v1.Group("", auth)
		notificationHandler.RegisterStreamRoutes(stream)

		protected := v1.Group("", auth, middleware.RequestTimeout(cfg.RequestTimeout))
		catalogHandler.RegisterRoutes(protected)
		bookingHandler.RegisterRoutes(protected)
		notificationHandler.RegisterRoutes(protected)

		reviewers := protected.Group("", middleware.ReviewerOnly())
		bookingHandler.RegisterReviewRoutes(reviewers)
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	run(server, hub)
}

func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			response.Error(c, http.StatusServiceUnavailable, "TRANSIENT_ERROR", "Database unavailable")
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	}
}

func run(server *http.Server, hub *notification.Hub) {
	serverErrors := make(chan error, 1)

	go func() {
		log.Printf("http_server_starting addr=%s", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server failed: %v", err)
		}

	case sig := <-shutdown:
		log.Printf("shutdown_signal signal=%s", sig)

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// hijacked websocket connections are not covered by Shutdown
		hub.Close()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("http_shutdown_failed error=%q", err.Error())
			_ = server.Close()
		}
		log.Printf("http_server_stopped")
	}
}
