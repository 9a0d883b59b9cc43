package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	paddle "github.com/PaddleHQ/paddle-go-sdk"
	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"scoutlineAPI/handlers"
	"scoutlineAPI/internal/notification"
	"scoutlineAPI/middleware"
	"scoutlineAPI/services"

	_ "net/http/pprof"
)

var (
	dbPool              *pgxpool.Pool
	authService         *services.AuthService
	userService         *services.UserService
	videoService        *services.VideoService
	followService       *services.FollowService
	chatService         *services.ChatService
	challengeService    *services.ChallengeService
	scoutingService     *services.ScoutingService
	paymentService      *services.PaymentService
	notificationService *services.NotificationService
	fcmService          *notification.FCMService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to Postgres")

	var paddleClient *paddle.SDK
	if apiKey := os.Getenv("PADDLE_API_KEY"); apiKey != "" {
		paddleClient, err = paddle.New(apiKey)
		if err != nil {
			log.Printf("Warning: Could not initialize Paddle client: %v", err)
		}
	} else {
		log.Println("PADDLE_API_KEY not set, payment routes will fail")
	}

	notificationService = services.NewNotificationService(dbPool)
	authService = services.NewAuthService(dbPool)
	userService = services.NewUserService(dbPool)
	videoService = services.NewVideoService(dbPool, notificationService)
	followService = services.NewFollowService(dbPool, notificationService)
	chatService = services.NewChatService(dbPool)
	challengeService = services.NewChallengeService(dbPool, notificationService)
	scoutingService = services.NewScoutingService(dbPool)
	paymentService = services.NewPaymentService(dbPool, paddleClient)

	fcmService, err = notification.NewFCMService("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		notificationService.SetPushProvider(fcmService)
		log.Println("FCM Push Provider initialized successfully")
	}

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	videoHandler := handlers.NewVideoHandler(videoService)
	followHandler := handlers.NewFollowHandler(followService)
	chatHandler := handlers.NewChatHandler(chatService)
	challengeHandler := handlers.NewChallengeHandler(challengeService)
	scoutingHandler := handlers.NewScoutingHandler(scoutingService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "scoutline-api"}`))
	}).Methods("GET")

	r.HandleFunc("/webhooks/paddle", paymentHandler.PaddleWebhook).Methods("POST")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.JWTAuthMiddleware)

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/user/update-profile", userHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/user/delete-account", userHandler.DeleteAccount).Methods("DELETE")
	protected.HandleFunc("/user/search", userHandler.SearchUsers).Methods("GET")
	protected.HandleFunc("/user/follow", followHandler.Follow).Methods("POST")
	protected.HandleFunc("/user/follow", followHandler.Unfollow).Methods("DELETE")
	protected.HandleFunc("/user/followers", followHandler.ListFollowers).Methods("GET")
	protected.HandleFunc("/user/following", followHandler.ListFollowing).Methods("GET")
	protected.HandleFunc("/users/{userId}", userHandler.GetUser).Methods("GET")
	protected.HandleFunc("/users/{userId}/progress", challengeHandler.GetUserProgress).Methods("GET")
	protected.HandleFunc("/users/{playerId}/reports", scoutingHandler.ListByPlayer).Methods("GET")

	protected.HandleFunc("/videos", videoHandler.CreateVideo).Methods("POST")
	protected.HandleFunc("/videos", videoHandler.GetFeed).Methods("GET")
	protected.HandleFunc("/videos/{videoId}", videoHandler.GetVideo).Methods("GET")
	protected.HandleFunc("/videos/{videoId}", videoHandler.DeleteVideo).Methods("DELETE")
	protected.HandleFunc("/videos/{videoId}/comments", videoHandler.AddComment).Methods("POST")
	protected.HandleFunc("/videos/{videoId}/comments", videoHandler.ListComments).Methods("GET")
	protected.HandleFunc("/videos/{videoId}/rating", videoHandler.RateVideo).Methods("PUT")
	protected.HandleFunc("/comments/{commentId}", videoHandler.DeleteComment).Methods("DELETE")

	protected.HandleFunc("/chat/rooms", chatHandler.CreateRoom).Methods("POST")
	protected.HandleFunc("/chat/rooms", chatHandler.ListRooms).Methods("GET")
	protected.HandleFunc("/chat/rooms/{roomId}/join", chatHandler.JoinRoom).Methods("POST")
	protected.HandleFunc("/chat/rooms/{roomId}/messages", chatHandler.PostMessage).Methods("POST")
	protected.HandleFunc("/chat/rooms/{roomId}/messages", chatHandler.ListMessages).Methods("GET")

	protected.HandleFunc("/challenges", challengeHandler.CreateChallenge).Methods("POST")
	protected.HandleFunc("/challenges", challengeHandler.ListChallenges).Methods("GET")
	protected.HandleFunc("/challenges/{challengeId}", challengeHandler.GetChallenge).Methods("GET")
	protected.HandleFunc("/challenges/{challengeId}", challengeHandler.UpdateChallenge).Methods("PUT")
	protected.HandleFunc("/challenges/{challengeId}", challengeHandler.DeleteChallenge).Methods("DELETE")
	protected.HandleFunc("/challenges/{challengeId}/completed", challengeHandler.ListCompleted).Methods("GET")
	protected.HandleFunc("/challenges/{challengeId}/leaderboard", challengeHandler.GetLeaderboard).Methods("GET")
	protected.HandleFunc("/challenges/{challengeId}/statistics", challengeHandler.GetChallengeStatistics).Methods("GET")

	protected.HandleFunc("/participants", challengeHandler.JoinChallenge).Methods("POST")
	protected.HandleFunc("/participants/{participantId}/progress", challengeHandler.RecordProgress).Methods("PUT")
	protected.HandleFunc("/participants/{participantId}/progress", challengeHandler.GetParticipantProgress).Methods("GET")
	protected.HandleFunc("/participants/{participantId}/status", challengeHandler.UpdateParticipantStatus).Methods("PUT")

	protected.HandleFunc("/reports/mine", scoutingHandler.ListByScout).Methods("GET")
	protected.HandleFunc("/reports/{reportId}", scoutingHandler.GetReport).Methods("GET")
	protected.HandleFunc("/reports/{reportId}", scoutingHandler.UpdateReport).Methods("PUT")
	protected.HandleFunc("/reports/{reportId}", scoutingHandler.DeleteReport).Methods("DELETE")

	// Report creation is restricted to scouting roles.
	scoutOnly := protected.PathPrefix("").Subrouter()
	scoutOnly.Use(middleware.RequireRole("SCOUT", "ADMIN"))
	scoutOnly.HandleFunc("/reports", scoutingHandler.CreateReport).Methods("POST")

	protected.HandleFunc("/payments/prices", paymentHandler.GetPrices).Methods("GET")
	protected.HandleFunc("/payments/checkout", paymentHandler.CreateCheckout).Methods("POST")
	protected.HandleFunc("/payments/history", paymentHandler.GetHistory).Methods("GET")

	protected.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods("GET")
	protected.HandleFunc("/notifications/unread-count", notificationHandler.GetUnreadCount).Methods("GET")
	protected.HandleFunc("/notifications/read-all", notificationHandler.MarkAllAsRead).Methods("PUT")
	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")
	protected.HandleFunc("/notifications/{notificationId}/read", notificationHandler.MarkAsRead).Methods("PUT")

	// CORS configuration
	corsHandler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins([]string{"*"}),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorillaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorillaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
