package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cliptAPI/handlers"
	"cliptAPI/internal/notification"
	"cliptAPI/internal/store"
	"cliptAPI/internal/workers"
	"cliptAPI/middleware"
	"cliptAPI/services"

	_ "net/http/pprof"
)

var (
	dbPool              *pgxpool.Pool
	demoMode            bool
	dataStore           store.Store
	profileService      *services.ProfileService
	achievementService  *services.AchievementService
	boostService        *services.BoostService
	notificationService *services.NotificationService
	fcmService          *notification.FCMService
	boostExpiryWorker   *workers.BoostExpiryWorker
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	demoMode = os.Getenv("DEMO_MODE") == "true"

	if demoMode {
		log.Println("Running in demo mode: in-memory store, no Clerk auth")
		dataStore = store.NewMemory()
	} else {
		clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
		if clerkSecretKey == "" {
			log.Fatal("CLERK_SECRET_KEY environment variable is not set")
		}
		clerk.SetKey(clerkSecretKey)
		log.Println("Clerk initialized successfully")

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
		dataStore = store.NewPostgres(dbPool)
	}

	notificationService = services.NewNotificationService(dataStore)
	profileService = services.NewProfileService(dataStore, notificationService)
	achievementService = services.NewAchievementService(dataStore, profileService, notificationService)
	simulator := services.NewBoostSimulator(dataStore)
	boostService = services.NewBoostService(dataStore, simulator, notificationService)

	fcmCredentials := os.Getenv("FCM_CREDENTIALS_FILE")
	if fcmCredentials == "" {
		fcmCredentials = "./serviceAccountKey.json"
	}
	var err error
	fcmService, err = notification.NewFCMService(fcmCredentials)
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		notificationService.SetPushProvider(fcmService)
		log.Println("FCM Push Provider initialized successfully")
	}

	pollInterval := time.Minute
	if raw := os.Getenv("BOOST_POLL_INTERVAL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			pollInterval = parsed
		} else {
			log.Printf("Warning: invalid BOOST_POLL_INTERVAL %q, using %s", raw, pollInterval)
		}
	}
	boostExpiryWorker, err = workers.NewBoostExpiryWorker(boostService, pollInterval)
	if err != nil {
		log.Fatal("Failed to create boost expiry worker:", err)
	}

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		if dbPool != nil {
			log.Println("Closing database connection pool...")
			dbPool.Close()
		}
	}()

	boostExpiryWorker.Start()

	// Initialize handlers
	profileHandler := handlers.NewProfileHandler(profileService)
	achievementHandler := handlers.NewAchievementHandler(achievementService, profileService)
	boostHandler := handlers.NewBoostHandler(boostService, profileService)
	notificationHandler := handlers.NewNotificationHandler(notificationService, profileService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if dbPool != nil {
			if err := dbPool.Ping(ctx); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "clipt-api"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	if demoMode {
		protected.Use(middleware.DemoAuthMiddleware)
	} else {
		protected.Use(middleware.ClerkAuthMiddleware)
	}

	protected.HandleFunc("/profile", profileHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/profile/xp", profileHandler.AwardXP).Methods("POST")
	protected.HandleFunc("/profile/tokens", profileHandler.AwardTokens).Methods("POST")
	protected.HandleFunc("/profile/tokens/spend", profileHandler.SpendTokens).Methods("POST")
	protected.HandleFunc("/profile/prestige", profileHandler.Prestige).Methods("POST")

	protected.HandleFunc("/achievements", achievementHandler.GetAchievements).Methods("GET")
	protected.HandleFunc("/achievements/{id}/progress", achievementHandler.UpdateProgress).Methods("PUT")
	protected.HandleFunc("/achievements/{id}/increment", achievementHandler.IncrementProgress).Methods("POST")

	protected.HandleFunc("/boosts", boostHandler.ApplyBoost).Methods("POST")
	protected.HandleFunc("/boosts/active", boostHandler.GetActiveBoosts).Methods("GET")
	protected.HandleFunc("/boosts/{id}", boostHandler.GetBoost).Methods("GET")
	protected.HandleFunc("/boosts/{id}", boostHandler.CancelBoost).Methods("DELETE")
	protected.HandleFunc("/boosts/{id}/metrics", boostHandler.RefreshMetrics).Methods("POST")
	protected.HandleFunc("/boosts/{id}/extend", boostHandler.ExtendBoost).Methods("POST")

	protected.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods("GET")
	protected.HandleFunc("/notifications/unread-count", notificationHandler.GetUnreadCount).Methods("GET")
	protected.HandleFunc("/notifications/{id}/read", notificationHandler.MarkAsRead).Methods("PUT")
	protected.HandleFunc("/notifications/read-all", notificationHandler.MarkAllAsRead).Methods("PUT")
	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret", "X-Demo-User"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
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

	boostExpiryWorker.Stop()
	notificationService.Stop()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
