package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prepkit-sync-server/internal/config"
	"prepkit-sync-server/internal/handler"
	"prepkit-sync-server/internal/middleware"
	"prepkit-sync-server/internal/repository"
	"prepkit-sync-server/internal/service"
	"prepkit-sync-server/internal/websocket"

	"github.com/gorilla/mux"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Config] Failed to load configuration: %v", err)
	}

	gormLogLevel := logger.Warn
	if cfg.Server.Env == "development" {
		gormLogLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel),
	})
	if err != nil {
		log.Fatalf("[Database] Failed to connect: %v", err)
	}

	if err := repository.AutoMigrate(db); err != nil {
		log.Fatalf("[Database] Failed to migrate: %v", err)
	}
	log.Println("[Database] Connected and migrated")

	// Repositories
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	moduleRepo := repository.NewModuleRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	drillRepo := repository.NewDrillRepository(db)
	resultRepo := repository.NewResultRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	contactRepo := repository.NewContactRepository(db)
	deviceRepo := repository.NewDeviceRepository(db)

	// WebSocket alert feed
	wsManager := websocket.NewManager(
		cfg.WebSocket.MaxConnPerUser,
		cfg.WebSocket.WriteWait,
		cfg.WebSocket.PongWait,
		cfg.WebSocket.PingPeriod,
	)
	wsManager.SetMessageHandler(handler.NewAlertFeedMessageHandler())
	go wsManager.Run()

	broadcaster := handler.NewFeedBroadcaster(wsManager)

	// Services
	authService := service.NewAuthService(userRepo, profileRepo, cfg.JWT.Secret, cfg.JWT.Expiration, cfg.JWT.RefreshTokenExpiration)
	userService := service.NewUserService(userRepo, profileRepo)
	contentService := service.NewContentService(moduleRepo, lessonRepo, quizRepo, resultRepo)
	drillService := service.NewDrillService(drillRepo, resultRepo)
	progressService := service.NewProgressService(progressRepo, lessonRepo)
	alertService := service.NewAlertService(alertRepo, broadcaster)
	contactService := service.NewContactService(contactRepo)
	deviceService := service.NewDeviceService(deviceRepo)
	syncService := service.NewSyncService(progressService, drillService, contentService, userService, alertService, contactService, deviceService, broadcaster, cfg.Sync.BatchSize)
	statsService := service.NewStatsService(progressRepo, resultRepo, moduleRepo, drillRepo, userRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	moduleHandler := handler.NewModuleHandler(contentService)
	quizHandler := handler.NewQuizHandler(contentService)
	drillHandler := handler.NewDrillHandler(drillService)
	progressHandler := handler.NewProgressHandler(progressService)
	alertHandler := handler.NewAlertHandler(alertService)
	contactHandler := handler.NewContactHandler(contactService)
	deviceHandler := handler.NewDeviceHandler(deviceService)
	syncHandler := handler.NewSyncHandler(syncService, deviceService)
	statsHandler := handler.NewStatsHandler(statsService)
	wsHandler := handler.NewWebSocketHandler(wsManager, cfg.JWT.Secret)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go alertService.RunPurge(ctx, cfg.Alerts.PurgeInterval)
	if cfg.Alerts.SimulatorEnabled {
		go alertService.RunSimulator(ctx, cfg.Alerts.SimulatorInterval, cfg.Alerts.SimulatedTTL)
		log.Printf("[Alerts] Simulator enabled, interval %s", cfg.Alerts.SimulatorInterval)
	}

	r := mux.NewRouter()
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/auth/refresh", authHandler.Refresh).Methods("POST")

	// Authenticated routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret))

	protected.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST")

	protected.HandleFunc("/users/me", userHandler.Me).Methods("GET")
	protected.HandleFunc("/users/me/profile", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/users/me/profile", userHandler.UpdateProfile).Methods("PUT")

	protected.HandleFunc("/modules", moduleHandler.List).Methods("GET")
	protected.HandleFunc("/modules", moduleHandler.Create).Methods("POST")
	protected.HandleFunc("/modules/{id}", moduleHandler.Get).Methods("GET")
	protected.HandleFunc("/modules/{id}", moduleHandler.Update).Methods("PUT")
	protected.HandleFunc("/modules/{id}", moduleHandler.Delete).Methods("DELETE")
	protected.HandleFunc("/modules/{id}/lessons", moduleHandler.ListLessons).Methods("GET")
	protected.HandleFunc("/lessons/{lessonId}/quizzes", moduleHandler.ListQuizzes).Methods("GET")
	protected.HandleFunc("/quizzes/results", quizHandler.SubmitResult).Methods("POST")

	protected.HandleFunc("/drills", drillHandler.List).Methods("GET")
	protected.HandleFunc("/drills", drillHandler.Create).Methods("POST")
	protected.HandleFunc("/drills/results", drillHandler.SubmitResult).Methods("POST")
	protected.HandleFunc("/drills/results/history", drillHandler.ListResults).Methods("GET")
	protected.HandleFunc("/drills/{id}", drillHandler.Get).Methods("GET")

	protected.HandleFunc("/progress/modules", progressHandler.ListModules).Methods("GET")
	protected.HandleFunc("/progress/modules", progressHandler.UpsertModule).Methods("PUT")
	protected.HandleFunc("/progress/modules/{moduleId}", progressHandler.GetModule).Methods("GET")
	protected.HandleFunc("/progress/lessons", progressHandler.UpsertLesson).Methods("PUT")

	protected.HandleFunc("/alerts", alertHandler.ListActive).Methods("GET")
	protected.HandleFunc("/alerts", alertHandler.Create).Methods("POST")
	protected.HandleFunc("/alerts/views", alertHandler.ListViews).Methods("GET")
	protected.HandleFunc("/alerts/{id}/view", alertHandler.MarkViewed).Methods("POST")

	protected.HandleFunc("/contacts", contactHandler.List).Methods("GET")
	protected.HandleFunc("/contacts", contactHandler.Create).Methods("POST")
	protected.HandleFunc("/contacts/{id}", contactHandler.Update).Methods("PUT")
	protected.HandleFunc("/contacts/{id}", contactHandler.Delete).Methods("DELETE")
	protected.HandleFunc("/contacts/{id}/access", contactHandler.RecordAccess).Methods("POST")

	protected.HandleFunc("/devices", deviceHandler.Register).Methods("POST")
	protected.HandleFunc("/devices", deviceHandler.List).Methods("GET")
	protected.HandleFunc("/devices/{id}", deviceHandler.Revoke).Methods("DELETE")

	protected.HandleFunc("/sync/operations", syncHandler.ApplyOperations).Methods("POST")
	protected.HandleFunc("/sync/status", syncHandler.Status).Methods("GET")

	protected.HandleFunc("/stats/summary", statsHandler.Summary).Methods("GET")
	protected.HandleFunc("/stats/achievements", statsHandler.Achievements).Methods("GET")
	protected.HandleFunc("/stats/badges", statsHandler.Badges).Methods("GET")
	protected.HandleFunc("/stats/leaderboard", statsHandler.Leaderboard).Methods("GET")

	// WebSocket endpoint authenticates inside the handler (query token).
	r.HandleFunc("/ws/alerts", wsHandler.HandleConnection)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("[Server] Listening on %s (env: %s)", addr, cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[Server] Failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[Server] Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("[Server] Forced shutdown: %v", err)
	}

	log.Println("[Server] Stopped")
}
