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

	"alcyxob/plan-compiler/internal/api"
	"alcyxob/plan-compiler/internal/config"
	"alcyxob/plan-compiler/internal/repository/mongo"
	"alcyxob/plan-compiler/internal/service"
	"alcyxob/plan-compiler/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting Plan Compiler Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		if err := mongo.EnsureWorkoutIndexes(ctx, appDB.Collection("workouts")); err != nil {
			log.Printf("WARN: Failed to create workout indexes: %v", err)
		}
		if err := mongo.EnsureCalendarIndexes(ctx, appDB.Collection("calendar")); err != nil {
			log.Printf("WARN: Failed to create calendar indexes: %v", err)
		}
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	var fileStorage storage.FileStorage
	if cfg.S3.Enabled {
		log.Println("Initializing file storage service...")
		fileStorage, err = storage.NewS3Storage(cfg.S3)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
		}
	} else {
		log.Println("Export archiving disabled; skipping S3 storage initialization.")
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	workoutRepo := mongo.NewMongoWorkoutRepository(appDB)
	calendarRepo := mongo.NewMongoCalendarRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(cfg.Auth.Username, cfg.Auth.PasswordHash, cfg.JWT.Secret, cfg.JWT.Expiration)
	planService := service.NewPlanService(workoutRepo, fileStorage)
	scheduleService := service.NewScheduleService(workoutRepo, calendarRepo, cfg.Planner.Weekdays())

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, authService, planService, scheduleService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
