package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"parkhub/internal/api"
	"parkhub/internal/auth"
	"parkhub/internal/cache"
	"parkhub/internal/config"
	"parkhub/internal/repository"
	"parkhub/internal/service"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	database, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := database.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	database.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	database.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	database.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Printf("WARNING: Redis unavailable at %s, caching disabled: %v", cfg.Redis.Addr, err)
		redisClient = nil
	}
	appCache := cache.New(redisClient)

	txRunner := repository.NewTxRunner(database)
	lotRepo := repository.NewLotRepository(database)
	reservationRepo := repository.NewReservationRepository(database)
	jobRepo := repository.NewJobRepository(database)
	userRepo := repository.NewUserRepository(database)

	authSvc := service.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	parkingSvc := service.NewParkingService(lotRepo, appCache)
	reservationSvc := service.NewReservationService(txRunner, lotRepo, reservationRepo, appCache)
	adminSvc := service.NewAdminService(txRunner, lotRepo, reservationRepo, appCache)
	jobSvc := service.NewJobService(jobRepo, service.NewSenderService())

	authHandler := api.NewAuthHandler(authSvc)
	parkingHandler := api.NewParkingHandler(parkingSvc)
	reservationHandler := api.NewReservationHandler(reservationSvc)
	adminHandler := api.NewAdminHandler(adminSvc)

	c := cron.New()
	if _, err := c.AddFunc(cfg.Jobs.ExpiryReminderSpec, func() {
		if err := jobSvc.SendExpiryReminders(context.Background()); err != nil {
			log.Printf("Error in expiry reminder job: %v", err)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule expiry reminder job: %v", err)
	}
	if _, err := c.AddFunc(cfg.Jobs.MonthlyReportSpec, func() {
		if err := jobSvc.SendMonthlyReports(context.Background()); err != nil {
			log.Printf("Error in monthly report job: %v", err)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule monthly report job: %v", err)
	}
	c.Start()
	defer c.Stop()

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/parking-lots", parkingHandler.ListLots).Methods("GET")
	r.HandleFunc("/api/parking-lots/{id}", parkingHandler.LotDetails).Methods("GET")

	// Authenticated endpoints
	user := r.PathPrefix("/api").Subrouter()
	user.Use(auth.RequireAuth(cfg.Auth.JWTSecret))
	user.HandleFunc("/reservations", reservationHandler.Create).Methods("POST")
	user.HandleFunc("/reservations", reservationHandler.List).Methods("GET")
	user.HandleFunc("/reservations/history", reservationHandler.History).Methods("GET")
	user.HandleFunc("/reservations/{id}/occupy", reservationHandler.Occupy).Methods("POST")
	user.HandleFunc("/reservations/{id}/release", reservationHandler.Release).Methods("POST")
	user.HandleFunc("/reservations/{id}/extend", reservationHandler.Extend).Methods("POST")
	user.HandleFunc("/reservations/{id}", reservationHandler.Cancel).Methods("DELETE")

	// Admin endpoints (protected)
	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(auth.RequireAuth(cfg.Auth.JWTSecret), auth.RequireAdmin)
	admin.HandleFunc("/dashboard", adminHandler.Dashboard).Methods("GET")
	admin.HandleFunc("/parking-lots", adminHandler.CreateLot).Methods("POST")
	admin.HandleFunc("/parking-lots/{id}", adminHandler.UpdateLot).Methods("PUT")
	admin.HandleFunc("/parking-lots/{id}", adminHandler.DeleteLot).Methods("DELETE")
	admin.HandleFunc("/reservations", adminHandler.ListReservations).Methods("GET")

	corsHandler := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handlers.LoggingHandler(log.Writer(), corsHandler(r)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	log.Printf("Server running on port %s", cfg.Server.Port)
	log.Fatal(srv.ListenAndServe())
}
