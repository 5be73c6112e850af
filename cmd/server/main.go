package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"vgate-backend/internal/auth"
	"vgate-backend/internal/cache"
	"vgate-backend/internal/config"
	"vgate-backend/internal/database"
	"vgate-backend/internal/db"
	"vgate-backend/internal/handlers"
	"vgate-backend/internal/health"
	vhttp "vgate-backend/internal/http"
	"vgate-backend/internal/middleware"
	"vgate-backend/internal/monitoring"
	"vgate-backend/internal/repositories"
	"vgate-backend/internal/services"
	"vgate-backend/migrations"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	pool := db.Connect(cfg)
	defer pool.Close()

	if err := database.NewMigrator(pool, migrations.FS, logger).Run(context.Background()); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	redisCache := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.CacheTTL)
	defer redisCache.Close()
	if redisCache.Enabled() {
		logger.Info("redis cache enabled", zap.String("addr", cfg.Redis.Addr))
	} else {
		logger.Info("redis cache disabled, serving straight from postgres")
	}

	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.TTL)

	studentRepo := repositories.NewStudentRepository(pool)
	tutorRepo := repositories.NewTutorRepository(pool)
	gatePassRepo := repositories.NewGatePassRepository(pool)

	studentService := services.NewStudentService(studentRepo, tutorRepo, jwtManager)
	tutorService := services.NewTutorService(tutorRepo, jwtManager)
	gatePassService := services.NewGatePassService(gatePassRepo, studentRepo)
	returnService := services.NewReturnService(gatePassRepo, studentRepo)
	notificationService := services.NewNotificationService(gatePassRepo, studentRepo)
	staffService := services.NewStaffService(services.StaffCredentials{
		AdminUsername:        cfg.Staff.AdminUsername,
		AdminPasswordHash:    cfg.Staff.AdminPasswordHash,
		SecurityUsername:     cfg.Staff.SecurityUsername,
		SecurityPasswordHash: cfg.Staff.SecurityPasswordHash,
	}, jwtManager)

	monitor := monitoring.NewMonitor(logger)
	monitor.StartCollection(10 * time.Second)
	healthChecker := health.NewHealthChecker(pool, redisCache)

	router := vhttp.NewRouter(vhttp.Handlers{
		Student:      handlers.NewStudentHandler(studentService),
		Tutor:        handlers.NewTutorHandler(tutorService),
		GatePass:     handlers.NewGatePassHandler(gatePassService, redisCache),
		Security:     handlers.NewSecurityHandler(returnService, redisCache),
		Notification: handlers.NewNotificationHandler(notificationService),
		Staff:        handlers.NewStaffHandler(staffService),
		Verification: handlers.NewVerificationHandler(gatePassService),
		Ops:          handlers.NewOpsHandler(healthChecker, monitor),
	}, middleware.NewAuthMiddleware(jwtManager), logger)

	corsMiddleware := middleware.NewCORS(cfg)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      corsMiddleware(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
