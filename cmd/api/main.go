package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/config"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	appHTTP "github.com/cmlabs-hris/hris-payroll-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/events"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/postgresql"
	redisRepo "github.com/cmlabs-hris/hris-payroll-go/internal/repository/redis"
	payrollService "github.com/cmlabs-hris/hris-payroll-go/internal/service/payroll"
	"github.com/go-chi/httplog/v3"
	goredis "github.com/redis/go-redis/v9"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	level := parseLogLevel(cfg.App.LogLevel)
	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-payroll"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	transactor := postgresql.NewTransactor(db)
	salaryRepo := postgresql.NewSalaryRepository(db)
	salaryChangeRepo := postgresql.NewSalaryChangeRepository(db)
	salaryComponentRepo := postgresql.NewSalaryComponentRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	workingDaysRepo := postgresql.NewWorkingDaysRepository(db)

	var workingDaysFront payroll.WorkingDaysStore
	if cfg.Redis.Enabled() {
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Warn("Redis unavailable, working days served from postgres only", "addr", cfg.Redis.Addr, "error", err)
		} else {
			workingDaysFront = redisRepo.NewWorkingDaysCache(rdb, cfg.Redis.TTL)
			slog.Info("Redis working days cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL)
		}
	}

	publisher := events.NewNoopPublisher()
	if cfg.Kafka.Enabled() {
		writer := events.NewKafkaWriter(cfg.Kafka.Brokers)
		defer func() {
			if err := writer.Close(); err != nil {
				slog.Error("Error closing kafka writer", "error", err)
			}
		}()
		publisher = events.NewKafkaPublisher(writer, cfg.Kafka.Topic)
		slog.Info("Kafka salary events enabled", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	workingDays := payrollService.NewWorkingDaysCalculator(workingDaysRepo, workingDaysFront, holidayRepo)
	payrollSvc := payrollService.NewPayrollService(
		transactor,
		salaryRepo,
		salaryChangeRepo,
		salaryComponentRepo,
		employeeRepo,
		workingDays,
		publisher,
	)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpirationTime)
	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)

	router := appHTTP.NewRouter(JWTService, payrollHandler, appHTTP.RouterOptions{
		AllowedOrigins: cfg.App.AllowedOrigins,
		Logger:         logger,
		LogLevel:       level,
	})

	var scheduler *cron.Scheduler
	if cfg.Scheduler.Enabled {
		scheduler = cron.NewScheduler()
		payrollJobs := cron.NewPayrollJobs(payrollSvc, employeeRepo)
		if err := payrollJobs.RegisterJobs(scheduler); err != nil {
			slog.Error("Error registering cron jobs", "error", err)
			os.Exit(1)
		}
		scheduler.Start()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			slog.Error("Server error", "error", err)
		}
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
	if scheduler != nil {
		scheduler.Stop()
	}
	slog.Info("Server stopped")
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
