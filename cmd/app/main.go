package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/team-dashboard-api/internal/cache"
	"github.com/BuzzLyutic/team-dashboard-api/internal/config"
	"github.com/BuzzLyutic/team-dashboard-api/internal/dashboard"
	"github.com/BuzzLyutic/team-dashboard-api/internal/handler"
	"github.com/BuzzLyutic/team-dashboard-api/internal/repo"
	"github.com/BuzzLyutic/team-dashboard-api/internal/seed"
	"github.com/BuzzLyutic/team-dashboard-api/internal/service"
)

type stores struct {
	tasks     repo.TaskRepository
	employees repo.EmployeeRepository
	close     func()
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("Failed to load config", zap.Error(err))
	}

	// Подключаем логгер
	logger, _ := zap.NewProduction()
	if cfg.LogDevelopment {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	ctx := context.Background()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open store", zap.String("store", cfg.Store), zap.Error(err))
	}
	defer st.close()

	opts := service.Options{StrictDelete: cfg.StrictDelete}
	if cfg.LatencyEnabled {
		opts.Latency = service.Latency{
			Mutation: cfg.LatencyMutation,
			List:     cfg.LatencyList,
			Read:     cfg.LatencyRead,
		}
	}

	queryCache, err := cache.New(cfg.CacheSize)
	if err != nil {
		logger.Fatal("Failed to create query cache", zap.Error(err))
	}

	client := dashboard.NewClient(
		service.NewTaskService(st.tasks, logger, opts),
		service.NewEmployeeService(st.employees, logger, opts),
		queryCache,
		logger,
	)

	srv := http.Server{ // Создаем сервер
		Addr: ":" + cfg.Port,
		Handler: handler.NewRouter(client, logger, handler.RouterOptions{
			CORSOrigins:    cfg.CORSOrigins,
			RequestLogging: cfg.RequestLogging,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() { // Запуск сервера и обработка ошибок
		logger.Info("Server started", zap.String("addr", srv.Addr), zap.String("store", cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
		return
	}
	logger.Info("Server stopped successfully!")
}

func openStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (stores, error) {
	switch cfg.Store {
	case config.StorePostgres:
		// Подключаем БД
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return stores{}, err
		}
		if err := pool.Ping(ctx); err != nil { // Пытаемся пингануть БД
			pool.Close()
			return stores{}, err
		}
		logger.Info("Successfully connected to the Database!")

		if cfg.AutoMigrate {
			if err := repo.Migrate(ctx, pool); err != nil {
				pool.Close()
				return stores{}, err
			}
		}

		tasks, employees := repo.NewTaskRepo(pool), repo.NewEmployeeRepo(pool)
		if err := loadSeed(ctx, cfg.SeedFile, false, tasks, employees, logger); err != nil {
			pool.Close()
			return stores{}, err
		}
		return stores{tasks: tasks, employees: employees, close: pool.Close}, nil

	case config.StoreNone:
		logger.Warn("Running without a store, every call reports the backend as unavailable")
		return stores{
			tasks:     repo.UnavailableTaskRepo{},
			employees: repo.UnavailableEmployeeRepo{},
			close:     func() {},
		}, nil

	default:
		tasks := repo.NewMemoryTaskRepo()
		employees := repo.NewMemoryEmployeeRepo(tasks)
		if err := loadSeed(ctx, cfg.SeedFile, true, tasks, employees, logger); err != nil {
			return stores{}, err
		}
		return stores{tasks: tasks, employees: employees, close: func() {}}, nil
	}
}

// loadSeed applies SEED_FILE, or the built-in fixtures when fallback is set.
func loadSeed(ctx context.Context, path string, fallback bool, tasks repo.TaskSeeder, employees repo.EmployeeSeeder, logger *zap.Logger) error {
	var (
		f   seed.File
		err error
	)
	switch {
	case path != "":
		f, err = seed.Load(path)
	case fallback:
		f, err = seed.Default()
	default:
		return nil
	}
	if err != nil {
		return err
	}

	if err := seed.Apply(ctx, tasks, employees, f); err != nil {
		return err
	}
	logger.Info("Seeded store", zap.Int("employees", len(f.Employees)), zap.Int("tasks", len(f.Tasks)))
	return nil
}
