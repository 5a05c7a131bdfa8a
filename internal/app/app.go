package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"taskManager/internal/config"
	"taskManager/internal/handlers"
	"taskManager/internal/logger"
	"taskManager/internal/middleware"
	"taskManager/internal/repository/task/inmemory"
	"taskManager/internal/repository/task/postgres"
	"taskManager/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type App struct {
	config     *config.Config
	server     *http.Server
	router     *chi.Mux
	repository service.TaskRepository // интерфейс!
	service    handlers.Service
	shutdowns  []func() // функции для graceful shutdown, выполняются в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) (*App, error) {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return nil, fmt.Errorf("инициализация логгера: %w", err)
	}

	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	repo, err := a.initRepository(ctx)
	if err != nil {
		a.Shutdown()
		return nil, err
	}
	a.repository = repo

	a.service = service.NewTaskService(a.repository)
	a.router = NewRouter(handlers.NewTaskHandler(a.service), a.config.HTTP)

	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      a.router,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}

	return a, nil
}

func (a *App) initRepository(ctx context.Context) (service.TaskRepository, error) {
	switch a.config.Repository.Type {
	case config.RepositoryInMemory:
		logger.Info("App: Используется хранилище в памяти")
		return inmemory.NewTaskStorage(), nil

	case config.RepositoryPostgres:
		storage, err := postgres.New(ctx, a.config.Database)
		if err != nil {
			return nil, fmt.Errorf("подключение к PostgreSQL: %w", err)
		}
		a.shutdowns = append(a.shutdowns, storage.Close)

		if a.config.Database.Migrate {
			if err := storage.Migrate(ctx); err != nil {
				return nil, fmt.Errorf("миграции: %w", err)
			}
		}
		return storage, nil

	default:
		return nil, fmt.Errorf("неизвестный тип репозитория: %q", a.config.Repository.Type)
	}
}

// NewRouter собирает маршруты API поверх готового обработчика
func NewRouter(taskHandler *handlers.TaskHandler, cfg config.HTTPConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	// без доверенного прокси лимит считается по адресу соединения, заголовки клиент подделает
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.Logging)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIdHeader},
			ExposedHeaders: []string{middleware.RequestIdHeader},
			MaxAge:         300,
		}))
	}

	r.Get("/health", taskHandler.HealthCheck)
	r.Method(http.MethodGet, "/metrics", middleware.MetricsHandler())

	r.Route("/api/tasks", func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(middleware.RateLimit(cfg.RateLimit))
		}
		if cfg.RequestTimeout > 0 {
			r.Use(chimw.Timeout(cfg.RequestTimeout))
		}

		r.Get("/", taskHandler.ListTasks) // GET /api/tasks?search=&sort=
		r.Post("/", taskHandler.CreateTask)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", taskHandler.GetTaskByID)
			r.Put("/", taskHandler.UpdateTaskByID)
			r.Delete("/", taskHandler.DeleteTaskByID)
		})
	})

	return r
}

// Run обслуживает запросы, пока не отменён ctx, затем останавливает сервер
func (a *App) Run(ctx context.Context) error {
	defer a.Shutdown()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("App: Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			logger.Error("App: Сервер остановлен с ошибкой", err)
			return fmt.Errorf("http сервер: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("App: Остановка сервера")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("App: Ошибка остановки сервера", err)
		return fmt.Errorf("остановка сервера: %w", err)
	}
	logger.Info("App: Сервер остановлен")
	return nil
}

func (a *App) Shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}
