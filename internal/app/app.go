package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blog_backend/internal/auth"
	"blog_backend/internal/config"
	"blog_backend/internal/database"
	"blog_backend/internal/email"
	"blog_backend/internal/handlers"
	"blog_backend/internal/imageprocessor"
	"blog_backend/internal/logger"
	"blog_backend/internal/middleware"
	"blog_backend/internal/repositories"
	"blog_backend/internal/routes"
	"blog_backend/internal/services"
	"blog_backend/internal/storage"
	"blog_backend/internal/validator"
	"blog_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// App - собранное приложение: хранилище, сервисы и HTTP роутер
type App struct {
	cfg      *config.Config
	store    *repositories.Store
	storage  storage.Storage
	services *services.ServiceContainer
	router   *gin.Engine
}

// Option подменяет зависимости при сборке (тесты)
type Option func(*deps)

type deps struct {
	store   *repositories.Store
	storage storage.Storage
	mailer  services.ResetMailer
}

func WithStore(store *repositories.Store) Option {
	return func(d *deps) { d.store = store }
}

func WithMailer(m services.ResetMailer) Option {
	return func(d *deps) { d.mailer = m }
}

func Run() {
	cfg, err := config.Load("")
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := New(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize application", "error", err)
	}

	if err := application.Serve(ctx); err != nil {
		logger.Fatal("Server error", "error", err)
	}
}

// New открывает хранилище и image host, собирает сервисы и роутер,
// создает администратора из конфигурации
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	apperrors.SetDebug(cfg.IsDevelopment())
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	d := &deps{}
	for _, opt := range opts {
		opt(d)
	}

	if d.store == nil {
		logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
		store, err := database.Open(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		d.store = store
	}

	if d.storage == nil {
		st, err := storage.NewStorage(ctx, cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		d.storage = st
		logger.Info("Storage initialized", "type", cfg.Storage.Type)
	}

	if d.mailer == nil {
		sender, err := email.NewSender(cfg.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize email sender: %w", err)
		}
		d.mailer = email.NewMailer(sender, email.NewTemplateManager(), cfg.Email.ResetURL)
	}

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)
	serviceContainer := initializeServices(cfg, d, tokens)

	if err := seedFirstAdmin(ctx, serviceContainer.AuthService, cfg); err != nil {
		return nil, fmt.Errorf("failed to seed first admin user: %w", err)
	}

	a := &App{
		cfg:      cfg,
		store:    d.store,
		storage:  d.storage,
		services: serviceContainer,
	}
	a.router = a.setupRouter(tokens)
	return a, nil
}

// Handler - HTTP обработчик приложения
func (a *App) Handler() http.Handler {
	return a.router
}

// Serve слушает адрес из конфигурации до отмены ctx, затем корректно останавливается
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Address(),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("Server starting on %s", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	if err := a.store.Close(shutdownCtx); err != nil {
		logger.Error("Failed to close database", "error", err)
	}
	logger.Info("Server stopped")
	return nil
}

func initializeServices(cfg *config.Config, d *deps, tokens *auth.TokenManager) *services.ServiceContainer {
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	processor := imageprocessor.NewProcessor(cfg.Upload.ImageQuality, cfg.Upload.MaxDimension)

	imageService := services.NewImageService(d.storage, processor, cfg.Upload.MaxSize)
	authService := services.NewAuthService(d.store.Users, hasher, tokens, d.mailer, services.AuthOptions{
		ResetTTL:       cfg.Auth.ResetTokenTTL,
		ResetCodeBytes: cfg.Auth.ResetCodeBytes,
	})

	return &services.ServiceContainer{
		AuthService:     authService,
		UserService:     services.NewUserService(d.store, hasher, imageService),
		PostService:     services.NewPostService(d.store, imageService, cfg.Posts.PerPage),
		CommentService:  services.NewCommentService(d.store),
		CategoryService: services.NewCategoryService(d.store.Categories),
		ImageService:    imageService,
	}
}

func initializeHandlers(cfg *config.Config, svc *services.ServiceContainer, authenticator *middleware.Authenticator, store *repositories.Store) *handlers.AppHandlers {
	baseHandler := handlers.NewBaseHandler(validator.New(), cfg.Upload.MaxSize)

	return &handlers.AppHandlers{
		AuthHandler:     handlers.NewAuthHandler(baseHandler, svc.AuthService, authenticator),
		UserHandler:     handlers.NewUserHandler(baseHandler, svc.UserService, authenticator),
		PostHandler:     handlers.NewPostHandler(baseHandler, svc.PostService, authenticator),
		CommentHandler:  handlers.NewCommentHandler(baseHandler, svc.CommentService, authenticator),
		CategoryHandler: handlers.NewCategoryHandler(baseHandler, svc.CategoryService, authenticator),
		HealthHandler:   handlers.NewHealthHandler(store.Ping),
	}
}

func (a *App) setupRouter(tokens *auth.TokenManager) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(a.cfg.Server.CORSOrigins))
	if a.cfg.Metrics.Enabled {
		router.Use(middleware.MetricsMiddleware())
	}

	appHandlers := initializeHandlers(a.cfg, a.services, middleware.NewAuthenticator(tokens), a.store)

	opts := routes.OptionsFromConfig(a.cfg)
	if local, ok := a.storage.(*storage.LocalStorage); ok {
		opts.UploadsDir = local.BasePath()
		opts.UploadsURL = uploadsPath(a.cfg.Storage.BaseURL)
	}
	routes.RegisterRoutes(router, appHandlers, opts)

	return router
}

// uploadsPath - путь маршрута статики из base_url локального хранилища
func uploadsPath(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return "/uploads"
	}
	return u.Path
}

func seedFirstAdmin(ctx context.Context, authService services.AuthService, cfg *config.Config) error {
	if cfg.Admin.Email == "" || cfg.Admin.Password == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	created, err := authService.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password)
	if err != nil {
		return err
	}
	if created {
		logger.Warn("First admin user created", "email", cfg.Admin.Email)
	} else {
		logger.Info("Admin user already exists. Skipping creation.", "email", cfg.Admin.Email)
	}
	return nil
}
