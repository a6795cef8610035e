package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/n8ngeorgia/orderdesk/internal/config"
	"github.com/n8ngeorgia/orderdesk/internal/handlers"
	"github.com/n8ngeorgia/orderdesk/internal/migrations"
	"github.com/n8ngeorgia/orderdesk/internal/notify"
	"github.com/n8ngeorgia/orderdesk/internal/services"
	"github.com/n8ngeorgia/orderdesk/internal/storage"
)

// App структура для управления приложением и его зависимостями.
type App struct {
	cfg    *config.Config
	dbPool *pgxpool.Pool
	echo   *echo.Echo

	// Handlers
	orderHandler *handlers.OrderHandler
}

// NewApp создаёт и инициализирует новое приложение.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{
		cfg: cfg,
	}

	if err := app.initDatabase(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initDependencies(); err != nil {
		return nil, fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	app.initServer()

	return app, nil
}

// initDatabase инициализирует подключение к базе данных и выполняет миграции.
func (app *App) initDatabase(ctx context.Context) error {
	if app.cfg.DatabaseURI == "" {
		return fmt.Errorf("DATABASE_URI is required")
	}

	// Применение миграций
	log.Println("Running database migrations...")
	sqlDB, err := sql.Open("pgx", app.cfg.DatabaseURI)
	if err != nil {
		return fmt.Errorf("unable to open database connection: %w", err)
	}
	defer sqlDB.Close()

	if err := migrations.Run(sqlDB); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Println("Migrations completed successfully")

	// Подключение к базе данных через pgxpool
	dbPool, err := pgxpool.New(ctx, app.cfg.DatabaseURI)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		return fmt.Errorf("unable to ping database: %w", err)
	}

	app.dbPool = dbPool
	log.Println("Successfully connected to database")

	return nil
}

// initDependencies инициализирует все зависимости приложения
// (storage, senders, services, handlers). Отсутствие учётных данных
// канала уведомлений не мешает запуску: канал просто отключается
// с предупреждением в логе.
func (app *App) initDependencies() error {
	// Storage layer
	orderStorage := storage.NewPostgresOrderStorage(app.dbPool)

	fileStore, err := storage.NewFileStore(app.cfg.UploadDir)
	if err != nil {
		return fmt.Errorf("failed to initialize file store: %w", err)
	}

	// Каналы уведомлений
	emailSender := notify.NewSendGridEmailSender(app.cfg.SendGridAPIKey, app.cfg.FromEmail, app.cfg.AdminEmail, log.Default())
	chatNotifier := notify.NewSlackNotifier(app.cfg.SlackWebhookURL, log.Default())

	// Service layer
	orderService := services.NewOrderService(orderStorage, fileStore, emailSender, chatNotifier, log.Default())

	// Handler layer
	app.orderHandler = handlers.NewOrderHandler(orderService)

	return nil
}

// initServer инициализирует HTTP-сервер и настраивает маршруты.
func (app *App) initServer() {
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{app.cfg.ClientOrigin},
		AllowMethods:     []string{echo.GET, echo.POST, echo.PATCH, echo.DELETE},
		AllowCredentials: app.cfg.ClientOrigin != "*",
	}))

	// Тело ошибки в формате {"error": ...}, как ожидает клиент
	e.HTTPErrorHandler = jsonErrorHandler

	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Hello from server")
	})

	e.POST("/api/orders", app.orderHandler.CreateOrder)
	e.GET("/api/orders", app.orderHandler.ListOrders)
	e.GET("/api/orders/by-order-id/:orderId", app.orderHandler.GetOrderByOrderID)
	e.GET("/api/orders/:id", app.orderHandler.GetOrder)
	e.PATCH("/api/orders/:id", app.orderHandler.UpdateOrder)
	e.DELETE("/api/orders/:id", app.orderHandler.DeleteOrder)

	app.echo = e
}

// jsonErrorHandler переводит ошибки хендлеров в тело {"error": string}.
func jsonErrorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	message := "internal server error"

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		message = fmt.Sprintf("%v", he.Message)
	}

	if c.Response().Committed {
		return
	}
	if jsonErr := c.JSON(code, map[string]string{"error": message}); jsonErr != nil {
		c.Logger().Errorf("failed to write error response: %v", jsonErr)
	}
}

// Start запускает приложение.
func (app *App) Start() error {
	log.Printf("Starting server on %s", app.cfg.RunAddress)
	if err := app.echo.Start(app.cfg.RunAddress); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}

	return nil
}

// Shutdown корректно завершает работу приложения.
func (app *App) Shutdown(ctx context.Context) error {
	log.Println("Shutting down server...")

	if err := app.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	if app.dbPool != nil {
		app.dbPool.Close()
	}

	log.Println("Server gracefully stopped")
	return nil
}
