package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/Materiales-api/docs"
	appanalytics "github.com/jhoicas/Materiales-api/internal/application/analytics"
	"github.com/jhoicas/Materiales-api/internal/application/inventory"
	"github.com/jhoicas/Materiales-api/internal/application/usecase"
	"github.com/jhoicas/Materiales-api/internal/infrastructure/notify"
	infrapdf "github.com/jhoicas/Materiales-api/internal/infrastructure/pdf"
	httpRouter "github.com/jhoicas/Materiales-api/internal/interfaces/http"
	"github.com/jhoicas/Materiales-api/pkg/config"
	"github.com/jhoicas/Materiales-api/pkg/logger"
	"github.com/jhoicas/Materiales-api/pkg/telemetry"
)

// @title           Materiales API
// @version         1.0
// @description     Ledger de movimientos de material: entregas, ajustes, stock y alertas.
// @BasePath        /
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("storage", cfg.Storage.Driver).
		Strs("notify_sinks", cfg.Notify.Sinks).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
		Endpoint:    cfg.Telemetry.Endpoint,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("configurar telemetría")
	}

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer store.Close()

	sink, closeSinks := buildSinks(cfg, store, log)
	defer closeSinks()

	monitor := inventory.NewThresholdMonitor(store.Users, sink, log.Component("threshold_monitor"), inventory.MonitorConfig{
		Async:       cfg.Notify.Async,
		MaxParallel: cfg.Notify.MaxParallel,
		Timeout:     cfg.Notify.Timeout,
	})
	registerMovementUC := inventory.NewRegisterMovementUseCase(
		store.TxRunner, store.Materials, store.Warehouses, monitor,
		log.Component("registrar"),
		inventory.RegistrarConfig{
			MaxAttempts:          uint(cfg.Ledger.MaxRetries) + 1,
			RetryInitialInterval: cfg.Ledger.RetryDelay,
		},
	)
	projector := inventory.NewStockProjector(store.Stock, store.Movements)
	queryService := inventory.NewQueryService(store.Movements)
	consumptionUC := inventory.NewConsumptionUseCase(store.Movements, store.Consumptions)
	exportUC := inventory.NewExportUseCase(queryService, store.Materials, store.Warehouses, infrapdf.NewKardexGenerator())
	materialUC := usecase.NewMaterialUseCase(store.Materials, store.Warehouses)
	warehouseUC := usecase.NewWarehouseUseCase(store.Warehouses)
	dashboardUC := appanalytics.NewDashboardUseCase(store.Analytics)
	usageUC := appanalytics.NewUsageUseCase(store.Analytics)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Materiales API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := store.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.Storage.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		MaterialUC:       materialUC,
		WarehouseUC:      warehouseUC,
		RegisterMovement: registerMovementUC,
		Projector:        projector,
		Query:            queryService,
		Consumption:      consumptionUC,
		Export:           exportUC,
		Dashboard:        dashboardUC,
		Usage:            usageUC,
		MaterialRepo:     store.Materials,
		JWTSecret:        cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	// Las alertas en curso se entregan antes de cerrar sinks y pool.
	monitor.Wait()
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado de telemetría")
	}

	log.Info().Msg("aplicación detenida")
}

// buildSinks arma el fan-out de destinos de alertas según NOTIFY_SINKS.
func buildSinks(cfg *config.Config, store *storage, log *logger.Logger) (inventory.NotificationSink, func()) {
	var sinks notify.Fanout
	closers := []func(){}
	for _, name := range cfg.Notify.Sinks {
		switch name {
		case "postgres", "store":
			sinks = append(sinks, notify.NewRepositorySink(store.Notifications))
		case "webhook":
			sinks = append(sinks, notify.NewWebhookSink(cfg.Notify.WebhookURL, cfg.Notify.Timeout))
		case "redis":
			client := notify.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
			closers = append(closers, func() { _ = client.Close() })
			sinks = append(sinks, notify.NewRedisSink(client, cfg.Redis.Channel))
		case "log":
			sinks = append(sinks, notify.NewLogSink(log.Component("notify")))
		default:
			log.Warn().Str("sink", name).Msg("sink de notificación desconocido, se ignora")
		}
	}
	if len(sinks) == 0 {
		sinks = append(sinks, notify.NewLogSink(log.Component("notify")))
	}
	return sinks, func() {
		for _, c := range closers {
			c()
		}
	}
}
