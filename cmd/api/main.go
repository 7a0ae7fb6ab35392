package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/jhoicas/gastro-facturacion/docs"
	"github.com/jhoicas/gastro-facturacion/internal/application/billing"
	"github.com/jhoicas/gastro-facturacion/internal/application/usecase"
	infrafactus "github.com/jhoicas/gastro-facturacion/internal/infrastructure/factus"
	infrapdf "github.com/jhoicas/gastro-facturacion/internal/infrastructure/pdf"
	"github.com/jhoicas/gastro-facturacion/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/gastro-facturacion/internal/interfaces/http"
	"github.com/jhoicas/gastro-facturacion/pkg/config"
	"github.com/jhoicas/gastro-facturacion/pkg/logger"
	"github.com/jhoicas/gastro-facturacion/pkg/vault"
)

// @title                       Gastro POS - Facturación electrónica
// @version                     1.0
// @description                 Integración multi-restaurante con Factus (DIAN).
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("factus", cfg.Factus.BaseURL).
		Msg("iniciando aplicación")
	if cfg.UsingDevEncryptionKey() {
		log.Warn().Msg("ENCRYPTION_KEY no definido: usando llave de desarrollo")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	credentialVault, err := vault.New(cfg.Security.EncryptionKey)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar vault de credenciales")
	}

	tenantRepo := postgres.NewTenantRepository(pool)
	rangeRepo := postgres.NewNumberingRangeRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Una sesión Factus nueva por operación: las credenciales se leen del tenant en cada llamada
	sessions := infrafactus.NewSessionFactory(tenantRepo, credentialVault, infrafactus.Settings{
		BaseURL:     cfg.Factus.BaseURL,
		TokenMargin: cfg.Factus.TokenMargin,
		Timeout:     cfg.Factus.Timeout,
	}, log.Component("factus"), infrafactus.NewMetrics(registry))
	gateways := billing.GatewayFactoryFunc(func(ctx context.Context, tenantID string) (billing.Gateway, error) {
		gw, err := sessions.CreateSessionFor(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		return gw, nil
	})

	synchronizer := billing.NewRangeSynchronizer(tenantRepo, rangeRepo, txRunner, gateways, log.Component("ranges"))
	orchestrator := billing.NewInvoiceOrchestrator(rangeRepo, invoiceRepo, txRunner, gateways, log.Component("invoices"))
	catalog := billing.NewCatalogService(gateways, cfg.Factus.CatalogCache, log.Component("catalog"))
	tickets := billing.NewTicketService(tenantRepo, rangeRepo, invoiceRepo, infrapdf.NewTicketRenderer())
	tenantUC := usecase.NewTenantUseCase(tenantRepo, credentialVault, log.Component("tenants"))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: 2 * cfg.Factus.Timeout, // llamada a Factus más el reintento por 401
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(log.Component("http")),
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Gastro POS - Facturación",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.Map{"status": "ok", "service": cfg.App.Name, "database": "ok"}
		if err := pool.Ping(c.Context()); err != nil {
			status["status"], status["database"] = "degraded", "unreachable"
			return c.Status(fiber.StatusServiceUnavailable).JSON(status)
		}
		return c.JSON(status)
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Invoices:  orchestrator,
		Ranges:    synchronizer,
		Catalog:   catalog,
		Tickets:   tickets,
		Tenants:   tenantUC,
		JWTSecret: cfg.JWT.Secret,
		Log:       log.Component("http"),
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

	log.Info().Msg("aplicación detenida")
}
