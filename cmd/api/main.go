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
	"github.com/gofiber/fiber/v2/middleware/requestid"

	_ "github.com/jhoicas/estoque-cd/docs"
	"github.com/jhoicas/estoque-cd/internal/application/auth"
	"github.com/jhoicas/estoque-cd/internal/application/catalog"
	"github.com/jhoicas/estoque-cd/internal/application/ordering"
	"github.com/jhoicas/estoque-cd/internal/application/reconciliation"
	"github.com/jhoicas/estoque-cd/internal/application/retry"
	"github.com/jhoicas/estoque-cd/internal/application/stock"
	"github.com/jhoicas/estoque-cd/internal/domain/repository"
	"github.com/jhoicas/estoque-cd/internal/infrastructure/memory"
	"github.com/jhoicas/estoque-cd/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/estoque-cd/internal/infrastructure/pdf"
	"github.com/jhoicas/estoque-cd/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/estoque-cd/internal/interfaces/http"
	"github.com/jhoicas/estoque-cd/pkg/config"
	"github.com/jhoicas/estoque-cd/pkg/logger"
)

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
		Str("storage", cfg.App.StorageBackend).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	var (
		txRunner repository.TxRunner
		reads    repository.TxRepos
		users    repository.UserRepository
	)
	switch cfg.App.StorageBackend {
	case config.BackendMemory:
		store := memory.NewSeeded()
		txRunner, reads, users = store, store.Repos(), store.Users()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner, reads, users = postgres.NewTxRunner(pool), postgres.NewRepos(pool), postgres.NewUserRepository(pool)
	}

	m := metrics.New()
	rp := retry.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay,
		MaxDelay:    cfg.Retry.MaxDelay,
		Observer:    m,
		Log:         log.Component("retry"),
	}

	catalogSvc := catalog.NewService(txRunner, reads.Products, reads.Registry, rp, log)
	stockSvc := stock.NewService(reads.Stock, reads.Products, cfg.Ledger.LowStockThreshold)
	orderSvc := ordering.NewService(txRunner, reads.Orders, rp, log)
	policy := reconciliation.NewPolicy(txRunner, reads, reconciliation.Config{
		AllowNegativeStock: cfg.Ledger.AllowNegativeStock,
	}, rp, m, log)
	authUC := auth.NewAuthUseCase(users, reads.Registry, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	// En memoria no hay cmd/migrate: el administrador inicial se crea aquí.
	if cfg.App.StorageBackend == config.BackendMemory && cfg.Bootstrap.AdminPassword != "" {
		if _, err := authUC.EnsureAdmin(ctx, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword); err != nil {
			log.Fatal().Err(err).Msg("crear administrador inicial")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Estoque CD API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.App.StorageBackend})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		Catalog:   catalogSvc,
		Stock:     stockSvc,
		Orders:    orderSvc,
		Policy:    policy,
		Receipts:  infrapdf.NewReceiptGenerator(),
		Issuer:    cfg.App.Name,
		Metrics:   m,
		JWTSecret: cfg.JWT.Secret,
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
