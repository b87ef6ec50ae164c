// migrate aplica las migraciones embebidas de PostgreSQL y crea el administrador inicial.
//
// Uso: go run ./cmd/migrate [up|down|version]
// Por defecto ejecuta up. El administrador se crea sólo si BOOTSTRAP_ADMIN_PASSWORD está definido.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/estoque-cd/internal/application/auth"
	"github.com/jhoicas/estoque-cd/internal/infrastructure/postgres"
	"github.com/jhoicas/estoque-cd/pkg/config"
	"github.com/jhoicas/estoque-cd/pkg/logger"
)

func main() {
	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	m, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar migraciones")
	}
	defer m.Close()

	switch cmd {
	case "up":
		if err := m.Up(); err != nil {
			log.Fatal().Err(err).Msg("aplicar migraciones")
		}
	case "down":
		if err := m.Down(); err != nil {
			log.Fatal().Err(err).Msg("revertir migraciones")
		}
		return
	case "version":
		v, dirty, err := m.Version()
		if err != nil {
			log.Fatal().Err(err).Msg("leer versión")
		}
		log.Info().Uint("version", v).Bool("dirty", dirty).Msg("versión del esquema")
		return
	default:
		fmt.Fprintf(os.Stderr, "comando desconocido %q (up|down|version)\n", cmd)
		os.Exit(2)
	}

	if cfg.Bootstrap.AdminPassword == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	authUC := auth.NewAuthUseCase(postgres.NewUserRepository(pool), postgres.NewRegistryRepository(pool), auth.JWTConfig{})
	created, err := authUC.EnsureAdmin(ctx, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("crear administrador inicial")
	}
	log.Info().Str("username", cfg.Bootstrap.AdminUsername).Bool("created", created).Msg("administrador inicial")
}
