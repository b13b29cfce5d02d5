package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Materiales-api/internal/application/inventory"
	"github.com/jhoicas/Materiales-api/internal/domain/entity"
	"github.com/jhoicas/Materiales-api/internal/domain/repository"
	"github.com/jhoicas/Materiales-api/internal/infrastructure/memory"
	"github.com/jhoicas/Materiales-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Materiales-api/pkg/config"
	"github.com/jhoicas/Materiales-api/pkg/logger"
)

// storage agrupa los puertos de persistencia del backend elegido.
type storage struct {
	TxRunner      inventory.TxRunner
	Movements     repository.MovementRepository
	Stock         repository.StockRepository
	Materials     repository.MaterialRepository
	Warehouses    repository.WarehouseRepository
	Users         repository.UserRepository
	Consumptions  repository.ConsumptionRepository
	Notifications repository.NotificationRepository
	Analytics     repository.AnalyticsRepository

	ping  func(context.Context) error
	close func()
}

func (s *storage) Ping(ctx context.Context) error { return s.ping(ctx) }
func (s *storage) Close()                         { s.close() }

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Storage.Driver == "memory" {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return memoryStorage(cfg), nil
	}

	if cfg.DB.AutoMigrate {
		mg, err := postgres.NewMigrator(cfg.DB.MigrationsPath, cfg.DB.ConnectionString(), log.Component("migrate"))
		if err != nil {
			return nil, err
		}
		err = mg.Up()
		_ = mg.Close()
		if err != nil {
			return nil, err
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB, postgres.PoolOptions{
		AppName: cfg.App.Name,
		Log:     log.Component("postgres"),
	})
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	return postgresStorage(pool, cfg), nil
}

func postgresStorage(pool *pgxpool.Pool, cfg *config.Config) *storage {
	return &storage{
		TxRunner:      postgres.NewTxRunner(pool, cfg.Ledger.LockTimeout),
		Movements:     postgres.NewMovementRepository(pool),
		Stock:         postgres.NewStockRepository(pool),
		Materials:     postgres.NewMaterialRepository(pool),
		Warehouses:    postgres.NewWarehouseRepository(pool),
		Users:         postgres.NewUserRepository(pool),
		Consumptions:  postgres.NewConsumptionRepository(pool),
		Notifications: postgres.NewNotificationRepository(pool),
		Analytics:     postgres.NewAnalyticsRepository(pool),
		ping:          pool.Ping,
		close:         pool.Close,
	}
}

func memoryStorage(cfg *config.Config) *storage {
	s := memory.NewStore()
	// Sin tabla de usuarios: un administrador local recibe las alertas.
	s.AddUser(memory.User{ID: "admin", Role: entity.RoleAdmin, Active: true})
	return &storage{
		TxRunner:      memory.NewTxRunner(s, cfg.Ledger.LockTimeout),
		Movements:     memory.NewMovementRepository(s),
		Stock:         memory.NewStockRepository(s),
		Materials:     memory.NewMaterialRepository(s),
		Warehouses:    memory.NewWarehouseRepository(s),
		Users:         memory.NewUserRepository(s),
		Consumptions:  memory.NewConsumptionRepository(s),
		Notifications: memory.NewNotificationRepository(s),
		Analytics:     memory.NewAnalyticsRepository(s),
		ping:          func(context.Context) error { return nil },
		close:         func() {},
	}
}
