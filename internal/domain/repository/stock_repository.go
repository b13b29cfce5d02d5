package repository

import (
	"context"

	"github.com/jhoicas/Materiales-api/internal/domain/entity"
)

// StockRepository define el puerto de la proyección incremental por material+bodega.
// Usado dentro de transacciones para garantizar consistencia con el ledger.
type StockRepository interface {
	// Get devuelve el stock cacheado del par, o cantidad 0 si no hay movimientos.
	Get(ctx context.Context, materialID, warehouseID string) (*entity.StockLevel, error)
	// GetForUpdate obtiene el stock y bloquea el par hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, materialID, warehouseID string) (*entity.StockLevel, error)
	// LockCatalog lee material y bodega del par y los bloquea en modo compartido hasta el fin
	// de la transacción: una desactivación concurrente espera al commit o se ve aquí.
	// Devuelve nil en el que no exista.
	LockCatalog(ctx context.Context, materialID, warehouseID string) (*entity.Material, *entity.Warehouse, error)
	Upsert(ctx context.Context, level *entity.StockLevel) error
	ListByMaterial(ctx context.Context, materialID string) ([]*entity.StockLevel, error)
}
