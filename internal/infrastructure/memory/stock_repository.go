package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Materiales-api/internal/domain/entity"
	"github.com/jhoicas/Materiales-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo lectura de la proyección confirmada. El bloqueo solo existe dentro de TxRunner.
type StockRepo struct {
	store *Store
}

// NewStockRepository construye el repositorio.
func NewStockRepository(store *Store) *StockRepo {
	return &StockRepo{store: store}
}

func (r *StockRepo) Get(ctx context.Context, materialID, warehouseID string) (*entity.StockLevel, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if l, ok := r.store.stock[pairKey{materialID, warehouseID}]; ok {
		return copyLevel(l), nil
	}
	return &entity.StockLevel{MaterialID: materialID, WarehouseID: warehouseID, Quantity: decimal.Zero}, nil
}

// GetForUpdate fuera de una transacción no retiene el candado.
func (r *StockRepo) GetForUpdate(ctx context.Context, materialID, warehouseID string) (*entity.StockLevel, error) {
	return r.Get(ctx, materialID, warehouseID)
}

// LockCatalog fuera de una transacción solo lee el catálogo.
func (r *StockRepo) LockCatalog(ctx context.Context, materialID, warehouseID string) (*entity.Material, *entity.Warehouse, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	m, w := r.store.catalogPair(materialID, warehouseID)
	return m, w, nil
}

func (r *StockRepo) Upsert(ctx context.Context, level *entity.StockLevel) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.stock[pairKey{level.MaterialID, level.WarehouseID}] = copyLevel(level)
	return nil
}

func (r *StockRepo) ListByMaterial(ctx context.Context, materialID string) ([]*entity.StockLevel, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var list []*entity.StockLevel
	for key, l := range r.store.stock {
		if key.materialID == materialID {
			list = append(list, copyLevel(l))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].WarehouseID < list[j].WarehouseID })
	return list, nil
}
