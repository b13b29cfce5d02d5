package memory

import (
	"context"
	"time"

	"github.com/jhoicas/Materiales-api/internal/application/inventory"
	"github.com/jhoicas/Materiales-api/internal/domain"
	"github.com/jhoicas/Materiales-api/internal/domain/entity"
	"github.com/jhoicas/Materiales-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner transacciones en memoria: candado por par, escrituras en staging y aplicación atómica.
type TxRunner struct {
	store       *Store
	lockTimeout time.Duration
}

// NewTxRunner construye el runner. lockTimeout <= 0 espera el candado hasta que se cancele ctx.
func NewTxRunner(store *Store, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{store: store, lockTimeout: lockTimeout}
}

// Run ejecuta fn; si devuelve error no se aplica nada.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
) error) error {
	tx := &memTx{
		store:       r.store,
		lockTimeout: r.lockTimeout,
		held:        make(map[pairKey]bool),
		stock:       make(map[pairKey]*entity.StockLevel),
	}
	defer tx.releaseAll()

	if err := fn(&txMovementRepo{tx: tx}, &txStockRepo{tx: tx}); err != nil {
		return err
	}
	return tx.commit()
}

type memTx struct {
	store       *Store
	lockTimeout time.Duration
	held        map[pairKey]bool
	movements   []*entity.Movement
	stock       map[pairKey]*entity.StockLevel
	catalog     []pairKey // pares leídos con LockCatalog
}

func (tx *memTx) lock(ctx context.Context, key pairKey) error {
	if tx.held[key] {
		return nil
	}
	if err := tx.store.acquire(ctx, key, tx.lockTimeout); err != nil {
		return err
	}
	tx.held[key] = true
	return nil
}

func (tx *memTx) releaseAll() {
	for key := range tx.held {
		tx.store.release(key)
	}
	tx.held = nil
}

// commit aplica el staging bajo s.mu. Si el catálogo leído con LockCatalog se desactivó
// entretanto, no aplica nada: equivale a la espera del FOR SHARE en PostgreSQL.
func (tx *memTx) commit() error {
	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range tx.catalog {
		m, w := s.catalogPair(key.materialID, key.warehouseID)
		if m == nil || !m.Active {
			return domain.NewValidationError("material_id", "material desconocido o inactivo")
		}
		if w == nil || !w.Active {
			return domain.NewValidationError("warehouse_id", "bodega desconocida o inactiva")
		}
	}
	for _, m := range tx.movements {
		s.insertMovement(m)
	}
	for key, level := range tx.stock {
		s.stock[key] = level
	}
	return nil
}

// txMovementRepo ve lo confirmado más lo agregado en esta transacción.
type txMovementRepo struct {
	tx *memTx
}

func (r *txMovementRepo) Append(ctx context.Context, m *entity.Movement) (int64, error) {
	stored := *m
	stored.ID = r.tx.store.seq.Add(1)
	stored.Consumed, stored.ConsumedAt, stored.ConsumedBy = false, nil, ""
	r.tx.movements = append(r.tx.movements, &stored)
	return stored.ID, nil
}

func (r *txMovementRepo) GetByID(ctx context.Context, id int64) (*entity.Movement, error) {
	for _, m := range r.tx.movements {
		if m.ID == id {
			out := *m
			return &out, nil
		}
	}
	return (&MovementRepo{store: r.tx.store}).GetByID(ctx, id)
}

func (r *txMovementRepo) ListByPair(ctx context.Context, materialID, warehouseID string) ([]*entity.Movement, error) {
	return r.filtered(repository.MovementFilter{MaterialID: materialID, WarehouseID: warehouseID}), nil
}

func (r *txMovementRepo) ListByMaterial(ctx context.Context, materialID string) ([]*entity.Movement, error) {
	return r.filtered(repository.MovementFilter{MaterialID: materialID}), nil
}

func (r *txMovementRepo) Query(ctx context.Context, filter repository.MovementFilter) ([]*entity.Movement, int, error) {
	all := r.filtered(filter)
	page, total := paginateDesc(all, filter.Limit, filter.Offset)
	return page, total, nil
}

func (r *txMovementRepo) filtered(f repository.MovementFilter) []*entity.Movement {
	s := r.tx.store
	s.mu.RLock()
	out := filterMovements(s, s.movements, f)
	s.mu.RUnlock()
	for _, m := range r.tx.movements {
		if matches(m, f) {
			c := *m
			out = append(out, &c)
		}
	}
	sortAsc(out)
	return out
}

// txStockRepo lee y escribe la proyección en staging, bloqueando el par.
type txStockRepo struct {
	tx *memTx
}

func (r *txStockRepo) Get(ctx context.Context, materialID, warehouseID string) (*entity.StockLevel, error) {
	key := pairKey{materialID, warehouseID}
	if l, ok := r.tx.stock[key]; ok {
		return copyLevel(l), nil
	}
	return (&StockRepo{store: r.tx.store}).Get(ctx, materialID, warehouseID)
}

func (r *txStockRepo) GetForUpdate(ctx context.Context, materialID, warehouseID string) (*entity.StockLevel, error) {
	if err := r.tx.lock(ctx, pairKey{materialID, warehouseID}); err != nil {
		return nil, err
	}
	return r.Get(ctx, materialID, warehouseID)
}

func (r *txStockRepo) LockCatalog(ctx context.Context, materialID, warehouseID string) (*entity.Material, *entity.Warehouse, error) {
	s := r.tx.store
	s.mu.RLock()
	m, w := s.catalogPair(materialID, warehouseID)
	s.mu.RUnlock()
	if m != nil && m.Active && w != nil && w.Active {
		r.tx.catalog = append(r.tx.catalog, pairKey{materialID, warehouseID})
	}
	return m, w, nil
}

func (r *txStockRepo) Upsert(ctx context.Context, level *entity.StockLevel) error {
	r.tx.stock[pairKey{level.MaterialID, level.WarehouseID}] = copyLevel(level)
	return nil
}

func (r *txStockRepo) ListByMaterial(ctx context.Context, materialID string) ([]*entity.StockLevel, error) {
	return (&StockRepo{store: r.tx.store}).ListByMaterial(ctx, materialID)
}
