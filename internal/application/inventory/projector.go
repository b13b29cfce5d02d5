package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Materiales-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Materiales-api/internal/domain/inventory"
	"github.com/jhoicas/Materiales-api/internal/domain/repository"
)

// StockProjector responde el stock actual por par y por material.
// La forma incremental lee la proyección (material_stock); la de replay recorre el ledger
// y es la referencia de corrección.
type StockProjector struct {
	stockRepo repository.StockRepository
	movRepo   repository.MovementRepository
}

// NewStockProjector construye el proyector.
func NewStockProjector(stockRepo repository.StockRepository, movRepo repository.MovementRepository) *StockProjector {
	return &StockProjector{stockRepo: stockRepo, movRepo: movRepo}
}

// CurrentStock stock_after del último movimiento del par, o 0 si no hay movimientos.
func (p *StockProjector) CurrentStock(ctx context.Context, materialID, warehouseID string) (decimal.Decimal, error) {
	level, err := p.Level(ctx, materialID, warehouseID)
	if err != nil {
		return decimal.Zero, err
	}
	return level.Quantity, nil
}

// Level devuelve la fila de proyección completa del par.
func (p *StockProjector) Level(ctx context.Context, materialID, warehouseID string) (*entity.StockLevel, error) {
	level, err := p.stockRepo.Get(ctx, materialID, warehouseID)
	if err != nil {
		return nil, err
	}
	if level == nil {
		return &entity.StockLevel{MaterialID: materialID, WarehouseID: warehouseID, Quantity: decimal.Zero}, nil
	}
	return level, nil
}

// TotalStock suma CurrentStock sobre todas las bodegas que tienen el material.
func (p *StockProjector) TotalStock(ctx context.Context, materialID string) (decimal.Decimal, error) {
	_, total, err := p.Breakdown(ctx, materialID)
	return total, err
}

// Breakdown devuelve el stock por bodega y el total.
func (p *StockProjector) Breakdown(ctx context.Context, materialID string) ([]*entity.StockLevel, decimal.Decimal, error) {
	levels, err := p.stockRepo.ListByMaterial(ctx, materialID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	total := decimal.Zero
	for _, l := range levels {
		total = total.Add(l.Quantity)
	}
	return levels, total, nil
}

// ReplayStock recalcula el stock del par recorriendo todo el ledger.
func (p *StockProjector) ReplayStock(ctx context.Context, materialID, warehouseID string) (decimal.Decimal, error) {
	entries, err := p.movRepo.ListByPair(ctx, materialID, warehouseID)
	if err != nil {
		return decimal.Zero, err
	}
	return domaininv.Replay(entries), nil
}

// ReplayTotal recalcula el stock total del material recorriendo todo el ledger.
func (p *StockProjector) ReplayTotal(ctx context.Context, materialID string) (decimal.Decimal, error) {
	entries, err := p.movRepo.ListByMaterial(ctx, materialID)
	if err != nil {
		return decimal.Zero, err
	}
	return domaininv.Replay(entries), nil
}

// Reconciliation compara la proyección incremental contra el replay del par.
type Reconciliation struct {
	MaterialID  string
	WarehouseID string
	Cached      decimal.Decimal
	Replayed    decimal.Decimal
	Entries     int
	ChainErr    error
}

// Consistent indica si caché, replay y cadena before/after coinciden.
func (r *Reconciliation) Consistent() bool {
	return r.ChainErr == nil && r.Cached.Equal(r.Replayed)
}

// Verify reconstruye el par desde el ledger y lo compara con la proyección.
func (p *StockProjector) Verify(ctx context.Context, materialID, warehouseID string) (*Reconciliation, error) {
	cached, err := p.CurrentStock(ctx, materialID, warehouseID)
	if err != nil {
		return nil, err
	}
	entries, err := p.movRepo.ListByPair(ctx, materialID, warehouseID)
	if err != nil {
		return nil, err
	}
	return &Reconciliation{
		MaterialID:  materialID,
		WarehouseID: warehouseID,
		Cached:      cached,
		Replayed:    domaininv.Replay(entries),
		Entries:     len(entries),
		ChainErr:    domaininv.CheckChain(entries),
	}, nil
}
