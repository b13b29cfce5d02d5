package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Materiales-api/internal/domain"
	"github.com/jhoicas/Materiales-api/internal/domain/entity"
	"github.com/jhoicas/Materiales-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockColumns = `material_id, warehouse_id, quantity, last_movement_id, updated_at`

func scanStock(row pgx.Row) (*entity.StockLevel, error) {
	var s entity.StockLevel
	if err := row.Scan(&s.MaterialID, &s.WarehouseID, &s.Quantity, &s.LastMovementID, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Get obtiene el stock actual de un material en una bodega (0 si el par no tiene movimientos).
func (r *StockRepo) Get(ctx context.Context, materialID, warehouseID string) (*entity.StockLevel, error) {
	if !isUUID(materialID) || !isUUID(warehouseID) {
		return &entity.StockLevel{MaterialID: materialID, WarehouseID: warehouseID, Quantity: decimal.Zero}, nil
	}
	query := `SELECT ` + stockColumns + ` FROM material_stock WHERE material_id = $1 AND warehouse_id = $2`
	s, err := scanStock(r.q.QueryRow(ctx, query, materialID, warehouseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockLevel{MaterialID: materialID, WarehouseID: warehouseID, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return s, nil
}

// GetForUpdate obtiene el stock y bloquea la fila del par (SELECT FOR UPDATE).
// La fila se crea en 0 si no existe, así el primer movimiento de un par también se serializa.
func (r *StockRepo) GetForUpdate(ctx context.Context, materialID, warehouseID string) (*entity.StockLevel, error) {
	if !isUUID(materialID) {
		return nil, domain.NewValidationError("material_id", "material desconocido o inactivo")
	}
	if !isUUID(warehouseID) {
		return nil, domain.NewValidationError("warehouse_id", "bodega desconocida o inactiva")
	}
	seed := `
		INSERT INTO material_stock (material_id, warehouse_id, quantity, last_movement_id, updated_at)
		VALUES ($1, $2, 0, 0, now())
		ON CONFLICT (material_id, warehouse_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, seed, materialID, warehouseID); err != nil {
		return nil, r.lockErr(materialID, warehouseID, "seed stock", err)
	}

	query := `SELECT ` + stockColumns + ` FROM material_stock
		WHERE material_id = $1 AND warehouse_id = $2
		FOR UPDATE`
	s, err := scanStock(r.q.QueryRow(ctx, query, materialID, warehouseID))
	if err != nil {
		return nil, r.lockErr(materialID, warehouseID, "get stock for update", err)
	}
	return s, nil
}

// LockCatalog SELECT ... FOR SHARE sobre las filas de catálogo del par.
func (r *StockRepo) LockCatalog(ctx context.Context, materialID, warehouseID string) (*entity.Material, *entity.Warehouse, error) {
	var material *entity.Material
	if isUUID(materialID) {
		m, err := scanMaterial(r.q.QueryRow(ctx,
			`SELECT `+materialColumns+` FROM materials WHERE id = $1 FOR SHARE`, materialID))
		switch {
		case err == nil:
			material = m
		case !errors.Is(err, pgx.ErrNoRows):
			return nil, nil, r.lockErr(materialID, warehouseID, "lock material", err)
		}
	}
	var warehouse *entity.Warehouse
	if isUUID(warehouseID) {
		var w entity.Warehouse
		err := r.q.QueryRow(ctx,
			`SELECT id, name, address, active, created_at, updated_at FROM warehouses WHERE id = $1 FOR SHARE`,
			warehouseID,
		).Scan(&w.ID, &w.Name, &w.Address, &w.Active, &w.CreatedAt, &w.UpdatedAt)
		switch {
		case err == nil:
			warehouse = &w
		case !errors.Is(err, pgx.ErrNoRows):
			return nil, nil, r.lockErr(materialID, warehouseID, "lock warehouse", err)
		}
	}
	return material, warehouse, nil
}

func (r *StockRepo) lockErr(materialID, warehouseID, op string, err error) error {
	if isConcurrencyConflict(err) {
		return &domain.ConcurrencyConflictError{MaterialID: materialID, WarehouseID: warehouseID, Cause: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Upsert inserta o actualiza la proyección del par.
func (r *StockRepo) Upsert(ctx context.Context, level *entity.StockLevel) error {
	query := `
		INSERT INTO material_stock (material_id, warehouse_id, quantity, last_movement_id, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (material_id, warehouse_id)
		DO UPDATE SET quantity = EXCLUDED.quantity,
			last_movement_id = EXCLUDED.last_movement_id,
			updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query,
		level.MaterialID, level.WarehouseID, level.Quantity, level.LastMovementID, level.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

// ListByMaterial lista la proyección del material en todas sus bodegas.
func (r *StockRepo) ListByMaterial(ctx context.Context, materialID string) ([]*entity.StockLevel, error) {
	if !isUUID(materialID) {
		return nil, nil
	}
	query := `SELECT ` + stockColumns + ` FROM material_stock
		WHERE material_id = $1 AND last_movement_id > 0
		ORDER BY warehouse_id`
	rows, err := r.q.Query(ctx, query, materialID)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockLevel
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
