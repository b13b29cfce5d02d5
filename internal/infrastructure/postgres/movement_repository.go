package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // registra el dialecto postgres
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Materiales-api/internal/domain"
	"github.com/jhoicas/Materiales-api/internal/domain/entity"
	"github.com/jhoicas/Materiales-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

var dialect = goqu.Dialect("postgres")

// MovementRepo implementación del ledger sobre PostgreSQL (usable con pool o tx).
// Solo hay INSERT y SELECT: las filas de material_movements nunca se modifican.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador del ledger. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Append inserta el movimiento y devuelve el ID asignado por la secuencia.
func (r *MovementRepo) Append(ctx context.Context, m *entity.Movement) (int64, error) {
	query := `
		INSERT INTO material_movements (
			material_id, warehouse_id, movement_type, quantity, stock_before, stock_after,
			project_id, worker_id, delivered_by, reason, notes, unit_cost, total_cost,
			created_at, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id`
	var id int64
	err := r.q.QueryRow(ctx, query,
		m.MaterialID, m.WarehouseID, m.Type.String(), m.Quantity, m.StockBefore, m.StockAfter,
		m.ProjectID, m.WorkerID, m.DeliveredBy, m.Reason, m.Notes, m.UnitCost, m.TotalCost,
		m.CreatedAt, m.RecordedAt,
	).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, domain.NewValidationError("material_id", "material o bodega inexistente")
		}
		if isConcurrencyConflict(err) {
			return 0, &domain.ConcurrencyConflictError{MaterialID: m.MaterialID, WarehouseID: m.WarehouseID, Cause: err}
		}
		return 0, fmt.Errorf("insert movement: %w", err)
	}
	return id, nil
}

// movementSelect columnas del ledger más la vista de consumo.
func movementSelect() *goqu.SelectDataset {
	return dialect.
		From(goqu.T("material_movements").As("m")).
		LeftJoin(goqu.T("movement_consumptions").As("c"), goqu.On(goqu.I("c.movement_id").Eq(goqu.I("m.id")))).
		Select(
			goqu.I("m.id"), goqu.I("m.material_id"), goqu.I("m.warehouse_id"), goqu.I("m.movement_type"),
			goqu.I("m.quantity"), goqu.I("m.stock_before"), goqu.I("m.stock_after"),
			goqu.I("m.project_id"), goqu.I("m.worker_id"), goqu.I("m.delivered_by"),
			goqu.I("m.reason"), goqu.I("m.notes"), goqu.I("m.unit_cost"), goqu.I("m.total_cost"),
			goqu.I("m.created_at"), goqu.I("m.recorded_at"),
			goqu.I("c.consumed_at"), goqu.COALESCE(goqu.I("c.consumed_by"), "").As("consumed_by"),
		)
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	var movementType string
	err := row.Scan(
		&m.ID, &m.MaterialID, &m.WarehouseID, &movementType,
		&m.Quantity, &m.StockBefore, &m.StockAfter,
		&m.ProjectID, &m.WorkerID, &m.DeliveredBy,
		&m.Reason, &m.Notes, &m.UnitCost, &m.TotalCost,
		&m.CreatedAt, &m.RecordedAt,
		&m.ConsumedAt, &m.ConsumedBy,
	)
	if err != nil {
		return nil, err
	}
	if m.Type, err = entity.ParseMovementType(movementType); err != nil {
		return nil, err
	}
	m.Consumed = m.ConsumedAt != nil
	return &m, nil
}

func (r *MovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Movement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// GetByID obtiene un movimiento por ID (nil si no existe).
func (r *MovementRepo) GetByID(ctx context.Context, id int64) (*entity.Movement, error) {
	query, args, err := movementSelect().Where(goqu.I("m.id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build movement query: %w", err)
	}
	m, err := scanMovement(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// ListByPair movimientos del par en orden de ledger.
func (r *MovementRepo) ListByPair(ctx context.Context, materialID, warehouseID string) ([]*entity.Movement, error) {
	if !isUUID(materialID) || !isUUID(warehouseID) {
		return []*entity.Movement{}, nil
	}
	query, args, err := movementSelect().
		Where(goqu.Ex{"m.material_id": materialID, "m.warehouse_id": warehouseID}).
		Order(goqu.I("m.id").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build movement query: %w", err)
	}
	return r.list(ctx, query, args...)
}

// ListByMaterial movimientos del material en todas las bodegas, en orden de ledger.
func (r *MovementRepo) ListByMaterial(ctx context.Context, materialID string) ([]*entity.Movement, error) {
	if !isUUID(materialID) {
		return []*entity.Movement{}, nil
	}
	query, args, err := movementSelect().
		Where(goqu.I("m.material_id").Eq(materialID)).
		Order(goqu.I("m.id").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build movement query: %w", err)
	}
	return r.list(ctx, query, args...)
}

// Query devuelve la página filtrada (más reciente primero) y el total filtrado.
// Un material_id o warehouse_id que no es UUID no puede coincidir con nada: página vacía.
func (r *MovementRepo) Query(ctx context.Context, filter repository.MovementFilter) ([]*entity.Movement, int, error) {
	if (filter.MaterialID != "" && !isUUID(filter.MaterialID)) || (filter.WarehouseID != "" && !isUUID(filter.WarehouseID)) {
		return []*entity.Movement{}, 0, nil
	}
	countSQL, countArgs, err := BuildMovementCount(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("build movement count: %w", err)
	}
	var total int
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		if isInvalidText(err) {
			return []*entity.Movement{}, 0, nil
		}
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}
	if total == 0 {
		return []*entity.Movement{}, 0, nil
	}

	query, args, err := BuildMovementQuery(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("build movement query: %w", err)
	}
	list, err := r.list(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// movementConditions traduce el filtro; los campos vacíos no restringen.
func movementConditions(f repository.MovementFilter) []exp.Expression {
	ex := goqu.Ex{}
	if f.MaterialID != "" {
		ex["m.material_id"] = f.MaterialID
	}
	if f.WarehouseID != "" {
		ex["m.warehouse_id"] = f.WarehouseID
	}
	if f.ProjectID != "" {
		ex["m.project_id"] = f.ProjectID
	}
	if f.WorkerID != "" {
		ex["m.worker_id"] = f.WorkerID
	}
	if f.DeliveredBy != "" {
		ex["m.delivered_by"] = f.DeliveredBy
	}
	if f.Type != 0 {
		ex["m.movement_type"] = f.Type.String()
	}
	conds := []exp.Expression{ex}
	if f.From != nil {
		conds = append(conds, goqu.I("m.created_at").Gte(*f.From))
	}
	if f.To != nil {
		conds = append(conds, goqu.I("m.created_at").Lte(*f.To))
	}
	return conds
}

// BuildMovementQuery SQL de la página: ID descendente, limit/offset ya normalizados.
func BuildMovementQuery(f repository.MovementFilter) (string, []any, error) {
	ds := movementSelect().
		Where(movementConditions(f)...).
		Order(goqu.I("m.id").Desc())
	if f.Limit > 0 {
		ds = ds.Limit(uint(f.Limit))
	}
	if f.Offset > 0 {
		ds = ds.Offset(uint(f.Offset))
	}
	return ds.Prepared(true).ToSQL()
}

// BuildMovementCount SQL del total del conjunto filtrado.
func BuildMovementCount(f repository.MovementFilter) (string, []any, error) {
	return dialect.
		From(goqu.T("material_movements").As("m")).
		Select(goqu.COUNT("*")).
		Where(movementConditions(f)...).
		Prepared(true).ToSQL()
}
