package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Materiales-api/internal/domain/entity"
	"github.com/jhoicas/Materiales-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura sobre el ledger y la proyección de stock.
type AnalyticsRepo struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepo {
	return &AnalyticsRepo{pool: pool}
}

// GetMovementTotals agrupa cantidad de movimientos y costo por tipo.
func (r *AnalyticsRepo) GetMovementTotals(ctx context.Context, startDate, endDate time.Time) ([]repository.MovementTotalsResult, error) {
	const query = `
	SELECT
	    m.movement_type,
	    COUNT(*)                       AS movement_count,
	    COALESCE(SUM(m.total_cost), 0) AS total_cost
	FROM material_movements m
	WHERE m.created_at BETWEEN $1 AND $2
	GROUP BY m.movement_type
	ORDER BY m.movement_type`

	rows, err := r.pool.Query(ctx, query, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetMovementTotals: %w", err)
	}
	defer rows.Close()

	var results []repository.MovementTotalsResult
	for rows.Next() {
		var (
			row     repository.MovementTotalsResult
			typeStr string
		)
		if err := rows.Scan(&typeStr, &row.Count, &row.TotalCost); err != nil {
			return nil, fmt.Errorf("analytics.GetMovementTotals scan: %w", err)
		}
		if row.Type, err = entity.ParseMovementType(typeStr); err != nil {
			return nil, fmt.Errorf("analytics.GetMovementTotals: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// GetProjectConsumption agrupa las entregas por obra. Las entregas sin obra quedan en project_id ''.
func (r *AnalyticsRepo) GetProjectConsumption(
	ctx context.Context,
	startDate, endDate time.Time,
	limit int,
) ([]repository.ProjectConsumptionResult, error) {
	const query = `
	SELECT
	    m.project_id,
	    COUNT(*)                       AS deliveries,
	    COUNT(c.movement_id)           AS consumed_count,
	    COALESCE(SUM(m.total_cost), 0) AS total_cost
	FROM material_movements m
	LEFT JOIN movement_consumptions c ON c.movement_id = m.id
	WHERE m.movement_type = 'entrega'
	  AND m.created_at BETWEEN $1 AND $2
	GROUP BY m.project_id
	ORDER BY total_cost DESC, m.project_id
	LIMIT $3`

	rows, err := r.pool.Query(ctx, query, startDate, endDate, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetProjectConsumption: %w", err)
	}
	defer rows.Close()

	var results []repository.ProjectConsumptionResult
	for rows.Next() {
		var row repository.ProjectConsumptionResult
		if err := rows.Scan(&row.ProjectID, &row.Deliveries, &row.ConsumedCount, &row.TotalCost); err != nil {
			return nil, fmt.Errorf("analytics.GetProjectConsumption scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// GetMaterialUsage agrupa las entregas por material.
func (r *AnalyticsRepo) GetMaterialUsage(
	ctx context.Context,
	startDate, endDate time.Time,
	limit int,
) ([]repository.MaterialUsageResult, error) {
	const query = `
	SELECT
	    mat.id,
	    mat.name,
	    mat.unit,
	    COALESCE(SUM(m.quantity), 0)   AS quantity,
	    COALESCE(SUM(m.total_cost), 0) AS total_cost
	FROM material_movements m
	JOIN materials mat ON mat.id = m.material_id
	WHERE m.movement_type = 'entrega'
	  AND m.created_at BETWEEN $1 AND $2
	GROUP BY mat.id, mat.name, mat.unit
	ORDER BY total_cost DESC, mat.name
	LIMIT $3`

	rows, err := r.pool.Query(ctx, query, startDate, endDate, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetMaterialUsage: %w", err)
	}
	defer rows.Close()

	var results []repository.MaterialUsageResult
	for rows.Next() {
		var row repository.MaterialUsageResult
		if err := rows.Scan(&row.MaterialID, &row.MaterialName, &row.Unit, &row.Quantity, &row.TotalCost); err != nil {
			return nil, fmt.Errorf("analytics.GetMaterialUsage scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// GetBelowMinimum lee la proyección; no recorre el ledger.
func (r *AnalyticsRepo) GetBelowMinimum(ctx context.Context) ([]repository.BelowMinimumResult, error) {
	const query = `
	SELECT mat.id, mat.name, s.warehouse_id, s.quantity, mat.minimum_stock
	FROM material_stock s
	JOIN materials mat ON mat.id = s.material_id
	WHERE mat.active
	  AND mat.minimum_stock > 0
	  AND s.quantity <= mat.minimum_stock
	ORDER BY s.quantity / mat.minimum_stock, mat.name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetBelowMinimum: %w", err)
	}
	defer rows.Close()

	var results []repository.BelowMinimumResult
	for rows.Next() {
		var row repository.BelowMinimumResult
		if err := rows.Scan(&row.MaterialID, &row.MaterialName, &row.WarehouseID, &row.Quantity, &row.MinimumStock); err != nil {
			return nil, fmt.Errorf("analytics.GetBelowMinimum scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
