package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Materiales-api/internal/domain"
	"github.com/jhoicas/Materiales-api/internal/domain/entity"
	"github.com/jhoicas/Materiales-api/internal/domain/repository"
)

var _ repository.MaterialRepository = (*MaterialRepo)(nil)

// MaterialRepo implementación del puerto MaterialRepository sobre PostgreSQL.
type MaterialRepo struct {
	q Querier
}

// NewMaterialRepository construye el adaptador de persistencia para materiales.
func NewMaterialRepository(q Querier) *MaterialRepo {
	return &MaterialRepo{q: q}
}

const materialColumns = `id, name, category, unit, unit_cost, minimum_stock,
	COALESCE(default_warehouse_id::text, ''), active, created_at, updated_at`

func scanMaterial(row pgx.Row) (*entity.Material, error) {
	var m entity.Material
	err := row.Scan(&m.ID, &m.Name, &m.Category, &m.Unit, &m.UnitCost, &m.MinimumStock,
		&m.DefaultWarehouseID, &m.Active, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// nullableID convierte "" en NULL para columnas uuid opcionales.
func nullableID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

// Create persiste un nuevo material.
func (r *MaterialRepo) Create(ctx context.Context, m *entity.Material) error {
	query := `
		INSERT INTO materials (id, name, category, unit, unit_cost, minimum_stock,
			default_warehouse_id, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.Name, m.Category, m.Unit, m.UnitCost, m.MinimumStock,
		nullableID(m.DefaultWarehouseID), m.Active, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert material: %w", err)
	}
	return nil
}

// GetByID obtiene un material por ID (nil si no existe).
func (r *MaterialRepo) GetByID(ctx context.Context, id string) (*entity.Material, error) {
	if !isUUID(id) {
		return nil, nil
	}
	query := `SELECT ` + materialColumns + ` FROM materials WHERE id = $1`
	m, err := scanMaterial(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get material: %w", err)
	}
	return m, nil
}

// Update actualiza los atributos de catálogo. El stock no vive en esta tabla.
func (r *MaterialRepo) Update(ctx context.Context, m *entity.Material) error {
	query := `
		UPDATE materials SET name = $2, category = $3, unit = $4, unit_cost = $5,
			minimum_stock = $6, default_warehouse_id = $7, active = $8, updated_at = $9
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		m.ID, m.Name, m.Category, m.Unit, m.UnitCost, m.MinimumStock,
		nullableID(m.DefaultWarehouseID), m.Active, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update material: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista materiales por nombre con paginación y devuelve el total.
func (r *MaterialRepo) List(ctx context.Context, onlyActive bool, limit, offset int) ([]*entity.Material, int, error) {
	var total int
	if err := r.q.QueryRow(ctx,
		`SELECT count(*) FROM materials WHERE ($1 = false OR active)`, onlyActive,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count materials: %w", err)
	}
	query := `SELECT ` + materialColumns + ` FROM materials
		WHERE ($1 = false OR active)
		ORDER BY name, id LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, onlyActive, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()
	var list []*entity.Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan material: %w", err)
		}
		list = append(list, m)
	}
	return list, total, rows.Err()
}
