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

var _ repository.ConsumptionRepository = (*ConsumptionRepo)(nil)

// ConsumptionRepo guarda el consumo de entregas en movement_consumptions.
type ConsumptionRepo struct {
	q Querier
}

// NewConsumptionRepository construye el adaptador.
func NewConsumptionRepository(q Querier) *ConsumptionRepo {
	return &ConsumptionRepo{q: q}
}

// Create inserta el consumo; la PK sobre movement_id hace que el segundo intento falle.
func (r *ConsumptionRepo) Create(ctx context.Context, c *entity.Consumption) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO movement_consumptions (movement_id, consumed_at, consumed_by) VALUES ($1, $2, $3)`,
		c.MovementID, c.ConsumedAt, c.ConsumedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert consumption: %w", err)
	}
	return nil
}

// GetByMovementID devuelve el consumo del movimiento o nil.
func (r *ConsumptionRepo) GetByMovementID(ctx context.Context, movementID int64) (*entity.Consumption, error) {
	var c entity.Consumption
	err := r.q.QueryRow(ctx,
		`SELECT movement_id, consumed_at, consumed_by FROM movement_consumptions WHERE movement_id = $1`,
		movementID,
	).Scan(&c.MovementID, &c.ConsumedAt, &c.ConsumedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get consumption: %w", err)
	}
	return &c, nil
}
