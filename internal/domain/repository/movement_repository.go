package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Materiales-api/internal/domain/entity"
)

// MovementFilter filtros combinables para el historial de movimientos.
// Los campos vacíos/nil no filtran.
type MovementFilter struct {
	MaterialID  string
	WarehouseID string
	ProjectID   string
	WorkerID    string
	Type        entity.MovementType // 0 = todos
	DeliveredBy string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

// MovementRepository define el puerto del ledger: solo agrega y consulta.
// No existe Update ni Delete; las correcciones se hacen con un movimiento compensatorio.
type MovementRepository interface {
	// Append persiste el movimiento, asigna su ID de secuencia y lo devuelve.
	Append(ctx context.Context, movement *entity.Movement) (int64, error)
	GetByID(ctx context.Context, id int64) (*entity.Movement, error)
	// ListByPair devuelve los movimientos del par en orden de ledger (ID ascendente).
	ListByPair(ctx context.Context, materialID, warehouseID string) ([]*entity.Movement, error)
	// ListByMaterial devuelve los movimientos del material en todas las bodegas, en orden de ledger.
	ListByMaterial(ctx context.Context, materialID string) ([]*entity.Movement, error)
	// Query devuelve la página filtrada (ID descendente) y el total del conjunto filtrado.
	Query(ctx context.Context, filter MovementFilter) ([]*entity.Movement, int, error)
}

// ConsumptionRepository guarda el consumo de entregas fuera de la fila inmutable del ledger.
type ConsumptionRepository interface {
	// Create falla con domain.ErrConflict si el movimiento ya estaba consumido.
	Create(ctx context.Context, consumption *entity.Consumption) error
	GetByMovementID(ctx context.Context, movementID int64) (*entity.Consumption, error)
}
