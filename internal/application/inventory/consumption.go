package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/Materiales-api/internal/domain"
	"github.com/jhoicas/Materiales-api/internal/domain/entity"
	"github.com/jhoicas/Materiales-api/internal/domain/repository"
)

// ConsumptionUseCase marca entregas como material usado en obra.
// El consumo es de una sola vía y se guarda aparte: la fila del ledger no cambia
// y el stock no se ve afectado.
type ConsumptionUseCase struct {
	movRepo         repository.MovementRepository
	consumptionRepo repository.ConsumptionRepository
	now             func() time.Time
}

// NewConsumptionUseCase construye el caso de uso.
func NewConsumptionUseCase(movRepo repository.MovementRepository, consumptionRepo repository.ConsumptionRepository) *ConsumptionUseCase {
	return &ConsumptionUseCase{movRepo: movRepo, consumptionRepo: consumptionRepo, now: time.Now}
}

// MarkConsumed registra el consumo de una entrega. Un segundo intento devuelve domain.ErrConflict.
func (uc *ConsumptionUseCase) MarkConsumed(ctx context.Context, movementID int64, actor string) (*entity.Movement, error) {
	if actor == "" {
		return nil, domain.NewValidationError("consumed_by", "es requerido")
	}
	mov, err := uc.movRepo.GetByID(ctx, movementID)
	if err != nil {
		return nil, err
	}
	if mov == nil {
		return nil, domain.ErrNotFound
	}
	if mov.Type != entity.MovementEntrega {
		return nil, domain.NewValidationError("movement_id", "solo las entregas pueden marcarse como consumidas")
	}
	if mov.Consumed {
		return nil, domain.ErrConflict
	}
	c := &entity.Consumption{MovementID: mov.ID, ConsumedAt: uc.now(), ConsumedBy: actor}
	if err := uc.consumptionRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	mov.Consumed = true
	mov.ConsumedAt = &c.ConsumedAt
	mov.ConsumedBy = c.ConsumedBy
	return mov, nil
}
