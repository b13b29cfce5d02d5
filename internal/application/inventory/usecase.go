package inventory

import (
	"context"

	"github.com/jhoicas/Materiales-api/internal/application/dto"
	"github.com/jhoicas/Materiales-api/internal/domain"
	"github.com/jhoicas/Materiales-api/internal/domain/entity"
)

// RegisterDeliveryFromRequest adapta el request HTTP al caso de uso RegisterDelivery.
// actor es el usuario autenticado; nunca se toma del cuerpo.
func (uc *RegisterMovementUseCase) RegisterDeliveryFromRequest(ctx context.Context, actor string, in dto.RegisterDeliveryRequest) (*dto.MovementResponse, error) {
	mov, err := uc.RegisterDelivery(ctx, DeliveryInput{
		MaterialID:  in.MaterialID,
		WarehouseID: in.WarehouseID,
		Quantity:    in.Quantity,
		ProjectID:   in.ProjectID,
		WorkerID:    in.WorkerID,
		Actor:       actor,
		Reason:      in.Reason,
		Notes:       in.Notes,
		UnitCost:    in.UnitCost,
		OccurredAt:  in.OccurredAt,
	})
	if err != nil {
		return nil, err
	}
	return ToMovementResponse(mov), nil
}

// RegisterAdjustmentFromRequest adapta el request HTTP al caso de uso RegisterAdjustment.
func (uc *RegisterMovementUseCase) RegisterAdjustmentFromRequest(ctx context.Context, actor string, in dto.RegisterAdjustmentRequest) (*dto.MovementResponse, error) {
	mt, err := entity.ParseMovementType(in.MovementType)
	if err != nil {
		return nil, domain.NewValidationError("movement_type", err.Error())
	}
	mov, err := uc.RegisterAdjustment(ctx, AdjustmentInput{
		MaterialID:  in.MaterialID,
		WarehouseID: in.WarehouseID,
		Type:        mt,
		Quantity:    in.Quantity,
		Actor:       actor,
		Reason:      in.Reason,
		Notes:       in.Notes,
		UnitCost:    in.UnitCost,
		OccurredAt:  in.OccurredAt,
	})
	if err != nil {
		return nil, err
	}
	return ToMovementResponse(mov), nil
}

// ToMovementResponse convierte un movimiento del ledger a su DTO.
func ToMovementResponse(m *entity.Movement) *dto.MovementResponse {
	if m == nil {
		return nil
	}
	return &dto.MovementResponse{
		ID:           m.ID,
		MaterialID:   m.MaterialID,
		WarehouseID:  m.WarehouseID,
		MovementType: m.Type.String(),
		Quantity:     m.Quantity,
		StockBefore:  m.StockBefore,
		StockAfter:   m.StockAfter,
		ProjectID:    m.ProjectID,
		WorkerID:     m.WorkerID,
		DeliveredBy:  m.DeliveredBy,
		Reason:       m.Reason,
		Notes:        m.Notes,
		UnitCost:     m.UnitCost,
		TotalCost:    m.TotalCost,
		CreatedAt:    m.CreatedAt,
		RecordedAt:   m.RecordedAt,
		Consumed:     m.Consumed,
		ConsumedAt:   m.ConsumedAt,
		ConsumedBy:   m.ConsumedBy,
	}
}
