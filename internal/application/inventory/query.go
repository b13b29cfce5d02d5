package inventory

import (
	"context"

	"github.com/jhoicas/Materiales-api/internal/application/dto"
	"github.com/jhoicas/Materiales-api/internal/domain"
	"github.com/jhoicas/Materiales-api/internal/domain/entity"
	"github.com/jhoicas/Materiales-api/internal/domain/repository"
)

// MovementPage página del historial.
type MovementPage struct {
	Items  []*entity.Movement
	Total  int
	Limit  int
	Offset int
}

// QueryService sirve el historial filtrado y paginado para auditoría.
// Orden siempre descendente por secuencia del ledger (más reciente primero).
type QueryService struct {
	movRepo repository.MovementRepository
}

// NewQueryService construye el servicio de consultas.
func NewQueryService(movRepo repository.MovementRepository) *QueryService {
	return &QueryService{movRepo: movRepo}
}

// Query aplica los filtros y devuelve la página junto con el total del conjunto filtrado.
func (s *QueryService) Query(ctx context.Context, filter repository.MovementFilter) (*MovementPage, error) {
	if filter.Type != 0 && !filter.Type.Valid() {
		return nil, domain.NewValidationError("movement_type", "tipo de movimiento inválido")
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, domain.NewValidationError("from", "debe ser anterior a to")
	}
	page := dto.PageRequest{Limit: filter.Limit, Offset: filter.Offset}
	page.DefaultPage()
	filter.Limit, filter.Offset = page.Limit, page.Offset

	items, total, err := s.movRepo.Query(ctx, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*entity.Movement{}
	}
	return &MovementPage{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// GetByID devuelve un movimiento o domain.ErrNotFound.
func (s *QueryService) GetByID(ctx context.Context, id int64) (*entity.Movement, error) {
	mov, err := s.movRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mov == nil {
		return nil, domain.ErrNotFound
	}
	return mov, nil
}

// ToMovementListResponse convierte una página al DTO de listado.
func ToMovementListResponse(p *MovementPage) *dto.MovementListResponse {
	items := make([]dto.MovementResponse, 0, len(p.Items))
	for _, m := range p.Items {
		items = append(items, *ToMovementResponse(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: p.Limit, Offset: p.Offset, Total: p.Total},
	}
}
