package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Materiales-api/internal/application/dto"
	"github.com/jhoicas/Materiales-api/internal/domain"
	"github.com/jhoicas/Materiales-api/internal/domain/entity"
	"github.com/jhoicas/Materiales-api/internal/domain/repository"
)

// MaterialUseCase casos de uso de catálogo para materiales. El stock se maneja vía movimientos.
type MaterialUseCase struct {
	repo          repository.MaterialRepository
	warehouseRepo repository.WarehouseRepository
}

// NewMaterialUseCase construye el caso de uso.
func NewMaterialUseCase(repo repository.MaterialRepository, warehouseRepo repository.WarehouseRepository) *MaterialUseCase {
	return &MaterialUseCase{repo: repo, warehouseRepo: warehouseRepo}
}

// Create crea un nuevo material activo.
func (uc *MaterialUseCase) Create(ctx context.Context, in dto.CreateMaterialRequest) (*dto.MaterialResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.NewValidationError("name", "es requerido")
	}
	if strings.TrimSpace(in.Unit) == "" {
		return nil, domain.NewValidationError("unit", "es requerida")
	}
	if in.UnitCost.IsNegative() {
		return nil, domain.NewValidationError("unit_cost", "no puede ser negativo")
	}
	if !entity.FitsScale(in.UnitCost) {
		return nil, domain.NewValidationError("unit_cost", "máximo 4 decimales")
	}
	if in.MinimumStock.IsNegative() {
		return nil, domain.NewValidationError("minimum_stock", "no puede ser negativo")
	}
	if !entity.FitsScale(in.MinimumStock) {
		return nil, domain.NewValidationError("minimum_stock", "máximo 4 decimales")
	}
	if err := uc.checkWarehouse(ctx, in.DefaultWarehouseID); err != nil {
		return nil, err
	}
	now := time.Now()
	material := &entity.Material{
		ID:                 uuid.New().String(),
		Name:               strings.TrimSpace(in.Name),
		Category:           in.Category,
		Unit:               strings.TrimSpace(in.Unit),
		UnitCost:           in.UnitCost,
		MinimumStock:       in.MinimumStock,
		DefaultWarehouseID: in.DefaultWarehouseID,
		Active:             true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := uc.repo.Create(ctx, material); err != nil {
		return nil, err
	}
	return ToMaterialResponse(material), nil
}

// GetByID obtiene un material por ID.
func (uc *MaterialUseCase) GetByID(ctx context.Context, id string) (*dto.MaterialResponse, error) {
	material, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, domain.ErrNotFound
	}
	return ToMaterialResponse(material), nil
}

// Update actualiza un material. No permite modificar stock (se maneja vía movimientos).
func (uc *MaterialUseCase) Update(ctx context.Context, id string, in dto.UpdateMaterialRequest) (*dto.MaterialResponse, error) {
	material, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, domain.NewValidationError("name", "no puede quedar vacío")
		}
		material.Name = strings.TrimSpace(*in.Name)
	}
	if in.Category != nil {
		material.Category = *in.Category
	}
	if in.Unit != nil {
		if strings.TrimSpace(*in.Unit) == "" {
			return nil, domain.NewValidationError("unit", "no puede quedar vacía")
		}
		material.Unit = strings.TrimSpace(*in.Unit)
	}
	if in.UnitCost != nil {
		if in.UnitCost.IsNegative() {
			return nil, domain.NewValidationError("unit_cost", "no puede ser negativo")
		}
		if !entity.FitsScale(*in.UnitCost) {
			return nil, domain.NewValidationError("unit_cost", "máximo 4 decimales")
		}
		material.UnitCost = *in.UnitCost
	}
	if in.MinimumStock != nil {
		if in.MinimumStock.LessThan(decimal.Zero) {
			return nil, domain.NewValidationError("minimum_stock", "no puede ser negativo")
		}
		if !entity.FitsScale(*in.MinimumStock) {
			return nil, domain.NewValidationError("minimum_stock", "máximo 4 decimales")
		}
		material.MinimumStock = *in.MinimumStock
	}
	if in.DefaultWarehouseID != nil {
		if err := uc.checkWarehouse(ctx, *in.DefaultWarehouseID); err != nil {
			return nil, err
		}
		material.DefaultWarehouseID = *in.DefaultWarehouseID
	}
	material.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, material); err != nil {
		return nil, err
	}
	return ToMaterialResponse(material), nil
}

// Deactivate desactiva el material. Nunca se borra: los movimientos lo siguen referenciando.
func (uc *MaterialUseCase) Deactivate(ctx context.Context, id string) (*dto.MaterialResponse, error) {
	material, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, domain.ErrNotFound
	}
	if material.Active {
		material.Active = false
		material.UpdatedAt = time.Now()
		if err := uc.repo.Update(ctx, material); err != nil {
			return nil, err
		}
	}
	return ToMaterialResponse(material), nil
}

// List lista materiales con paginación.
func (uc *MaterialUseCase) List(ctx context.Context, onlyActive bool, page dto.PageRequest) (*dto.MaterialListResponse, error) {
	page.DefaultPage()
	list, total, err := uc.repo.List(ctx, onlyActive, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MaterialResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *ToMaterialResponse(m))
	}
	return &dto.MaterialListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// checkWarehouse valida la bodega por defecto (opcional) del material.
func (uc *MaterialUseCase) checkWarehouse(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	wh, err := uc.warehouseRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if wh == nil || !wh.Active {
		return domain.NewValidationError("default_warehouse_id", "bodega desconocida o inactiva")
	}
	return nil
}

// ToMaterialResponse convierte la entidad al DTO.
func ToMaterialResponse(m *entity.Material) *dto.MaterialResponse {
	if m == nil {
		return nil
	}
	return &dto.MaterialResponse{
		ID:                 m.ID,
		Name:               m.Name,
		Category:           m.Category,
		Unit:               m.Unit,
		UnitCost:           m.UnitCost,
		MinimumStock:       m.MinimumStock,
		DefaultWarehouseID: m.DefaultWarehouseID,
		Active:             m.Active,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}
