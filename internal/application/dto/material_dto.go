package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateMaterialRequest entrada para crear un material.
type CreateMaterialRequest struct {
	Name               string          `json:"name" validate:"required,min=1,max=200"`
	Category           string          `json:"category"`
	Unit               string          `json:"unit" validate:"required"`
	UnitCost           decimal.Decimal `json:"unit_cost"`
	MinimumStock       decimal.Decimal `json:"minimum_stock"`
	DefaultWarehouseID string          `json:"default_warehouse_id,omitempty"`
}

// UpdateMaterialRequest entrada para actualizar un material (el stock se maneja vía movimientos).
type UpdateMaterialRequest struct {
	Name               *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Category           *string          `json:"category"`
	Unit               *string          `json:"unit"`
	UnitCost           *decimal.Decimal `json:"unit_cost"`
	MinimumStock       *decimal.Decimal `json:"minimum_stock"`
	DefaultWarehouseID *string          `json:"default_warehouse_id"`
}

// MaterialResponse salida de un material.
type MaterialResponse struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Category           string          `json:"category"`
	Unit               string          `json:"unit"`
	UnitCost           decimal.Decimal `json:"unit_cost"`
	MinimumStock       decimal.Decimal `json:"minimum_stock"`
	DefaultWarehouseID string          `json:"default_warehouse_id,omitempty"`
	Active             bool            `json:"active"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// MaterialListResponse lista paginada de materiales.
type MaterialListResponse struct {
	Items []MaterialResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
