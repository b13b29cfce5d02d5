package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterDeliveryRequest body para POST /api/inventory/deliveries.
// delivered_by se toma del token, no del cuerpo.
type RegisterDeliveryRequest struct {
	MaterialID  string           `json:"material_id"`
	WarehouseID string           `json:"warehouse_id"`
	Quantity    decimal.Decimal  `json:"quantity"`
	ProjectID   string           `json:"project_id,omitempty"`
	WorkerID    string           `json:"worker_id,omitempty"`
	Reason      string           `json:"reason,omitempty"`
	Notes       string           `json:"notes,omitempty"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
	OccurredAt  *time.Time       `json:"occurred_at,omitempty"`
}

// RegisterAdjustmentRequest body para POST /api/inventory/adjustments.
type RegisterAdjustmentRequest struct {
	MaterialID   string           `json:"material_id"`
	WarehouseID  string           `json:"warehouse_id"`
	MovementType string           `json:"movement_type"` // ingreso | ajuste_negativo
	Quantity     decimal.Decimal  `json:"quantity"`
	Reason       string           `json:"reason,omitempty"`
	Notes        string           `json:"notes,omitempty"`
	UnitCost     *decimal.Decimal `json:"unit_cost,omitempty"`
	OccurredAt   *time.Time       `json:"occurred_at,omitempty"`
}

// MovementResponse salida de un movimiento del ledger.
type MovementResponse struct {
	ID           int64           `json:"id"`
	MaterialID   string          `json:"material_id"`
	WarehouseID  string          `json:"warehouse_id"`
	MovementType string          `json:"movement_type"`
	Quantity     decimal.Decimal `json:"quantity"`
	StockBefore  decimal.Decimal `json:"stock_before"`
	StockAfter   decimal.Decimal `json:"stock_after"`
	ProjectID    string          `json:"project_id,omitempty"`
	WorkerID     string          `json:"worker_id,omitempty"`
	DeliveredBy  string          `json:"delivered_by"`
	Reason       string          `json:"reason,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	CreatedAt    time.Time       `json:"created_at"`
	RecordedAt   time.Time       `json:"recorded_at"`
	Consumed     bool            `json:"consumed"`
	ConsumedAt   *time.Time      `json:"consumed_at,omitempty"`
	ConsumedBy   string          `json:"consumed_by,omitempty"`
}

// MovementListResponse página del historial; Page.Total cuenta el conjunto filtrado.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// StockResponse stock actual de un par material+bodega.
type StockResponse struct {
	MaterialID     string          `json:"material_id"`
	WarehouseID    string          `json:"warehouse_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	LastMovementID int64           `json:"last_movement_id"`
	UpdatedAt      *time.Time      `json:"updated_at,omitempty"`
}

// MaterialStockResponse stock total de un material con desglose por bodega.
type MaterialStockResponse struct {
	MaterialID   string          `json:"material_id"`
	Total        decimal.Decimal `json:"total"`
	MinimumStock decimal.Decimal `json:"minimum_stock"`
	Warehouses   []StockResponse `json:"warehouses"`
}

// ReconciliationResponse resultado de comparar la proyección incremental contra el replay.
type ReconciliationResponse struct {
	MaterialID  string          `json:"material_id"`
	WarehouseID string          `json:"warehouse_id"`
	Cached      decimal.Decimal `json:"cached"`
	Replayed    decimal.Decimal `json:"replayed"`
	Entries     int             `json:"entries"`
	Consistent  bool            `json:"consistent"`
	ChainError  string          `json:"chain_error,omitempty"`
}

// InsufficientStockResponse cuerpo de error 409 con lo solicitado y lo disponible.
type InsufficientStockResponse struct {
	Code      string          `json:"code"`
	Message   string          `json:"message"`
	Requested decimal.Decimal `json:"requested"`
	Available decimal.Decimal `json:"available"`
}
