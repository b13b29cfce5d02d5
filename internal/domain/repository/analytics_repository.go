package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Materiales-api/internal/domain/entity"
)

// MovementTotalsResult totales del período para un tipo de movimiento.
type MovementTotalsResult struct {
	Type      entity.MovementType
	Count     int
	TotalCost decimal.Decimal // suma de total_cost (cantidad * costo unitario)
}

// ProjectConsumptionResult entregas agregadas por obra.
// Las entregas sin obra se agrupan con ProjectID vacío.
type ProjectConsumptionResult struct {
	ProjectID     string
	Deliveries    int
	ConsumedCount int // entregas ya marcadas como consumidas
	TotalCost     decimal.Decimal
}

// MaterialUsageResult entregas agregadas por material.
type MaterialUsageResult struct {
	MaterialID   string
	MaterialName string
	Unit         string
	Quantity     decimal.Decimal
	TotalCost    decimal.Decimal
}

// BelowMinimumResult par (material, bodega) cuyo stock está en o bajo el mínimo del material.
type BelowMinimumResult struct {
	MaterialID   string
	MaterialName string
	WarehouseID  string
	Quantity     decimal.Decimal
	MinimumStock decimal.Decimal
}

// AnalyticsRepository define las consultas de lectura para el tablero de materiales.
// Las implementaciones son read-only y filtran por created_at (fecha del movimiento).
type AnalyticsRepository interface {
	// GetMovementTotals devuelve cantidad de movimientos y costo total por tipo en el período.
	GetMovementTotals(ctx context.Context, startDate, endDate time.Time) ([]MovementTotalsResult, error)

	// GetProjectConsumption devuelve las `limit` obras con mayor costo entregado, de mayor a menor.
	GetProjectConsumption(ctx context.Context, startDate, endDate time.Time, limit int) ([]ProjectConsumptionResult, error)

	// GetMaterialUsage devuelve los `limit` materiales con mayor costo entregado, de mayor a menor.
	GetMaterialUsage(ctx context.Context, startDate, endDate time.Time, limit int) ([]MaterialUsageResult, error)

	// GetBelowMinimum lista los pares de materiales activos con mínimo > 0 y stock <= mínimo.
	GetBelowMinimum(ctx context.Context) ([]BelowMinimumResult, error)
}
