package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
// KPIs de movimientos del día y del mes en curso, las obras con más material entregado
// y los pares que están en o bajo el mínimo.
type DashboardSummaryDTO struct {
	Today       PeriodTotalsDTO         `json:"today"`
	Month       PeriodTotalsDTO         `json:"month"`
	TopProjects []ProjectConsumptionDTO `json:"top_projects"` // top 5 del mes por costo entregado
	LowStock    []LowStockDTO           `json:"low_stock"`

	DateLabel string `json:"date_label"` // ej: "Febrero 2026"
}

// PeriodTotalsDTO costo movido por tipo en un período.
type PeriodTotalsDTO struct {
	Movements     int             `json:"movements"`
	DeliveryCount int             `json:"delivery_count"`
	IngresosCost  decimal.Decimal `json:"ingresos_cost"`
	EntregasCost  decimal.Decimal `json:"entregas_cost"`
	AjustesCost   decimal.Decimal `json:"ajustes_cost"`
}

// ProjectConsumptionDTO material entregado a una obra.
type ProjectConsumptionDTO struct {
	ProjectID     string          `json:"project_id"` // vacío = entregas sin obra
	Deliveries    int             `json:"deliveries"`
	ConsumedCount int             `json:"consumed_count"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	CostPct       decimal.Decimal `json:"cost_pct"` // participación % en el costo entregado del período
}

// LowStockDTO par en o bajo el mínimo con su severidad (LOW | CRITICAL).
type LowStockDTO struct {
	MaterialID   string          `json:"material_id"`
	MaterialName string          `json:"material_name"`
	WarehouseID  string          `json:"warehouse_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	MinimumStock decimal.Decimal `json:"minimum_stock"`
	Severity     string          `json:"severity"`
}
