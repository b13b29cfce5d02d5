package dto

import "github.com/shopspring/decimal"

// UsageReportRequest parámetros para GET /api/analytics/usage.
type UsageReportRequest struct {
	StartDate string `query:"start_date"` // YYYY-MM-DD; por defecto primer día del mes actual
	EndDate   string `query:"end_date"`   // YYYY-MM-DD; por defecto hoy
	TopN      int    `query:"top_n"`      // máx materiales/obras a devolver (default 20, max 200)
}

// MaterialRankingDTO costo entregado por material, con acumulado para la curva Pareto.
type MaterialRankingDTO struct {
	Rank              int             `json:"rank"` // 1 = mayor costo entregado
	MaterialID        string          `json:"material_id"`
	MaterialName      string          `json:"material_name"`
	Unit              string          `json:"unit"`
	Quantity          decimal.Decimal `json:"quantity"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	CostPct           decimal.Decimal `json:"cost_pct"`
	CumulativeCostPct decimal.Decimal `json:"cumulative_cost_pct"`
	IsTopPareto       bool            `json:"is_top_pareto"` // dentro del primer 80% del costo acumulado
}

// PeriodDTO rango de fechas del reporte.
type PeriodDTO struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// UsageReportDTO respuesta de GET /api/analytics/usage.
type UsageReportDTO struct {
	Period          PeriodDTO               `json:"period"`
	TotalDelivered  decimal.Decimal         `json:"total_delivered_cost"`
	Projects        []ProjectConsumptionDTO `json:"projects"`
	MaterialRanking []MaterialRankingDTO    `json:"material_ranking"`
	ParetoMaterials []MaterialRankingDTO    `json:"pareto_materials"` // materiales que concentran ~80% del costo
}
