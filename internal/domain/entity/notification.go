package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Severity nivel de una alerta de stock.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityCritical Severity = "CRITICAL"
)

// StockAlert evento emitido por destinatario cuando el stock cae bajo el mínimo.
type StockAlert struct {
	ID           string          `json:"id"`
	RecipientID  string          `json:"recipient_id"`
	MaterialID   string          `json:"material_id"`
	MaterialName string          `json:"material_name"`
	WarehouseID  string          `json:"warehouse_id"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	MinimumStock decimal.Decimal `json:"minimum_stock"`
	Severity     Severity        `json:"severity"`
	MovementID   int64           `json:"movement_id"`
	CreatedAt    time.Time       `json:"created_at"`
}
