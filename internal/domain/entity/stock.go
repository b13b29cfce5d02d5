package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLevel es la proyección incremental del ledger para un par (material, bodega).
// Siempre coincide con el stock_after del último movimiento del par.
type StockLevel struct {
	MaterialID     string
	WarehouseID    string
	Quantity       decimal.Decimal
	LastMovementID int64
	UpdatedAt      time.Time
}
