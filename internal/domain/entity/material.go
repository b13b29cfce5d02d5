package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material representa un material de construcción del catálogo.
// Nunca se borra: se desactiva para que los movimientos conserven una identidad estable.
type Material struct {
	ID                 string
	Name               string
	Category           string
	Unit               string // unidad de medida (m3, kg, bulto...)
	UnitCost           decimal.Decimal
	MinimumStock       decimal.Decimal // 0 = sin monitoreo
	DefaultWarehouseID string
	Active             bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
