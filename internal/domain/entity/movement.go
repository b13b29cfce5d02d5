package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MovementType es el tipo cerrado de movimiento del ledger.
type MovementType uint8

// Tipos de movimiento de material.
const (
	MovementIngreso        MovementType = iota + 1 // entrada / aumento de stock
	MovementEntrega                                // entrega a obra o trabajador
	MovementAjusteNegativo                         // pérdida, daño o merma
)

// MovementTypes lista todos los tipos válidos en orden estable.
var MovementTypes = []MovementType{MovementIngreso, MovementEntrega, MovementAjusteNegativo}

// ParseMovementType convierte la forma textual ("ingreso", "entrega", "ajuste_negativo").
func ParseMovementType(s string) (MovementType, error) {
	switch s {
	case "ingreso":
		return MovementIngreso, nil
	case "entrega":
		return MovementEntrega, nil
	case "ajuste_negativo":
		return MovementAjusteNegativo, nil
	}
	return 0, fmt.Errorf("tipo de movimiento desconocido %q", s)
}

func (t MovementType) String() string {
	switch t {
	case MovementIngreso:
		return "ingreso"
	case MovementEntrega:
		return "entrega"
	case MovementAjusteNegativo:
		return "ajuste_negativo"
	}
	return fmt.Sprintf("MovementType(%d)", uint8(t))
}

// Valid indica si t es uno de los tipos cerrados.
func (t MovementType) Valid() bool {
	switch t {
	case MovementIngreso, MovementEntrega, MovementAjusteNegativo:
		return true
	}
	return false
}

// Sign devuelve +1 para entradas y -1 para salidas.
func (t MovementType) Sign() int {
	switch t {
	case MovementIngreso:
		return 1
	case MovementEntrega, MovementAjusteNegativo:
		return -1
	}
	return 0
}

// Signed aplica el signo del tipo a una cantidad positiva.
func (t MovementType) Signed(quantity decimal.Decimal) decimal.Decimal {
	if t.Sign() < 0 {
		return quantity.Neg()
	}
	return quantity
}

// Apply calcula el stock resultante de aplicar quantity sobre before.
func (t MovementType) Apply(before, quantity decimal.Decimal) decimal.Decimal {
	return before.Add(t.Signed(quantity))
}

// IsAdjustment indica si el tipo se registra por el formulario de ajustes.
func (t MovementType) IsAdjustment() bool {
	return t == MovementIngreso || t == MovementAjusteNegativo
}

func (t MovementType) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("tipo de movimiento inválido %d", uint8(t))
	}
	return json.Marshal(t.String())
}

func (t *MovementType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseMovementType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Movement es un registro inmutable del ledger de materiales.
// ID es la secuencia que ordena el ledger; CreatedAt puede venir retrofechado y solo se usa para mostrar.
type Movement struct {
	ID          int64
	MaterialID  string
	WarehouseID string
	Type        MovementType
	Quantity    decimal.Decimal // magnitud positiva; el signo lo da Type
	StockBefore decimal.Decimal
	StockAfter  decimal.Decimal
	ProjectID   string
	WorkerID    string
	DeliveredBy string // usuario que registra el movimiento
	Reason      string
	Notes       string
	UnitCost    decimal.Decimal
	TotalCost   decimal.Decimal
	CreatedAt   time.Time
	RecordedAt  time.Time

	// Vista de consumo (se guarda fuera de la fila del ledger).
	Consumed   bool
	ConsumedAt *time.Time
	ConsumedBy string
}

// DecimalPlaces escala de cantidades y costos en la base de datos (NUMERIC(18, 4)).
const DecimalPlaces = 4

// FitsScale indica si d se puede guardar sin redondeo.
func FitsScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(DecimalPlaces))
}

// SignedQuantity devuelve la cantidad con signo según el tipo.
func (m *Movement) SignedQuantity() decimal.Decimal {
	return m.Type.Signed(m.Quantity)
}

// Consumption marca una entrega como material usado físicamente.
type Consumption struct {
	MovementID int64
	ConsumedAt time.Time
	ConsumedBy string
}
