package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Materiales-api/internal/domain/entity"
)

// Replay suma las cantidades con signo de entries (ya en orden de ledger).
// Es la referencia de corrección para la proyección incremental.
func Replay(entries []*entity.Movement) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.SignedQuantity())
	}
	return total
}

// ChainError describe el primer movimiento cuyo stock_before/stock_after rompe la cadena.
type ChainError struct {
	MovementID int64
	Expected   decimal.Decimal
	Got        decimal.Decimal
	Field      string
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("movimiento %d: %s esperado %s, encontrado %s", e.MovementID, e.Field, e.Expected, e.Got)
}

// CheckChain verifica que cada stock_before sea el stock_after anterior, que
// stock_after = stock_before + cantidad con signo, y que nunca sea negativo.
func CheckChain(entries []*entity.Movement) error {
	running := decimal.Zero
	var lastID int64
	for _, e := range entries {
		if e.ID <= lastID {
			return fmt.Errorf("movimiento %d fuera de orden (anterior %d)", e.ID, lastID)
		}
		lastID = e.ID
		if !e.StockBefore.Equal(running) {
			return &ChainError{MovementID: e.ID, Field: "stock_before", Expected: running, Got: e.StockBefore}
		}
		running = e.Type.Apply(running, e.Quantity)
		if !e.StockAfter.Equal(running) {
			return &ChainError{MovementID: e.ID, Field: "stock_after", Expected: running, Got: e.StockAfter}
		}
		if running.IsNegative() {
			return &ChainError{MovementID: e.ID, Field: "stock_after", Expected: decimal.Zero, Got: running}
		}
	}
	return nil
}
