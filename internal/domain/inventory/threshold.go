package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Materiales-api/internal/domain/entity"
)

var half = decimal.NewFromFloat(0.5)

// Classify compara el stock con el mínimo del material.
//
//	minimum = 0            -> sin alerta
//	stock <= minimum * 0.5 -> CRITICAL
//	stock <= minimum       -> LOW
func Classify(stock, minimum decimal.Decimal) (entity.Severity, bool) {
	if !minimum.IsPositive() {
		return "", false
	}
	if stock.LessThanOrEqual(minimum.Mul(half)) {
		return entity.SeverityCritical, true
	}
	if stock.LessThanOrEqual(minimum) {
		return entity.SeverityLow, true
	}
	return "", false
}
