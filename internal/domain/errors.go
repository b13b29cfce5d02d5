package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia")
)

// ValidationError describe una entrada mal formada. Se rechaza antes de tocar el ledger.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError construye un ValidationError.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validación: " + e.Reason
	}
	return fmt.Sprintf("validación: %s: %s", e.Field, e.Reason)
}

// Unwrap permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// InsufficientStockError indica que una entrega o ajuste negativo dejaría el stock bajo cero.
// Lleva lo solicitado y lo disponible para que el llamador pueda mostrar ambos.
type InsufficientStockError struct {
	MaterialID  string
	WarehouseID string
	Requested   decimal.Decimal
	Available   decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: solicitado %s, disponible %s", e.Requested.String(), e.Available.String())
}

// Unwrap permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// ConcurrencyConflictError indica que no se pudo serializar la operación sobre el par
// (material, bodega). Es seguro reintentar.
type ConcurrencyConflictError struct {
	MaterialID  string
	WarehouseID string
	Cause       error
}

func (e *ConcurrencyConflictError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("conflicto de concurrencia en %s/%s: %v", e.MaterialID, e.WarehouseID, e.Cause)
	}
	return fmt.Sprintf("conflicto de concurrencia en %s/%s", e.MaterialID, e.WarehouseID)
}

// Unwrap permite errors.Is(err, ErrConcurrencyConflict).
func (e *ConcurrencyConflictError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrConcurrencyConflict}
	}
	return []error{ErrConcurrencyConflict, e.Cause}
}
