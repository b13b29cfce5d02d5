package postgres

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Códigos SQLSTATE relevantes.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"

	codeInvalidTextRepresentation = "22P02"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	if pgCode(err) == codeUniqueViolation {
		return true
	}
	return strings.Contains(err.Error(), codeUniqueViolation)
}

// isForeignKeyViolation material o bodega inexistente al insertar un movimiento.
func isForeignKeyViolation(err error) bool {
	return pgCode(err) == codeForeignKeyViolation
}

// isConcurrencyConflict errores de bloqueo que se resuelven reintentando la transacción.
func isConcurrencyConflict(err error) bool {
	switch pgCode(err) {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return true
	}
	return false
}

// isInvalidText valor que PostgreSQL no pudo convertir al tipo de la columna (uuid mal formado).
func isInvalidText(err error) bool {
	return pgCode(err) == codeInvalidTextRepresentation
}

// isUUID las llaves de catálogo son UUID; cualquier otro texto no puede existir en la tabla.
func isUUID(id string) bool {
	return uuid.Validate(id) == nil
}
