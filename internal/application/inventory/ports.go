package inventory

import (
	"context"

	"github.com/jhoicas/Materiales-api/internal/domain/entity"
	"github.com/jhoicas/Materiales-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad entre la lectura del stock, la validación y el append al ledger.
// Los conflictos de bloqueo se devuelven como *domain.ConcurrencyConflictError.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
	) error) error
}

// NotificationSink recibe los eventos de alerta; la aplicación anfitriona los persiste o muestra.
type NotificationSink interface {
	Emit(ctx context.Context, alert entity.StockAlert) error
}

// StockObserver reacciona a un movimiento ya confirmado. Nunca devuelve error al registrador.
type StockObserver interface {
	Dispatch(ctx context.Context, movement *entity.Movement, material *entity.Material)
}

// KardexGenerator genera la representación PDF de una página del historial.
type KardexGenerator interface {
	GenerateKardexPDF(ctx context.Context, report KardexReport) ([]byte, error)
}
