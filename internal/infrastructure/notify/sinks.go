// Package notify entrega las alertas de stock a los destinos configurados.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Materiales-api/internal/application/inventory"
	"github.com/jhoicas/Materiales-api/internal/domain/entity"
	"github.com/jhoicas/Materiales-api/internal/domain/repository"
)

var (
	_ inventory.NotificationSink = (*RepositorySink)(nil)
	_ inventory.NotificationSink = (*LogSink)(nil)
	_ inventory.NotificationSink = Fanout(nil)
)

// RepositorySink guarda la alerta en la bandeja de notificaciones.
type RepositorySink struct {
	repo repository.NotificationRepository
}

// NewRepositorySink construye el sink.
func NewRepositorySink(repo repository.NotificationRepository) *RepositorySink {
	return &RepositorySink{repo: repo}
}

// Emit persiste la alerta.
func (s *RepositorySink) Emit(ctx context.Context, alert entity.StockAlert) error {
	return s.repo.Create(ctx, &alert)
}

// LogSink escribe la alerta en el log estructurado.
type LogSink struct {
	log zerolog.Logger
}

// NewLogSink construye el sink.
func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

// Emit nunca falla.
func (s *LogSink) Emit(_ context.Context, alert entity.StockAlert) error {
	s.log.Info().
		Str("recipient_id", alert.RecipientID).
		Str("material_id", alert.MaterialID).
		Str("warehouse_id", alert.WarehouseID).
		Str("severity", string(alert.Severity)).
		Str("current_stock", alert.CurrentStock.String()).
		Str("minimum_stock", alert.MinimumStock.String()).
		Int64("movement_id", alert.MovementID).
		Msg("alerta de stock")
	return nil
}

// Fanout entrega a todos los sinks; un fallo no impide los demás.
type Fanout []inventory.NotificationSink

// Emit devuelve los errores de todos los sinks que fallaron.
func (f Fanout) Emit(ctx context.Context, alert entity.StockAlert) error {
	var errs []error
	for i, s := range f {
		if err := s.Emit(ctx, alert); err != nil {
			errs = append(errs, fmt.Errorf("sink %d (%T): %w", i, s, err))
		}
	}
	return errors.Join(errs...)
}
