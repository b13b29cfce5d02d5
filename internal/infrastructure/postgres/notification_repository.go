package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Materiales-api/internal/domain/entity"
	"github.com/jhoicas/Materiales-api/internal/domain/repository"
)

var _ repository.NotificationRepository = (*NotificationRepo)(nil)

// NotificationRepo persiste alertas de stock para la bandeja de la aplicación anfitriona.
type NotificationRepo struct {
	q Querier
}

// NewNotificationRepository construye el adaptador.
func NewNotificationRepository(q Querier) *NotificationRepo {
	return &NotificationRepo{q: q}
}

// Create inserta la alerta.
func (r *NotificationRepo) Create(ctx context.Context, a *entity.StockAlert) error {
	query := `
		INSERT INTO stock_notifications (
			id, recipient_id, material_id, warehouse_id, movement_id, severity,
			current_stock, minimum_stock, message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	message := fmt.Sprintf("Stock %s de %s: %s (mínimo %s)",
		a.Severity, a.MaterialName, a.CurrentStock.String(), a.MinimumStock.String())
	_, err := r.q.Exec(ctx, query,
		a.ID, a.RecipientID, a.MaterialID, a.WarehouseID, a.MovementID, string(a.Severity),
		a.CurrentStock, a.MinimumStock, message, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock notification: %w", err)
	}
	return nil
}
