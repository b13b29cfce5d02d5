package repository

import (
	"context"

	"github.com/jhoicas/Materiales-api/internal/domain/entity"
)

// NotificationRepository persiste alertas para que la aplicación anfitriona las muestre.
type NotificationRepository interface {
	Create(ctx context.Context, alert *entity.StockAlert) error
}
