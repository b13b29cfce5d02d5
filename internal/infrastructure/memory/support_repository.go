package memory

import (
	"context"
	"slices"

	"github.com/jhoicas/Materiales-api/internal/domain"
	"github.com/jhoicas/Materiales-api/internal/domain/entity"
	"github.com/jhoicas/Materiales-api/internal/domain/repository"
)

var (
	_ repository.ConsumptionRepository  = (*ConsumptionRepo)(nil)
	_ repository.UserRepository         = (*UserRepo)(nil)
	_ repository.NotificationRepository = (*NotificationRepo)(nil)
)

// ConsumptionRepo consumos de entregas.
type ConsumptionRepo struct {
	store *Store
}

// NewConsumptionRepository construye el repositorio.
func NewConsumptionRepository(store *Store) *ConsumptionRepo {
	return &ConsumptionRepo{store: store}
}

func (r *ConsumptionRepo) Create(ctx context.Context, c *entity.Consumption) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.findMovement(c.MovementID) == nil {
		return domain.ErrNotFound
	}
	if _, ok := r.store.consumptions[c.MovementID]; ok {
		return domain.ErrConflict
	}
	stored := *c
	r.store.consumptions[c.MovementID] = &stored
	return nil
}

func (r *ConsumptionRepo) GetByMovementID(ctx context.Context, movementID int64) (*entity.Consumption, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	c, ok := r.store.consumptions[movementID]
	if !ok {
		return nil, nil
	}
	out := *c
	return &out, nil
}

// UserRepo destinatarios de alertas.
type UserRepo struct {
	store *Store
}

// NewUserRepository construye el repositorio.
func NewUserRepository(store *Store) *UserRepo {
	return &UserRepo{store: store}
}

func (r *UserRepo) ListIDsByRoles(ctx context.Context, roles ...string) ([]string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var ids []string
	for _, u := range r.store.users {
		if u.Active && slices.Contains(roles, u.Role) {
			ids = append(ids, u.ID)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// NotificationRepo bandeja de alertas.
type NotificationRepo struct {
	store *Store
}

// NewNotificationRepository construye el repositorio.
func NewNotificationRepository(store *Store) *NotificationRepo {
	return &NotificationRepo{store: store}
}

func (r *NotificationRepo) Create(ctx context.Context, a *entity.StockAlert) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.notifications = append(r.store.notifications, *a)
	return nil
}
