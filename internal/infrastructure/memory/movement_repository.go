package memory

import (
	"context"
	"slices"

	"github.com/jhoicas/Materiales-api/internal/domain/entity"
	"github.com/jhoicas/Materiales-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo lectura del ledger confirmado.
type MovementRepo struct {
	store *Store
}

// NewMovementRepository construye el repositorio.
func NewMovementRepository(store *Store) *MovementRepo {
	return &MovementRepo{store: store}
}

// Append fuera de una transacción confirma de inmediato.
func (r *MovementRepo) Append(ctx context.Context, m *entity.Movement) (int64, error) {
	stored := *m
	stored.ID = r.store.seq.Add(1)
	stored.Consumed, stored.ConsumedAt, stored.ConsumedBy = false, nil, ""
	r.store.mu.Lock()
	r.store.insertMovement(&stored)
	r.store.mu.Unlock()
	return stored.ID, nil
}

func (r *MovementRepo) GetByID(ctx context.Context, id int64) (*entity.Movement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	m := r.store.findMovement(id)
	if m == nil {
		return nil, nil
	}
	return r.store.withConsumption(m), nil
}

func (r *MovementRepo) ListByPair(ctx context.Context, materialID, warehouseID string) ([]*entity.Movement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return filterMovements(r.store, r.store.movements, repository.MovementFilter{
		MaterialID:  materialID,
		WarehouseID: warehouseID,
	}), nil
}

func (r *MovementRepo) ListByMaterial(ctx context.Context, materialID string) ([]*entity.Movement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return filterMovements(r.store, r.store.movements, repository.MovementFilter{MaterialID: materialID}), nil
}

func (r *MovementRepo) Query(ctx context.Context, filter repository.MovementFilter) ([]*entity.Movement, int, error) {
	r.store.mu.RLock()
	all := filterMovements(r.store, r.store.movements, filter)
	r.store.mu.RUnlock()
	page, total := paginateDesc(all, filter.Limit, filter.Offset)
	return page, total, nil
}

// filterMovements copias de los movimientos que cumplen f, en orden ascendente. Requiere s.mu tomado.
func filterMovements(s *Store, src []*entity.Movement, f repository.MovementFilter) []*entity.Movement {
	out := []*entity.Movement{}
	for _, m := range src {
		if matches(m, f) {
			out = append(out, s.withConsumption(m))
		}
	}
	return out
}

func matches(m *entity.Movement, f repository.MovementFilter) bool {
	switch {
	case f.MaterialID != "" && m.MaterialID != f.MaterialID,
		f.WarehouseID != "" && m.WarehouseID != f.WarehouseID,
		f.ProjectID != "" && m.ProjectID != f.ProjectID,
		f.WorkerID != "" && m.WorkerID != f.WorkerID,
		f.DeliveredBy != "" && m.DeliveredBy != f.DeliveredBy,
		f.Type != 0 && m.Type != f.Type,
		f.From != nil && m.CreatedAt.Before(*f.From),
		f.To != nil && m.CreatedAt.After(*f.To):
		return false
	}
	return true
}

func sortAsc(list []*entity.Movement) {
	slices.SortFunc(list, func(a, b *entity.Movement) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
}

// paginateDesc invierte el orden (más reciente primero) y corta la página.
func paginateDesc(asc []*entity.Movement, limit, offset int) ([]*entity.Movement, int) {
	total := len(asc)
	desc := make([]*entity.Movement, total)
	for i, m := range asc {
		desc[total-1-i] = m
	}
	if offset >= total {
		return []*entity.Movement{}, total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return desc[offset:end], total
}
