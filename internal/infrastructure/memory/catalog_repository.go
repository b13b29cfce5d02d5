package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Materiales-api/internal/domain"
	"github.com/jhoicas/Materiales-api/internal/domain/entity"
	"github.com/jhoicas/Materiales-api/internal/domain/repository"
)

var (
	_ repository.MaterialRepository  = (*MaterialRepo)(nil)
	_ repository.WarehouseRepository = (*WarehouseRepo)(nil)
)

// MaterialRepo catálogo de materiales en memoria.
type MaterialRepo struct {
	store *Store
}

// NewMaterialRepository construye el repositorio.
func NewMaterialRepository(store *Store) *MaterialRepo {
	return &MaterialRepo{store: store}
}

func (r *MaterialRepo) Create(ctx context.Context, m *entity.Material) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.materials[m.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, other := range r.store.materials {
		if other.Name == m.Name {
			return domain.ErrDuplicate
		}
	}
	c := *m
	r.store.materials[m.ID] = &c
	return nil
}

func (r *MaterialRepo) GetByID(ctx context.Context, id string) (*entity.Material, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	m, ok := r.store.materials[id]
	if !ok {
		return nil, nil
	}
	c := *m
	return &c, nil
}

func (r *MaterialRepo) Update(ctx context.Context, m *entity.Material) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.materials[m.ID]; !ok {
		return domain.ErrNotFound
	}
	for id, other := range r.store.materials {
		if id != m.ID && other.Name == m.Name {
			return domain.ErrDuplicate
		}
	}
	c := *m
	r.store.materials[m.ID] = &c
	return nil
}

func (r *MaterialRepo) List(ctx context.Context, onlyActive bool, limit, offset int) ([]*entity.Material, int, error) {
	r.store.mu.RLock()
	var all []*entity.Material
	for _, m := range r.store.materials {
		if onlyActive && !m.Active {
			continue
		}
		c := *m
		all = append(all, &c)
	}
	r.store.mu.RUnlock()
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].ID < all[j].ID
	})
	return page(all, limit, offset), len(all), nil
}

// WarehouseRepo catálogo de bodegas en memoria.
type WarehouseRepo struct {
	store *Store
}

// NewWarehouseRepository construye el repositorio.
func NewWarehouseRepository(store *Store) *WarehouseRepo {
	return &WarehouseRepo{store: store}
}

func (r *WarehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.warehouses[w.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, other := range r.store.warehouses {
		if other.Name == w.Name {
			return domain.ErrDuplicate
		}
	}
	c := *w
	r.store.warehouses[w.ID] = &c
	return nil
}

func (r *WarehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	w, ok := r.store.warehouses[id]
	if !ok {
		return nil, nil
	}
	c := *w
	return &c, nil
}

func (r *WarehouseRepo) Update(ctx context.Context, w *entity.Warehouse) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.warehouses[w.ID]; !ok {
		return domain.ErrNotFound
	}
	for id, other := range r.store.warehouses {
		if id != w.ID && other.Name == w.Name {
			return domain.ErrDuplicate
		}
	}
	c := *w
	r.store.warehouses[w.ID] = &c
	return nil
}

func (r *WarehouseRepo) List(ctx context.Context, onlyActive bool, limit, offset int) ([]*entity.Warehouse, int, error) {
	r.store.mu.RLock()
	var all []*entity.Warehouse
	for _, w := range r.store.warehouses {
		if onlyActive && !w.Active {
			continue
		}
		c := *w
		all = append(all, &c)
	}
	r.store.mu.RUnlock()
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].ID < all[j].ID
	})
	return page(all, limit, offset), len(all), nil
}

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end]
}
