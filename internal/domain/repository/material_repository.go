package repository

import (
	"context"

	"github.com/jhoicas/Materiales-api/internal/domain/entity"
)

// MaterialRepository define el puerto de persistencia para Material (DIP).
// No hay Delete: los materiales se desactivan.
type MaterialRepository interface {
	Create(ctx context.Context, material *entity.Material) error
	GetByID(ctx context.Context, id string) (*entity.Material, error)
	Update(ctx context.Context, material *entity.Material) error
	List(ctx context.Context, onlyActive bool, limit, offset int) ([]*entity.Material, int, error)
}
