package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Materiales-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo lectura de la tabla users de la aplicación anfitriona.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de lectura de usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// ListIDsByRoles IDs de usuarios activos con alguno de los roles, en orden estable.
func (r *UserRepo) ListIDsByRoles(ctx context.Context, roles ...string) ([]string, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	rows, err := r.q.Query(ctx,
		`SELECT id::text FROM users WHERE role = ANY($1) AND status = 'active' ORDER BY id`,
		roles,
	)
	if err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
