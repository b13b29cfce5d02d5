package repository

import "context"

// UserRepository puerto de solo lectura sobre los usuarios de la aplicación anfitriona.
type UserRepository interface {
	// ListIDsByRoles devuelve los IDs de usuarios activos con alguno de los roles.
	ListIDsByRoles(ctx context.Context, roles ...string) ([]string, error)
}
