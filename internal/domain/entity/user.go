package entity

// Roles conocidos. Los usuarios los administra la aplicación anfitriona.
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleBodeguero  = "bodeguero"
	RoleUser       = "user"
)

// ElevatedRoles son los roles que reciben alertas de stock.
var ElevatedRoles = []string{RoleAdmin, RoleSupervisor}

// IsElevatedRole indica si role puede administrar el catálogo.
func IsElevatedRole(role string) bool {
	for _, r := range ElevatedRoles {
		if r == role {
			return true
		}
	}
	return false
}
