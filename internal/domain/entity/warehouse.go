package entity

import "time"

// Warehouse representa una bodega donde se almacena material (multi-bodega).
// Igual que Material, solo se desactiva.
type Warehouse struct {
	ID        string
	Name      string
	Address   string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
