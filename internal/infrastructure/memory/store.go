// Package memory implementa los puertos de persistencia en memoria del proceso.
// Sirve para desarrollo local (STORAGE_DRIVER=memory) y para las pruebas de los casos de uso.
package memory

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jhoicas/Materiales-api/internal/domain"
	"github.com/jhoicas/Materiales-api/internal/domain/entity"
)

var errLockTimeout = errors.New("memory: tiempo de espera del candado agotado")

type pairKey struct {
	materialID  string
	warehouseID string
}

// User usuario mínimo de la aplicación anfitriona.
type User struct {
	ID     string
	Role   string
	Active bool
}

// Store estado compartido por los repositorios en memoria.
// Las escrituras del ledger se aplican al confirmar la transacción; los IDs se asignan
// al agregar, así que un rollback deja huecos en la secuencia igual que en PostgreSQL.
type Store struct {
	mu            sync.RWMutex
	seq           atomic.Int64
	movements     []*entity.Movement // ordenados por ID
	stock         map[pairKey]*entity.StockLevel
	consumptions  map[int64]*entity.Consumption
	materials     map[string]*entity.Material
	warehouses    map[string]*entity.Warehouse
	users         []User
	notifications []entity.StockAlert

	locksMu sync.Mutex
	locks   map[pairKey]chan struct{}
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		stock:        make(map[pairKey]*entity.StockLevel),
		consumptions: make(map[int64]*entity.Consumption),
		materials:    make(map[string]*entity.Material),
		warehouses:   make(map[string]*entity.Warehouse),
		locks:        make(map[pairKey]chan struct{}),
	}
}

// AddUser registra un usuario para la resolución de destinatarios de alertas.
func (s *Store) AddUser(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, u)
}

// Notifications copia de las alertas persistidas.
func (s *Store) Notifications() []entity.StockAlert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.notifications)
}

func (s *Store) pairLock(key pairKey) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	ch, ok := s.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[key] = ch
	}
	return ch
}

// acquire toma el candado del par. Respeta ctx y, si timeout > 0, falla con conflicto de concurrencia.
func (s *Store) acquire(ctx context.Context, key pairKey, timeout time.Duration) error {
	ch := s.pairLock(key)
	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}
	select {
	case ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-expired:
		return &domain.ConcurrencyConflictError{
			MaterialID:  key.materialID,
			WarehouseID: key.warehouseID,
			Cause:       errLockTimeout,
		}
	}
}

func (s *Store) release(key pairKey) {
	<-s.pairLock(key)
}

// withConsumption copia el movimiento con la vista de consumo. Requiere s.mu tomado.
func (s *Store) withConsumption(m *entity.Movement) *entity.Movement {
	out := *m
	if c, ok := s.consumptions[m.ID]; ok {
		at := c.ConsumedAt
		out.Consumed = true
		out.ConsumedAt = &at
		out.ConsumedBy = c.ConsumedBy
	}
	return &out
}

// insertMovement mantiene el slice ordenado por ID. Requiere s.mu tomado en escritura.
func (s *Store) insertMovement(m *entity.Movement) {
	i := sort.Search(len(s.movements), func(i int) bool { return s.movements[i].ID > m.ID })
	s.movements = slices.Insert(s.movements, i, m)
}

func (s *Store) findMovement(id int64) *entity.Movement {
	i := sort.Search(len(s.movements), func(i int) bool { return s.movements[i].ID >= id })
	if i < len(s.movements) && s.movements[i].ID == id {
		return s.movements[i]
	}
	return nil
}

// catalogPair copias de material y bodega (nil si no existen). Requiere s.mu tomado.
func (s *Store) catalogPair(materialID, warehouseID string) (*entity.Material, *entity.Warehouse) {
	var m *entity.Material
	if found, ok := s.materials[materialID]; ok {
		c := *found
		m = &c
	}
	var w *entity.Warehouse
	if found, ok := s.warehouses[warehouseID]; ok {
		c := *found
		w = &c
	}
	return m, w
}

func copyLevel(l *entity.StockLevel) *entity.StockLevel {
	out := *l
	return &out
}
