package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Materiales-api/internal/application/inventory"
	"github.com/jhoicas/Materiales-api/internal/domain/entity"
	"github.com/jhoicas/Materiales-api/internal/infrastructure/memory"
)

const (
	testMaterial  = "mat-cemento"
	testWarehouse = "bod-norte"
	testActor     = "user-bodega"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// captureSink guarda las alertas emitidas.
type captureSink struct {
	mu     sync.Mutex
	alerts []entity.StockAlert
}

func (s *captureSink) Emit(_ context.Context, a entity.StockAlert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, a)
	return nil
}

func (s *captureSink) take() []entity.StockAlert {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.alerts
	s.alerts = nil
	return out
}

// ledgerFixture arma el registrador sobre el almacén en memoria con un material y una bodega.
type ledgerFixture struct {
	store     *memory.Store
	materials *memory.MaterialRepo
	register  *inventory.RegisterMovementUseCase
	projector *inventory.StockProjector
	query     *inventory.QueryService
	sink      *captureSink
}

func newLedgerFixture(t *testing.T, minimum string) *ledgerFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	store.AddUser(memory.User{ID: "u-admin", Role: entity.RoleAdmin, Active: true})
	store.AddUser(memory.User{ID: "u-super", Role: entity.RoleSupervisor, Active: true})
	store.AddUser(memory.User{ID: "u-bodega", Role: entity.RoleBodeguero, Active: true})
	store.AddUser(memory.User{ID: "u-retirado", Role: entity.RoleAdmin, Active: false})

	materials := memory.NewMaterialRepository(store)
	warehouses := memory.NewWarehouseRepository(store)
	require.NoError(t, materials.Create(ctx, &entity.Material{
		ID: testMaterial, Name: "Cemento gris", Unit: "bulto",
		UnitCost: dec("32000"), MinimumStock: dec(minimum), Active: true,
	}))
	require.NoError(t, warehouses.Create(ctx, &entity.Warehouse{ID: testWarehouse, Name: "Bodega norte", Active: true}))
	require.NoError(t, warehouses.Create(ctx, &entity.Warehouse{ID: "bod-sur", Name: "Bodega sur", Active: true}))

	movements := memory.NewMovementRepository(store)
	sink := &captureSink{}
	monitor := inventory.NewThresholdMonitor(memory.NewUserRepository(store), sink, zerolog.Nop(), inventory.MonitorConfig{})
	register := inventory.NewRegisterMovementUseCase(
		memory.NewTxRunner(store, time.Second),
		materials, warehouses, monitor, zerolog.Nop(),
		inventory.RegistrarConfig{MaxAttempts: 3, RetryInitialInterval: time.Millisecond},
	)
	return &ledgerFixture{
		store:     store,
		materials: materials,
		register:  register,
		projector: inventory.NewStockProjector(memory.NewStockRepository(store), movements),
		query:     inventory.NewQueryService(movements),
		sink:      sink,
	}
}

func (f *ledgerFixture) ingreso(t *testing.T, qty string) *entity.Movement {
	t.Helper()
	mov, err := f.register.RegisterAdjustment(context.Background(), inventory.AdjustmentInput{
		MaterialID: testMaterial, WarehouseID: testWarehouse,
		Type: entity.MovementIngreso, Quantity: dec(qty), Actor: testActor,
	})
	require.NoError(t, err)
	return mov
}

func (f *ledgerFixture) stock(t *testing.T) decimal.Decimal {
	t.Helper()
	s, err := f.projector.CurrentStock(context.Background(), testMaterial, testWarehouse)
	require.NoError(t, err)
	return s
}
