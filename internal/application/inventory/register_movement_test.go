package inventory_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Materiales-api/internal/application/inventory"
	"github.com/jhoicas/Materiales-api/internal/domain"
	"github.com/jhoicas/Materiales-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Materiales-api/internal/domain/inventory"
	"github.com/jhoicas/Materiales-api/internal/domain/repository"
	"github.com/jhoicas/Materiales-api/internal/infrastructure/memory"
)

func severities(alerts []entity.StockAlert) []entity.Severity {
	out := make([]entity.Severity, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, a.Severity)
	}
	return out
}

func TestRegister_EscenarioCompleto(t *testing.T) {
	f := newLedgerFixture(t, "10")
	ctx := context.Background()

	first := f.ingreso(t, "20")
	assert.Equal(t, "0", first.StockBefore.String())
	assert.Equal(t, "20", first.StockAfter.String())
	assert.Empty(t, f.sink.take(), "20 sobre mínimo 10 no alerta")

	delivery, err := f.register.RegisterDelivery(ctx, inventory.DeliveryInput{
		MaterialID: testMaterial, WarehouseID: testWarehouse, Quantity: dec("15"),
		ProjectID: "obra-P", WorkerID: "trab-Wk", Actor: testActor,
	})
	require.NoError(t, err)
	assert.Equal(t, "20", delivery.StockBefore.String())
	assert.Equal(t, "5", delivery.StockAfter.String())
	assert.Equal(t, "obra-P", delivery.ProjectID)
	assert.Equal(t, testActor, delivery.DeliveredBy)

	alerts := f.sink.take()
	require.Len(t, alerts, 2, "un evento por admin y supervisor activos")
	// 5 ≤ 10 * 0.5: la mitad exacta del mínimo ya es crítica.
	assert.Equal(t, []entity.Severity{entity.SeverityCritical, entity.SeverityCritical}, severities(alerts))
	assert.ElementsMatch(t, []string{"u-admin", "u-super"}, []string{alerts[0].RecipientID, alerts[1].RecipientID})
	assert.Equal(t, "Cemento gris", alerts[0].MaterialName)
	assert.Equal(t, delivery.ID, alerts[0].MovementID)

	_, err = f.register.RegisterDelivery(ctx, inventory.DeliveryInput{
		MaterialID: testMaterial, WarehouseID: testWarehouse, Quantity: dec("10"), Actor: testActor,
	})
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "10", insufficient.Requested.String())
	assert.Equal(t, "5", insufficient.Available.String())
	assert.True(t, f.stock(t).Equal(dec("5")), "el rechazo no cambia el stock")
	assert.Empty(t, f.sink.take())

	last, err := f.register.RegisterAdjustment(ctx, inventory.AdjustmentInput{
		MaterialID: testMaterial, WarehouseID: testWarehouse,
		Type: entity.MovementAjusteNegativo, Quantity: dec("5"), Actor: testActor, Reason: "bultos mojados",
	})
	require.NoError(t, err)
	assert.True(t, last.StockAfter.IsZero())
	assert.Equal(t, []entity.Severity{entity.SeverityCritical, entity.SeverityCritical}, severities(f.sink.take()))

	entries, err := memory.NewMovementRepository(f.store).ListByPair(ctx, testMaterial, testWarehouse)
	require.NoError(t, err)
	require.Len(t, entries, 3, "el rechazo no deja movimiento")
	assert.NoError(t, domaininv.CheckChain(entries))
}

func TestRegister_RechazaCantidadMinimaSinStock(t *testing.T) {
	f := newLedgerFixture(t, "0")

	_, err := f.register.RegisterDelivery(context.Background(), inventory.DeliveryInput{
		MaterialID: testMaterial, WarehouseID: testWarehouse, Quantity: dec("0.001"), Actor: testActor,
	})
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.True(t, insufficient.Available.IsZero())
	assert.Equal(t, "0.001", insufficient.Requested.String())
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	page, err := f.query.Query(context.Background(), repository.MovementFilter{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestRegister_EntregaDejaStockEnCero(t *testing.T) {
	f := newLedgerFixture(t, "0")
	f.ingreso(t, "2.5")

	mov, err := f.register.RegisterDelivery(context.Background(), inventory.DeliveryInput{
		MaterialID: testMaterial, WarehouseID: testWarehouse, Quantity: dec("2.5"), Actor: testActor,
	})
	require.NoError(t, err)
	assert.True(t, mov.StockAfter.IsZero())
	assert.Empty(t, f.sink.take(), "mínimo 0 nunca alerta")
}

func TestRegister_LimitesDeUmbral(t *testing.T) {
	f := newLedgerFixture(t, "100")
	f.ingreso(t, "102")
	require.Empty(t, f.sink.take())

	steps := []struct {
		take     string
		after    string
		expected []entity.Severity
	}{
		{"1", "101", nil},
		{"1", "100", []entity.Severity{entity.SeverityLow, entity.SeverityLow}},
		{"49", "51", []entity.Severity{entity.SeverityLow, entity.SeverityLow}},
		{"1", "50", []entity.Severity{entity.SeverityCritical, entity.SeverityCritical}},
	}
	for _, s := range steps {
		mov, err := f.register.RegisterDelivery(context.Background(), inventory.DeliveryInput{
			MaterialID: testMaterial, WarehouseID: testWarehouse, Quantity: dec(s.take), Actor: testActor,
		})
		require.NoError(t, err)
		require.Equal(t, s.after, mov.StockAfter.String())
		got := severities(f.sink.take())
		if s.expected == nil {
			assert.Empty(t, got, "stock %s", s.after)
			continue
		}
		assert.Equal(t, s.expected, got, "stock %s", s.after)
	}
}

func TestRegister_Validaciones(t *testing.T) {
	f := newLedgerFixture(t, "0")
	ctx := context.Background()
	future := time.Now().Add(time.Hour)

	inactive := &entity.Material{ID: "mat-viejo", Name: "Material retirado", Unit: "kg", Active: false}
	require.NoError(t, f.materials.Create(ctx, inactive))

	cases := []struct {
		name  string
		field string
		in    inventory.DeliveryInput
	}{
		{"cantidad cero", "quantity", inventory.DeliveryInput{MaterialID: testMaterial, WarehouseID: testWarehouse, Quantity: decimal.Zero, Actor: testActor}},
		{"cantidad negativa", "quantity", inventory.DeliveryInput{MaterialID: testMaterial, WarehouseID: testWarehouse, Quantity: dec("-1"), Actor: testActor}},
		{"sin material", "material_id", inventory.DeliveryInput{WarehouseID: testWarehouse, Quantity: dec("1"), Actor: testActor}},
		{"sin bodega", "warehouse_id", inventory.DeliveryInput{MaterialID: testMaterial, Quantity: dec("1"), Actor: testActor}},
		{"sin actor", "delivered_by", inventory.DeliveryInput{MaterialID: testMaterial, WarehouseID: testWarehouse, Quantity: dec("1")}},
		{"fecha futura", "occurred_at", inventory.DeliveryInput{MaterialID: testMaterial, WarehouseID: testWarehouse, Quantity: dec("1"), Actor: testActor, OccurredAt: &future}},
		{"material inactivo", "material_id", inventory.DeliveryInput{MaterialID: "mat-viejo", WarehouseID: testWarehouse, Quantity: dec("1"), Actor: testActor}},
		{"bodega desconocida", "warehouse_id", inventory.DeliveryInput{MaterialID: testMaterial, WarehouseID: "bod-x", Quantity: dec("1"), Actor: testActor}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.register.RegisterDelivery(ctx, tc.in)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestRegister_RechazaMasDeCuatroDecimales(t *testing.T) {
	f := newLedgerFixture(t, "0")
	ctx := context.Background()
	f.ingreso(t, "10")
	cost := dec("1500.12345")

	_, err := f.register.RegisterDelivery(ctx, inventory.DeliveryInput{
		MaterialID: testMaterial, WarehouseID: testWarehouse, Quantity: dec("1.00005"), Actor: testActor,
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "quantity", verr.Field)

	_, err = f.register.RegisterAdjustment(ctx, inventory.AdjustmentInput{
		MaterialID: testMaterial, WarehouseID: testWarehouse, Type: entity.MovementIngreso,
		Quantity: dec("0.00001"), Actor: testActor,
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "quantity", verr.Field)

	_, err = f.register.RegisterDelivery(ctx, inventory.DeliveryInput{
		MaterialID: testMaterial, WarehouseID: testWarehouse, Quantity: dec("1"), Actor: testActor, UnitCost: &cost,
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "unit_cost", verr.Field)
	assert.True(t, f.stock(t).Equal(dec("10")), "los rechazos no tocan el stock")

	mov, err := f.register.RegisterDelivery(ctx, inventory.DeliveryInput{
		MaterialID: testMaterial, WarehouseID: testWarehouse, Quantity: dec("1.00050"), Actor: testActor,
	})
	require.NoError(t, err, "ceros a la derecha no cuentan como decimales")
	assert.True(t, mov.StockAfter.Equal(dec("8.9995")))
}

func TestRegisterAdjustment_RechazaEntregaYProyecto(t *testing.T) {
	f := newLedgerFixture(t, "0")
	ctx := context.Background()

	_, err := f.register.RegisterAdjustment(ctx, inventory.AdjustmentInput{
		MaterialID: testMaterial, WarehouseID: testWarehouse, Type: entity.MovementEntrega,
		Quantity: dec("1"), Actor: testActor,
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "movement_type", verr.Field)

	_, err = f.register.RegisterAdjustment(ctx, inventory.AdjustmentInput{
		MaterialID: testMaterial, WarehouseID: testWarehouse, Type: entity.MovementType(0),
		Quantity: dec("1"), Actor: testActor,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegister_CostosYFechaRetroactiva(t *testing.T) {
	f := newLedgerFixture(t, "0")
	ctx := context.Background()
	f.ingreso(t, "10")

	mov, err := f.register.RegisterDelivery(ctx, inventory.DeliveryInput{
		MaterialID: testMaterial, WarehouseID: testWarehouse, Quantity: dec("3"), Actor: testActor,
	})
	require.NoError(t, err)
	assert.Equal(t, "32000", mov.UnitCost.String())
	assert.Equal(t, "96000", mov.TotalCost.String())

	cost := dec("30500.5")
	past := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)
	late, err := f.register.RegisterDelivery(ctx, inventory.DeliveryInput{
		MaterialID: testMaterial, WarehouseID: testWarehouse, Quantity: dec("2"), Actor: testActor,
		UnitCost: &cost, OccurredAt: &past,
	})
	require.NoError(t, err)
	assert.Equal(t, "61001", late.TotalCost.String())
	assert.True(t, late.CreatedAt.Equal(past))
	assert.Greater(t, late.ID, mov.ID, "el orden del ledger lo da la secuencia, no la fecha")
	assert.Equal(t, mov.StockAfter.String(), late.StockBefore.String())
}

func TestRegister_SecuenciaAleatoriaConservaStock(t *testing.T) {
	f := newLedgerFixture(t, "25")
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	expected := decimal.Zero

	for i := 0; i < 300; i++ {
		qty := decimal.New(int64(rng.Intn(2000)+1), -2) // 0.01 .. 20.00
		var (
			mov *entity.Movement
			err error
		)
		switch rng.Intn(3) {
		case 0:
			mov, err = f.register.RegisterAdjustment(ctx, inventory.AdjustmentInput{
				MaterialID: testMaterial, WarehouseID: testWarehouse, Type: entity.MovementIngreso, Quantity: qty, Actor: testActor,
			})
		case 1:
			mov, err = f.register.RegisterDelivery(ctx, inventory.DeliveryInput{
				MaterialID: testMaterial, WarehouseID: testWarehouse, Quantity: qty, Actor: testActor,
			})
		default:
			mov, err = f.register.RegisterAdjustment(ctx, inventory.AdjustmentInput{
				MaterialID: testMaterial, WarehouseID: testWarehouse, Type: entity.MovementAjusteNegativo, Quantity: qty, Actor: testActor,
			})
		}
		if err != nil {
			require.ErrorIs(t, err, domain.ErrInsufficientStock, "paso %d", i)
			require.True(t, qty.GreaterThan(expected))
			continue
		}
		expected = mov.StockAfter
		require.False(t, expected.IsNegative())
	}

	assert.True(t, f.stock(t).Equal(expected))
	replayed, err := f.projector.ReplayStock(ctx, testMaterial, testWarehouse)
	require.NoError(t, err)
	assert.True(t, replayed.Equal(expected), "replay %s vs proyección %s", replayed, expected)

	rec, err := f.projector.Verify(ctx, testMaterial, testWarehouse)
	require.NoError(t, err)
	assert.True(t, rec.Consistent())
}

func TestRegister_ConcurrenciaLinealizaElPar(t *testing.T) {
	f := newLedgerFixture(t, "0")
	ctx := context.Background()
	f.ingreso(t, "30")

	var ok, rejected atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.register.RegisterDelivery(ctx, inventory.DeliveryInput{
				MaterialID: testMaterial, WarehouseID: testWarehouse, Quantity: dec("1"), Actor: testActor,
			})
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrInsufficientStock):
				rejected.Add(1)
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	// Otro par en paralelo no se bloquea con el anterior.
	_, err := f.register.RegisterAdjustment(ctx, inventory.AdjustmentInput{
		MaterialID: testMaterial, WarehouseID: "bod-sur", Type: entity.MovementIngreso, Quantity: dec("4"), Actor: testActor,
	})
	require.NoError(t, err)
	wg.Wait()

	assert.Equal(t, int32(30), ok.Load())
	assert.Equal(t, int32(20), rejected.Load())
	assert.True(t, f.stock(t).IsZero())

	entries, err := memory.NewMovementRepository(f.store).ListByPair(ctx, testMaterial, testWarehouse)
	require.NoError(t, err)
	assert.Len(t, entries, 31)
	assert.NoError(t, domaininv.CheckChain(entries), "cada before es el after anterior")

	total, err := f.projector.TotalStock(ctx, testMaterial)
	require.NoError(t, err)
	assert.Equal(t, "4", total.String())
}

// flakyRunner devuelve conflictos de concurrencia los primeros n intentos.
type flakyRunner struct {
	inner    inventory.TxRunner
	failures int32
	calls    atomic.Int32
}

func (r *flakyRunner) Run(ctx context.Context, fn func(repository.MovementRepository, repository.StockRepository) error) error {
	if r.calls.Add(1) <= r.failures {
		return &domain.ConcurrencyConflictError{MaterialID: testMaterial, WarehouseID: testWarehouse}
	}
	return r.inner.Run(ctx, fn)
}

func newFlakyRegistrar(f *ledgerFixture, failures int32) (*inventory.RegisterMovementUseCase, *flakyRunner) {
	runner := &flakyRunner{inner: memory.NewTxRunner(f.store, time.Second), failures: failures}
	uc := inventory.NewRegisterMovementUseCase(
		runner, f.materials, memory.NewWarehouseRepository(f.store), nil, zerolog.Nop(),
		inventory.RegistrarConfig{MaxAttempts: 3, RetryInitialInterval: time.Millisecond},
	)
	return uc, runner
}

func TestRegister_ReintentaConflictos(t *testing.T) {
	f := newLedgerFixture(t, "0")
	uc, runner := newFlakyRegistrar(f, 2)

	mov, err := uc.RegisterAdjustment(context.Background(), inventory.AdjustmentInput{
		MaterialID: testMaterial, WarehouseID: testWarehouse, Type: entity.MovementIngreso, Quantity: dec("7"), Actor: testActor,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(3), runner.calls.Load())
	assert.Equal(t, "7", mov.StockAfter.String())
}

func TestRegister_ConflictoPersistenteSeDevuelve(t *testing.T) {
	f := newLedgerFixture(t, "0")
	uc, runner := newFlakyRegistrar(f, 10)

	_, err := uc.RegisterAdjustment(context.Background(), inventory.AdjustmentInput{
		MaterialID: testMaterial, WarehouseID: testWarehouse, Type: entity.MovementIngreso, Quantity: dec("7"), Actor: testActor,
	})
	var conflict *domain.ConcurrencyConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int32(3), runner.calls.Load())
	assert.True(t, f.stock(t).IsZero(), "ningún intento quedó aplicado")
}

func TestRegister_StockInsuficienteNoSeReintenta(t *testing.T) {
	f := newLedgerFixture(t, "0")
	uc, runner := newFlakyRegistrar(f, 0)

	_, err := uc.RegisterDelivery(context.Background(), inventory.DeliveryInput{
		MaterialID: testMaterial, WarehouseID: testWarehouse, Quantity: dec("1"), Actor: testActor,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int32(1), runner.calls.Load())
}

func TestRegister_CandadoAgotadoEsConflicto(t *testing.T) {
	f := newLedgerFixture(t, "0")
	ctx := context.Background()
	runner := memory.NewTxRunner(f.store, 20*time.Millisecond)

	hold := make(chan struct{})
	locked := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- runner.Run(ctx, func(_ repository.MovementRepository, stock repository.StockRepository) error {
			if _, err := stock.GetForUpdate(ctx, testMaterial, testWarehouse); err != nil {
				return err
			}
			close(locked)
			<-hold
			return nil
		})
	}()
	<-locked

	err := runner.Run(ctx, func(_ repository.MovementRepository, stock repository.StockRepository) error {
		_, err := stock.GetForUpdate(ctx, testMaterial, testWarehouse)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)

	close(hold)
	require.NoError(t, <-done)
}

// deactivatingRunner desactiva el material justo después de que el registrador lee el
// catálogo dentro de la transacción, antes del commit.
type deactivatingRunner struct {
	inner     inventory.TxRunner
	materials *memory.MaterialRepo
}

func (r *deactivatingRunner) Run(ctx context.Context, fn func(repository.MovementRepository, repository.StockRepository) error) error {
	return r.inner.Run(ctx, func(movRepo repository.MovementRepository, stockRepo repository.StockRepository) error {
		return fn(movRepo, &deactivateAfterLock{StockRepository: stockRepo, materials: r.materials})
	})
}

type deactivateAfterLock struct {
	repository.StockRepository
	materials *memory.MaterialRepo
}

func (s *deactivateAfterLock) LockCatalog(ctx context.Context, materialID, warehouseID string) (*entity.Material, *entity.Warehouse, error) {
	m, w, err := s.StockRepository.LockCatalog(ctx, materialID, warehouseID)
	if err != nil || m == nil {
		return m, w, err
	}
	off := *m
	off.Active = false
	return m, w, s.materials.Update(ctx, &off)
}

func TestRegister_DesactivacionDuranteLaTransaccionNoDejaMovimiento(t *testing.T) {
	f := newLedgerFixture(t, "0")
	ctx := context.Background()
	f.ingreso(t, "10")

	uc := inventory.NewRegisterMovementUseCase(
		&deactivatingRunner{inner: memory.NewTxRunner(f.store, time.Second), materials: f.materials},
		f.materials, memory.NewWarehouseRepository(f.store), nil, zerolog.Nop(),
		inventory.RegistrarConfig{MaxAttempts: 3, RetryInitialInterval: time.Millisecond},
	)
	_, err := uc.RegisterDelivery(ctx, inventory.DeliveryInput{
		MaterialID: testMaterial, WarehouseID: testWarehouse, Quantity: dec("4"), Actor: testActor,
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "material_id", verr.Field)

	entries, err := memory.NewMovementRepository(f.store).ListByPair(ctx, testMaterial, testWarehouse)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "solo queda el ingreso inicial")
	assert.True(t, f.stock(t).Equal(dec("10")))
}

func TestRegister_MaterialInactivoDentroDeLaTransaccion(t *testing.T) {
	f := newLedgerFixture(t, "0")
	ctx := context.Background()
	runner := memory.NewTxRunner(f.store, time.Second)

	m, err := f.materials.GetByID(ctx, testMaterial)
	require.NoError(t, err)
	m.Active = false
	require.NoError(t, f.materials.Update(ctx, m))

	err = runner.Run(ctx, func(_ repository.MovementRepository, stock repository.StockRepository) error {
		mat, wh, err := stock.LockCatalog(ctx, testMaterial, testWarehouse)
		require.NoError(t, err)
		assert.False(t, mat.Active)
		assert.True(t, wh.Active)
		return nil
	})
	require.NoError(t, err, "leer el catálogo no falla; el registrador decide")
}
