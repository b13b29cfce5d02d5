package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Materiales-api/internal/application/inventory"
	"github.com/jhoicas/Materiales-api/internal/domain"
	"github.com/jhoicas/Materiales-api/internal/infrastructure/memory"
)

func newConsumption(f *ledgerFixture) *inventory.ConsumptionUseCase {
	return inventory.NewConsumptionUseCase(memory.NewMovementRepository(f.store), memory.NewConsumptionRepository(f.store))
}

func TestMarkConsumed_UnaSolaVez(t *testing.T) {
	f := newLedgerFixture(t, "0")
	ctx := context.Background()
	f.ingreso(t, "10")
	delivery, err := f.register.RegisterDelivery(ctx, inventory.DeliveryInput{
		MaterialID: testMaterial, WarehouseID: testWarehouse, Quantity: dec("4"), ProjectID: "obra-1", Actor: testActor,
	})
	require.NoError(t, err)
	uc := newConsumption(f)

	marked, err := uc.MarkConsumed(ctx, delivery.ID, "residente-obra")
	require.NoError(t, err)
	assert.True(t, marked.Consumed)
	assert.Equal(t, "residente-obra", marked.ConsumedBy)
	require.NotNil(t, marked.ConsumedAt)

	_, err = uc.MarkConsumed(ctx, delivery.ID, "otro")
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := f.query.GetByID(ctx, delivery.ID)
	require.NoError(t, err)
	assert.True(t, got.Consumed, "la consulta expone el consumo")
	assert.Equal(t, "residente-obra", got.ConsumedBy)
	assert.Equal(t, "6", got.StockAfter.String(), "el consumo no toca la fila del ledger")
	assert.True(t, f.stock(t).Equal(dec("6")), "ni el stock")
}

func TestMarkConsumed_SoloEntregas(t *testing.T) {
	f := newLedgerFixture(t, "0")
	mov := f.ingreso(t, "10")

	_, err := newConsumption(f).MarkConsumed(context.Background(), mov.ID, "residente")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "movement_id", verr.Field)
}

func TestMarkConsumed_Errores(t *testing.T) {
	f := newLedgerFixture(t, "0")
	uc := newConsumption(f)

	_, err := uc.MarkConsumed(context.Background(), 999, "residente")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.MarkConsumed(context.Background(), 1, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
