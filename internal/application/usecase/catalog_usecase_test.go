package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Materiales-api/internal/application/dto"
	"github.com/jhoicas/Materiales-api/internal/application/usecase"
	"github.com/jhoicas/Materiales-api/internal/domain"
	"github.com/jhoicas/Materiales-api/internal/infrastructure/memory"
)

func newCatalog() (*usecase.MaterialUseCase, *usecase.WarehouseUseCase) {
	store := memory.NewStore()
	warehouses := memory.NewWarehouseRepository(store)
	return usecase.NewMaterialUseCase(memory.NewMaterialRepository(store), warehouses),
		usecase.NewWarehouseUseCase(warehouses)
}

func ptr[T any](v T) *T { return &v }

func TestWarehouse_CrearActualizarDesactivar(t *testing.T) {
	_, whUC := newCatalog()
	ctx := context.Background()

	wh, err := whUC.Create(ctx, dto.CreateWarehouseRequest{Name: "  Bodega central ", Address: "Cra 10 # 20-30"})
	require.NoError(t, err)
	assert.Equal(t, "Bodega central", wh.Name)
	assert.True(t, wh.Active)

	_, err = whUC.Create(ctx, dto.CreateWarehouseRequest{Name: "Bodega central"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	updated, err := whUC.Update(ctx, wh.ID, dto.UpdateWarehouseRequest{Address: ptr("Calle 5")})
	require.NoError(t, err)
	assert.Equal(t, "Calle 5", updated.Address)
	assert.Equal(t, "Bodega central", updated.Name)

	_, err = whUC.Update(ctx, wh.ID, dto.UpdateWarehouseRequest{Name: ptr("  ")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	off, err := whUC.Deactivate(ctx, wh.ID)
	require.NoError(t, err)
	assert.False(t, off.Active)

	again, err := whUC.Deactivate(ctx, wh.ID)
	require.NoError(t, err, "desactivar dos veces es idempotente")
	assert.False(t, again.Active)

	_, err = whUC.GetByID(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWarehouse_ListSoloActivas(t *testing.T) {
	_, whUC := newCatalog()
	ctx := context.Background()
	for _, name := range []string{"Norte", "Sur", "Este"} {
		_, err := whUC.Create(ctx, dto.CreateWarehouseRequest{Name: name})
		require.NoError(t, err)
	}
	list, err := whUC.List(ctx, false, dto.PageRequest{})
	require.NoError(t, err)
	require.Equal(t, 3, list.Page.Total)
	_, err = whUC.Deactivate(ctx, list.Items[0].ID)
	require.NoError(t, err)

	active, err := whUC.List(ctx, true, dto.PageRequest{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, active.Page.Total)
	assert.Len(t, active.Items, 1)
	assert.Equal(t, 1, active.Page.Limit)
}

func TestMaterial_Crear(t *testing.T) {
	matUC, whUC := newCatalog()
	ctx := context.Background()
	wh, err := whUC.Create(ctx, dto.CreateWarehouseRequest{Name: "Norte"})
	require.NoError(t, err)

	m, err := matUC.Create(ctx, dto.CreateMaterialRequest{
		Name: "Varilla 1/2", Category: "acero", Unit: "und",
		UnitCost: decimal.NewFromInt(18500), MinimumStock: decimal.NewFromInt(40), DefaultWarehouseID: wh.ID,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.True(t, m.Active)
	assert.Equal(t, wh.ID, m.DefaultWarehouseID)

	got, err := matUC.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Varilla 1/2", got.Name)
	assert.True(t, got.MinimumStock.Equal(decimal.NewFromInt(40)))
}

func TestMaterial_ValidacionesDeCreacion(t *testing.T) {
	matUC, _ := newCatalog()
	ctx := context.Background()
	cases := map[string]dto.CreateMaterialRequest{
		"name":                 {Unit: "kg"},
		"unit":                 {Name: "Arena"},
		"unit_cost":            {Name: "Arena", Unit: "m3", UnitCost: decimal.NewFromInt(-1)},
		"minimum_stock":        {Name: "Arena", Unit: "m3", MinimumStock: decimal.NewFromInt(-5)},
		"default_warehouse_id": {Name: "Arena", Unit: "m3", DefaultWarehouseID: "bod-x"},
	}
	for field, in := range cases {
		_, err := matUC.Create(ctx, in)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr, field)
		assert.Equal(t, field, verr.Field)
	}
}

func TestMaterial_RechazaMasDeCuatroDecimales(t *testing.T) {
	matUC, _ := newCatalog()
	ctx := context.Background()

	_, err := matUC.Create(ctx, dto.CreateMaterialRequest{Name: "Arena", Unit: "m3", UnitCost: decimal.RequireFromString("0.00001")})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "unit_cost", verr.Field)

	_, err = matUC.Create(ctx, dto.CreateMaterialRequest{Name: "Arena", Unit: "m3", MinimumStock: decimal.RequireFromString("2.50001")})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "minimum_stock", verr.Field)
}

func TestMaterial_ActualizarYDesactivar(t *testing.T) {
	matUC, whUC := newCatalog()
	ctx := context.Background()
	m, err := matUC.Create(ctx, dto.CreateMaterialRequest{Name: "Arena", Unit: "m3"})
	require.NoError(t, err)
	_, err = matUC.Create(ctx, dto.CreateMaterialRequest{Name: "Grava", Unit: "m3"})
	require.NoError(t, err)

	updated, err := matUC.Update(ctx, m.ID, dto.UpdateMaterialRequest{MinimumStock: ptr(decimal.NewFromInt(12))})
	require.NoError(t, err)
	assert.True(t, updated.MinimumStock.Equal(decimal.NewFromInt(12)))
	assert.Equal(t, "Arena", updated.Name)

	_, err = matUC.Update(ctx, m.ID, dto.UpdateMaterialRequest{Name: ptr("Grava")})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	wh, err := whUC.Create(ctx, dto.CreateWarehouseRequest{Name: "Norte"})
	require.NoError(t, err)
	_, err = whUC.Deactivate(ctx, wh.ID)
	require.NoError(t, err)
	_, err = matUC.Update(ctx, m.ID, dto.UpdateMaterialRequest{DefaultWarehouseID: ptr(wh.ID)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "no se asigna una bodega inactiva")

	off, err := matUC.Deactivate(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, off.Active)

	list, err := matUC.List(ctx, true, dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page.Total)
	assert.Equal(t, "Grava", list.Items[0].Name)

	_, err = matUC.Update(ctx, "no-existe", dto.UpdateMaterialRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
