package postgres

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Materiales-api/internal/domain"
	"github.com/jhoicas/Materiales-api/internal/domain/repository"
)

// Sin Querier: si alguna consulta llegara a la base, la prueba entraría en pánico.

func TestGetByID_IDMalFormadoEsDesconocido(t *testing.T) {
	ctx := context.Background()

	m, err := NewMaterialRepository(nil).GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, m)

	w, err := NewWarehouseRepository(nil).GetByID(ctx, "bodega-1")
	require.NoError(t, err)
	assert.Nil(t, w)
}

func TestStockRepo_IDMalFormado(t *testing.T) {
	ctx := context.Background()
	repo := NewStockRepository(nil)

	level, err := repo.Get(ctx, "abc", "def")
	require.NoError(t, err)
	assert.True(t, level.Quantity.IsZero())

	list, err := repo.ListByMaterial(ctx, "abc")
	require.NoError(t, err)
	assert.Empty(t, list)

	mat, wh, err := repo.LockCatalog(ctx, "abc", "def")
	require.NoError(t, err)
	assert.Nil(t, mat)
	assert.Nil(t, wh)

	_, err = repo.GetForUpdate(ctx, "abc", "5f0c6c1e-6b2a-4a53-9d51-1c2f3a4b5c6d")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "material_id", verr.Field)
}

func TestMovementRepo_FiltroConIDMalFormadoDevuelvePaginaVacia(t *testing.T) {
	ctx := context.Background()
	repo := NewMovementRepository(nil)

	for _, f := range []repository.MovementFilter{
		{MaterialID: "abc", Limit: 20},
		{WarehouseID: "bodega-1", Limit: 20},
	} {
		items, total, err := repo.Query(ctx, f)
		require.NoError(t, err)
		assert.Empty(t, items)
		assert.Zero(t, total)
	}

	list, err := repo.ListByPair(ctx, "abc", "def")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestIsInvalidText(t *testing.T) {
	err := fmt.Errorf("get material: %w", &pgconn.PgError{Code: codeInvalidTextRepresentation})
	assert.True(t, isInvalidText(err))
	assert.False(t, isInvalidText(&pgconn.PgError{Code: codeUniqueViolation}))
	assert.True(t, isUUID("5f0c6c1e-6b2a-4a53-9d51-1c2f3a4b5c6d"))
	assert.False(t, isUUID("mat-1"))
	assert.False(t, isUUID(""))
}
