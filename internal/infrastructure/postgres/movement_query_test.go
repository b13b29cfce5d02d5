package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Materiales-api/internal/domain/entity"
	"github.com/jhoicas/Materiales-api/internal/domain/repository"
)

func TestBuildMovementQuery_AllFilters(t *testing.T) {
	from := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.February, 28, 23, 59, 59, 0, time.UTC)
	f := repository.MovementFilter{
		MaterialID:  "mat-1",
		WarehouseID: "bod-1",
		ProjectID:   "obra-1",
		WorkerID:    "w-1",
		DeliveredBy: "u-1",
		Type:        entity.MovementEntrega,
		From:        &from,
		To:          &to,
		Limit:       20,
		Offset:      40,
	}

	query, args, err := BuildMovementQuery(f)
	require.NoError(t, err)

	assert.Contains(t, query, `FROM "material_movements" AS "m"`)
	assert.Contains(t, query, `LEFT JOIN "movement_consumptions" AS "c"`)
	assert.Contains(t, query, `"m"."material_id" = $`)
	assert.Contains(t, query, `"m"."movement_type" = $`)
	assert.Contains(t, query, `"m"."created_at" >= $`)
	assert.Contains(t, query, `"m"."created_at" <= $`)
	assert.Contains(t, query, `ORDER BY "m"."id" DESC`)
	assert.Contains(t, query, "LIMIT")
	assert.Contains(t, query, "OFFSET")
	assert.NotContains(t, query, "mat-1", "los valores van como parámetros")

	require.Len(t, args, 10)
	assert.Contains(t, args, "mat-1")
	assert.Contains(t, args, "entrega")
	assert.Contains(t, args, from)
	assert.Contains(t, args, to)
}

func TestBuildMovementCount_SameConditionsWithoutPage(t *testing.T) {
	f := repository.MovementFilter{MaterialID: "mat-1", Type: entity.MovementAjusteNegativo, Limit: 20, Offset: 40}

	query, args, err := BuildMovementCount(f)
	require.NoError(t, err)
	assert.Contains(t, query, `SELECT COUNT(*) FROM "material_movements" AS "m"`)
	assert.NotContains(t, query, "ORDER BY")
	assert.NotContains(t, query, "LIMIT")
	assert.ElementsMatch(t, []any{"mat-1", "ajuste_negativo"}, args)
}

func TestBuildMovementQuery_OnlyPage(t *testing.T) {
	query, args, err := BuildMovementQuery(repository.MovementFilter{Limit: 5})
	require.NoError(t, err)
	assert.NotContains(t, query, `"m"."material_id" =`)
	assert.Contains(t, query, "LIMIT")
	assert.NotContains(t, query, "OFFSET")
	assert.Len(t, args, 1)
}
