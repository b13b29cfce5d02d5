package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Materiales-api/internal/application/inventory"
	"github.com/jhoicas/Materiales-api/internal/domain/entity"
	"github.com/jhoicas/Materiales-api/internal/domain/repository"
)

func TestGenerateKardexPDF_ConMovimientos(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	report := inventory.KardexReport{
		Title:       "Kardex de movimientos de material",
		GeneratedAt: now,
		GeneratedBy: "admin-1",
		Filter:      repository.MovementFilter{MaterialID: "mat-1", Limit: 20},
		Total:       2,
		Rows: []inventory.KardexRow{
			{
				Movement: &entity.Movement{
					ID: 2, Type: entity.MovementEntrega, Quantity: decimal.NewFromInt(15),
					StockBefore: decimal.NewFromInt(20), StockAfter: decimal.NewFromInt(5),
					ProjectID: "obra-7", WorkerID: "w-3", DeliveredBy: "u-1", CreatedAt: now,
					TotalCost: decimal.NewFromInt(150000),
				},
				MaterialName: "Cemento", Unit: "bulto", WarehouseName: "Central",
			},
			{
				Movement: &entity.Movement{
					ID: 1, Type: entity.MovementIngreso, Quantity: decimal.NewFromInt(20),
					StockBefore: decimal.Zero, StockAfter: decimal.NewFromInt(20),
					DeliveredBy: "u-1", CreatedAt: now.Add(-time.Hour),
				},
				MaterialName: "Cemento", Unit: "bulto", WarehouseName: "Central",
			},
		},
	}

	b, err := NewKardexGenerator().GenerateKardexPDF(context.Background(), report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")), "debe ser un documento PDF")
}

func TestGenerateKardexPDF_SinMovimientos(t *testing.T) {
	b, err := NewKardexGenerator().GenerateKardexPDF(context.Background(), inventory.KardexReport{
		Title:       "Kardex",
		GeneratedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, b)
}

// ────────────────────────────────────────────────────────────────────────────
// helpers
// ────────────────────────────────────────────────────────────────────────────

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "999", formatMoney("999"))
	assert.Equal(t, "25.000", formatMoney("25000"))
	assert.Equal(t, "1.000.000", formatMoney("1000000"))
	assert.Equal(t, "-1.500", formatMoney("-1500"))
}

func TestDescribeFilter(t *testing.T) {
	assert.Equal(t, "ninguno", describeFilter(repository.MovementFilter{}))
	got := describeFilter(repository.MovementFilter{WarehouseID: "b-1", Type: entity.MovementEntrega})
	assert.Equal(t, "bodega b-1, tipo entrega", got)
}
