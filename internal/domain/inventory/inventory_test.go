package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Materiales-api/internal/domain/entity"
	"github.com/jhoicas/Materiales-api/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func mov(id int64, t entity.MovementType, qty, before, after string) *entity.Movement {
	return &entity.Movement{ID: id, Type: t, Quantity: d(qty), StockBefore: d(before), StockAfter: d(after)}
}

func TestClassify_Umbrales(t *testing.T) {
	min := d("100")
	cases := []struct {
		stock    string
		severity entity.Severity
		alert    bool
	}{
		{"101", "", false},
		{"100", entity.SeverityLow, true},
		{"51", entity.SeverityLow, true},
		{"50", entity.SeverityCritical, true},
		{"0", entity.SeverityCritical, true},
	}
	for _, tc := range cases {
		sev, ok := inventory.Classify(d(tc.stock), min)
		assert.Equal(t, tc.alert, ok, "stock %s", tc.stock)
		assert.Equal(t, tc.severity, sev, "stock %s", tc.stock)
	}
}

func TestClassify_MinimoCeroNoAlerta(t *testing.T) {
	_, ok := inventory.Classify(decimal.Zero, decimal.Zero)
	assert.False(t, ok)
}

func TestClassify_MinimoFraccionario(t *testing.T) {
	sev, ok := inventory.Classify(d("1.25"), d("2.5"))
	require.True(t, ok)
	assert.Equal(t, entity.SeverityCritical, sev)

	sev, ok = inventory.Classify(d("1.26"), d("2.5"))
	require.True(t, ok)
	assert.Equal(t, entity.SeverityLow, sev)
}

func TestReplay_SumaConSigno(t *testing.T) {
	entries := []*entity.Movement{
		mov(1, entity.MovementIngreso, "20", "0", "20"),
		mov(2, entity.MovementEntrega, "15", "20", "5"),
		mov(3, entity.MovementAjusteNegativo, "0.5", "5", "4.5"),
	}
	assert.Equal(t, "4.5", inventory.Replay(entries).String())
	assert.True(t, inventory.Replay(nil).IsZero())
}

func TestCheckChain_Valida(t *testing.T) {
	entries := []*entity.Movement{
		mov(1, entity.MovementIngreso, "20", "0", "20"),
		mov(4, entity.MovementEntrega, "15", "20", "5"),
	}
	assert.NoError(t, inventory.CheckChain(entries))
}

func TestCheckChain_DetectaRuptura(t *testing.T) {
	entries := []*entity.Movement{
		mov(1, entity.MovementIngreso, "20", "0", "20"),
		mov(2, entity.MovementEntrega, "15", "19", "4"),
	}
	err := inventory.CheckChain(entries)
	require.Error(t, err)
	var chainErr *inventory.ChainError
	require.ErrorAs(t, err, &chainErr)
	assert.Equal(t, int64(2), chainErr.MovementID)
	assert.Equal(t, "stock_before", chainErr.Field)
}

func TestCheckChain_StockAfterIncorrecto(t *testing.T) {
	entries := []*entity.Movement{mov(1, entity.MovementIngreso, "20", "0", "21")}
	var chainErr *inventory.ChainError
	require.ErrorAs(t, inventory.CheckChain(entries), &chainErr)
	assert.Equal(t, "stock_after", chainErr.Field)
}

func TestCheckChain_Negativo(t *testing.T) {
	entries := []*entity.Movement{mov(1, entity.MovementEntrega, "1", "0", "-1")}
	assert.Error(t, inventory.CheckChain(entries))
}

func TestCheckChain_FueraDeOrden(t *testing.T) {
	entries := []*entity.Movement{
		mov(2, entity.MovementIngreso, "1", "0", "1"),
		mov(1, entity.MovementIngreso, "1", "1", "2"),
	}
	assert.Error(t, inventory.CheckChain(entries))
}
