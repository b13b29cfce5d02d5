package entity_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Materiales-api/internal/domain/entity"
)

func TestMovementType_SignoPorTipo(t *testing.T) {
	q := decimal.NewFromInt(7)
	assert.True(t, entity.MovementIngreso.Signed(q).Equal(q))
	assert.True(t, entity.MovementEntrega.Signed(q).Equal(q.Neg()))
	assert.True(t, entity.MovementAjusteNegativo.Signed(q).Equal(q.Neg()))
	assert.Equal(t, 0, entity.MovementType(0).Sign())
}

func TestMovementType_Apply(t *testing.T) {
	before := decimal.RequireFromString("20")
	assert.Equal(t, "25", entity.MovementIngreso.Apply(before, decimal.NewFromInt(5)).String())
	assert.Equal(t, "5", entity.MovementEntrega.Apply(before, decimal.NewFromInt(15)).String())
	assert.Equal(t, "-0.001", entity.MovementAjusteNegativo.Apply(decimal.Zero, decimal.RequireFromString("0.001")).String())
}

func TestParseMovementType(t *testing.T) {
	for _, mt := range entity.MovementTypes {
		parsed, err := entity.ParseMovementType(mt.String())
		require.NoError(t, err)
		assert.Equal(t, mt, parsed)
		assert.True(t, parsed.Valid())
	}
	_, err := entity.ParseMovementType("salida")
	assert.Error(t, err)
	assert.False(t, entity.MovementType(9).Valid())
}

func TestMovementType_IsAdjustment(t *testing.T) {
	assert.True(t, entity.MovementIngreso.IsAdjustment())
	assert.True(t, entity.MovementAjusteNegativo.IsAdjustment())
	assert.False(t, entity.MovementEntrega.IsAdjustment())
}

func TestMovementType_JSON(t *testing.T) {
	b, err := json.Marshal(entity.MovementAjusteNegativo)
	require.NoError(t, err)
	assert.Equal(t, `"ajuste_negativo"`, string(b))

	var mt entity.MovementType
	require.NoError(t, json.Unmarshal([]byte(`"entrega"`), &mt))
	assert.Equal(t, entity.MovementEntrega, mt)

	assert.Error(t, json.Unmarshal([]byte(`"robo"`), &mt))
	_, err = json.Marshal(entity.MovementType(0))
	assert.Error(t, err, "el tipo cero no se serializa")
}

func TestIsElevatedRole(t *testing.T) {
	assert.True(t, entity.IsElevatedRole(entity.RoleAdmin))
	assert.True(t, entity.IsElevatedRole(entity.RoleSupervisor))
	assert.False(t, entity.IsElevatedRole(entity.RoleBodeguero))
	assert.False(t, entity.IsElevatedRole(""))
}
