package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Materiales-api/internal/application/inventory"
	"github.com/jhoicas/Materiales-api/internal/domain/repository"
	"github.com/jhoicas/Materiales-api/internal/infrastructure/memory"
)

type mockKardex struct{ mock.Mock }

func (m *mockKardex) GenerateKardexPDF(ctx context.Context, report inventory.KardexReport) ([]byte, error) {
	args := m.Called(ctx, report)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func TestExport_ResuelveNombresDeCatalogo(t *testing.T) {
	f := newLedgerFixture(t, "0")
	ctx := context.Background()
	f.ingreso(t, "10")
	_, err := f.register.RegisterDelivery(ctx, inventory.DeliveryInput{
		MaterialID: testMaterial, WarehouseID: testWarehouse, Quantity: dec("3"), Actor: testActor,
	})
	require.NoError(t, err)

	gen := &mockKardex{}
	gen.On("GenerateKardexPDF", mock.Anything, mock.MatchedBy(func(r inventory.KardexReport) bool {
		return r.Total == 2 && len(r.Rows) == 2 && r.GeneratedBy == "u-audit"
	})).Return([]byte("%PDF-1.4"), nil)

	uc := inventory.NewExportUseCase(f.query, f.materials, memory.NewWarehouseRepository(f.store), gen)
	pdf, err := uc.ExportPDF(ctx, repository.MovementFilter{MaterialID: testMaterial}, "u-audit")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(pdf))
	gen.AssertExpectations(t)

	report, err := uc.BuildReport(ctx, repository.MovementFilter{MaterialID: testMaterial}, "u-audit")
	require.NoError(t, err)
	require.Len(t, report.Rows, 2)
	assert.Equal(t, "Cemento gris", report.Rows[0].MaterialName)
	assert.Equal(t, "bulto", report.Rows[0].Unit)
	assert.Equal(t, "Bodega norte", report.Rows[0].WarehouseName)
	assert.Equal(t, "entrega", report.Rows[0].Movement.Type.String(), "mismo orden que la consulta")
	assert.Equal(t, 20, report.Filter.Limit)
}
