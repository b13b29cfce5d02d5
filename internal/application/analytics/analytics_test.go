package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Materiales-api/internal/application/dto"
	"github.com/jhoicas/Materiales-api/internal/domain"
	"github.com/jhoicas/Materiales-api/internal/domain/entity"
	"github.com/jhoicas/Materiales-api/internal/domain/repository"
)

type mockAnalytics struct{ mock.Mock }

func (m *mockAnalytics) GetMovementTotals(ctx context.Context, start, end time.Time) ([]repository.MovementTotalsResult, error) {
	args := m.Called(ctx, start, end)
	rows, _ := args.Get(0).([]repository.MovementTotalsResult)
	return rows, args.Error(1)
}

func (m *mockAnalytics) GetProjectConsumption(ctx context.Context, start, end time.Time, limit int) ([]repository.ProjectConsumptionResult, error) {
	args := m.Called(ctx, start, end, limit)
	rows, _ := args.Get(0).([]repository.ProjectConsumptionResult)
	return rows, args.Error(1)
}

func (m *mockAnalytics) GetMaterialUsage(ctx context.Context, start, end time.Time, limit int) ([]repository.MaterialUsageResult, error) {
	args := m.Called(ctx, start, end, limit)
	rows, _ := args.Get(0).([]repository.MaterialUsageResult)
	return rows, args.Error(1)
}

func (m *mockAnalytics) GetBelowMinimum(ctx context.Context) ([]repository.BelowMinimumResult, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]repository.BelowMinimumResult)
	return rows, args.Error(1)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var fixedNow = time.Date(2026, time.February, 17, 15, 30, 0, 0, time.UTC)

func TestDashboard_GetSummary(t *testing.T) {
	repo := new(mockAnalytics)
	todayStart := time.Date(2026, time.February, 17, 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	end := todayStart.Add(24*time.Hour - time.Nanosecond)

	repo.On("GetMovementTotals", mock.Anything, todayStart, end).Return([]repository.MovementTotalsResult{
		{Type: entity.MovementEntrega, Count: 2, TotalCost: dec("64000")},
	}, nil)
	repo.On("GetMovementTotals", mock.Anything, monthStart, end).Return([]repository.MovementTotalsResult{
		{Type: entity.MovementIngreso, Count: 3, TotalCost: dec("960000")},
		{Type: entity.MovementEntrega, Count: 5, TotalCost: dec("200000")},
		{Type: entity.MovementAjusteNegativo, Count: 1, TotalCost: dec("32000")},
	}, nil)
	repo.On("GetProjectConsumption", mock.Anything, monthStart, end, dashboardTopProjects).Return([]repository.ProjectConsumptionResult{
		{ProjectID: "obra-calle-80", Deliveries: 3, ConsumedCount: 1, TotalCost: dec("150000")},
		{ProjectID: "", Deliveries: 2, TotalCost: dec("50000")},
	}, nil)
	repo.On("GetBelowMinimum", mock.Anything).Return([]repository.BelowMinimumResult{
		{MaterialID: "mat-cemento", MaterialName: "Cemento gris", WarehouseID: "bod-norte", Quantity: dec("5"), MinimumStock: dec("10")},
		{MaterialID: "mat-arena", MaterialName: "Arena", WarehouseID: "bod-norte", Quantity: dec("8"), MinimumStock: dec("10")},
	}, nil)

	uc := NewDashboardUseCase(repo)
	uc.now = func() time.Time { return fixedNow }

	got, err := uc.GetSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, got.Today.Movements)
	assert.Equal(t, 2, got.Today.DeliveryCount)
	assert.True(t, got.Today.EntregasCost.Equal(dec("64000")))
	assert.True(t, got.Today.IngresosCost.IsZero())

	assert.Equal(t, 9, got.Month.Movements)
	assert.Equal(t, 5, got.Month.DeliveryCount)
	assert.True(t, got.Month.IngresosCost.Equal(dec("960000")))
	assert.True(t, got.Month.AjustesCost.Equal(dec("32000")))

	require.Len(t, got.TopProjects, 2)
	assert.Equal(t, "obra-calle-80", got.TopProjects[0].ProjectID)
	assert.True(t, got.TopProjects[0].CostPct.Equal(dec("75")), got.TopProjects[0].CostPct.String())
	assert.True(t, got.TopProjects[1].CostPct.Equal(dec("25")))

	require.Len(t, got.LowStock, 2)
	assert.Equal(t, "CRITICAL", got.LowStock[0].Severity)
	assert.Equal(t, "LOW", got.LowStock[1].Severity)

	assert.Equal(t, "Febrero 2026", got.DateLabel)
	repo.AssertExpectations(t)
}

func TestDashboard_GetSummary_PropagatesRepositoryError(t *testing.T) {
	repo := new(mockAnalytics)
	boom := errors.New("db caída")
	repo.On("GetMovementTotals", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
	repo.On("GetProjectConsumption", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
	repo.On("GetBelowMinimum", mock.Anything).Return(nil, boom)

	_, err := NewDashboardUseCase(repo).GetSummary(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestUsage_GetUsageReport_Pareto(t *testing.T) {
	repo := new(mockAnalytics)
	repo.On("GetMaterialUsage", mock.Anything, mock.Anything, mock.Anything, defaultTopN).Return([]repository.MaterialUsageResult{
		{MaterialID: "m1", MaterialName: "Cemento gris", Unit: "bulto", Quantity: dec("15.625"), TotalCost: dec("500")},
		{MaterialID: "m2", MaterialName: "Varilla 1/2", Unit: "und", Quantity: dec("10"), TotalCost: dec("300")},
		{MaterialID: "m3", MaterialName: "Arena", Unit: "m3", Quantity: dec("3"), TotalCost: dec("150")},
		{MaterialID: "m4", MaterialName: "Alambre", Unit: "kg", Quantity: dec("2"), TotalCost: dec("50")},
	}, nil)
	repo.On("GetProjectConsumption", mock.Anything, mock.Anything, mock.Anything, defaultTopN).Return([]repository.ProjectConsumptionResult{
		{ProjectID: "obra-1", Deliveries: 4, TotalCost: dec("1000")},
	}, nil)
	repo.On("GetMovementTotals", mock.Anything, mock.Anything, mock.Anything).Return([]repository.MovementTotalsResult{
		{Type: entity.MovementEntrega, Count: 4, TotalCost: dec("1000")},
		{Type: entity.MovementIngreso, Count: 1, TotalCost: dec("9999")},
	}, nil)

	uc := NewUsageUseCase(repo)
	uc.now = func() time.Time { return fixedNow }

	got, err := uc.GetUsageReport(context.Background(), dto.UsageReportRequest{StartDate: "2026-02-01", EndDate: "2026-02-10"})
	require.NoError(t, err)

	assert.Equal(t, dto.PeriodDTO{StartDate: "2026-02-01", EndDate: "2026-02-10"}, got.Period)
	assert.True(t, got.TotalDelivered.Equal(dec("1000")))
	require.Len(t, got.MaterialRanking, 4)

	wantCumulative := []string{"50", "80", "95", "100"}
	for i, r := range got.MaterialRanking {
		assert.Equal(t, i+1, r.Rank)
		assert.True(t, r.CumulativeCostPct.Equal(dec(wantCumulative[i])), "rank %d: %s", r.Rank, r.CumulativeCostPct)
	}
	require.Len(t, got.ParetoMaterials, 2)
	assert.Equal(t, "m1", got.ParetoMaterials[0].MaterialID)
	assert.Equal(t, "m2", got.ParetoMaterials[1].MaterialID)
	require.Len(t, got.Projects, 1)
	assert.True(t, got.Projects[0].CostPct.Equal(dec("100")))
}

func TestUsage_GetUsageReport_TopNClamp(t *testing.T) {
	repo := new(mockAnalytics)
	repo.On("GetMaterialUsage", mock.Anything, mock.Anything, mock.Anything, maxTopN).Return(nil, nil)
	repo.On("GetProjectConsumption", mock.Anything, mock.Anything, mock.Anything, maxTopN).Return(nil, nil)
	repo.On("GetMovementTotals", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)

	got, err := NewUsageUseCase(repo).GetUsageReport(context.Background(), dto.UsageReportRequest{TopN: 5000})
	require.NoError(t, err)
	assert.Empty(t, got.MaterialRanking)
	assert.Empty(t, got.ParetoMaterials)
	assert.True(t, got.TotalDelivered.IsZero())
	repo.AssertExpectations(t)
}

func TestUsage_GetUsageReport_InvalidPeriod(t *testing.T) {
	cases := map[string]dto.UsageReportRequest{
		"start_date": {StartDate: "01/02/2026"},
		"end_date":   {EndDate: "2026-13-40"},
	}
	for field, req := range cases {
		t.Run(field, func(t *testing.T) {
			repo := new(mockAnalytics)
			_, err := NewUsageUseCase(repo).GetUsageReport(context.Background(), req)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, field, ve.Field)
			repo.AssertNotCalled(t, "GetMaterialUsage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}

	_, err := NewUsageUseCase(new(mockAnalytics)).GetUsageReport(context.Background(), dto.UsageReportRequest{StartDate: "2026-03-01", EndDate: "2026-02-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParsePeriod_Defaults(t *testing.T) {
	start, end, err := parsePeriod(fixedNow, "", "")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, time.February, 17, 23, 59, 59, 999999999, time.UTC), end)

	// Un solo día: start == end de calendario sigue siendo válido.
	start, end, err = parsePeriod(fixedNow, "2026-02-05", "2026-02-05")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour-time.Nanosecond, end.Sub(start))
}
