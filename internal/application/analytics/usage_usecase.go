package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Materiales-api/internal/application/dto"
	"github.com/jhoicas/Materiales-api/internal/domain"
	"github.com/jhoicas/Materiales-api/internal/domain/repository"
)

const (
	defaultTopN     = 20
	maxTopN         = 200
	paretoThreshold = 80 // el grueso del costo entregado se concentra en pocos materiales
)

var pareto80 = decimal.NewFromInt(paretoThreshold)

// UsageUseCase reporta el consumo de material de un período:
//   - Ranking de materiales por costo entregado con su curva acumulada.
//   - Obras con más material entregado.
type UsageUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

// NewUsageUseCase construye el caso de uso.
func NewUsageUseCase(analyticsRepo repository.AnalyticsRepository) *UsageUseCase {
	return &UsageUseCase{analyticsRepo: analyticsRepo, now: time.Now}
}

// GetUsageReport genera el reporte de consumo para el período pedido.
func (uc *UsageUseCase) GetUsageReport(ctx context.Context, req dto.UsageReportRequest) (*dto.UsageReportDTO, error) {
	startDate, endDate, err := parsePeriod(uc.now(), req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	topN := req.TopN
	if topN <= 0 {
		topN = defaultTopN
	}
	if topN > maxTopN {
		topN = maxTopN
	}

	// Consultas independientes en paralelo, al estilo del dashboard.
	type usageResult struct {
		rows []repository.MaterialUsageResult
		err  error
	}
	type projectResult struct {
		rows []repository.ProjectConsumptionResult
		err  error
	}
	type totalsResult struct {
		rows []repository.MovementTotalsResult
		err  error
	}
	usageCh := make(chan usageResult, 1)
	projectCh := make(chan projectResult, 1)
	totalsCh := make(chan totalsResult, 1)

	go func() {
		rows, err := uc.analyticsRepo.GetMaterialUsage(ctx, startDate, endDate, topN)
		usageCh <- usageResult{rows, err}
	}()
	go func() {
		rows, err := uc.analyticsRepo.GetProjectConsumption(ctx, startDate, endDate, topN)
		projectCh <- projectResult{rows, err}
	}()
	go func() {
		rows, err := uc.analyticsRepo.GetMovementTotals(ctx, startDate, endDate)
		totalsCh <- totalsResult{rows, err}
	}()

	usage := <-usageCh
	projects := <-projectCh
	totals := <-totalsCh
	if usage.err != nil {
		return nil, fmt.Errorf("analytics: uso por material: %w", usage.err)
	}
	if projects.err != nil {
		return nil, fmt.Errorf("analytics: consumo por obra: %w", projects.err)
	}
	if totals.err != nil {
		return nil, fmt.Errorf("analytics: totales: %w", totals.err)
	}

	delivered := buildPeriodTotals(totals.rows).EntregasCost
	ranking := buildMaterialRanking(usage.rows, delivered)
	pareto := make([]dto.MaterialRankingDTO, 0)
	for _, r := range ranking {
		if r.IsTopPareto {
			pareto = append(pareto, r)
		}
	}

	return &dto.UsageReportDTO{
		Period: dto.PeriodDTO{
			StartDate: startDate.Format("2006-01-02"),
			EndDate:   endDate.Format("2006-01-02"),
		},
		TotalDelivered:  delivered,
		Projects:        buildProjects(projects.rows, delivered),
		MaterialRanking: ranking,
		ParetoMaterials: pareto,
	}, nil
}

// buildMaterialRanking asigna rango, participación y acumulado. Las filas llegan ordenadas
// por costo descendente. El porcentaje se calcula sobre el total entregado del período,
// no solo sobre el top N devuelto.
func buildMaterialRanking(rows []repository.MaterialUsageResult, delivered decimal.Decimal) []dto.MaterialRankingDTO {
	ranking := make([]dto.MaterialRankingDTO, 0, len(rows))
	var cumulative decimal.Decimal
	for i, r := range rows {
		pct := decimal.Zero
		if delivered.IsPositive() {
			pct = r.TotalCost.Div(delivered).Mul(hundred).Round(2)
		}
		cumulative = cumulative.Add(pct)
		// Se incluye el material que cruza el umbral.
		isPareto := i == 0 || cumulative.Sub(pct).LessThan(pareto80)

		ranking = append(ranking, dto.MaterialRankingDTO{
			Rank:              i + 1,
			MaterialID:        r.MaterialID,
			MaterialName:      r.MaterialName,
			Unit:              r.Unit,
			Quantity:          r.Quantity,
			TotalCost:         r.TotalCost.Round(2),
			CostPct:           pct,
			CumulativeCostPct: cumulative.Round(2),
			IsTopPareto:       isPareto,
		})
	}
	return ranking
}

// parsePeriod convierte los strings de fecha; aplica valores por defecto si están vacíos.
// end es inclusivo hasta el final del día.
func parsePeriod(now time.Time, startStr, endStr string) (start, end time.Time, err error) {
	if endStr == "" {
		end = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	} else {
		end, err = time.ParseInLocation("2006-01-02", endStr, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, domain.NewValidationError("end_date", "formato esperado YYYY-MM-DD")
		}
	}
	end = end.Add(24*time.Hour - time.Nanosecond)

	if startStr == "" {
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	} else {
		start, err = time.ParseInLocation("2006-01-02", startStr, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, domain.NewValidationError("start_date", "formato esperado YYYY-MM-DD")
		}
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, domain.NewValidationError("start_date", "no puede ser posterior a end_date")
	}
	return start, end, nil
}
