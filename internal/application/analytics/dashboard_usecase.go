// Package analytics contiene los casos de uso de lectura para el tablero de materiales:
// costo movido por período, consumo por obra y pares bajo el mínimo.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Materiales-api/internal/application/dto"
	"github.com/jhoicas/Materiales-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Materiales-api/internal/domain/inventory"
	"github.com/jhoicas/Materiales-api/internal/domain/repository"
)

const dashboardTopProjects = 5 // obras en el widget del dashboard

var hundred = decimal.NewFromInt(100)

// DashboardUseCase genera el resumen del día y del mes en curso.
//
// Fuente de datos: AnalyticsRepository (consultas read-only). No toca el ledger
// ni la proyección directamente.
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository) *DashboardUseCase {
	return &DashboardUseCase{analyticsRepo: analyticsRepo, now: time.Now}
}

// GetSummary construye el DashboardSummaryDTO.
//
// Cuatro consultas en paralelo:
//  1. GetMovementTotals(hoy)          → Today
//  2. GetMovementTotals(mes)          → Month
//  3. GetProjectConsumption(mes, 5)   → TopProjects
//  4. GetBelowMinimum                 → LowStock
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	now := uc.now()

	// Hoy: 00:00:00 – 23:59:59.999999999
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayEnd := todayStart.Add(24*time.Hour - time.Nanosecond)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var (
		today, month []repository.MovementTotalsResult
		projects     []repository.ProjectConsumptionResult
		below        []repository.BelowMinimumResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if today, err = uc.analyticsRepo.GetMovementTotals(gctx, todayStart, todayEnd); err != nil {
			return fmt.Errorf("dashboard: totales de hoy: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if month, err = uc.analyticsRepo.GetMovementTotals(gctx, monthStart, todayEnd); err != nil {
			return fmt.Errorf("dashboard: totales del mes: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if projects, err = uc.analyticsRepo.GetProjectConsumption(gctx, monthStart, todayEnd, dashboardTopProjects); err != nil {
			return fmt.Errorf("dashboard: obras: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if below, err = uc.analyticsRepo.GetBelowMinimum(gctx); err != nil {
			return fmt.Errorf("dashboard: stock bajo: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	monthTotals := buildPeriodTotals(month)
	return &dto.DashboardSummaryDTO{
		Today:       buildPeriodTotals(today),
		Month:       monthTotals,
		TopProjects: buildProjects(projects, monthTotals.EntregasCost),
		LowStock:    buildLowStock(below),
		DateLabel:   monthLabel(now),
	}, nil
}

func buildPeriodTotals(rows []repository.MovementTotalsResult) dto.PeriodTotalsDTO {
	out := dto.PeriodTotalsDTO{
		IngresosCost: decimal.Zero,
		EntregasCost: decimal.Zero,
		AjustesCost:  decimal.Zero,
	}
	for _, r := range rows {
		out.Movements += r.Count
		switch r.Type {
		case entity.MovementIngreso:
			out.IngresosCost = out.IngresosCost.Add(r.TotalCost)
		case entity.MovementEntrega:
			out.EntregasCost = out.EntregasCost.Add(r.TotalCost)
			out.DeliveryCount += r.Count
		case entity.MovementAjusteNegativo:
			out.AjustesCost = out.AjustesCost.Add(r.TotalCost)
		}
	}
	out.IngresosCost = out.IngresosCost.Round(2)
	out.EntregasCost = out.EntregasCost.Round(2)
	out.AjustesCost = out.AjustesCost.Round(2)
	return out
}

// buildProjects calcula la participación de cada obra sobre el costo entregado del período.
func buildProjects(rows []repository.ProjectConsumptionResult, delivered decimal.Decimal) []dto.ProjectConsumptionDTO {
	out := make([]dto.ProjectConsumptionDTO, 0, len(rows))
	for _, r := range rows {
		pct := decimal.Zero
		if delivered.IsPositive() {
			pct = r.TotalCost.Div(delivered).Mul(hundred).Round(2)
		}
		out = append(out, dto.ProjectConsumptionDTO{
			ProjectID:     r.ProjectID,
			Deliveries:    r.Deliveries,
			ConsumedCount: r.ConsumedCount,
			TotalCost:     r.TotalCost.Round(2),
			CostPct:       pct,
		})
	}
	return out
}

// buildLowStock aplica la misma clasificación que el monitor de umbrales.
func buildLowStock(rows []repository.BelowMinimumResult) []dto.LowStockDTO {
	out := make([]dto.LowStockDTO, 0, len(rows))
	for _, r := range rows {
		severity, ok := domaininv.Classify(r.Quantity, r.MinimumStock)
		if !ok {
			continue
		}
		out = append(out, dto.LowStockDTO{
			MaterialID:   r.MaterialID,
			MaterialName: r.MaterialName,
			WarehouseID:  r.WarehouseID,
			Quantity:     r.Quantity,
			MinimumStock: r.MinimumStock,
			Severity:     string(severity),
		})
	}
	return out
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
