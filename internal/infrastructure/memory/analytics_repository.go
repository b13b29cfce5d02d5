package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Materiales-api/internal/domain/entity"
	"github.com/jhoicas/Materiales-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo agregaciones sobre el ledger confirmado en memoria.
type AnalyticsRepo struct {
	store *Store
}

// NewAnalyticsRepository construye el repositorio.
func NewAnalyticsRepository(store *Store) *AnalyticsRepo {
	return &AnalyticsRepo{store: store}
}

func inPeriod(m *entity.Movement, start, end time.Time) bool {
	return !m.CreatedAt.Before(start) && !m.CreatedAt.After(end)
}

func (r *AnalyticsRepo) GetMovementTotals(ctx context.Context, startDate, endDate time.Time) ([]repository.MovementTotalsResult, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	byType := map[entity.MovementType]*repository.MovementTotalsResult{}
	for _, m := range r.store.movements {
		if !inPeriod(m, startDate, endDate) {
			continue
		}
		row, ok := byType[m.Type]
		if !ok {
			row = &repository.MovementTotalsResult{Type: m.Type, TotalCost: decimal.Zero}
			byType[m.Type] = row
		}
		row.Count++
		row.TotalCost = row.TotalCost.Add(m.TotalCost)
	}
	out := make([]repository.MovementTotalsResult, 0, len(byType))
	for _, t := range entity.MovementTypes {
		if row, ok := byType[t]; ok {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *AnalyticsRepo) GetProjectConsumption(ctx context.Context, startDate, endDate time.Time, limit int) ([]repository.ProjectConsumptionResult, error) {
	r.store.mu.RLock()
	byProject := map[string]*repository.ProjectConsumptionResult{}
	for _, m := range r.store.movements {
		if m.Type != entity.MovementEntrega || !inPeriod(m, startDate, endDate) {
			continue
		}
		row, ok := byProject[m.ProjectID]
		if !ok {
			row = &repository.ProjectConsumptionResult{ProjectID: m.ProjectID, TotalCost: decimal.Zero}
			byProject[m.ProjectID] = row
		}
		row.Deliveries++
		if _, consumed := r.store.consumptions[m.ID]; consumed {
			row.ConsumedCount++
		}
		row.TotalCost = row.TotalCost.Add(m.TotalCost)
	}
	r.store.mu.RUnlock()

	out := make([]repository.ProjectConsumptionResult, 0, len(byProject))
	for _, row := range byProject {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].TotalCost.Cmp(out[j].TotalCost); c != 0 {
			return c > 0
		}
		return out[i].ProjectID < out[j].ProjectID
	})
	return truncate(out, limit), nil
}

func (r *AnalyticsRepo) GetMaterialUsage(ctx context.Context, startDate, endDate time.Time, limit int) ([]repository.MaterialUsageResult, error) {
	r.store.mu.RLock()
	byMaterial := map[string]*repository.MaterialUsageResult{}
	for _, m := range r.store.movements {
		if m.Type != entity.MovementEntrega || !inPeriod(m, startDate, endDate) {
			continue
		}
		row, ok := byMaterial[m.MaterialID]
		if !ok {
			row = &repository.MaterialUsageResult{MaterialID: m.MaterialID, MaterialName: m.MaterialID, Quantity: decimal.Zero, TotalCost: decimal.Zero}
			if mat, found := r.store.materials[m.MaterialID]; found {
				row.MaterialName, row.Unit = mat.Name, mat.Unit
			}
			byMaterial[m.MaterialID] = row
		}
		row.Quantity = row.Quantity.Add(m.Quantity)
		row.TotalCost = row.TotalCost.Add(m.TotalCost)
	}
	r.store.mu.RUnlock()

	out := make([]repository.MaterialUsageResult, 0, len(byMaterial))
	for _, row := range byMaterial {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].TotalCost.Cmp(out[j].TotalCost); c != 0 {
			return c > 0
		}
		return strings.Compare(out[i].MaterialName, out[j].MaterialName) < 0
	})
	return truncate(out, limit), nil
}

func (r *AnalyticsRepo) GetBelowMinimum(ctx context.Context) ([]repository.BelowMinimumResult, error) {
	r.store.mu.RLock()
	out := []repository.BelowMinimumResult{}
	for key, level := range r.store.stock {
		mat, ok := r.store.materials[key.materialID]
		if !ok || !mat.Active || !mat.MinimumStock.IsPositive() || level.Quantity.GreaterThan(mat.MinimumStock) {
			continue
		}
		out = append(out, repository.BelowMinimumResult{
			MaterialID:   mat.ID,
			MaterialName: mat.Name,
			WarehouseID:  key.warehouseID,
			Quantity:     level.Quantity,
			MinimumStock: mat.MinimumStock,
		})
	}
	r.store.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		ri := out[i].Quantity.Div(out[i].MinimumStock)
		rj := out[j].Quantity.Div(out[j].MinimumStock)
		if c := ri.Cmp(rj); c != 0 {
			return c < 0
		}
		if out[i].MaterialName != out[j].MaterialName {
			return out[i].MaterialName < out[j].MaterialName
		}
		return out[i].WarehouseID < out[j].WarehouseID
	})
	return out, nil
}

func truncate[T any](rows []T, limit int) []T {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
