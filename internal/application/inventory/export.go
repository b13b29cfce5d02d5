package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/Materiales-api/internal/domain/entity"
	"github.com/jhoicas/Materiales-api/internal/domain/repository"
)

// KardexRow un movimiento con los nombres de catálogo resueltos.
type KardexRow struct {
	Movement      *entity.Movement
	MaterialName  string
	Unit          string
	WarehouseName string
}

// KardexReport datos para el PDF del historial.
type KardexReport struct {
	Title       string
	GeneratedAt time.Time
	GeneratedBy string
	Filter      repository.MovementFilter
	Total       int
	Rows        []KardexRow
}

// ExportUseCase exporta una página del historial como kardex en PDF.
type ExportUseCase struct {
	query         *QueryService
	materialRepo  repository.MaterialRepository
	warehouseRepo repository.WarehouseRepository
	generator     KardexGenerator
	now           func() time.Time
}

// NewExportUseCase construye el caso de uso de exportación.
func NewExportUseCase(
	query *QueryService,
	materialRepo repository.MaterialRepository,
	warehouseRepo repository.WarehouseRepository,
	generator KardexGenerator,
) *ExportUseCase {
	return &ExportUseCase{
		query:         query,
		materialRepo:  materialRepo,
		warehouseRepo: warehouseRepo,
		generator:     generator,
		now:           time.Now,
	}
}

// ExportPDF genera el PDF de la página filtrada.
func (uc *ExportUseCase) ExportPDF(ctx context.Context, filter repository.MovementFilter, requestedBy string) ([]byte, error) {
	report, err := uc.BuildReport(ctx, filter, requestedBy)
	if err != nil {
		return nil, err
	}
	return uc.generator.GenerateKardexPDF(ctx, *report)
}

// BuildReport resuelve la página y los nombres de catálogo (con caché por exportación).
func (uc *ExportUseCase) BuildReport(ctx context.Context, filter repository.MovementFilter, requestedBy string) (*KardexReport, error) {
	page, err := uc.query.Query(ctx, filter)
	if err != nil {
		return nil, err
	}
	materials := map[string]*entity.Material{}
	warehouses := map[string]string{}

	rows := make([]KardexRow, 0, len(page.Items))
	for _, m := range page.Items {
		mat, ok := materials[m.MaterialID]
		if !ok {
			mat, err = uc.materialRepo.GetByID(ctx, m.MaterialID)
			if err != nil {
				return nil, err
			}
			materials[m.MaterialID] = mat
		}
		whName, ok := warehouses[m.WarehouseID]
		if !ok {
			wh, err := uc.warehouseRepo.GetByID(ctx, m.WarehouseID)
			if err != nil {
				return nil, err
			}
			whName = m.WarehouseID
			if wh != nil {
				whName = wh.Name
			}
			warehouses[m.WarehouseID] = whName
		}
		row := KardexRow{Movement: m, MaterialName: m.MaterialID, WarehouseName: whName}
		if mat != nil {
			row.MaterialName = mat.Name
			row.Unit = mat.Unit
		}
		rows = append(rows, row)
	}

	filter.Limit, filter.Offset = page.Limit, page.Offset
	return &KardexReport{
		Title:       "Kardex de movimientos de material",
		GeneratedAt: uc.now(),
		GeneratedBy: requestedBy,
		Filter:      filter,
		Total:       page.Total,
		Rows:        rows,
	}, nil
}
