package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/Materiales-api/internal/application/analytics"
	"github.com/jhoicas/Materiales-api/internal/application/inventory"
	"github.com/jhoicas/Materiales-api/internal/application/usecase"
	"github.com/jhoicas/Materiales-api/internal/domain/entity"
	"github.com/jhoicas/Materiales-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	MaterialUC       *usecase.MaterialUseCase
	WarehouseUC      *usecase.WarehouseUseCase
	RegisterMovement *inventory.RegisterMovementUseCase
	Projector        *inventory.StockProjector
	Query            *inventory.QueryService
	Consumption      *inventory.ConsumptionUseCase
	Export           *inventory.ExportUseCase
	Dashboard        *appanalytics.DashboardUseCase
	Usage            *appanalytics.UsageUseCase
	MaterialRepo     repository.MaterialRepository
	JWTSecret        string
}

// Roles que pueden registrar movimientos.
var ledgerWriters = []string{entity.RoleAdmin, entity.RoleSupervisor, entity.RoleBodeguero}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	protected := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	catalogAdmin := RequireRole(entity.ElevatedRoles...)
	writer := RequireRole(ledgerWriters...)

	// Materials
	materials := protected.Group("/materials")
	materialHandler := NewMaterialHandler(deps.MaterialUC)
	materials.Get("/", materialHandler.List)
	materials.Post("/", catalogAdmin, materialHandler.Create)
	materials.Get("/:id", materialHandler.GetByID)
	materials.Put("/:id", catalogAdmin, materialHandler.Update)
	materials.Post("/:id/deactivate", catalogAdmin, materialHandler.Deactivate)

	// Warehouses
	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Post("/", catalogAdmin, warehouseHandler.Create)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Put("/:id", catalogAdmin, warehouseHandler.Update)
	warehouses.Post("/:id/deactivate", catalogAdmin, warehouseHandler.Deactivate)

	// Inventory ledger
	inv := protected.Group("/inventory")
	h := NewInventoryHandler(deps.RegisterMovement, deps.Projector, deps.Query, deps.Consumption, deps.Export, deps.MaterialRepo)
	inv.Post("/deliveries", writer, h.RegisterDelivery)
	inv.Post("/adjustments", writer, h.RegisterAdjustment)
	inv.Get("/movements", h.ListMovements)
	// export.pdf antes de :id para que no lo capture el parámetro.
	inv.Get("/movements/export.pdf", h.ExportMovements)
	inv.Get("/movements/:id", h.GetMovement)
	inv.Post("/movements/:id/consume", writer, h.MarkConsumed)
	inv.Get("/stock/:material_id", h.GetMaterialStock)
	inv.Get("/stock/:material_id/:warehouse_id", h.GetPairStock)
	inv.Get("/stock/:material_id/:warehouse_id/verify", h.VerifyPairStock)

	// Dashboard y analítica (solo lectura)
	protected.Get("/dashboard/summary", NewDashboardHandler(deps.Dashboard).GetSummary)
	protected.Get("/analytics/usage", NewAnalyticsHandler(deps.Usage).GetUsage)
}
