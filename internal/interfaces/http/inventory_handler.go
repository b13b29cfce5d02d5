package http

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Materiales-api/internal/application/dto"
	"github.com/jhoicas/Materiales-api/internal/application/inventory"
	"github.com/jhoicas/Materiales-api/internal/domain"
	"github.com/jhoicas/Materiales-api/internal/domain/entity"
	"github.com/jhoicas/Materiales-api/internal/domain/repository"
)

// InventoryHandler maneja las peticiones HTTP del ledger de materiales (protegido).
type InventoryHandler struct {
	register    *inventory.RegisterMovementUseCase
	projector   *inventory.StockProjector
	query       *inventory.QueryService
	consumption *inventory.ConsumptionUseCase
	export      *inventory.ExportUseCase
	materials   repository.MaterialRepository
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	register *inventory.RegisterMovementUseCase,
	projector *inventory.StockProjector,
	query *inventory.QueryService,
	consumption *inventory.ConsumptionUseCase,
	export *inventory.ExportUseCase,
	materials repository.MaterialRepository,
) *InventoryHandler {
	return &InventoryHandler{
		register:    register,
		projector:   projector,
		query:       query,
		consumption: consumption,
		export:      export,
		materials:   materials,
	}
}

// RegisterDelivery godoc
// @Summary      Registrar entrega de material
// @Description  Entrega a obra o trabajador. Falla con 409 si la cantidad supera el stock del par.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterDeliveryRequest  true  "material_id, warehouse_id, quantity, project_id, worker_id"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.InsufficientStockResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/deliveries [post]
func (h *InventoryHandler) RegisterDelivery(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.RegisterDeliveryRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.register.RegisterDeliveryFromRequest(c.UserContext(), userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// RegisterAdjustment godoc
// @Summary      Registrar ajuste de inventario
// @Description  movement_type: ingreso (suma) o ajuste_negativo (resta; pérdida, daño, merma).
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterAdjustmentRequest  true  "material_id, warehouse_id, movement_type, quantity, reason"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.InsufficientStockResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) RegisterAdjustment(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.RegisterAdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.register.RegisterAdjustmentFromRequest(c.UserContext(), userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMovements godoc
// @Summary      Historial de movimientos
// @Description  Filtros combinables; orden descendente por secuencia del ledger.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        material_id    query  string  false  "Material"
// @Param        warehouse_id   query  string  false  "Bodega"
// @Param        project_id     query  string  false  "Obra"
// @Param        worker_id      query  string  false  "Trabajador"
// @Param        delivered_by   query  string  false  "Usuario que registró"
// @Param        movement_type  query  string  false  "ingreso | entrega | ajuste_negativo"
// @Param        from           query  string  false  "Desde (RFC3339 o YYYY-MM-DD)"
// @Param        to             query  string  false  "Hasta (RFC3339 o YYYY-MM-DD, inclusive)"
// @Param        limit          query  int     false  "Límite"  default(20)
// @Param        offset         query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	filter, err := filterFromQuery(c)
	if err != nil {
		return writeError(c, err)
	}
	page, err := h.query.Query(c.UserContext(), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(inventory.ToMovementListResponse(page))
}

// GetMovement godoc
// @Summary      Obtener movimiento por ID
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [get]
func (h *InventoryHandler) GetMovement(c *fiber.Ctx) error {
	id, err := movementID(c)
	if err != nil {
		return writeError(c, err)
	}
	mov, err := h.query.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(inventory.ToMovementResponse(mov))
}

// ExportMovements godoc
// @Summary      Exportar historial (kardex) en PDF
// @Tags         inventory
// @Security     Bearer
// @Produce      application/pdf
// @Param        material_id   query  string  false  "Material"
// @Param        warehouse_id  query  string  false  "Bodega"
// @Param        limit         query  int     false  "Límite"  default(20)
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/export.pdf [get]
func (h *InventoryHandler) ExportMovements(c *fiber.Ctx) error {
	filter, err := filterFromQuery(c)
	if err != nil {
		return writeError(c, err)
	}
	pdf, err := h.export.ExportPDF(c.UserContext(), filter, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="kardex-%s.pdf"`, time.Now().Format("20060102-150405")))
	return c.Send(pdf)
}

// MarkConsumed godoc
// @Summary      Marcar entrega como consumida
// @Description  Solo entregas; es de una sola vía y no afecta el stock.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id}/consume [post]
func (h *InventoryHandler) MarkConsumed(c *fiber.Ctx) error {
	id, err := movementID(c)
	if err != nil {
		return writeError(c, err)
	}
	mov, err := h.consumption.MarkConsumed(c.UserContext(), id, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(inventory.ToMovementResponse(mov))
}

// GetMaterialStock godoc
// @Summary      Stock total de un material
// @Description  Suma de todas las bodegas con desglose por bodega.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        material_id  path  string  true  "ID del material"
// @Success      200  {object}  dto.MaterialStockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/{material_id} [get]
func (h *InventoryHandler) GetMaterialStock(c *fiber.Ctx) error {
	materialID := c.Params("material_id")
	material, err := h.materials.GetByID(c.UserContext(), materialID)
	if err != nil {
		return writeError(c, err)
	}
	if material == nil {
		return writeError(c, domain.ErrNotFound)
	}
	levels, total, err := h.projector.Breakdown(c.UserContext(), materialID)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.MaterialStockResponse{
		MaterialID:   materialID,
		Total:        total,
		MinimumStock: material.MinimumStock,
		Warehouses:   make([]dto.StockResponse, 0, len(levels)),
	}
	for _, l := range levels {
		out.Warehouses = append(out.Warehouses, toStockResponse(l))
	}
	return c.JSON(out)
}

// GetPairStock godoc
// @Summary      Stock de un material en una bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        material_id   path  string  true  "ID del material"
// @Param        warehouse_id  path  string  true  "ID de la bodega"
// @Success      200  {object}  dto.StockResponse
// @Router       /api/inventory/stock/{material_id}/{warehouse_id} [get]
func (h *InventoryHandler) GetPairStock(c *fiber.Ctx) error {
	level, err := h.projector.Level(c.UserContext(), c.Params("material_id"), c.Params("warehouse_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toStockResponse(level))
}

// VerifyPairStock godoc
// @Summary      Reconciliar stock contra el ledger
// @Description  Recalcula el stock del par recorriendo el ledger y lo compara con la proyección.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        material_id   path  string  true  "ID del material"
// @Param        warehouse_id  path  string  true  "ID de la bodega"
// @Success      200  {object}  dto.ReconciliationResponse
// @Router       /api/inventory/stock/{material_id}/{warehouse_id}/verify [get]
func (h *InventoryHandler) VerifyPairStock(c *fiber.Ctx) error {
	rec, err := h.projector.Verify(c.UserContext(), c.Params("material_id"), c.Params("warehouse_id"))
	if err != nil {
		return writeError(c, err)
	}
	out := dto.ReconciliationResponse{
		MaterialID:  rec.MaterialID,
		WarehouseID: rec.WarehouseID,
		Cached:      rec.Cached,
		Replayed:    rec.Replayed,
		Entries:     rec.Entries,
		Consistent:  rec.Consistent(),
	}
	if rec.ChainErr != nil {
		out.ChainError = rec.ChainErr.Error()
	}
	return c.JSON(out)
}

func toStockResponse(l *entity.StockLevel) dto.StockResponse {
	out := dto.StockResponse{
		MaterialID:     l.MaterialID,
		WarehouseID:    l.WarehouseID,
		Quantity:       l.Quantity,
		LastMovementID: l.LastMovementID,
	}
	if !l.UpdatedAt.IsZero() {
		at := l.UpdatedAt
		out.UpdatedAt = &at
	}
	return out
}

func movementID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("id", "debe ser un entero positivo")
	}
	return id, nil
}

// filterFromQuery arma el filtro del historial desde la query string.
func filterFromQuery(c *fiber.Ctx) (repository.MovementFilter, error) {
	f := repository.MovementFilter{
		MaterialID:  c.Query("material_id"),
		WarehouseID: c.Query("warehouse_id"),
		ProjectID:   c.Query("project_id"),
		WorkerID:    c.Query("worker_id"),
		DeliveredBy: c.Query("delivered_by"),
		Limit:       c.QueryInt("limit", dto.DefaultLimit),
		Offset:      c.QueryInt("offset", 0),
	}
	if s := c.Query("movement_type"); s != "" {
		t, err := entity.ParseMovementType(s)
		if err != nil {
			return f, domain.NewValidationError("movement_type", err.Error())
		}
		f.Type = t
	}
	var err error
	if f.From, err = parseTimeParam(c.Query("from"), false); err != nil {
		return f, domain.NewValidationError("from", err.Error())
	}
	if f.To, err = parseTimeParam(c.Query("to"), true); err != nil {
		return f, domain.NewValidationError("to", err.Error())
	}
	return f, nil
}

// parseTimeParam acepta RFC3339 o una fecha; con endOfDay la fecha cubre el día completo.
func parseTimeParam(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("formato esperado RFC3339 o YYYY-MM-DD")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
