package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/Materiales-api/internal/application/analytics"
	"github.com/jhoicas/Materiales-api/internal/application/dto"
)

// AnalyticsHandler maneja los reportes de consumo de material.
type AnalyticsHandler struct {
	uc *appanalytics.UsageUseCase
}

// NewAnalyticsHandler construye el handler.
func NewAnalyticsHandler(uc *appanalytics.UsageUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc}
}

// GetUsage godoc
// @Summary      Consumo de material por período (ranking Pareto 80/20)
// @Description  Ranking de materiales por costo entregado y consumo por obra.
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Param        start_date  query  string  false  "Inicio del período (YYYY-MM-DD). Default: primer día del mes."
// @Param        end_date    query  string  false  "Fin del período (YYYY-MM-DD). Default: hoy."
// @Param        top_n       query  int     false  "Máx. materiales y obras (default 20, max 200)."
// @Success      200  {object}  dto.UsageReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/analytics/usage [get]
func (h *AnalyticsHandler) GetUsage(c *fiber.Ctx) error {
	var req dto.UsageReportRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "INVALID_PARAMS", Message: "parámetros de consulta inválidos",
		})
	}
	report, err := h.uc.GetUsageReport(c.UserContext(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(report)
}
