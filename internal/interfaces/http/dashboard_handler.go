package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dashboard"
)

// DashboardHandler maneja las peticiones HTTP del dashboard (protegido).
type DashboardHandler struct {
	uc *dashboard.UseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *dashboard.UseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// Stats godoc
// @Summary      Snapshot del dashboard
// @Description  Conteos, valor total de inventario a costo y últimos movimientos.
//
//	Todo se deriva del stock vivo al momento de la consulta.
//
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardStatsDTO
// @Router       /api/dashboard/stats [get]
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.uc.Stats(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

// LowStock godoc
// @Summary      Productos con stock bajo, más urgentes primero
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "máximo de productos (default 50)"
// @Success      200  {object}  dto.LowStockListDTO
// @Router       /api/dashboard/low-stock [get]
func (h *DashboardHandler) LowStock(c *fiber.Ctx) error {
	out, err := h.uc.LowStock(c.Context(), c.QueryInt("limit"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// OutOfStock godoc
// @Summary      Productos agotados
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "máximo de productos (default 50)"
// @Success      200  {object}  dto.LowStockListDTO
// @Router       /api/dashboard/out-of-stock [get]
func (h *DashboardHandler) OutOfStock(c *fiber.Ctx) error {
	out, err := h.uc.OutOfStock(c.Context(), c.QueryInt("limit"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
