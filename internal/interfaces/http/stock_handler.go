package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dashboard"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/ledger"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// StockHandler maneja las peticiones HTTP del ledger de stock (protegido).
type StockHandler struct {
	engine *ledger.Engine
	dash   *dashboard.UseCase // invalidación del snapshot tras escrituras
}

// NewStockHandler construye el handler. dash puede ser nil.
func NewStockHandler(engine *ledger.Engine, dash *dashboard.UseCase) *StockHandler {
	return &StockHandler{engine: engine, dash: dash}
}

// RegisterMovement godoc
// @Summary      Registrar ajuste manual de stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "product_id, type, direction (ADJUSTMENT/TRANSFER), quantity, reason"
// @Success      201   {object}  map[string][]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/stock/movements [post]
func (h *StockHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if !parseBody(c, &in) {
		return nil
	}
	ids, err := h.engine.ApplyBatch(c.Context(), GetUserID(c), []ledger.Entry{{
		ProductID: in.ProductID,
		Type:      in.Type,
		Direction: in.Direction,
		Quantity:  in.Quantity,
		Reason:    in.Reason,
	}})
	if err != nil {
		return respondError(c, err)
	}
	if h.dash != nil {
		h.dash.InvalidateStats(c.Context())
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"movement_ids": ids})
}

// GetStock godoc
// @Summary      Consultar stock actual de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockResponse
// @Router       /api/stock/{productId} [get]
func (h *StockHandler) GetStock(c *fiber.Ctx) error {
	productID := c.Params("productId")
	qty, err := h.engine.GetStock(c.Context(), productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.StockResponse{ProductID: productID, CurrentStock: qty})
}

// GetHistory godoc
// @Summary      Historial de movimientos de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId  path   string  true   "ID del producto"
// @Param        since      query  string  false  "RFC3339"
// @Param        until      query  string  false  "RFC3339"
// @Success      200  {array}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/{productId}/movements [get]
func (h *StockHandler) GetHistory(c *fiber.Ctx) error {
	since, ok := parseTimeQuery(c, "since")
	if !ok {
		return nil
	}
	until, ok := parseTimeQuery(c, "until")
	if !ok {
		return nil
	}
	movements, err := h.engine.GetHistory(c.Context(), c.Params("productId"), since, until)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toMovementResponses(movements))
}

// Rebuild godoc
// @Summary      Reconstruir el stock desde el historial
// @Description  Sin as_of repara la cache reescribiéndola desde el ledger.
//
//	Con as_of devuelve el stock a esa fecha sin mutar nada.
//
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId  path   string  true   "ID del producto"
// @Param        as_of      query  string  false  "RFC3339"
// @Success      200  {object}  dto.RebuildResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/rebuild/{productId} [post]
func (h *StockHandler) Rebuild(c *fiber.Ctx) error {
	productID := c.Params("productId")
	asOf, ok := parseTimeQuery(c, "as_of")
	if !ok {
		return nil
	}
	total, err := h.engine.Rebuild(c.Context(), productID, asOf)
	if err != nil {
		return respondError(c, err)
	}
	if asOf == nil && h.dash != nil {
		h.dash.InvalidateStats(c.Context())
	}
	return c.JSON(dto.RebuildResponse{
		ProductID: productID,
		Stock:     total,
		AsOf:      asOf,
		Repaired:  asOf == nil,
	})
}

// parseTimeQuery parsea un query param RFC3339 opcional. Si es inválido,
// escribe la respuesta 400 y devuelve ok=false.
func parseTimeQuery(c *fiber.Ctx, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		_ = badRequest(c, "VALIDATION", name+" debe ser RFC3339")
		return nil, false
	}
	return &t, true
}

func toMovementResponses(movements []*entity.StockMovement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, dto.MovementResponse{
			ID:            m.ID,
			Seq:           m.Seq,
			ProductID:     m.ProductID,
			Type:          m.Type,
			Direction:     m.Direction,
			Quantity:      m.Quantity,
			PreviousStock: m.PreviousStock,
			NewStock:      m.NewStock,
			Reason:        m.Reason,
			Reference:     m.Reference,
			UserID:        m.UserID,
			CreatedAt:     m.CreatedAt,
		})
	}
	return out
}
