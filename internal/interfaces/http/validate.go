package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
)

var validate = validator.New()

// parseBody parsea el body JSON y valida los tags del DTO. Si falla, escribe
// la respuesta 400 y devuelve false: el handler debe retornar nil.
func parseBody(c *fiber.Ctx, out any) bool {
	if err := c.BodyParser(out); err != nil {
		_ = badRequest(c, "INVALID_BODY", "cuerpo inválido")
		return false
	}
	if err := validate.Struct(out); err != nil {
		_ = badRequest(c, "VALIDATION", err.Error())
		return false
	}
	return true
}

// pagedJSON responde un listado con su sobre de paginación.
func pagedJSON[T any](c *fiber.Ctx, items []T, page dto.PageRequest) error {
	page.DefaultPage()
	return c.JSON(fiber.Map{
		"data": items,
		"page": dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(items)},
	})
}
