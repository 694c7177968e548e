package controller

import (
	"rag-assistant-be/internal/dto"
	"rag-assistant-be/internal/pkg/serverutils"
	"rag-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IQueryController interface {
	RegisterRoutes(r fiber.Router)
	Process(ctx *fiber.Ctx) error
	ClearSession(ctx *fiber.Ctx) error
}

type queryController struct {
	queryService service.IQueryService
}

func NewQueryController(queryService service.IQueryService) IQueryController {
	return &queryController{
		queryService: queryService,
	}
}

func (c *queryController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/query/v1")
	h.Post("", c.Process)
	h.Delete("session/:id", c.ClearSession)
}

func (c *queryController) Process(ctx *fiber.Ctx) error {
	var req dto.ProcessQueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	// Process never fails: degraded pipeline output is still a valid response.
	res := c.queryService.Process(ctx.Context(), &req)
	return ctx.JSON(serverutils.SuccessResponse("Success process query", res))
}

func (c *queryController) ClearSession(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("id")
	if sessionId == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Session id is required")
	}

	res := c.queryService.ClearSession(ctx.Context(), sessionId)
	return ctx.JSON(serverutils.SuccessResponse("Success clear session", res))
}
