package controller

import (
	"vault-copilot-be/internal/dto"
	"vault-copilot-be/internal/pkg/serverutils"
	"vault-copilot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IToolsController interface {
	RegisterRoutes(r fiber.Router)
}

// toolsController exposes every assistant capability as its own endpoint so
// clients can invoke them without going through chat.
type toolsController struct {
	toolsService service.IToolsService
}

func NewToolsController(toolsService service.IToolsService) IToolsController {
	return &toolsController{
		toolsService: toolsService,
	}
}

func (c *toolsController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/tools/v1")
	h.Post("notes", c.CreateNote)
	h.Delete("notes", c.DeleteNote)
	h.Post("search", c.Search)
	h.Post("summarize", c.Summarize)
	h.Post("flashcards", c.Flashcards)
	h.Post("study/goals", c.StudyGoal)
	h.Post("study/plans", c.StudyPlan)
	h.Post("study/roadmaps", c.StudyRoadmap)
	h.Post("study/sessions", c.StudySession)
}

func (c *toolsController) CreateNote(ctx *fiber.Ctx) error {
	var req dto.CreateNoteToolRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.toolsService.CreateNote(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success create note", res))
}

func (c *toolsController) DeleteNote(ctx *fiber.Ctx) error {
	var req dto.DeleteNoteToolRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.toolsService.DeleteNote(ctx.Context(), &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success delete note", nil))
}

func (c *toolsController) Search(ctx *fiber.Ctx) error {
	var req dto.SearchToolRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.toolsService.Search(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success search notes", res))
}

func (c *toolsController) Summarize(ctx *fiber.Ctx) error {
	var req dto.SummarizeToolRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.toolsService.Summarize(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success summarize", res))
}

func (c *toolsController) Flashcards(ctx *fiber.Ctx) error {
	var req dto.FlashcardToolRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.toolsService.Flashcards(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success generate flashcards", res))
}

func (c *toolsController) StudyGoal(ctx *fiber.Ctx) error {
	var req dto.StudyGoalToolRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.toolsService.StudyGoal(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success create study goal", res))
}

func (c *toolsController) StudyPlan(ctx *fiber.Ctx) error {
	var req dto.StudyPlanToolRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.toolsService.StudyPlan(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success create study plan", res))
}

func (c *toolsController) StudyRoadmap(ctx *fiber.Ctx) error {
	var req dto.StudyRoadmapToolRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.toolsService.StudyRoadmap(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success generate roadmap", res))
}

func (c *toolsController) StudySession(ctx *fiber.Ctx) error {
	var req dto.StudySessionToolRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.toolsService.StudySession(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success prepare study session", res))
}
