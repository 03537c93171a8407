package handlers

import (
	"thoughtforest/internal/middleware"
	"thoughtforest/internal/models"
	"thoughtforest/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// SummaryHandler handles HTTP requests for summaries.
type SummaryHandler struct {
	service  *services.SummaryService
	validate *validator.Validate
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(service *services.SummaryService) *SummaryHandler {
	return &SummaryHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the summary routes behind auth.
func (h *SummaryHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	routes := router.Group("/summaries", auth)
	routes.Get("/", h.HandleList)
	routes.Post("/", h.HandleCreate)
	routes.Get("/:id", h.HandleGet)
	routes.Patch("/:id", h.HandleUpdate)
	routes.Put("/:id", h.HandleUpdate)
	routes.Delete("/:id", h.HandleDelete)
}

// CreateSummaryRequest represents the request body for a new summary.
type CreateSummaryRequest struct {
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Mood    string `json:"mood" validate:"omitempty,oneof=happy sad neutral angry"`
	Summary string `json:"summary" validate:"required"`
}

// UpdateSummaryRequest represents the request body for a summary update.
type UpdateSummaryRequest struct {
	Date    *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Mood    *string `json:"mood" validate:"omitempty,oneof=happy sad neutral angry"`
	Summary *string `json:"summary"`
}

func (h *SummaryHandler) HandleList(c *fiber.Ctx) error {
	list, err := h.service.List(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, "Could not retrieve summaries", err)
	}
	if list == nil {
		list = []models.Summary{}
	}
	return c.JSON(list)
}

func (h *SummaryHandler) HandleCreate(c *fiber.Ctx) error {
	var req CreateSummaryRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}
	date, _ := models.ParseDate(req.Date)

	s, err := h.service.Create(c.UserContext(), middleware.UserID(c), date, models.Mood(req.Mood), req.Summary)
	if err != nil {
		return respondError(c, "Could not create summary", err)
	}
	return c.Status(fiber.StatusCreated).JSON(s)
}

func (h *SummaryHandler) HandleGet(c *fiber.Ctx) error {
	s, err := h.service.Get(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, "Could not retrieve summary", err)
	}
	return c.JSON(s)
}

func (h *SummaryHandler) HandleUpdate(c *fiber.Ctx) error {
	var req UpdateSummaryRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}

	patch := services.SummaryPatch{Summary: req.Summary}
	if req.Date != nil {
		date, _ := models.ParseDate(*req.Date)
		patch.Date = &date
	}
	if req.Mood != nil {
		mood := models.Mood(*req.Mood)
		patch.Mood = &mood
	}

	s, err := h.service.Update(c.UserContext(), middleware.UserID(c), c.Params("id"), patch)
	if err != nil {
		return respondError(c, "Could not update summary", err)
	}
	return c.JSON(s)
}

func (h *SummaryHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return respondError(c, "Could not delete summary", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
