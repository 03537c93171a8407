package handlers

import (
	"thoughtforest/internal/middleware"
	"thoughtforest/internal/models"
	"thoughtforest/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// TranscriptionHandler handles HTTP requests for transcriptions.
type TranscriptionHandler struct {
	service  *services.TranscriptionService
	validate *validator.Validate
}

// NewTranscriptionHandler creates a new TranscriptionHandler.
func NewTranscriptionHandler(service *services.TranscriptionService) *TranscriptionHandler {
	return &TranscriptionHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the transcription routes behind auth.
func (h *TranscriptionHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	routes := router.Group("/transcriptions", auth)
	routes.Get("/", h.HandleList)
	routes.Post("/", h.HandleCreate)
	routes.Get("/:id", h.HandleGet)
	routes.Patch("/:id", h.HandleUpdate)
	routes.Put("/:id", h.HandleUpdate)
	routes.Delete("/:id", h.HandleDelete)
}

// CreateTranscriptionRequest represents the request body for a new transcription.
type CreateTranscriptionRequest struct {
	Date       string  `json:"date" validate:"required,datetime=2006-01-02"`
	Length     int     `json:"length" validate:"gte=0"`
	Transcript *string `json:"transcript"`
}

// UpdateTranscriptionRequest represents the request body for a transcription update.
// An explicit "transcript": null removes the body.
type UpdateTranscriptionRequest struct {
	Date       *string        `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Length     *int           `json:"length" validate:"omitempty,gte=0"`
	Transcript optionalString `json:"transcript"`
}

func (h *TranscriptionHandler) HandleList(c *fiber.Ctx) error {
	list, err := h.service.List(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, "Could not retrieve transcriptions", err)
	}
	if list == nil {
		list = []models.Transcription{}
	}
	return c.JSON(list)
}

func (h *TranscriptionHandler) HandleCreate(c *fiber.Ctx) error {
	var req CreateTranscriptionRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}
	date, _ := models.ParseDate(req.Date)

	t, err := h.service.Create(c.UserContext(), middleware.UserID(c), date, req.Length, req.Transcript)
	if err != nil {
		return respondError(c, "Could not create transcription", err)
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

func (h *TranscriptionHandler) HandleGet(c *fiber.Ctx) error {
	t, err := h.service.Get(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, "Could not retrieve transcription", err)
	}
	return c.JSON(t)
}

func (h *TranscriptionHandler) HandleUpdate(c *fiber.Ctx) error {
	var req UpdateTranscriptionRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}

	patch := services.TranscriptionPatch{Length: req.Length}
	if req.Transcript.Set {
		if req.Transcript.Value == nil {
			patch.ClearTranscript = true
		} else {
			patch.Transcript = req.Transcript.Value
		}
	}
	if req.Date != nil {
		date, _ := models.ParseDate(*req.Date)
		patch.Date = &date
	}

	t, err := h.service.Update(c.UserContext(), middleware.UserID(c), c.Params("id"), patch)
	if err != nil {
		return respondError(c, "Could not update transcription", err)
	}
	return c.JSON(t)
}

func (h *TranscriptionHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return respondError(c, "Could not delete transcription", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
