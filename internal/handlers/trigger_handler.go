package handlers

import (
	"time"

	"thoughtforest/internal/models"
	"thoughtforest/internal/scheduler"

	"github.com/gofiber/fiber/v2"
)

// TriggerHandler runs aggregation passes on request from a trusted caller.
type TriggerHandler struct {
	runner scheduler.WeekRunner
	now    func() time.Time
}

// NewTriggerHandler creates a new TriggerHandler.
func NewTriggerHandler(runner scheduler.WeekRunner) *TriggerHandler {
	return &TriggerHandler{runner: runner, now: func() time.Time { return time.Now().UTC() }}
}

// RegisterRoutes registers the trigger route. guard authorizes the caller.
func (h *TriggerHandler) RegisterRoutes(router fiber.Router, guard fiber.Handler) {
	router.Post("/internal/summaries/weekly", guard, h.HandleRunWeekly)
}

// HandleRunWeekly runs a pass for the week of ?date= (default today),
// whatever the weekday, and returns the pass report.
func (h *TriggerHandler) HandleRunWeekly(c *fiber.Ctx) error {
	date := models.DateOf(h.now())
	if raw := c.Query("date"); raw != "" {
		parsed, err := models.ParseDate(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Validation failed",
				"errors":  fiber.Map{"date": "Field 'date' failed on the 'datetime' tag"},
			})
		}
		date = parsed
	}

	report, err := h.runner.RunWeek(c.UserContext(), date)
	if err != nil {
		return respondError(c, "Weekly summary pass failed", err)
	}
	return c.JSON(fiber.Map{
		"message": report.String(),
		"report":  report,
	})
}
