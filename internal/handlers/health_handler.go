package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Motto is served from the API root.
const Motto = "The only journey is the one within."

// Check reports the health of one dependency.
type Check func(ctx context.Context) error

// Detail reports the state of a dependency the API can serve without.
type Detail func() string

// HealthHandler serves the root and health endpoints.
type HealthHandler struct {
	checks  map[string]Check
	details map[string]Detail
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(checks map[string]Check) *HealthHandler {
	return &HealthHandler{checks: checks, details: map[string]Detail{}}
}

// WithDetail adds an informational entry that never changes the status code.
func (h *HealthHandler) WithDetail(name string, d Detail) *HealthHandler {
	h.details[name] = d
	return h
}

func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleRoot)
	router.Get("/health", h.HandleHealth)
}

func (h *HealthHandler) HandleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": Motto})
}

// HandleHealth answers 200 when every check passes and 503 otherwise.
// Details are reported alongside.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := fiber.StatusOK
	results := fiber.Map{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			status = fiber.StatusServiceUnavailable
			results[name] = err.Error()
			continue
		}
		results[name] = "ok"
	}

	state := "ok"
	if status != fiber.StatusOK {
		state = "degraded"
	}
	details := fiber.Map{}
	for name, d := range h.details {
		details[name] = d()
	}
	return c.Status(status).JSON(fiber.Map{"status": state, "checks": results, "details": details})
}
