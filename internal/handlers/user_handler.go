package handlers

import (
	"thoughtforest/internal/middleware"
	"thoughtforest/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UserHandler handles the signed-in user's own account.
type UserHandler struct {
	users    *services.UserService
	auth     *services.AuthService
	validate *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *services.UserService, auth *services.AuthService) *UserHandler {
	return &UserHandler{
		users:    users,
		auth:     auth,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the profile routes behind auth.
func (h *UserHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	me := router.Group("/users/me", auth)
	me.Get("/", h.HandleGetProfile)
	me.Patch("/", h.HandleUpdateProfile)
	me.Put("/", h.HandleUpdateProfile)
	me.Delete("/", h.HandleDeleteProfile)
	me.Put("/password", h.HandleChangePassword)
	me.Post("/subscription", h.HandleActivateSubscription)
	me.Post("/export", h.HandleExport)
}

func (h *UserHandler) HandleGetProfile(c *fiber.Ctx) error {
	user, err := h.users.Get(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, "Could not retrieve profile", err)
	}
	return c.JSON(profileView(user))
}

// UpdateProfileRequest represents the request body for a profile update.
type UpdateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email *string `json:"email" validate:"omitempty,email"`
}

func (h *UserHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}

	user, err := h.users.Update(c.UserContext(), middleware.UserID(c), services.ProfileUpdate{Name: req.Name, Email: req.Email})
	if err != nil {
		return respondError(c, "Could not update profile", err)
	}
	return c.JSON(profileView(user))
}

func (h *UserHandler) HandleDeleteProfile(c *fiber.Ctx) error {
	if err := h.users.Delete(c.UserContext(), middleware.UserID(c)); err != nil {
		return respondError(c, "Could not delete account", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ChangePasswordRequest represents the request body for a password change.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

func (h *UserHandler) HandleChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}

	if err := h.auth.ChangePassword(c.UserContext(), middleware.UserID(c), req.OldPassword, req.NewPassword); err != nil {
		return respondError(c, "Could not change password", err)
	}
	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}

// AccessCodeRequest represents the request body for subscription activation.
type AccessCodeRequest struct {
	AccessCode string `json:"accessCode" validate:"required"`
}

func (h *UserHandler) HandleActivateSubscription(c *fiber.Ctx) error {
	var req AccessCodeRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}

	if err := h.auth.ActivateSubscription(c.UserContext(), middleware.UserID(c), req.AccessCode); err != nil {
		return respondError(c, "Invalid access code", err)
	}
	return c.JSON(fiber.Map{"message": "Subscription activated successfully"})
}

func (h *UserHandler) HandleExport(c *fiber.Ctx) error {
	if err := h.users.RequestExport(c.UserContext(), middleware.UserID(c)); err != nil {
		return respondError(c, "Could not export data", err)
	}
	return c.JSON(fiber.Map{"message": "Data export requested. You will receive an email shortly."})
}
