package handlers

import (
	"errors"

	"thoughtforest/internal/middleware"
	"thoughtforest/internal/models"
	"thoughtforest/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the authentication routes. auth guards the
// routes that act on the signed-in user.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/signup", h.HandleSignup)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Get("/verify-email", h.HandleVerifyEmail)
	authRoutes.Post("/verification-code", auth, h.HandleRegenerateCode)
}

// SignupRequest represents the request body for signup.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=8"`
}

// HandleSignup handles new user registration.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	var req SignupRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}

	if _, err := h.authService.Register(c.UserContext(), req.Email, req.Name, req.Password); err != nil {
		return respondError(c, "Registration failed", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}

	token, user, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, "Invalid credentials", err)
	}

	return c.JSON(fiber.Map{
		"access_token": token,
		"user":         loginUser{ID: user.ID, Email: user.Email, Name: user.Name},
	})
}

// HandleVerifyEmail consumes the code from a verification link.
func (h *AuthHandler) HandleVerifyEmail(c *fiber.Ctx) error {
	err := h.authService.VerifyEmail(c.UserContext(), c.Query("code"))
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"message": "Email verified successfully"})
	case errors.Is(err, services.ErrAlreadyVerified):
		return c.JSON(fiber.Map{"message": "Email is already verified"})
	case errors.Is(err, services.ErrVerificationExpired):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Verification code expired. A new code has been sent to your email.",
		})
	default:
		return respondError(c, "Invalid verification code", err)
	}
}

// HandleRegenerateCode mails the signed-in user a fresh verification code.
func (h *AuthHandler) HandleRegenerateCode(c *fiber.Ctx) error {
	if err := h.authService.RegenerateVerificationCode(c.UserContext(), middleware.UserID(c)); err != nil {
		return respondError(c, "Could not generate a new verification code", err)
	}
	return c.JSON(fiber.Map{
		"message": "New verification code generated and sent to your email",
	})
}

// profileView is what a user sees of their own account.
func profileView(u *models.User) fiber.Map {
	return fiber.Map{
		"id":                     u.ID,
		"email":                  u.Email,
		"name":                   u.Name,
		"is_email_verified":      u.IsEmailVerified,
		"is_subscription_active": u.IsSubscriptionActive,
	}
}
