package middleware

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (jwt.MapClaims, error) {
	if token != "good" {
		return nil, errors.New("invalid token")
	}
	return jwt.MapClaims{"user_id": "u1", "email": "a@example.com"}, nil
}

func TestAuthRequired(t *testing.T) {
	app := fiber.New()
	app.Get("/me", AuthRequired(stubValidator{}), func(c *fiber.Ctx) error {
		return c.SendString(UserID(c))
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic good", fiber.StatusUnauthorized},
		{"bad token", "Bearer bad", fiber.StatusUnauthorized},
		{"good token", "Bearer good", fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestTriggerTokenRequired(t *testing.T) {
	newApp := func(token string) *fiber.App {
		app := fiber.New()
		app.Post("/run", TriggerTokenRequired(token), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
		return app
	}

	call := func(app *fiber.App, header string) int {
		req := httptest.NewRequest("POST", "/run", nil)
		if header != "" {
			req.Header.Set(TriggerTokenHeader, header)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	app := newApp("s3cret")
	assert.Equal(t, fiber.StatusOK, call(app, "s3cret"))
	assert.Equal(t, fiber.StatusForbidden, call(app, "wrong"))
	assert.Equal(t, fiber.StatusForbidden, call(app, ""))

	// an unset token refuses everything
	assert.Equal(t, fiber.StatusForbidden, call(newApp(""), ""))
}
