package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/daniswara/kumpul-api/internal/middleware"
)

const jwtTestSecret = "middleware-test-secret"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func jwtTestApp() *fiber.App {
	app := fiber.New()
	app.Get("/", middleware.JWTProtected(jwtTestSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": c.Locals("user_id"),
			"role":    c.Locals("user_role"),
		})
	})
	return app
}

func performWithToken(t *testing.T, app *fiber.App, authorization string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestJWTProtectedAcceptsValidToken(t *testing.T) {
	app := jwtTestApp()
	token := signToken(t, jwt.MapClaims{
		"sub":  float64(42),
		"role": "Admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}, jwtTestSecret)

	resp := performWithToken(t, app, "Bearer "+token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestJWTProtectedRejectsMissingHeader(t *testing.T) {
	resp := performWithToken(t, jwtTestApp(), "")
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTProtectedRejectsWrongSecret(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"sub": float64(1)}, "some-other-secret")

	resp := performWithToken(t, jwtTestApp(), "Bearer "+token)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTProtectedRejectsExpiredToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub": float64(1),
		"exp": time.Now().Add(-time.Hour).Unix(),
	}, jwtTestSecret)

	resp := performWithToken(t, jwtTestApp(), "Bearer "+token)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTProtectedRequiresSubject(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"role": "user"}, jwtTestSecret)

	resp := performWithToken(t, jwtTestApp(), "Bearer "+token)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTProtectedAcceptsStringSubject(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"sub": "7"}, jwtTestSecret)

	resp := performWithToken(t, jwtTestApp(), "Bearer "+token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
