package middleware

import (
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"

	helper "chitfund_backend/internals/helpers"
)

const testSecret = "test-secret"

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: helper.ErrorHandler})
	app.Use(CallerJWT(CallerJWTOpts{Secret: testSecret}))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		id := helper.CallerMemberID(c)
		if id == nil {
			return c.SendString("anonymous")
		}
		return c.SendString(strconv.FormatUint(uint64(*id), 10))
	})
	return app
}

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func get(t *testing.T, app *fiber.App, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("GET", "/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	buf := make([]byte, 64)
	n, _ := resp.Body.Read(buf)
	return resp.StatusCode, string(buf[:n])
}

func TestCallerJWT(t *testing.T) {
	app := newApp()

	status, body := get(t, app, "")
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "anonymous", body)

	tok := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"id":  float64(12),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	status, body = get(t, app, tok)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "12", body)

	tok = sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "34"})
	_, body = get(t, app, tok)
	require.Equal(t, "34", body)

	tok = sign(t, jwt.SigningMethodHS256, []byte("other-secret"), jwt.MapClaims{"id": float64(1)})
	status, _ = get(t, app, tok)
	require.Equal(t, fiber.StatusUnauthorized, status)

	tok = sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"id":  float64(1),
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	status, _ = get(t, app, tok)
	require.Equal(t, fiber.StatusUnauthorized, status)

	tok = sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"name": "no id"})
	status, _ = get(t, app, tok)
	require.Equal(t, fiber.StatusUnauthorized, status)
}
