package middleware

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	helper "chitfund_backend/internals/helpers"
)

type CallerJWTOpts struct {
	Secret              string
	AllowCookieFallback bool // read cookie access_token when there is no Bearer header
}

// CallerJWT resolves the calling member from an HS256 bearer token.
// No token means an anonymous caller; a bad token is a 401.
func CallerJWT(o CallerJWTOpts) fiber.Handler {
	secret := []byte(strings.TrimSpace(o.Secret))

	return func(c *fiber.Ctx) error {
		raw := ""
		if authz := strings.TrimSpace(c.Get(fiber.HeaderAuthorization)); strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			raw = strings.TrimSpace(authz[7:])
		} else if o.AllowCookieFallback {
			raw = strings.TrimSpace(c.Cookies("access_token"))
		}
		if raw == "" {
			return c.Next()
		}
		if len(secret) == 0 {
			return fiber.NewError(fiber.StatusUnauthorized, "token auth is not configured")
		}

		tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return secret, nil
		})
		if err != nil || !tok.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}
		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
		}

		id, ok := memberIDClaim(claims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "token has no member id")
		}
		c.Locals(helper.LocalsMemberID, id)
		if role, ok := claims["role"].(string); ok {
			c.Locals("role", role)
		}
		return c.Next()
	}
}

// memberIDClaim reads id, then sub, then user_id; numbers or numeric strings.
func memberIDClaim(m jwt.MapClaims) (uint, bool) {
	for _, key := range []string{"id", "sub", "user_id"} {
		switch v := m[key].(type) {
		case float64:
			if v > 0 && v == float64(uint(v)) {
				return uint(v), true
			}
		case string:
			if n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64); err == nil && n > 0 {
				return uint(n), true
			}
		}
	}
	return 0, false
}
