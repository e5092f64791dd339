package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cast"

	"github.com/noah-isme/residence-admin-api/internal/utils"
)

// JWTProtected returns a middleware that validates HMAC signed bearer tokens. It binds user_subject,
// user_role and user_permissions locals from the claims.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		if subject := extractSubjectFromClaims(claims); subject != "" {
			c.Locals("user_subject", subject)
		}
		if role := extractUserRoleFromClaims(claims); role != "" {
			c.Locals("user_role", role)
		}
		if perms := extractPermissionsFromClaims(claims); perms != nil {
			c.Locals("user_permissions", perms)
		}

		return c.Next()
	}
}

// extractSubjectFromClaims returns the caller identity. Admin ids are opaque so numbers are kept as text.
func extractSubjectFromClaims(claims jwt.MapClaims) string {
	for _, key := range []string{"sub", "admin_id", "user_id", "id"} {
		if value, ok := claims[key]; ok {
			if subject := strings.TrimSpace(cast.ToString(value)); subject != "" {
				return subject
			}
		}
	}
	return ""
}

func extractUserRoleFromClaims(claims jwt.MapClaims) string {
	candidates := []string{"role", "roles"}
	for _, key := range candidates {
		if value, ok := claims[key]; ok {
			if role := normalizeRole(value); role != "" {
				return role
			}
		}
	}
	return ""
}

func normalizeRole(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case []interface{}:
		for _, item := range v {
			if str, ok := item.(string); ok {
				role := strings.ToLower(strings.TrimSpace(str))
				if role != "" {
					return role
				}
			}
		}
	default:
		return ""
	}
	return ""
}

// extractPermissionsFromClaims reads the permissions object. Values such as "true" or 1 are accepted.
func extractPermissionsFromClaims(claims jwt.MapClaims) map[string]bool {
	raw, ok := claims["permissions"].(map[string]interface{})
	if !ok {
		return nil
	}
	perms := make(map[string]bool, len(raw))
	for key, value := range raw {
		perms[strings.TrimSpace(key)] = cast.ToBool(value)
	}
	return perms
}
