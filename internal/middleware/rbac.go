package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/Suvodeep90/expertiza-E1792/internal/service"
	"github.com/Suvodeep90/expertiza-E1792/internal/utils"
)

// RequireRole rejects requests whose role, after alias resolution, is not in roles.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		if canonical := service.CanonicalRole(role); canonical != "" {
			allowed[canonical] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		role := service.CanonicalRole(roleValue(c.Locals("user_role")))
		if _, ok := allowed[role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

// RequireInstructor admits the instructor tier only.
func RequireInstructor() fiber.Handler {
	return RequireRole(service.InstructorRoles...)
}

func roleValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", value)
	}
}
