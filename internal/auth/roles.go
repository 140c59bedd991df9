package auth

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/voting-service/pkg/util/errorutil"
)

var ErrNotAdmin = apperrors.NewDomainError("NOT_ADMIN", "user has not admin role", http.StatusForbidden, nil)

// AdminChecker reports whether a subject holds the admin role. Lookup
// failures must be reported as false.
type AdminChecker interface {
	IsAdmin(ctx context.Context, subjectID string) bool
}

// RequireAdmin ensures the authenticated subject is the admin. It must run after AuthMiddleware.Handle.
func RequireAdmin(checker AdminChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		subjectID, ok := SubjectFromContext(c)
		if !ok {
			return ErrMissingToken
		}
		if !checker.IsAdmin(c.UserContext(), subjectID) {
			return ErrNotAdmin
		}
		return c.Next()
	}
}
