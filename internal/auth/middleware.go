package auth

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/voting-service/pkg/util/errorutil"
)

const subjectKey = "auth_subject"

var (
	ErrMissingToken = apperrors.NewDomainError("MISSING_TOKEN", "token not found", http.StatusUnauthorized, nil)
	ErrInvalidToken = apperrors.NewDomainError("INVALID_TOKEN", "invalid token", http.StatusUnauthorized, nil)
)

// TokenVerifier resolves a bearer token to a subject ID.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// AuthMiddleware validates bearer tokens and attaches the subject to the request.
type AuthMiddleware struct {
	tokens TokenVerifier
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return ErrMissingToken
	}

	subjectID, err := m.tokens.Verify(token)
	if err != nil {
		return ErrInvalidToken
	}

	c.Locals(subjectKey, subjectID)
	return c.Next()
}

// SubjectFromContext retrieves the authenticated subject ID.
func SubjectFromContext(c *fiber.Ctx) (string, bool) {
	subjectID, ok := c.Locals(subjectKey).(string)
	if !ok || subjectID == "" {
		return "", false
	}
	return subjectID, true
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
