package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/voting-service/internal/api/dto"
	"github.com/spec-kit/voting-service/internal/auth"
	"github.com/spec-kit/voting-service/internal/domain"
	"github.com/spec-kit/voting-service/internal/service"
	apperrors "github.com/spec-kit/voting-service/pkg/util/errorutil"
)

var errInvalidPayload = apperrors.NewValidationError("invalid payload", nil)

// UsersHandler exposes signup, login and profile endpoints.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// Signup handles POST /user/signup.
func (h *UsersHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidPayload
	}

	identity, token, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		IdentityInput: domain.IdentityInput{
			IdentityNumber: req.IdentityNumber,
			Name:           req.Name,
			Age:            req.Age,
			Email:          req.Email,
			Mobile:         req.Mobile,
			Address:        req.Address,
			Role:           domain.Role(req.Role),
		},
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{
			"identity": dto.NewIdentityResponse(identity),
			"auth":     dto.NewAuthResponse(token),
		},
	})
}

// Login handles POST /user/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidPayload
	}

	token, err := h.auth.Login(c.UserContext(), req.IdentityNumber, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{"auth": dto.NewAuthResponse(token)},
	})
}

// Profile handles GET /user/profile.
func (h *UsersHandler) Profile(c *fiber.Ctx) error {
	subjectID, ok := auth.SubjectFromContext(c)
	if !ok {
		return auth.ErrMissingToken
	}

	identity, err := h.auth.Profile(c.UserContext(), subjectID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{"identity": dto.NewIdentityResponse(identity)},
	})
}

// ChangePassword handles PUT /user/profile/password.
func (h *UsersHandler) ChangePassword(c *fiber.Ctx) error {
	subjectID, ok := auth.SubjectFromContext(c)
	if !ok {
		return auth.ErrMissingToken
	}

	var req dto.PasswordChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidPayload
	}
	if err := h.auth.ChangePassword(c.UserContext(), subjectID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "password updated"})
}

// List handles GET /user/profile-list.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	identities, err := h.auth.ListIdentities(c.UserContext())
	if err != nil {
		return err
	}

	items := make([]dto.IdentityResponse, 0, len(identities))
	for i := range identities {
		items = append(items, dto.NewIdentityResponse(&identities[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
