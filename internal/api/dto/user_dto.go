package dto

import (
	"time"

	"github.com/spec-kit/voting-service/internal/domain"
)

// SignupRequest payload for new identities.
type SignupRequest struct {
	Name           string  `json:"name"`
	Age            int     `json:"age"`
	Email          *string `json:"email"`
	Mobile         *string `json:"mobile"`
	Address        string  `json:"address"`
	IdentityNumber string  `json:"aadharCardNumber"`
	Password       string  `json:"password"`
	Role           string  `json:"role"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	IdentityNumber string `json:"aadharCardNumber"`
	Password       string `json:"password"`
}

// PasswordChangeRequest payload for authenticated password changes.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IdentityResponse is the public view of an identity; the password hash is never exposed.
type IdentityResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Age            int       `json:"age"`
	Email          *string   `json:"email,omitempty"`
	Mobile         *string   `json:"mobile,omitempty"`
	Address        string    `json:"address"`
	IdentityNumber string    `json:"aadharCardNumber"`
	Role           string    `json:"role"`
	HasVoted       bool      `json:"isVoted"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewAuthResponse converts an issued token.
func NewAuthResponse(token *domain.Token) AuthResponse {
	return AuthResponse{Token: token.Value, ExpiresAt: token.ExpiresAt}
}

// NewIdentityResponse converts a domain identity.
func NewIdentityResponse(identity *domain.Identity) IdentityResponse {
	return IdentityResponse{
		ID:             identity.ID,
		Name:           identity.Name,
		Age:            identity.Age,
		Email:          identity.Email,
		Mobile:         identity.Mobile,
		Address:        identity.Address,
		IdentityNumber: identity.IdentityNumber,
		Role:           string(identity.Role),
		HasVoted:       identity.HasVoted,
		CreatedAt:      identity.CreatedAt,
	}
}
