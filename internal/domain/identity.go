package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Role separates voters from the election administrator.
type Role string

const (
	RoleVoter Role = "voter"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleVoter || r == RoleAdmin
}

var identityNumberPattern = regexp.MustCompile(`^\d{12}$`)

var (
	ErrInvalidIdentityNumber = errors.New("identity number must be exactly 12 digits")
	ErrMissingPasswordHash   = errors.New("identity requires a password hash")
)

// Identity is a registered voter or admin account.
type Identity struct {
	ID             string
	IdentityNumber string
	Name           string
	Age            int
	Email          *string
	Mobile         *string
	Address        string
	PasswordHash   string
	Role           Role
	HasVoted       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IdentityInput carries the caller supplied profile for a new identity.
type IdentityInput struct {
	IdentityNumber string
	Name           string
	Age            int
	Email          *string
	Mobile         *string
	Address        string
	Role           Role
}

// ValidateIdentityNumber checks the 12 digit identity number format.
func ValidateIdentityNumber(number string) error {
	if !identityNumberPattern.MatchString(number) {
		return ErrInvalidIdentityNumber
	}
	return nil
}

// Validate checks the profile fields and returns a field -> reason map of problems.
func (in IdentityInput) Validate() map[string]any {
	problems := map[string]any{}
	if strings.TrimSpace(in.Name) == "" {
		problems["name"] = "required"
	}
	if in.Age <= 0 {
		problems["age"] = "must be positive"
	}
	if strings.TrimSpace(in.Address) == "" {
		problems["address"] = "required"
	}
	if in.Role != "" && !in.Role.Valid() {
		problems["role"] = "must be voter or admin"
	}
	return problems
}

// NewIdentity builds an identity that has not voted yet. The caller hashes
// the credential first; an empty hash is rejected.
func NewIdentity(in IdentityInput, passwordHash string) (*Identity, error) {
	if err := ValidateIdentityNumber(in.IdentityNumber); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, ErrMissingPasswordHash
	}
	role := in.Role
	if role == "" {
		role = RoleVoter
	}
	return &Identity{
		IdentityNumber: in.IdentityNumber,
		Name:           strings.TrimSpace(in.Name),
		Age:            in.Age,
		Email:          trimOptional(in.Email),
		Mobile:         trimOptional(in.Mobile),
		Address:        strings.TrimSpace(in.Address),
		PasswordHash:   passwordHash,
		Role:           role,
	}, nil
}

// IsAdmin reports whether the identity administers the election.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
