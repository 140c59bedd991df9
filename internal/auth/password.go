package auth

import "golang.org/x/crypto/bcrypt"

// CredentialHasher hashes credentials one way and verifies them later.
type CredentialHasher interface {
	Hash(plain string) (string, error)
	Verify(hashed, plain string) error
}

// BcryptHasher hashes with bcrypt; every hash carries its own random salt.
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher returns a hasher using cost, or bcrypt.DefaultCost when cost is out of range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{Cost: cost}
}

// Hash implements CredentialHasher.
func (h *BcryptHasher) Hash(plain string) (string, error) {
	return HashPassword(plain, h.Cost)
}

// Verify implements CredentialHasher.
func (h *BcryptHasher) Verify(hashed, plain string) error {
	return ComparePassword(hashed, plain)
}

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
