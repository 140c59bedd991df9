package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/voting-service/internal/auth"
	"github.com/spec-kit/voting-service/internal/domain"
	"github.com/spec-kit/voting-service/internal/events"
	"github.com/spec-kit/voting-service/internal/repository"
	apperrors "github.com/spec-kit/voting-service/pkg/util/errorutil"
)

// TokenIssuer issues access tokens for a subject.
type TokenIssuer interface {
	Issue(subjectID string) (*domain.Token, error)
}

// AuthService coordinates registration, login and credential changes.
type AuthService struct {
	identities repository.IdentityRepository
	hasher     auth.CredentialHasher
	tokens     TokenIssuer
	dispatcher events.Dispatcher
}

// AuthDependencies encapsulates requirements for auth service.
type AuthDependencies struct {
	IdentityRepo repository.IdentityRepository
	Hasher       auth.CredentialHasher
	Tokens       TokenIssuer
	Dispatcher   events.Dispatcher
}

// RegisterInput is the signup payload.
type RegisterInput struct {
	domain.IdentityInput
	Password string
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	return &AuthService{
		identities: deps.IdentityRepo,
		hasher:     deps.Hasher,
		tokens:     deps.Tokens,
		dispatcher: deps.Dispatcher,
	}
}

// Register creates a new identity and returns it with an access token.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.Identity, *domain.Token, error) {
	if input.Role == domain.RoleAdmin {
		exists, err := s.identities.AdminExists(ctx)
		if err != nil {
			return nil, nil, apperrors.NewInternalError(err)
		}
		if exists {
			return nil, nil, ErrAdminAlreadyExists
		}
	}

	if err := domain.ValidateIdentityNumber(input.IdentityNumber); err != nil {
		return nil, nil, ErrInvalidIdentityNumber
	}

	if _, err := s.identities.GetByIdentityNumber(ctx, input.IdentityNumber); err == nil {
		return nil, nil, ErrDuplicateIdentity
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, apperrors.NewInternalError(err)
	}

	problems := input.Validate()
	if strings.TrimSpace(input.Password) == "" {
		problems["password"] = "required"
	}
	if len(problems) > 0 {
		return nil, nil, apperrors.NewValidationError("invalid registration data", problems)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}
	identity, err := domain.NewIdentity(input.IdentityInput, hash)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}

	if err := s.identities.Create(ctx, identity); err != nil {
		switch {
		case errors.Is(err, repository.ErrAdminExists):
			return nil, nil, ErrAdminAlreadyExists
		case errors.Is(err, repository.ErrDuplicateIdentity):
			return nil, nil, ErrDuplicateIdentity
		default:
			return nil, nil, apperrors.NewInternalError(err)
		}
	}

	token, err := s.tokens.Issue(identity.ID)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}

	publish(ctx, s.dispatcher, events.Event{
		Type:    events.EventIdentityRegistered,
		ActorID: identity.ID,
		Payload: events.IdentityRegisteredPayload{Role: identity.Role},
	})
	return identity, token, nil
}

// Login authenticates by identity number and password. Unknown numbers and
// wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, identityNumber, password string) (*domain.Token, error) {
	if identityNumber == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	identity, err := s.identities.GetByIdentityNumber(ctx, identityNumber)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if err := s.hasher.Verify(identity.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(identity.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return token, nil
}

// ChangePassword verifies the current password before storing a hash of the new one.
func (s *AuthService) ChangePassword(ctx context.Context, subjectID, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return ErrMissingFields
	}

	identity, err := s.loadIdentity(ctx, subjectID)
	if err != nil {
		return err
	}
	if err := s.hasher.Verify(identity.PasswordHash, currentPassword); err != nil {
		return ErrCredentialMismatch
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.identities.UpdatePasswordHash(ctx, identity.ID, hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrIdentityNotFound
		}
		return apperrors.NewInternalError(err)
	}

	publish(ctx, s.dispatcher, events.Event{Type: events.EventPasswordChanged, ActorID: identity.ID})
	return nil
}

// Profile returns the caller's identity.
func (s *AuthService) Profile(ctx context.Context, subjectID string) (*domain.Identity, error) {
	return s.loadIdentity(ctx, subjectID)
}

// ListIdentities returns every registered identity.
func (s *AuthService) ListIdentities(ctx context.Context) ([]domain.Identity, error) {
	identities, err := s.identities.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return identities, nil
}

// IsAdmin reports whether subjectID is the admin. Lookup failures count as
// non-admin.
func (s *AuthService) IsAdmin(ctx context.Context, subjectID string) bool {
	if !validID(subjectID) {
		return false
	}
	identity, err := s.identities.GetByID(ctx, subjectID)
	if err != nil {
		return false
	}
	return identity.IsAdmin()
}

func (s *AuthService) loadIdentity(ctx context.Context, subjectID string) (*domain.Identity, error) {
	if !validID(subjectID) {
		return nil, ErrIdentityNotFound
	}
	identity, err := s.identities.GetByID(ctx, subjectID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrIdentityNotFound
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return identity, nil
}
