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

// CandidateService manages candidates on behalf of the admin.
type CandidateService struct {
	candidates repository.CandidateRepository
	admins     auth.AdminChecker
	dispatcher events.Dispatcher
}

// CandidateDependencies bundles collaborators for the candidate service.
type CandidateDependencies struct {
	CandidateRepo repository.CandidateRepository
	Admins        auth.AdminChecker
	Dispatcher    events.Dispatcher
}

// NewCandidateService constructs the service.
func NewCandidateService(deps CandidateDependencies) *CandidateService {
	return &CandidateService{
		candidates: deps.CandidateRepo,
		admins:     deps.Admins,
		dispatcher: deps.Dispatcher,
	}
}

// Create adds a candidate.
func (s *CandidateService) Create(ctx context.Context, subjectID string, input domain.CandidateInput) (*domain.Candidate, error) {
	if !s.admins.IsAdmin(ctx, subjectID) {
		return nil, auth.ErrNotAdmin
	}
	if err := validateCandidate(input); err != nil {
		return nil, err
	}

	candidate := &domain.Candidate{
		Name:  strings.TrimSpace(input.Name),
		Party: strings.TrimSpace(input.Party),
		Age:   input.Age,
	}
	if err := s.candidates.Create(ctx, candidate); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.publishCandidate(ctx, events.EventCandidateCreated, subjectID, candidate)
	return candidate, nil
}

// Update replaces a candidate's descriptive fields. Vote data is untouched.
func (s *CandidateService) Update(ctx context.Context, subjectID, candidateID string, input domain.CandidateInput) (*domain.Candidate, error) {
	if !s.admins.IsAdmin(ctx, subjectID) {
		return nil, auth.ErrNotAdmin
	}
	if !validID(candidateID) {
		return nil, ErrCandidateNotFound
	}
	if err := validateCandidate(input); err != nil {
		return nil, err
	}

	candidate := &domain.Candidate{
		ID:    candidateID,
		Name:  strings.TrimSpace(input.Name),
		Party: strings.TrimSpace(input.Party),
		Age:   input.Age,
	}
	if err := s.candidates.Update(ctx, candidate); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCandidateNotFound
		}
		return nil, apperrors.NewInternalError(err)
	}

	s.publishCandidate(ctx, events.EventCandidateUpdated, subjectID, candidate)
	return candidate, nil
}

// Delete removes a candidate together with its vote records.
func (s *CandidateService) Delete(ctx context.Context, subjectID, candidateID string) error {
	if !s.admins.IsAdmin(ctx, subjectID) {
		return auth.ErrNotAdmin
	}
	if !validID(candidateID) {
		return ErrCandidateNotFound
	}

	if err := s.candidates.Delete(ctx, candidateID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCandidateNotFound
		}
		return apperrors.NewInternalError(err)
	}

	s.publishCandidate(ctx, events.EventCandidateDeleted, subjectID, &domain.Candidate{ID: candidateID})
	return nil
}

// List returns all candidates in insertion order.
func (s *CandidateService) List(ctx context.Context) ([]domain.Candidate, error) {
	candidates, err := s.candidates.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return candidates, nil
}

func (s *CandidateService) publishCandidate(ctx context.Context, eventType events.EventType, actorID string, candidate *domain.Candidate) {
	publish(ctx, s.dispatcher, events.Event{
		Type:        eventType,
		ActorID:     actorID,
		CandidateID: candidate.ID,
		Payload:     events.CandidatePayload{Name: candidate.Name, Party: candidate.Party},
	})
}

func validateCandidate(input domain.CandidateInput) error {
	problems := map[string]any{}
	if strings.TrimSpace(input.Name) == "" {
		problems["name"] = "required"
	}
	if strings.TrimSpace(input.Party) == "" {
		problems["party"] = "required"
	}
	if input.Age <= 0 {
		problems["age"] = "must be positive"
	}
	if len(problems) > 0 {
		return apperrors.NewValidationError("invalid candidate data", problems)
	}
	return nil
}
