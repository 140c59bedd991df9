package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/voting-service/internal/cache"
	"github.com/spec-kit/voting-service/internal/domain"
	"github.com/spec-kit/voting-service/internal/events"
	"github.com/spec-kit/voting-service/internal/repository"
	apperrors "github.com/spec-kit/voting-service/pkg/util/errorutil"
)

// VotingService validates vote attempts, records them and computes the tally.
type VotingService struct {
	identities repository.IdentityRepository
	candidates repository.CandidateRepository
	ballots    repository.BallotRepository
	tally      *cache.TallyCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// VotingDependencies bundles repositories for the voting service.
type VotingDependencies struct {
	IdentityRepo  repository.IdentityRepository
	CandidateRepo repository.CandidateRepository
	BallotRepo    repository.BallotRepository
	TallyCache    *cache.TallyCache
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
}

// NewVotingService constructs the service.
func NewVotingService(deps VotingDependencies) *VotingService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VotingService{
		identities: deps.IdentityRepo,
		candidates: deps.CandidateRepo,
		ballots:    deps.BallotRepo,
		tally:      deps.TallyCache,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// CastVote records exactly one vote for subjectID. The has-voted flag and
// the candidate's vote record are written in one atomic store operation;
// losing a race with another vote by the same voter yields
// ErrConcurrentConflict and nothing is recorded.
func (s *VotingService) CastVote(ctx context.Context, subjectID, candidateID string) error {
	if !validID(candidateID) {
		return ErrCandidateNotFound
	}
	if _, err := s.candidates.GetByID(ctx, candidateID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCandidateNotFound
		}
		return apperrors.NewInternalError(err)
	}

	if !validID(subjectID) {
		return ErrIdentityNotFound
	}
	identity, err := s.identities.GetByID(ctx, subjectID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrIdentityNotFound
	}
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if identity.IsAdmin() {
		return ErrAdminCannotVote
	}
	if identity.HasVoted {
		return ErrAlreadyVoted
	}

	if err := s.ballots.RecordVote(ctx, identity.ID, candidateID); err != nil {
		if errors.Is(err, repository.ErrVoteConflict) {
			return ErrConcurrentConflict
		}
		return apperrors.NewInternalError(err)
	}

	publish(ctx, s.dispatcher, events.Event{
		Type:        events.EventVoteCast,
		ActorID:     identity.ID,
		CandidateID: candidateID,
	})
	return nil
}

// Tally returns per-party vote counts, highest first. Ties keep candidate
// insertion order.
func (s *VotingService) Tally(ctx context.Context) ([]domain.TallyEntry, error) {
	cached, ok, err := s.tally.Get(ctx)
	if err != nil {
		s.logger.Warn("tally cache read failed", zap.Error(err))
	}
	if ok {
		return cached, nil
	}

	gen, genErr := s.tally.Generation(ctx)
	if genErr != nil {
		s.logger.Warn("tally cache generation read failed", zap.Error(genErr))
	}

	candidates, err := s.candidates.ListByVoteCount(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	entries := make([]domain.TallyEntry, 0, len(candidates))
	for _, candidate := range candidates {
		entries = append(entries, domain.TallyEntry{Party: candidate.Party, Count: candidate.VoteCount})
	}

	if genErr == nil {
		if _, err := s.tally.Set(ctx, gen, entries); err != nil {
			s.logger.Warn("tally cache write failed", zap.Error(err))
		}
	}
	return entries, nil
}

// InvalidateTally drops the cached tally. It is subscribed to every event
// that changes vote counts or candidates.
func (s *VotingService) InvalidateTally(ctx context.Context, event events.Event) error {
	if err := s.tally.Invalidate(ctx); err != nil {
		s.logger.Warn("tally cache invalidation failed",
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		return err
	}
	return nil
}
