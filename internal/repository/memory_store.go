package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/voting-service/internal/domain"
)

// MemoryStore keeps identities and candidates in process memory. A single
// lock covers both collections so RecordVote is atomic across them. It is
// used when no Postgres DSN is configured and in tests.
type MemoryStore struct {
	mu         sync.Mutex
	now        func() time.Time
	identities map[string]*domain.Identity
	byNumber   map[string]string
	candidates map[string]*domain.Candidate
	order      []string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:        time.Now,
		identities: make(map[string]*domain.Identity),
		byNumber:   make(map[string]string),
		candidates: make(map[string]*domain.Candidate),
	}
}

// Identities exposes the store as an IdentityRepository.
func (s *MemoryStore) Identities() IdentityRepository { return memoryIdentities{s} }

// Candidates exposes the store as a CandidateRepository.
func (s *MemoryStore) Candidates() CandidateRepository { return memoryCandidates{s} }

// Ballots exposes the store as a BallotRepository.
func (s *MemoryStore) Ballots() BallotRepository { return memoryBallots{s} }

type memoryIdentities struct{ s *MemoryStore }

func (r memoryIdentities) Create(_ context.Context, identity *domain.Identity) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byNumber[identity.IdentityNumber]; exists {
		return ErrDuplicateIdentity
	}
	if identity.Role == domain.RoleAdmin && s.adminExistsLocked() {
		return ErrAdminExists
	}

	now := s.now()
	identity.ID = uuid.NewString()
	identity.HasVoted = false
	identity.CreatedAt = now
	identity.UpdatedAt = now

	stored := *identity
	s.identities[stored.ID] = &stored
	s.byNumber[stored.IdentityNumber] = stored.ID
	return nil
}

func (r memoryIdentities) UpdatePasswordHash(_ context.Context, id, passwordHash string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	identity, ok := s.identities[id]
	if !ok {
		return pgx.ErrNoRows
	}
	identity.PasswordHash = passwordHash
	identity.UpdatedAt = s.now()
	return nil
}

func (r memoryIdentities) GetByID(_ context.Context, id string) (*domain.Identity, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	identity, ok := s.identities[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *identity
	return &cp, nil
}

func (r memoryIdentities) GetByIdentityNumber(ctx context.Context, number string) (*domain.Identity, error) {
	r.s.mu.Lock()
	id, ok := r.s.byNumber[number]
	r.s.mu.Unlock()
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r.GetByID(ctx, id)
}

func (r memoryIdentities) AdminExists(_ context.Context) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.adminExistsLocked(), nil
}

func (r memoryIdentities) List(_ context.Context) ([]domain.Identity, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]domain.Identity, 0, len(s.identities))
	for _, identity := range s.identities {
		result = append(result, *identity)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *MemoryStore) adminExistsLocked() bool {
	for _, identity := range s.identities {
		if identity.Role == domain.RoleAdmin {
			return true
		}
	}
	return false
}

type memoryCandidates struct{ s *MemoryStore }

func (r memoryCandidates) Create(_ context.Context, candidate *domain.Candidate) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	candidate.ID = uuid.NewString()
	candidate.Votes = nil
	candidate.VoteCount = 0
	candidate.CreatedAt = now
	candidate.UpdatedAt = now

	stored := *candidate
	s.candidates[stored.ID] = &stored
	s.order = append(s.order, stored.ID)
	return nil
}

func (r memoryCandidates) Update(_ context.Context, candidate *domain.Candidate) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.candidates[candidate.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Name = candidate.Name
	stored.Party = candidate.Party
	stored.Age = candidate.Age
	stored.UpdatedAt = s.now()

	candidate.VoteCount = stored.VoteCount
	candidate.CreatedAt = stored.CreatedAt
	candidate.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r memoryCandidates) Delete(_ context.Context, id string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.candidates[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.candidates, id)
	for i, candidateID := range s.order {
		if candidateID == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r memoryCandidates) GetByID(_ context.Context, id string) (*domain.Candidate, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	candidate, ok := s.candidates[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *candidate
	cp.Votes = append([]domain.VoteRecord(nil), candidate.Votes...)
	return &cp, nil
}

func (r memoryCandidates) List(_ context.Context) ([]domain.Candidate, error) {
	return r.s.listCandidates(), nil
}

func (r memoryCandidates) ListByVoteCount(_ context.Context) ([]domain.Candidate, error) {
	result := r.s.listCandidates()
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].VoteCount > result[j].VoteCount
	})
	return result, nil
}

func (s *MemoryStore) listCandidates() []domain.Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]domain.Candidate, 0, len(s.order))
	for _, id := range s.order {
		cp := *s.candidates[id]
		cp.Votes = nil
		result = append(result, cp)
	}
	return result
}

type memoryBallots struct{ s *MemoryStore }

func (r memoryBallots) RecordVote(_ context.Context, identityID, candidateID string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	identity, ok := s.identities[identityID]
	if !ok || identity.Role != domain.RoleVoter || identity.HasVoted {
		return ErrVoteConflict
	}
	candidate, ok := s.candidates[candidateID]
	if !ok {
		return ErrVoteConflict
	}

	now := s.now()
	candidate.Votes = append(candidate.Votes, domain.VoteRecord{IdentityID: identityID, VotedAt: now})
	candidate.VoteCount = len(candidate.Votes)
	candidate.UpdatedAt = now
	identity.HasVoted = true
	identity.UpdatedAt = now
	return nil
}
