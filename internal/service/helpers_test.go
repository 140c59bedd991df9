package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/voting-service/internal/auth"
	"github.com/spec-kit/voting-service/internal/cache"
	"github.com/spec-kit/voting-service/internal/domain"
	"github.com/spec-kit/voting-service/internal/events"
	"github.com/spec-kit/voting-service/internal/repository"
)

type testEnv struct {
	store      *repository.MemoryStore
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher
	auth       *AuthService
	voting     *VotingService
	candidates *CandidateService
}

func newTestEnv(t *testing.T, tally *cache.TallyCache) *testEnv {
	t.Helper()

	store := repository.NewMemoryStore()
	tokens := auth.NewTokenManager(auth.TokenConfig{Secret: "test-secret", TTL: time.Hour})
	dispatcher := events.NewInMemoryDispatcher()

	authService := NewAuthService(AuthDependencies{
		IdentityRepo: store.Identities(),
		Hasher:       auth.NewBcryptHasher(bcrypt.MinCost),
		Tokens:       tokens,
		Dispatcher:   dispatcher,
	})
	votingService := NewVotingService(VotingDependencies{
		IdentityRepo:  store.Identities(),
		CandidateRepo: store.Candidates(),
		BallotRepo:    store.Ballots(),
		TallyCache:    tally,
		Dispatcher:    dispatcher,
		Logger:        zap.NewNop(),
	})
	candidateService := NewCandidateService(CandidateDependencies{
		CandidateRepo: store.Candidates(),
		Admins:        authService,
		Dispatcher:    dispatcher,
	})

	return &testEnv{
		store:      store,
		tokens:     tokens,
		dispatcher: dispatcher,
		auth:       authService,
		voting:     votingService,
		candidates: candidateService,
	}
}

func registerInput(number string, role domain.Role) RegisterInput {
	return RegisterInput{
		IdentityInput: domain.IdentityInput{
			IdentityNumber: number,
			Name:           "Citizen " + number,
			Age:            35,
			Address:        "12 Main Road",
			Role:           role,
		},
		Password: "pass-" + number,
	}
}

func (e *testEnv) register(t *testing.T, number string, role domain.Role) *domain.Identity {
	t.Helper()
	identity, _, err := e.auth.Register(context.Background(), registerInput(number, role))
	if err != nil {
		t.Fatalf("Register(%s): %v", number, err)
	}
	return identity
}

func (e *testEnv) addCandidate(t *testing.T, adminID, party string) *domain.Candidate {
	t.Helper()
	candidate, err := e.candidates.Create(context.Background(), adminID, domain.CandidateInput{
		Name:  party + " Leader",
		Party: party,
		Age:   45,
	})
	if err != nil {
		t.Fatalf("Create candidate %s: %v", party, err)
	}
	return candidate
}
