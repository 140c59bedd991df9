package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/voting-service/internal/cache"
	"github.com/spec-kit/voting-service/internal/domain"
	"github.com/spec-kit/voting-service/internal/events"
	"github.com/spec-kit/voting-service/internal/repository"
)

func TestCastVoteExactlyOnce(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	admin := env.register(t, "999999999999", domain.RoleAdmin)
	voter := env.register(t, "111111111111", domain.RoleVoter)
	x := env.addCandidate(t, admin.ID, "Xeno")
	y := env.addCandidate(t, admin.ID, "Yarrow")

	if err := env.voting.CastVote(ctx, voter.ID, x.ID); err != nil {
		t.Fatalf("CastVote: %v", err)
	}

	for _, target := range []string{x.ID, y.ID} {
		if err := env.voting.CastVote(ctx, voter.ID, target); !errors.Is(err, ErrAlreadyVoted) {
			t.Fatalf("second vote: expected ErrAlreadyVoted, got %v", err)
		}
	}

	gotX, _ := env.store.Candidates().GetByID(ctx, x.ID)
	gotY, _ := env.store.Candidates().GetByID(ctx, y.ID)
	if gotX.VoteCount != 1 || len(gotX.Votes) != 1 || gotX.Votes[0].IdentityID != voter.ID {
		t.Fatalf("candidate X = %+v", gotX)
	}
	if gotY.VoteCount != 0 {
		t.Fatalf("candidate Y count = %d", gotY.VoteCount)
	}
	stored, _ := env.store.Identities().GetByID(ctx, voter.ID)
	if !stored.HasVoted {
		t.Fatal("voter not marked as voted")
	}
}

func TestCastVoteRejections(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	admin := env.register(t, "999999999999", domain.RoleAdmin)
	voter := env.register(t, "111111111111", domain.RoleVoter)
	x := env.addCandidate(t, admin.ID, "Xeno")

	cases := []struct {
		name        string
		subject     string
		candidateID string
		want        error
	}{
		{"malformed candidate id", voter.ID, "not-a-uuid", ErrCandidateNotFound},
		{"unknown candidate", voter.ID, uuid.NewString(), ErrCandidateNotFound},
		{"unknown identity", uuid.NewString(), x.ID, ErrIdentityNotFound},
		{"admin", admin.ID, x.ID, ErrAdminCannotVote},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := env.voting.CastVote(ctx, tc.subject, tc.candidateID); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	gotX, _ := env.store.Candidates().GetByID(ctx, x.ID)
	if gotX.VoteCount != 0 || len(gotX.Votes) != 0 {
		t.Fatalf("rejected votes mutated candidate: %+v", gotX)
	}
	storedAdmin, _ := env.store.Identities().GetByID(ctx, admin.ID)
	if storedAdmin.HasVoted {
		t.Fatal("admin marked as voted")
	}
}

func TestCastVoteConcurrentSameVoter(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	admin := env.register(t, "999999999999", domain.RoleAdmin)
	voter := env.register(t, "111111111111", domain.RoleVoter)
	x := env.addCandidate(t, admin.ID, "Xeno")

	var successCount atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := env.voting.CastVote(ctx, voter.ID, x.ID)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, ErrAlreadyVoted), errors.Is(err, ErrConcurrentConflict):
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successCount.Load() != 1 {
		t.Fatalf("successful votes = %d, want 1", successCount.Load())
	}
	gotX, _ := env.store.Candidates().GetByID(ctx, x.ID)
	if gotX.VoteCount != 1 {
		t.Fatalf("vote count = %d, want 1", gotX.VoteCount)
	}
}

func TestCastVoteConcurrentDistinctVoters(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	admin := env.register(t, "999999999999", domain.RoleAdmin)
	x := env.addCandidate(t, admin.ID, "Xeno")

	numbers := []string{"100000000001", "100000000002", "100000000003", "100000000004", "100000000005", "100000000006"}
	voters := make([]*domain.Identity, len(numbers))
	for i, number := range numbers {
		voters[i] = env.register(t, number, domain.RoleVoter)
	}

	var wg sync.WaitGroup
	for _, voter := range voters {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if err := env.voting.CastVote(ctx, id, x.ID); err != nil {
				t.Errorf("CastVote: %v", err)
			}
		}(voter.ID)
	}
	wg.Wait()

	gotX, _ := env.store.Candidates().GetByID(ctx, x.ID)
	if gotX.VoteCount != len(voters) || len(gotX.Votes) != len(voters) {
		t.Fatalf("count = %d, records = %d, want %d", gotX.VoteCount, len(gotX.Votes), len(voters))
	}
}

func TestTallyOrdering(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	admin := env.register(t, "999999999999", domain.RoleAdmin)
	env.addCandidate(t, admin.ID, "Alpha")
	b := env.addCandidate(t, admin.ID, "Beta")
	c := env.addCandidate(t, admin.ID, "Gamma")
	d := env.addCandidate(t, admin.ID, "Delta")

	votes := map[string]string{
		"100000000001": c.ID,
		"100000000002": c.ID,
		"100000000003": b.ID,
		"100000000004": d.ID,
	}
	for number, candidateID := range votes {
		voter := env.register(t, number, domain.RoleVoter)
		if err := env.voting.CastVote(ctx, voter.ID, candidateID); err != nil {
			t.Fatalf("CastVote: %v", err)
		}
	}

	tally, err := env.voting.Tally(ctx)
	if err != nil {
		t.Fatalf("Tally: %v", err)
	}
	want := []domain.TallyEntry{
		{Party: "Gamma", Count: 2},
		{Party: "Beta", Count: 1},
		{Party: "Delta", Count: 1},
		{Party: "Alpha", Count: 0},
	}
	if len(tally) != len(want) {
		t.Fatalf("tally = %+v", tally)
	}
	for i := range want {
		if tally[i] != want[i] {
			t.Fatalf("tally = %+v, want %+v", tally, want)
		}
	}
}

func TestTallyCacheInvalidatedByVote(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	env := newTestEnv(t, cache.NewTallyCache(client, time.Minute))
	for _, eventType := range []events.EventType{events.EventVoteCast, events.EventCandidateCreated} {
		env.dispatcher.Subscribe(eventType, env.voting.InvalidateTally)
	}

	admin := env.register(t, "999999999999", domain.RoleAdmin)
	x := env.addCandidate(t, admin.ID, "Xeno")
	voter := env.register(t, "111111111111", domain.RoleVoter)

	first, err := env.voting.Tally(ctx)
	if err != nil || len(first) != 1 || first[0].Count != 0 {
		t.Fatalf("first tally = %+v, %v", first, err)
	}
	if !mr.Exists("voting:tally") {
		t.Fatal("expected tally to be cached")
	}

	if err := env.voting.CastVote(ctx, voter.ID, x.ID); err != nil {
		t.Fatalf("CastVote: %v", err)
	}
	if mr.Exists("voting:tally") {
		t.Fatal("expected vote to invalidate cached tally")
	}

	second, err := env.voting.Tally(ctx)
	if err != nil || second[0].Count != 1 {
		t.Fatalf("second tally = %+v, %v", second, err)
	}
}

// voteDuringListing casts a vote after the tally rows are loaded and before
// they are returned.
type voteDuringListing struct {
	repository.CandidateRepository
	cast func()
}

func (r *voteDuringListing) ListByVoteCount(ctx context.Context) ([]domain.Candidate, error) {
	rows, err := r.CandidateRepository.ListByVoteCount(ctx)
	if r.cast != nil {
		cast := r.cast
		r.cast = nil
		cast()
	}
	return rows, err
}

func TestTallyNotCachedAcrossConcurrentVote(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	tally := cache.NewTallyCache(client, time.Minute)
	env := newTestEnv(t, tally)
	env.dispatcher.Subscribe(events.EventVoteCast, env.voting.InvalidateTally)

	admin := env.register(t, "999999999999", domain.RoleAdmin)
	x := env.addCandidate(t, admin.ID, "Xeno")
	voter := env.register(t, "111111111111", domain.RoleVoter)

	candidates := &voteDuringListing{CandidateRepository: env.store.Candidates()}
	candidates.cast = func() {
		if err := env.voting.CastVote(ctx, voter.ID, x.ID); err != nil {
			t.Errorf("CastVote: %v", err)
		}
	}
	reader := NewVotingService(VotingDependencies{
		IdentityRepo:  env.store.Identities(),
		CandidateRepo: candidates,
		BallotRepo:    env.store.Ballots(),
		TallyCache:    tally,
		Dispatcher:    env.dispatcher,
		Logger:        zap.NewNop(),
	})

	first, err := reader.Tally(ctx)
	if err != nil || len(first) != 1 || first[0].Count != 0 {
		t.Fatalf("first tally = %+v, %v", first, err)
	}
	if mr.Exists("voting:tally") {
		t.Fatal("tally read before the vote must not be cached")
	}

	second, err := reader.Tally(ctx)
	if err != nil || len(second) != 1 || second[0].Count != 1 {
		t.Fatalf("tally after committed vote = %+v, %v; want count 1", second, err)
	}
}

func TestTallyFallsBackWhenCacheUnavailable(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	env := newTestEnv(t, cache.NewTallyCache(client, time.Minute))
	admin := env.register(t, "999999999999", domain.RoleAdmin)
	env.addCandidate(t, admin.ID, "Xeno")

	tally, err := env.voting.Tally(ctx)
	if err != nil {
		t.Fatalf("Tally: %v", err)
	}
	if len(tally) != 1 || tally[0].Party != "Xeno" {
		t.Fatalf("tally = %+v", tally)
	}
}
