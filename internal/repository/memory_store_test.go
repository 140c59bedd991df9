package repository

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/voting-service/internal/domain"
)

func newIdentity(number string, role domain.Role) *domain.Identity {
	return &domain.Identity{
		IdentityNumber: number,
		Name:           "Test " + number,
		Age:            30,
		Address:        "Somewhere",
		PasswordHash:   "hash",
		Role:           role,
	}
}

func TestMemoryIdentities(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Identities()

	voter := newIdentity("111111111111", domain.RoleVoter)
	if err := repo.Create(ctx, voter); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if voter.ID == "" {
		t.Fatal("expected ID to be assigned")
	}

	if err := repo.Create(ctx, newIdentity("111111111111", domain.RoleVoter)); !errors.Is(err, ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
	}

	if err := repo.Create(ctx, newIdentity("222222222222", domain.RoleAdmin)); err != nil {
		t.Fatalf("Create admin: %v", err)
	}
	if err := repo.Create(ctx, newIdentity("333333333333", domain.RoleAdmin)); !errors.Is(err, ErrAdminExists) {
		t.Fatalf("expected ErrAdminExists, got %v", err)
	}

	exists, err := repo.AdminExists(ctx)
	if err != nil || !exists {
		t.Fatalf("AdminExists = %v, %v", exists, err)
	}

	got, err := repo.GetByIdentityNumber(ctx, "111111111111")
	if err != nil {
		t.Fatalf("GetByIdentityNumber: %v", err)
	}
	if got.ID != voter.ID {
		t.Fatalf("id = %q, want %q", got.ID, voter.ID)
	}

	if err := repo.UpdatePasswordHash(ctx, voter.ID, "new-hash"); err != nil {
		t.Fatalf("UpdatePasswordHash: %v", err)
	}
	got, _ = repo.GetByID(ctx, voter.ID)
	if got.PasswordHash != "new-hash" {
		t.Fatalf("hash = %q", got.PasswordHash)
	}

	if err := repo.UpdatePasswordHash(ctx, "missing", "x"); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}
	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("len = %d, want 2", len(all))
	}
}

func TestMemoryGetReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	voter := newIdentity("111111111111", domain.RoleVoter)
	_ = store.Identities().Create(ctx, voter)

	got, _ := store.Identities().GetByID(ctx, voter.ID)
	got.HasVoted = true

	again, _ := store.Identities().GetByID(ctx, voter.ID)
	if again.HasVoted {
		t.Fatal("mutating a returned identity must not change the store")
	}
}

func TestMemoryCandidates(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Candidates()

	a := &domain.Candidate{Name: "A", Party: "Alpha", Age: 40}
	b := &domain.Candidate{Name: "B", Party: "Beta", Age: 41}
	for _, c := range []*domain.Candidate{a, b} {
		if err := repo.Create(ctx, c); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	a.Party = "Alpha Prime"
	if err := repo.Update(ctx, a); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := repo.GetByID(ctx, a.ID)
	if got.Party != "Alpha Prime" {
		t.Fatalf("party = %q", got.Party)
	}

	if err := repo.Update(ctx, &domain.Candidate{ID: "missing"}); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}
	if err := repo.Delete(ctx, "missing"); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}

	if err := repo.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	list, _ := repo.List(ctx)
	if len(list) != 1 || list[0].ID != b.ID {
		t.Fatalf("unexpected list after delete: %+v", list)
	}
}

func TestMemoryRecordVote(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	voter := newIdentity("111111111111", domain.RoleVoter)
	admin := newIdentity("222222222222", domain.RoleAdmin)
	_ = store.Identities().Create(ctx, voter)
	_ = store.Identities().Create(ctx, admin)
	candidate := &domain.Candidate{Name: "X", Party: "Xeno", Age: 50}
	_ = store.Candidates().Create(ctx, candidate)

	if err := store.Ballots().RecordVote(ctx, admin.ID, candidate.ID); !errors.Is(err, ErrVoteConflict) {
		t.Fatalf("admin vote: expected ErrVoteConflict, got %v", err)
	}
	if err := store.Ballots().RecordVote(ctx, voter.ID, "missing"); !errors.Is(err, ErrVoteConflict) {
		t.Fatalf("missing candidate: expected ErrVoteConflict, got %v", err)
	}
	got, _ := store.Identities().GetByID(ctx, voter.ID)
	if got.HasVoted {
		t.Fatal("failed vote must not mark the voter")
	}

	if err := store.Ballots().RecordVote(ctx, voter.ID, candidate.ID); err != nil {
		t.Fatalf("RecordVote: %v", err)
	}
	if err := store.Ballots().RecordVote(ctx, voter.ID, candidate.ID); !errors.Is(err, ErrVoteConflict) {
		t.Fatalf("second vote: expected ErrVoteConflict, got %v", err)
	}

	c, _ := store.Candidates().GetByID(ctx, candidate.ID)
	if c.VoteCount != 1 || len(c.Votes) != 1 || c.Votes[0].IdentityID != voter.ID {
		t.Fatalf("unexpected candidate state: %+v", c)
	}
}

func TestMemoryRecordVoteConcurrent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	voter := newIdentity("111111111111", domain.RoleVoter)
	_ = store.Identities().Create(ctx, voter)
	candidate := &domain.Candidate{Name: "X", Party: "Xeno", Age: 50}
	_ = store.Candidates().Create(ctx, candidate)

	var successCount atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.Ballots().RecordVote(ctx, voter.ID, candidate.ID); err == nil {
				successCount.Add(1)
			}
		}()
	}
	wg.Wait()

	if successCount.Load() != 1 {
		t.Fatalf("successes = %d, want 1", successCount.Load())
	}
	c, _ := store.Candidates().GetByID(ctx, candidate.ID)
	if c.VoteCount != 1 {
		t.Fatalf("vote count = %d, want 1", c.VoteCount)
	}
}

func TestMemoryListByVoteCountKeepsInsertionOrderForTies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	parties := []string{"First", "Second", "Third"}
	ids := make([]string, len(parties))
	for i, party := range parties {
		c := &domain.Candidate{Name: party, Party: party, Age: 40}
		_ = store.Candidates().Create(ctx, c)
		ids[i] = c.ID
	}

	voter := newIdentity("111111111111", domain.RoleVoter)
	_ = store.Identities().Create(ctx, voter)
	if err := store.Ballots().RecordVote(ctx, voter.ID, ids[2]); err != nil {
		t.Fatalf("RecordVote: %v", err)
	}

	list, _ := store.Candidates().ListByVoteCount(ctx)
	got := []string{list[0].Party, list[1].Party, list[2].Party}
	want := []string{"Third", "First", "Second"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}
