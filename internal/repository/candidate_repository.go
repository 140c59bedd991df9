package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/voting-service/internal/domain"
)

// CandidateRepository handles persistence for candidates and their vote records.
type CandidateRepository interface {
	Create(ctx context.Context, candidate *domain.Candidate) error
	Update(ctx context.Context, candidate *domain.Candidate) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Candidate, error)
	// List returns candidates in insertion order without their vote records.
	List(ctx context.Context) ([]domain.Candidate, error)
	// ListByVoteCount orders by vote count descending, ties by insertion order.
	ListByVoteCount(ctx context.Context) ([]domain.Candidate, error)
}

type candidateRepository struct {
	pool *pgxpool.Pool
}

// NewCandidateRepository instantiates the repository.
func NewCandidateRepository(pool *pgxpool.Pool) CandidateRepository {
	return &candidateRepository{pool: pool}
}

const candidateColumns = `id, name, party, age, vote_count, created_at, updated_at`

func (r *candidateRepository) Create(ctx context.Context, candidate *domain.Candidate) error {
	const query = `
        INSERT INTO candidates (name, party, age)
        VALUES ($1, $2, $3)
        RETURNING id, vote_count, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		candidate.Name,
		candidate.Party,
		candidate.Age,
	).Scan(&candidate.ID, &candidate.VoteCount, &candidate.CreatedAt, &candidate.UpdatedAt)
}

// Update changes the descriptive fields only; vote data is written by BallotRepository.
func (r *candidateRepository) Update(ctx context.Context, candidate *domain.Candidate) error {
	const query = `
        UPDATE candidates SET name=$1, party=$2, age=$3, updated_at=NOW()
        WHERE id=$4
        RETURNING vote_count, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		candidate.Name,
		candidate.Party,
		candidate.Age,
		candidate.ID,
	).Scan(&candidate.VoteCount, &candidate.CreatedAt, &candidate.UpdatedAt)
}

func (r *candidateRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM candidates WHERE id=$1`

	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *candidateRepository) GetByID(ctx context.Context, id string) (*domain.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE id=$1`

	candidate, err := scanCandidate(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	const votesQuery = `
        SELECT identity_id, voted_at FROM vote_records
        WHERE candidate_id=$1 ORDER BY seq`

	rows, err := r.pool.Query(ctx, votesQuery, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var vote domain.VoteRecord
		if err := rows.Scan(&vote.IdentityID, &vote.VotedAt); err != nil {
			return nil, err
		}
		candidate.Votes = append(candidate.Votes, vote)
	}
	return candidate, rows.Err()
}

func (r *candidateRepository) List(ctx context.Context) ([]domain.Candidate, error) {
	return r.list(ctx, `SELECT `+candidateColumns+` FROM candidates ORDER BY seq`)
}

func (r *candidateRepository) ListByVoteCount(ctx context.Context) ([]domain.Candidate, error) {
	return r.list(ctx, `SELECT `+candidateColumns+` FROM candidates ORDER BY vote_count DESC, seq ASC`)
}

func (r *candidateRepository) list(ctx context.Context, query string) ([]domain.Candidate, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Candidate
	for rows.Next() {
		candidate, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *candidate)
	}
	return result, rows.Err()
}

func scanCandidate(row pgx.Row) (*domain.Candidate, error) {
	var candidate domain.Candidate
	if err := row.Scan(
		&candidate.ID,
		&candidate.Name,
		&candidate.Party,
		&candidate.Age,
		&candidate.VoteCount,
		&candidate.CreatedAt,
		&candidate.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &candidate, nil
}
