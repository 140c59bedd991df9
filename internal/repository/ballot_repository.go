package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BallotRepository records votes. RecordVote applies the voter's has-voted
// transition and the candidate's new vote record together or not at all.
type BallotRepository interface {
	RecordVote(ctx context.Context, identityID, candidateID string) error
}

type ballotRepository struct {
	pool *pgxpool.Pool
}

// NewBallotRepository returns a Postgres-backed implementation.
func NewBallotRepository(pool *pgxpool.Pool) BallotRepository {
	return &ballotRepository{pool: pool}
}

func (r *ballotRepository) RecordVote(ctx context.Context, identityID, candidateID string) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	const markVoted = `
        UPDATE identities SET has_voted=TRUE, updated_at=NOW()
        WHERE id=$1 AND role='voter' AND has_voted=FALSE`
	cmd, err := tx.Exec(ctx, markVoted, identityID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrVoteConflict
	}

	const bumpCount = `
        UPDATE candidates SET vote_count=vote_count+1, updated_at=NOW()
        WHERE id=$1`
	cmd, err = tx.Exec(ctx, bumpCount, candidateID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrVoteConflict
	}

	const insertVote = `
        INSERT INTO vote_records (candidate_id, identity_id)
        VALUES ($1, $2)`
	if _, err = tx.Exec(ctx, insertVote, candidateID, identityID); err != nil {
		if code, _ := pgErrorCode(err); code == pgUniqueViolation || code == pgForeignKeyViolation {
			return ErrVoteConflict
		}
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		if errors.Is(err, pgx.ErrTxCommitRollback) {
			return ErrVoteConflict
		}
		return err
	}
	return nil
}
