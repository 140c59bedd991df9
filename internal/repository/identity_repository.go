package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/voting-service/internal/domain"
)

// IdentityRepository defines persistence access for voters and the admin.
type IdentityRepository interface {
	Create(ctx context.Context, identity *domain.Identity) error
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
	GetByID(ctx context.Context, id string) (*domain.Identity, error)
	GetByIdentityNumber(ctx context.Context, number string) (*domain.Identity, error)
	AdminExists(ctx context.Context) (bool, error)
	List(ctx context.Context) ([]domain.Identity, error)
}

type identityRepository struct {
	pool *pgxpool.Pool
}

// NewIdentityRepository returns a Postgres-backed implementation.
func NewIdentityRepository(pool *pgxpool.Pool) IdentityRepository {
	return &identityRepository{pool: pool}
}

const identityColumns = `id, identity_number, name, age, email, mobile, address, password_hash, role, has_voted, created_at, updated_at`

func (r *identityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	const query = `
        INSERT INTO identities (identity_number, name, age, email, mobile, address, password_hash, role, has_voted)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE)
        RETURNING id, has_voted, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		identity.IdentityNumber,
		identity.Name,
		identity.Age,
		identity.Email,
		identity.Mobile,
		identity.Address,
		identity.PasswordHash,
		identity.Role,
	).Scan(&identity.ID, &identity.HasVoted, &identity.CreatedAt, &identity.UpdatedAt)
	if code, constraint := pgErrorCode(err); code == pgUniqueViolation {
		if constraint == singleAdminConstraint {
			return ErrAdminExists
		}
		return ErrDuplicateIdentity
	}
	return err
}

func (r *identityRepository) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	const query = `
        UPDATE identities SET password_hash=$1, updated_at=NOW()
        WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, passwordHash, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *identityRepository) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE id=$1`
	identity, err := scanIdentity(r.pool.QueryRow(ctx, query, id))
	if code, _ := pgErrorCode(err); code == pgInvalidTextRepr {
		return nil, pgx.ErrNoRows
	}
	return identity, err
}

func (r *identityRepository) GetByIdentityNumber(ctx context.Context, number string) (*domain.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE identity_number=$1`
	return scanIdentity(r.pool.QueryRow(ctx, query, number))
}

func (r *identityRepository) AdminExists(ctx context.Context) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM identities WHERE role='admin')`

	var exists bool
	if err := r.pool.QueryRow(ctx, query).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *identityRepository) List(ctx context.Context) ([]domain.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Identity
	for rows.Next() {
		identity, err := scanIdentity(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *identity)
	}
	return result, rows.Err()
}

func scanIdentity(row pgx.Row) (*domain.Identity, error) {
	var identity domain.Identity
	if err := row.Scan(
		&identity.ID,
		&identity.IdentityNumber,
		&identity.Name,
		&identity.Age,
		&identity.Email,
		&identity.Mobile,
		&identity.Address,
		&identity.PasswordHash,
		&identity.Role,
		&identity.HasVoted,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &identity, nil
}
