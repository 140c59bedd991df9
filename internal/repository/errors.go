package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrDuplicateIdentity is returned when the identity number is already registered.
	ErrDuplicateIdentity = errors.New("identity number already registered")
	// ErrAdminExists is returned when a second admin identity would be created.
	ErrAdminExists = errors.New("admin identity already exists")
	// ErrVoteConflict is returned when the atomic vote write could not be applied.
	ErrVoteConflict = errors.New("vote conflicts with concurrent update")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidTextRepr     = "22P02"

	identityNumberConstraint = "identities_identity_number_key"
	singleAdminConstraint    = "identities_single_admin_idx"
)

func pgErrorCode(err error) (string, string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}
