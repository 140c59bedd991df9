package service

import (
	"net/http"

	apperrors "github.com/spec-kit/voting-service/pkg/util/errorutil"
)

// Registration and login failures.
var (
	ErrAdminAlreadyExists    = apperrors.NewDomainError("ADMIN_ALREADY_EXISTS", "admin user already exists", http.StatusBadRequest, nil)
	ErrInvalidIdentityNumber = apperrors.NewDomainError("INVALID_IDENTITY_NUMBER", "identity number must be exactly 12 digits", http.StatusBadRequest, nil)
	ErrDuplicateIdentity     = apperrors.NewDomainError("DUPLICATE_IDENTITY", "user with the same identity number already exists", http.StatusBadRequest, nil)
	ErrMissingCredentials    = apperrors.NewDomainError("MISSING_CREDENTIALS", "identity number and password are required", http.StatusBadRequest, nil)
	ErrInvalidCredentials    = apperrors.NewDomainError("INVALID_CREDENTIALS", "invalid identity number or password", http.StatusUnauthorized, nil)
	ErrMissingFields         = apperrors.NewDomainError("MISSING_FIELDS", "both current and new password are required", http.StatusBadRequest, nil)
	ErrCredentialMismatch    = apperrors.NewDomainError("CREDENTIAL_MISMATCH", "password does not match", http.StatusUnauthorized, nil)
)

// Voting and candidate failures. Vote rejections use 404 to match the
// public API contract.
var (
	ErrCandidateNotFound  = apperrors.NewDomainError("CANDIDATE_NOT_FOUND", "candidate not found", http.StatusNotFound, nil)
	ErrIdentityNotFound   = apperrors.NewDomainError("IDENTITY_NOT_FOUND", "user not found", http.StatusNotFound, nil)
	ErrAdminCannotVote    = apperrors.NewDomainError("ADMIN_CANNOT_VOTE", "admin is not allowed to vote", http.StatusNotFound, nil)
	ErrAlreadyVoted       = apperrors.NewDomainError("ALREADY_VOTED", "user has given the vote already", http.StatusNotFound, nil)
	ErrConcurrentConflict = apperrors.NewDomainError("CONCURRENT_CONFLICT", "vote conflicted with a concurrent update", http.StatusConflict, nil)
)
