package domain

import "time"

// Token describes an issued access token. Tokens are never persisted.
type Token struct {
	Value     string
	SubjectID string
	ExpiresAt time.Time
}
