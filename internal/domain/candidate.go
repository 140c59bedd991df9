package domain

import "time"

// VoteRecord links a voter to the candidate they voted for.
type VoteRecord struct {
	IdentityID string
	VotedAt    time.Time
}

// Candidate is an entity that can receive votes. VoteCount always equals len(Votes).
type Candidate struct {
	ID        string
	Name      string
	Party     string
	Age       int
	Votes     []VoteRecord
	VoteCount int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CandidateInput carries admin supplied candidate fields.
type CandidateInput struct {
	Name  string
	Party string
	Age   int
}

// TallyEntry is the public projection of a candidate's vote count.
type TallyEntry struct {
	Party string
	Count int
}
