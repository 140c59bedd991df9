package dto

import (
	"time"

	"github.com/spec-kit/voting-service/internal/domain"
)

// CandidateRequest payload for creating or updating a candidate.
type CandidateRequest struct {
	Name  string `json:"name"`
	Party string `json:"party"`
	Age   int    `json:"age"`
}

// CandidateResponse is the public view of a candidate.
type CandidateResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Party     string    `json:"party"`
	Age       int       `json:"age"`
	VoteCount int       `json:"voteCount"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TallyResponse is one row of the vote count.
type TallyResponse struct {
	Party string `json:"party"`
	Count int    `json:"count"`
}

// Input converts the request to the domain input.
func (r CandidateRequest) Input() domain.CandidateInput {
	return domain.CandidateInput{Name: r.Name, Party: r.Party, Age: r.Age}
}

// NewCandidateResponse converts a domain candidate.
func NewCandidateResponse(candidate *domain.Candidate) CandidateResponse {
	return CandidateResponse{
		ID:        candidate.ID,
		Name:      candidate.Name,
		Party:     candidate.Party,
		Age:       candidate.Age,
		VoteCount: candidate.VoteCount,
		CreatedAt: candidate.CreatedAt,
		UpdatedAt: candidate.UpdatedAt,
	}
}
