package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/voting-service/internal/api/dto"
	"github.com/spec-kit/voting-service/internal/auth"
	"github.com/spec-kit/voting-service/internal/service"
)

// CandidatesHandler exposes candidate administration and voting endpoints.
type CandidatesHandler struct {
	candidates *service.CandidateService
	voting     *service.VotingService
}

// NewCandidatesHandler constructs handler.
func NewCandidatesHandler(candidates *service.CandidateService, voting *service.VotingService) *CandidatesHandler {
	return &CandidatesHandler{candidates: candidates, voting: voting}
}

// Create handles POST /candidate/.
func (h *CandidatesHandler) Create(c *fiber.Ctx) error {
	subjectID, ok := auth.SubjectFromContext(c)
	if !ok {
		return auth.ErrMissingToken
	}

	var req dto.CandidateRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidPayload
	}
	candidate, err := h.candidates.Create(c.UserContext(), subjectID, req.Input())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCandidateResponse(candidate)})
}

// Update handles PUT /candidate/:id.
func (h *CandidatesHandler) Update(c *fiber.Ctx) error {
	subjectID, ok := auth.SubjectFromContext(c)
	if !ok {
		return auth.ErrMissingToken
	}

	var req dto.CandidateRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidPayload
	}
	candidate, err := h.candidates.Update(c.UserContext(), subjectID, c.Params("id"), req.Input())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCandidateResponse(candidate)})
}

// Delete handles DELETE /candidate/:id.
func (h *CandidatesHandler) Delete(c *fiber.Ctx) error {
	subjectID, ok := auth.SubjectFromContext(c)
	if !ok {
		return auth.ErrMissingToken
	}

	if err := h.candidates.Delete(c.UserContext(), subjectID, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "candidate deleted"})
}

// List handles GET /candidate/candidates-list.
func (h *CandidatesHandler) List(c *fiber.Ctx) error {
	candidates, err := h.candidates.List(c.UserContext())
	if err != nil {
		return err
	}

	items := make([]dto.CandidateResponse, 0, len(candidates))
	for i := range candidates {
		items = append(items, dto.NewCandidateResponse(&candidates[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Vote handles POST /candidate/vote/:id.
func (h *CandidatesHandler) Vote(c *fiber.Ctx) error {
	subjectID, ok := auth.SubjectFromContext(c)
	if !ok {
		return auth.ErrMissingToken
	}

	if err := h.voting.CastVote(c.UserContext(), subjectID, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "vote recorded successfully"})
}

// Count handles GET /candidate/vote/count.
func (h *CandidatesHandler) Count(c *fiber.Ctx) error {
	entries, err := h.voting.Tally(c.UserContext())
	if err != nil {
		return err
	}

	items := make([]dto.TallyResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.TallyResponse{Party: entry.Party, Count: entry.Count})
	}
	return c.JSON(items)
}
