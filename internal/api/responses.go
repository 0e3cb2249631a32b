package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/nyashahama/business-health-backend/internal/questionnaire"
)

// ─── POST /api/responses ──────────────────────────────────────────────────────

type createResponsesRequest struct {
	CompanyProfileID string                   `json:"company_profile_id"`
	Submission       questionnaire.Submission `json:"submission"`
}

// handleCreateResponses normalizes a raw submission into the scored response
// record. All twelve categories must be present; answers inside a category
// may be partial and are defaulted.
func (s *Server) handleCreateResponses(w http.ResponseWriter, r *http.Request) {
	var req createResponsesRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := questionnaire.Build(r.Context(), req.Submission, req.CompanyProfileID)
	switch {
	case errors.Is(err, questionnaire.ErrMissingProfile), errors.Is(err, questionnaire.ErrMissingCategory):
		respondErr(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.respondInternalErr(w, r, fmt.Errorf("build responses: %w", err))
		return
	}

	s.logger.Info("responses built",
		logField(r),
		"response_id", resp.Metadata.ResponseID,
		"company_profile_id", resp.Metadata.CompanyProfileID,
		"status", resp.Metadata.CompletionStatus,
		"overall_avg", resp.OverallMetrics.OverallAvgScaleScore,
	)

	respond(w, http.StatusCreated, resp)
}

// ─── POST /api/responses/validate ─────────────────────────────────────────────

// handleValidateResponses checks an assembled response record. Structural
// defects are reported in the body with a 200; only undecodable JSON is a 400.
func (s *Server) handleValidateResponses(w http.ResponseWriter, r *http.Request) {
	var resp questionnaire.QuestionnaireResponses
	if !decode(w, r, &resp) {
		return
	}

	respond(w, http.StatusOK, questionnaire.Validate(resp))
}
