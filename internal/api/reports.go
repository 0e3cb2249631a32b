package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/nyashahama/business-health-backend/internal/questionnaire"
	"github.com/nyashahama/business-health-backend/internal/report"
)

// ─── POST /api/reports ────────────────────────────────────────────────────────

// handleCreateReport assembles a report from caller-supplied category
// insights.
func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	var in report.ReportInput
	if !decode(w, r, &in) {
		return
	}
	s.assembleReport(w, r, in)
}

// ─── POST /api/reports/from-responses ─────────────────────────────────────────

type reportFromResponsesRequest struct {
	CompanyName string                               `json:"company_name"`
	Industry    string                               `json:"industry"`
	Responses   questionnaire.QuestionnaireResponses `json:"responses"`
}

// reportValidationError is returned when the embedded response record fails
// structural validation.
type reportValidationError struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors"`
}

// handleCreateReportFromResponses derives insights from a response record
// built by POST /api/responses and assembles the report from them.
func (s *Server) handleCreateReportFromResponses(w http.ResponseWriter, r *http.Request) {
	var req reportFromResponsesRequest
	if !decode(w, r, &req) {
		return
	}

	if v := questionnaire.Validate(req.Responses); !v.Valid {
		respond(w, http.StatusBadRequest, reportValidationError{
			Error:  "invalid responses",
			Errors: v.Errors,
		})
		return
	}

	s.assembleReport(w, r, report.InsightsFromResponses(req.Responses, req.CompanyName, req.Industry))
}

// assembleReport runs the assembler under the configured narrative deadline.
// A narrative timeout degrades to the fallback text, never to an error.
func (s *Server) assembleReport(w http.ResponseWriter, r *http.Request, in report.ReportInput) {
	ctx := r.Context()
	if s.cfg.NarrativeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.NarrativeTimeout)
		defer cancel()
	}

	rep, err := s.reports.Assemble(ctx, in)
	if errors.Is(err, report.ErrNoCategories) {
		respondErr(w, http.StatusBadRequest, "at least one category is required")
		return
	}
	if err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("assemble report: %w", err))
		return
	}

	s.logger.Info("report assembled",
		logField(r),
		"title", rep.Title,
		"page_count", rep.PageCount,
		"narrative_fallback", rep.Usage == nil,
	)

	respond(w, http.StatusCreated, rep)
}
