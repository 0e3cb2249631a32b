package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nyashahama/business-health-backend/internal/questionnaire"
	"github.com/nyashahama/business-health-backend/internal/report"
)

// Assembler is the subset of *report.Assembler a ReportJob needs.
type Assembler interface {
	Assemble(ctx context.Context, in report.ReportInput) (report.Report, error)
}

// Decoder turns one input document into report input.
type Decoder func(raw []byte) (report.ReportInput, error)

// DecodeInsights reads a ReportInput document. Unknown fields are rejected.
func DecodeInsights(raw []byte) (report.ReportInput, error) {
	var in report.ReportInput
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return report.ReportInput{}, fmt.Errorf("decode insights: %w", err)
	}
	return in, nil
}

// DecodeResponses returns a Decoder that reads a response record, rejects it
// when structurally invalid, and derives insights from it.
func DecodeResponses(companyName, industry string) Decoder {
	return func(raw []byte) (report.ReportInput, error) {
		var r questionnaire.QuestionnaireResponses
		if err := json.Unmarshal(raw, &r); err != nil {
			return report.ReportInput{}, fmt.Errorf("decode responses: %w", err)
		}
		if v := questionnaire.Validate(r); !v.Valid {
			return report.ReportInput{}, fmt.Errorf("invalid responses: %s", strings.Join(v.Errors, "; "))
		}
		return report.InsightsFromResponses(r, companyName, industry), nil
	}
}

// ReportJob assembles one report per input file and writes it next to the
// configured output directory.
type ReportJob struct {
	assembler Assembler
	decode    Decoder
	outDir    string
	html      bool
	logger    *slog.Logger
}

// NewReportJob constructs a ReportJob. With html set only the document is
// written (.html); otherwise the full report record (.report.json).
func NewReportJob(assembler Assembler, decode Decoder, outDir string, html bool, logger *slog.Logger) *ReportJob {
	return &ReportJob{
		assembler: assembler,
		decode:    decode,
		outDir:    outDir,
		html:      html,
		logger:    logger,
	}
}

// Run renders the report for path and writes it to the output directory.
func (j *ReportJob) Run(ctx context.Context, path string) error {
	out, err := j.Render(ctx, path)
	if err != nil {
		return err
	}

	dst := filepath.Join(j.outDir, j.OutputName(path))
	if err := os.WriteFile(dst, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	j.logger.Info("job: report written", "input", path, "output", dst, "bytes", len(out))
	return nil
}

// Render reads path and returns the rendered output without writing it.
func (j *ReportJob) Render(ctx context.Context, path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	in, err := j.decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	rep, err := j.assembler.Assemble(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("%s: assemble: %w", path, err)
	}

	if j.html {
		return []byte(rep.HTML), nil
	}
	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%s: encode report: %w", path, err)
	}
	return append(out, '\n'), nil
}

// OutputName maps an input path to its output file name:
// "acme.json" → "acme.report.json" or "acme.html".
func (j *ReportJob) OutputName(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if j.html {
		return base + ".html"
	}
	return base + ".report.json"
}
