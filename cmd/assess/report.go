package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/nyashahama/business-health-backend/internal/ai"
	"github.com/nyashahama/business-health-backend/internal/config"
	"github.com/nyashahama/business-health-backend/internal/report"
	"github.com/nyashahama/business-health-backend/internal/scoring"
	"github.com/nyashahama/business-health-backend/internal/worker"
)

type reportFlags struct {
	html          bool
	outDir        string
	fromResponses bool
	company       string
	industry      string
	workers       int
	retries       int
	noAI          bool
	scoringPath   string
}

func newReportCmd(c *cli) *cobra.Command {
	var f reportFlags

	cmd := &cobra.Command{
		Use:   "report <input.json>...",
		Short: "Assemble assessment reports",
		Long: `Assembles one report per input file. Inputs are category insight documents,
or response records with --from-responses. With a single input and no --out
the report is written to stdout; otherwise each report is written to --out.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, c, f, args)
		},
	}

	fl := cmd.Flags()
	fl.BoolVar(&f.html, "html", false, "Write only the HTML document")
	fl.StringVarP(&f.outDir, "out", "o", "", "Output directory (required for more than one input)")
	fl.BoolVar(&f.fromResponses, "from-responses", false, "Inputs are response records; derive insights from them")
	fl.StringVar(&f.company, "company", "", "Company name (with --from-responses)")
	fl.StringVar(&f.industry, "industry", "", "Industry (with --from-responses)")
	fl.IntVar(&f.workers, "workers", worker.DefaultRunnerConfig().Workers, "Concurrent reports in batch mode")
	fl.IntVar(&f.retries, "retries", worker.DefaultRunnerConfig().MaxRetries, "Attempts per input in batch mode")
	fl.BoolVar(&f.noAI, "no-ai", false, "Skip narrative providers and always use the fallback summary")
	fl.StringVar(&f.scoringPath, "scoring-config", "", "YAML scoring overrides (defaults to SCORING_CONFIG)")
	return cmd
}

func runReport(cmd *cobra.Command, c *cli, f reportFlags, args []string) error {
	if f.outDir == "" && len(args) > 1 {
		return errors.New("--out is required with more than one input")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	sc := cfg.Scoring
	if f.scoringPath != "" {
		if sc, err = scoring.LoadConfig(f.scoringPath); err != nil {
			return err
		}
	}

	var narrator ai.Narrator
	if !f.noAI {
		narrator, err = ai.NewNarratorChain(cmd.Context(), ai.ProviderConfig{
			AnthropicAPIKey: cfg.AnthropicAPIKey,
			AnthropicModel:  cfg.AnthropicModel,
			DeepSeekAPIKey:  cfg.DeepSeekAPIKey,
			DeepSeekModel:   cfg.DeepSeekModel,
			GeminiAPIKey:    cfg.GeminiAPIKey,
			GeminiModel:     cfg.GeminiModel,
		}, c.logger)
		if err != nil {
			return fmt.Errorf("ai: %w", err)
		}
	}

	assembler := report.NewAssembler(sc, narrator, c.logger, report.WithQuickWinLimit(cfg.QuickWinLimit))

	decode := worker.DecodeInsights
	if f.fromResponses {
		decode = worker.DecodeResponses(f.company, f.industry)
	}
	job := worker.NewReportJob(assembler, decode, f.outDir, f.html, c.logger)

	// ── Single report to stdout ───────────────────────────────────────────────
	if f.outDir == "" {
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.NarrativeTimeout)
		defer cancel()

		out, err := job.Render(ctx, args[0])
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}

	// ── Batch ─────────────────────────────────────────────────────────────────
	if err := checkOutputNames(job, args); err != nil {
		return err
	}
	if err := os.MkdirAll(f.outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	runner := worker.NewRunner(job, worker.RunnerConfig{
		Workers:    f.workers,
		JobTimeout: cfg.NarrativeTimeout + 30*time.Second,
		MaxRetries: f.retries,
	}, c.logger)

	failed := 0
	for _, res := range runner.Run(cmd.Context(), args) {
		if res.Err != nil {
			failed++
			fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", res.Input, res.Err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok   %s -> %s\n", res.Input, filepath.Join(f.outDir, job.OutputName(res.Input)))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d reports failed", failed, len(args))
	}
	return nil
}

// checkOutputNames rejects a batch in which two inputs would write the same
// output file.
func checkOutputNames(job *worker.ReportJob, inputs []string) error {
	owner := make(map[string]string, len(inputs))
	for _, in := range inputs {
		name := job.OutputName(in)
		if prev, dup := owner[name]; dup {
			return fmt.Errorf("%s and %s both write %s", prev, in, name)
		}
		owner[name] = in
	}
	return nil
}
