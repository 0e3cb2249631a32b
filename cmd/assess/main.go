// Command assess runs the assessment pipeline offline on JSON files:
// normalizing a raw submission, validating a response record, and assembling
// reports in batch.
//
// Usage:
//
//	assess transform submission.json --profile cp-123 > responses.json
//	assess validate responses.json
//	assess report insights.json --html > report.html
//	assess report --from-responses --company Acme responses/*.json --out reports/
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// cli holds flags shared by every subcommand.
type cli struct {
	verbose bool
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "assess",
		Short:         "Business health assessment pipeline",
		Long:          `Normalizes survey submissions, validates response records and assembles assessment reports from JSON files.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if c.verbose {
				level = slog.LevelDebug
			}
			// Logs go to stderr so stdout stays clean for JSON/HTML output.
			c.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		newTransformCmd(c),
		newValidateCmd(c),
		newReportCmd(c),
	)
	return root
}

// writeJSON pretty-prints v to w.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
