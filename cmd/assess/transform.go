package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nyashahama/business-health-backend/internal/questionnaire"
)

func newTransformCmd(c *cli) *cobra.Command {
	var profileID string

	cmd := &cobra.Command{
		Use:   "transform <submission.json>",
		Short: "Normalize a raw submission into a scored response record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read submission: %w", err)
			}
			sub, err := questionnaire.ParseSubmission(raw)
			if err != nil {
				return fmt.Errorf("parse submission: %w", err)
			}

			resp, err := questionnaire.Build(cmd.Context(), sub, profileID)
			if errors.Is(err, questionnaire.ErrMissingProfile) {
				return fmt.Errorf("%w (use --profile)", err)
			}
			if err != nil {
				return fmt.Errorf("build responses: %w", err)
			}

			c.logger.Debug("transform: built responses",
				"response_id", resp.Metadata.ResponseID,
				"status", resp.Metadata.CompletionStatus,
				"overall_avg", resp.OverallMetrics.OverallAvgScaleScore,
			)
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVar(&profileID, "profile", "", "Company profile id to stamp on the record (required)")
	return cmd
}
