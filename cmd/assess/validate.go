package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nyashahama/business-health-backend/internal/questionnaire"
)

var errInvalidResponses = errors.New("response record is invalid")

func newValidateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <responses.json>",
		Short: "Check a response record for structural defects",
		Long:  `Prints {valid, errors} and exits non-zero when any defect is found.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read responses: %w", err)
			}
			var resp questionnaire.QuestionnaireResponses
			if err := json.Unmarshal(raw, &resp); err != nil {
				return fmt.Errorf("decode responses: %w", err)
			}

			result := questionnaire.Validate(resp)
			if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if !result.Valid {
				c.logger.Debug("validate: defects found", "count", len(result.Errors))
				return errInvalidResponses
			}
			return nil
		},
	}
}
