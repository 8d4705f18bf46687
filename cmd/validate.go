package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"catalog-sync/feature/validate"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	validateSchema bool
	validateJSON   bool
)

// validateCmd checks the stored mappings without changing anything.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that every catalog entry is synced",
	Long: `Reports catalog entries without a mapping and mappings whose Stripe product
or price is missing, archived or out of date. Nothing is modified.

Exit codes: 0 if valid, 1 if not, 2 if validation could not run.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateSchema, "schema", false, "Also verify the mapping table columns")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Print the report as JSON")

	RootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	report, err := executeValidate(cmd)
	return exitWith(validateExitCode(report, err), err)
}

func executeValidate(cmd *cobra.Command) (*validate.Report, error) {
	d, err := setup(cmd.Context(), true)
	if err != nil {
		return nil, err
	}
	defer d.close()

	svc := validate.NewService(d.collector, d.store, d.client, d.store, d.logger)
	report, err := svc.Validate(cmd.Context(), validate.Options{Schema: validateSchema})
	if err != nil {
		return nil, err
	}

	if validateJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal report: %w", err)
		}
		fmt.Fprintln(os.Stdout, string(data))
	} else {
		for _, id := range report.InvalidSyncs {
			d.logger.Warn("Invalid mapping", zap.String("local_id", id), zap.String("reason", report.Reasons[id]))
		}
		d.logger.Info("Validation report",
			zap.Bool("is_valid", report.IsValid),
			zap.Strings("missing_syncs", report.MissingSyncs),
			zap.Strings("invalid_syncs", report.InvalidSyncs),
			zap.Strings("missing_columns", report.MissingColumns),
		)
	}
	return report, nil
}
