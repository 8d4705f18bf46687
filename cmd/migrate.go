package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// migrateCmd creates or updates the mapping table.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the mapping table",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup(cmd.Context(), false)
		if err != nil {
			return fatal(err)
		}
		defer d.close()

		if err := d.store.Migrate(cmd.Context()); err != nil {
			return fatal(err)
		}

		missing, err := d.store.VerifySchema(cmd.Context())
		if err != nil {
			return fatal(err)
		}
		d.logger.Info("Mapping table ready", zap.String("driver", d.cfg.Database.Driver), zap.Strings("missing_columns", missing))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
