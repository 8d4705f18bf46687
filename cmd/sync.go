package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"catalog-sync/feature/syncer"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	syncDryRun          bool
	syncForce           bool
	syncDeactivateStale bool
	syncJSON            bool
)

// syncCmd runs one reconciliation pass over the catalog.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the local catalog with Stripe",
	Long: `Creates missing products and prices, updates metadata and rotates changed
prices. Mappings are written only after the provider accepted the change.

Exit codes: 0 on success, 1 if some catalog entries failed, 2 if the run
could not be performed (invalid catalog, unreachable provider). A dry run
always exits 0.

Examples:
  # Preview the actions without changing anything
  catalog-sync sync --dry-run

  # Re-verify every mapped price against Stripe
  catalog-sync sync --force

  # Deactivate prices of entries removed from the catalog
  catalog-sync sync --deactivate-stale`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Report planned actions without mutating Stripe or the database")
	syncCmd.Flags().BoolVar(&syncForce, "force", false, "Re-verify mapped prices against live provider state")
	syncCmd.Flags().BoolVar(&syncDeactivateStale, "deactivate-stale", false, "Deactivate prices of mappings no longer in the catalog")
	syncCmd.Flags().BoolVar(&syncJSON, "json", false, "Print the full result as JSON")

	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	res, err := executeSync(cmd)
	if err != nil && syncDryRun {
		reportError(err)
	}
	return exitWith(syncExitCode(syncDryRun, res, err), syncFailure(res, err))
}

func executeSync(cmd *cobra.Command) (*syncer.Result, error) {
	d, err := setup(cmd.Context(), true)
	if err != nil {
		return nil, err
	}
	defer d.close()

	svc := syncer.NewService(d.collector, d.store, d.client, d.storage, d.cfg.Storage.Bucket, d.cfg.Sync, d.logger)
	res, runErr := svc.Run(cmd.Context(), syncer.Options{
		DryRun:          syncDryRun,
		Force:           syncForce,
		DeactivateStale: syncDeactivateStale,
	})

	if res != nil {
		if syncJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return res, fmt.Errorf("failed to encode result: %w", err)
			}
		} else {
			printSyncResult(d.logger, res)
		}
	}
	return res, runErr
}

// printSyncResult prints a run summary using the logger.
func printSyncResult(l *zap.Logger, res *syncer.Result) {
	if res.DryRun {
		for _, p := range res.SyncedProducts {
			if p.Error != "" {
				continue
			}
			l.Info("Planned action",
				zap.String("local_id", p.LocalID),
				zap.String("action", string(p.Action)),
				zap.String("product_id", p.RemoteProductID),
				zap.String("price_id", p.RemotePriceID),
				zap.Int64("price", p.Price),
			)
		}
	}

	for _, msg := range res.Errors {
		l.Error("Sync error", zap.String("error", msg))
	}
	if len(res.Stale) > 0 {
		l.Warn("Stale mappings", zap.Strings("local_ids", res.Stale), zap.Strings("deactivated", res.Deactivated))
	}

	s := res.Plan
	l.Info("Sync summary",
		zap.String("run_id", res.RunID),
		zap.Bool("dry_run", res.DryRun),
		zap.Int("total_items", s.TotalItems),
		zap.Int("create", s.Create),
		zap.Int("update_metadata", s.UpdateMetadata),
		zap.Int("rotate_price", s.RotatePrice),
		zap.Int("noop", s.Noop),
		zap.Int("adopted", s.Adopted),
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
		zap.Int("errors", len(res.Errors)),
	)
	if res.ReportObject != "" {
		l.Info("Report archived", zap.String("object", res.ReportObject))
	}
	if res.DryRun {
		l.Info("Dry-run mode: No changes were made.")
	}
}
