package cmd

import (
	"fmt"

	"catalog-sync/feature/syncer"
	"catalog-sync/feature/validate"
)

// syncExitCode maps a sync outcome to the process exit code. A dry run is
// report-only and always exits 0.
func syncExitCode(dryRun bool, res *syncer.Result, err error) int {
	switch {
	case dryRun:
		return 0
	case err != nil:
		return ExitFatal
	case res != nil && len(res.Errors) > 0:
		return ExitItemErrors
	}
	return 0
}

// validateExitCode maps a validation outcome to the process exit code.
func validateExitCode(report *validate.Report, err error) int {
	switch {
	case err != nil:
		return ExitFatal
	case report == nil || !report.IsValid:
		return ExitItemErrors
	}
	return 0
}

// exitWith wraps err into an ExitError for code. Code 0 yields nil.
func exitWith(code int, err error) error {
	if code == 0 {
		return nil
	}
	return &ExitError{Code: code, Err: err}
}

func syncFailure(res *syncer.Result, err error) error {
	if err != nil {
		return err
	}
	if res != nil && len(res.Errors) > 0 {
		return fmt.Errorf("%d catalog entries failed to sync", len(res.Errors))
	}
	return nil
}
