package syncer

import (
	"errors"
	"fmt"
)

// ErrRunInProgress is returned when a run is requested while another one is active.
var ErrRunInProgress = errors.New("a sync run is already in progress")

// GlobalSyncError aborts a whole run, e.g. when the provider cannot be reached.
type GlobalSyncError struct {
	// Stage is where the run stopped, e.g. "ping" or "plan_pro_monthly".
	Stage string
	Err   error
}

func (e *GlobalSyncError) Error() string {
	return fmt.Sprintf("sync aborted at %s: %v", e.Stage, e.Err)
}

func (e *GlobalSyncError) Unwrap() error {
	return e.Err
}

// IsGlobal reports whether err aborted a run.
func IsGlobal(err error) bool {
	var ge *GlobalSyncError
	return errors.As(err, &ge)
}
