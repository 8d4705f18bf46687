package cmd

import (
	"errors"
	"testing"

	"catalog-sync/core/remote"
	"catalog-sync/feature/catalog"
	"catalog-sync/feature/syncer"
	"catalog-sync/feature/validate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncExitCode(t *testing.T) {
	clean := &syncer.Result{Errors: []string{}}
	partial := &syncer.Result{Errors: []string{"addon_seats: No such currency: usd"}}
	global := &syncer.GlobalSyncError{Stage: "ping", Err: remote.NewError("ping", remote.KindTransport, "connection refused")}
	duplicate := &catalog.DuplicateLocalIDError{LocalID: "addon_seats", First: "a.json", Second: "b.json"}

	tests := []struct {
		name   string
		dryRun bool
		res    *syncer.Result
		err    error
		want   int
	}{
		{"clean run", false, clean, nil, 0},
		{"per-item errors", false, partial, nil, ExitItemErrors},
		{"global failure", false, nil, global, ExitFatal},
		{"global failure after items", false, partial, global, ExitFatal},
		{"configuration error", false, nil, duplicate, ExitFatal},
		{"dry run", true, clean, nil, 0},
		{"dry run with item errors", true, partial, nil, 0},
		{"dry run with global failure", true, nil, global, 0},
		{"dry run with configuration error", true, nil, duplicate, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, syncExitCode(tt.dryRun, tt.res, tt.err))
		})
	}
}

func TestValidateExitCode(t *testing.T) {
	assert.Equal(t, 0, validateExitCode(&validate.Report{IsValid: true}, nil))
	assert.Equal(t, ExitItemErrors, validateExitCode(&validate.Report{
		IsValid:      false,
		InvalidSyncs: []string{"plan_pro_monthly"},
	}, nil))
	assert.Equal(t, ExitFatal, validateExitCode(nil, errors.New("ping: invalid api key")))
}

func TestExitWith(t *testing.T) {
	assert.NoError(t, exitWith(0, nil))

	partial := &syncer.Result{Errors: []string{"a: boom", "b: boom"}}
	err := exitWith(syncExitCode(false, partial, nil), syncFailure(partial, nil))
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, ExitItemErrors, exitErr.Code)
	assert.EqualError(t, exitErr, "2 catalog entries failed to sync")

	global := &syncer.GlobalSyncError{Stage: "ping", Err: errors.New("down")}
	err = exitWith(syncExitCode(false, nil, global), syncFailure(nil, global))
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, ExitFatal, exitErr.Code)
	assert.True(t, syncer.IsGlobal(err))

	err = exitWith(validateExitCode(&validate.Report{}, nil), nil)
	require.ErrorAs(t, err, &exitErr)
	assert.Nil(t, exitErr.Err, "an invalid report has already been printed")
}
