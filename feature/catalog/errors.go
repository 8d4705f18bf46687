package catalog

import (
	"errors"
	"fmt"
)

// ConfigurationError marks a catalog that cannot be synced as declared.
type ConfigurationError interface {
	error
	configuration()
}

// DuplicateLocalIDError is returned when two sources produce the same local id.
type DuplicateLocalIDError struct {
	LocalID string
	First   string
	Second  string
}

func (e *DuplicateLocalIDError) Error() string {
	return fmt.Sprintf("duplicate local_id %q declared in %s and %s", e.LocalID, e.First, e.Second)
}

func (e *DuplicateLocalIDError) configuration() {}

// InvalidDefinitionError is returned for a malformed catalog entry or document.
type InvalidDefinitionError struct {
	Origin string
	Entry  string
	Reason string
	Err    error
}

func (e *InvalidDefinitionError) Error() string {
	msg := e.Origin
	if e.Entry != "" {
		msg += ": " + e.Entry
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidDefinitionError) Unwrap() error {
	return e.Err
}

func (e *InvalidDefinitionError) configuration() {}

// IsConfigurationError reports whether err is, or wraps, a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce ConfigurationError
	return errors.As(err, &ce)
}
