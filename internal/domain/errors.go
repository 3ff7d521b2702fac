package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRunNotFound       = errors.New("run not found")
	ErrResultNotReady    = errors.New("result not ready")
	ErrRunFailed         = errors.New("run failed")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnknownCheckList  = errors.New("unknown check list")
	ErrInvalidPageParams = errors.New("invalid page parameters")
)

// MissingColumnError is a structural input failure: a required column is
// absent, so the whole run is rejected instead of proceeding with partial
// data.
type MissingColumnError struct {
	Input  string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: missing required column %q", e.Input, e.Column)
}
