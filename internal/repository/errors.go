package repository

import "errors"

// ErrDuplicate is returned when an insert trips a unique constraint. The
// database constraint, not the caller's pre-check, is the authoritative guard.
var ErrDuplicate = errors.New("duplicate key")
