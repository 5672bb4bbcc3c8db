package repositories

import "errors"

// ErrNotFound is returned when a referenced id has no backing document.
var ErrNotFound = errors.New("document not found")

// ErrDuplicate is returned on unique-constraint violations.
var ErrDuplicate = errors.New("duplicate document")
