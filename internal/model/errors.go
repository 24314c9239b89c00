package model

import (
	"errors"
	"fmt"
)

// Error classes. Handlers map them to HTTP statuses with errors.Is.
var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("already exists")
	ErrInvalid        = errors.New("invalid")
	ErrMalformedInput = errors.New("malformed input")
)

var (
	ErrFilmNotFound     = fmt.Errorf("film %w", ErrNotFound)
	ErrFilmExists       = fmt.Errorf("film %w", ErrConflict)
	ErrDirectorNotFound = fmt.Errorf("director %w", ErrNotFound)
	ErrDirectorExists   = fmt.Errorf("director %w", ErrConflict)

	ErrInvalidTitle    = fmt.Errorf("%w: title must be non-blank and at most 128 characters", ErrInvalid)
	ErrInvalidName     = fmt.Errorf("%w: name must be non-blank and at most 128 characters", ErrInvalid)
	ErrMissingDirector = fmt.Errorf("%w: director name is required", ErrInvalid)
	ErrUnknownDirector = fmt.Errorf("%w: unknown director", ErrInvalid)
)
