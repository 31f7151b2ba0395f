package wordpress

import "errors"

// Resource errors.
var (
	ErrNotFound         = errors.New("resource not found")
	ErrPermissionDenied = errors.New("permission denied")
)

// Author resolution errors.
var (
	ErrAmbiguousAuthor = errors.New("multiple authors match")
)

// Taxonomy errors.
var (
	ErrUnknownTerm = errors.New("unknown taxonomy term")
)
