package idea

import "errors"

var (
	ErrNotFound        = errors.New("idea not found")
	ErrVersionConflict = errors.New("idea was modified concurrently; re-fetch and retry")
	ErrBadStatus       = errors.New("unknown idea status")
)
