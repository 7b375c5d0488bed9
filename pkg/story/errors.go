package story

import (
	"errors"
	"fmt"
)

// ErrDuplicateNode is returned when two nodes share an ID.
var ErrDuplicateNode = errors.New("duplicate node id")

// AuthoringError reports story content that failed while it was being
// evaluated, such as a derived text function returning an error.
// It is fatal to the dialogue session that hit it.
type AuthoringError struct {
	NodeID string
	Field  string // e.g. "text", "speaker", "options[1].next", "on_end"
	Err    error
}

func (e *AuthoringError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("authoring error in node %q: %v", e.NodeID, e.Err)
	}
	return fmt.Sprintf("authoring error in node %q (%s): %v", e.NodeID, e.Field, e.Err)
}

func (e *AuthoringError) Unwrap() error {
	return e.Err
}

// IsAuthoringError reports whether err wraps an AuthoringError.
func IsAuthoringError(err error) bool {
	var ae *AuthoringError
	return errors.As(err, &ae)
}
