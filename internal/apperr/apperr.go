// Package apperr holds the error kinds shared by the booking engine.
// Concrete errors wrap one of the kinds with fmt.Errorf("%w: ...") so callers
// can classify them with errors.Is.
package apperr

import "errors"

var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrInvalidReference = errors.New("invalid reference")
	ErrForbidden        = errors.New("forbidden")
	ErrSlotTaken        = errors.New("slot taken")
	ErrInvalidState     = errors.New("invalid state")
	ErrAlreadyTerminal  = errors.New("already terminal")
)

var kinds = []struct {
	err  error
	code string
}{
	{ErrValidation, "validation_error"},
	{ErrNotFound, "not_found"},
	{ErrInvalidReference, "invalid_reference"},
	{ErrForbidden, "forbidden"},
	{ErrSlotTaken, "slot_taken"},
	{ErrInvalidState, "invalid_state"},
	{ErrAlreadyTerminal, "already_terminal"},
}

// Kind returns the stable code of the first kind err wraps, or "internal_error".
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.code
		}
	}
	return "internal_error"
}
