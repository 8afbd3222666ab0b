package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("%w: service s1", ErrNotFound), "not_found"},
		{fmt.Errorf("load: %w", fmt.Errorf("%w: taken", ErrSlotTaken)), "slot_taken"},
		{ErrAlreadyTerminal, "already_terminal"},
		{fmt.Errorf("%w: status change not permitted", ErrForbidden), "forbidden"},
		{errors.New("connection reset"), "internal_error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Kind(tt.err), tt.err.Error())
	}
}
