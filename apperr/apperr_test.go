package apperr

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"not found", NotFound("Event not found"), KindNotFound},
		{"wrapped conflict", fmt.Errorf("vote: %w", Conflict("Already voted")), KindConflict},
		{"plain error", sql.ErrConnDone, KindInternal},
		{"internal", Internal("query event", sql.ErrConnDone), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestPublicMessageHidesInternalDetail(t *testing.T) {
	err := Internal("query event", fmt.Errorf("pq: relation \"event\" does not exist"))

	assert.Equal(t, "Internal server error", PublicMessage(err))
	assert.Contains(t, err.Error(), "relation")
	assert.ErrorIs(t, Internal("begin transaction", sql.ErrTxDone), sql.ErrTxDone)
}

func TestPublicMessageKeepsClassifiedText(t *testing.T) {
	assert.Equal(t, "Date poll is finalized", PublicMessage(Conflict("Date poll is finalized")))
	assert.True(t, Is(Forbidden("nope"), KindForbidden))
	assert.False(t, Is(nil, KindInternal))
}
