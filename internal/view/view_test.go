package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialModeIsViewing(t *testing.T) {
	var s State
	assert.Equal(t, Viewing, s.Mode())
}

func TestEditThenSubmitOrCancel(t *testing.T) {
	for _, exit := range []Event{Submit, Cancel} {
		var s State
		require.NoError(t, s.Fire(Edit))
		assert.Equal(t, Editing, s.Mode())

		require.NoError(t, s.Fire(exit))
		assert.Equal(t, Viewing, s.Mode(), string(exit))
	}
}

func TestRejectedTransitionsKeepMode(t *testing.T) {
	cases := []struct {
		from Mode
		ev   Event
	}{
		{Viewing, Submit},
		{Viewing, Cancel},
		{Editing, Edit},
		{Viewing, Event("delete")},
	}

	for _, tc := range cases {
		got, err := Next(tc.from, tc.ev)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, tc.from, got)
	}
}
