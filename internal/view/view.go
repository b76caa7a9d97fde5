// Package view models the client detail screen's edit toggle.
package view

import (
	"errors"
	"fmt"
)

type Mode string

const (
	Viewing Mode = "viewing"
	Editing Mode = "editing"
)

type Event string

const (
	Edit   Event = "edit"
	Submit Event = "submit"
	Cancel Event = "cancel"
)

var ErrInvalidTransition = errors.New("invalid transition")

// transitions is the complete table. Anything missing is rejected.
var transitions = map[Mode]map[Event]Mode{
	Viewing: {Edit: Editing},
	Editing: {Submit: Viewing, Cancel: Viewing},
}

// State is the detail view's mode. The zero value is Viewing.
type State struct {
	mode Mode
}

func (s *State) Mode() Mode {
	if s.mode == "" {
		return Viewing
	}
	return s.mode
}

// Fire applies ev. On an invalid pair the mode stays as it was.
func (s *State) Fire(ev Event) error {
	next, ok := transitions[s.Mode()][ev]
	if !ok {
		return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, ev, s.Mode())
	}
	s.mode = next
	return nil
}

// Next reports the mode ev would lead to from m without changing anything.
func Next(m Mode, ev Event) (Mode, error) {
	s := State{mode: m}
	if err := s.Fire(ev); err != nil {
		return m, err
	}
	return s.Mode(), nil
}
