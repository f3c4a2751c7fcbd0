package model

import "fmt"

// TransitionError reports a status change attempted from a state that is not
// a valid source for it. The document is left untouched when it is returned.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s cannot move from %s to %s", e.Entity, e.From, e.To)
}

func newTransitionError(entity, from, to string) *TransitionError {
	return &TransitionError{Entity: entity, From: from, To: to}
}
