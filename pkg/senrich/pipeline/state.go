package pipeline

import (
	"fmt"

	"github.com/cognicore/senrich/pkg/senrich/internalerr"
)

// State is a step of the run lifecycle.
type State int

const (
	Init State = iota
	Enumerated
	Normalized
	Tokenized
	Enriched
	Finalized
	Failed
)

var stateNames = [...]string{
	Init:       "init",
	Enumerated: "enumerated",
	Normalized: "normalized",
	Tokenized:  "tokenized",
	Enriched:   "enriched",
	Finalized:  "finalized",
	Failed:     "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool { return s == Finalized || s == Failed }

// next checks that to follows from. The sequence is strictly linear and any
// non-terminal state may fail.
func next(from, to State) error {
	if from.Terminal() {
		return fmt.Errorf("%w: %s is terminal", internalerr.ErrInvalidTransition, from)
	}
	if to == Failed || to == from+1 {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", internalerr.ErrInvalidTransition, from, to)
}
