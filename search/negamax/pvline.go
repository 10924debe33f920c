package negamax

import (
	"fmt"
	"strings"

	"github.com/domino14/gomoku/move"
)

// MaxPVLength caps the line reported with a search result.
const MaxPVLength = 10

// PVLine is the expected line of play from the searched position.
type PVLine struct {
	Moves []move.Move
	Score int32
}

func (pv PVLine) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "PV; val %d\n", pv.Score)
	for i, m := range pv.Moves {
		fmt.Fprintf(&sb, "%d: %v\n", i+1, m)
	}
	return sb.String()
}

// NLBString renders the line without line breaks.
func (pv PVLine) NLBString() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "PV; val %d;", pv.Score)
	for i, m := range pv.Moves {
		fmt.Fprintf(&sb, " %d: %v;", i+1, m)
	}
	return sb.String()
}
