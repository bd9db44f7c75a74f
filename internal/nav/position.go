package nav

import "fmt"

// Position is the learner's location within a course tree: zero-based
// module and concept indices. At rest a Position always points at an
// existing concept; only State transitions and Resume produce them.
type Position struct {
	Module  int
	Concept int
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Module, p.Concept)
}
