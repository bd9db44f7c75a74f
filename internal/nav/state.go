package nav

import (
	"errors"
	"fmt"

	"github.com/abhisek/sensei/internal/content"
)

// ErrNoConcepts is returned when a course has no navigable concepts
// at all (every module is empty).
var ErrNoConcepts = errors.New("course has no concepts")

// State tracks a valid Position inside a content tree and answers
// navigation and progress queries. It is pure over its own state;
// persisting positions is the caller's job.
//
// Modules with zero concepts are skipped in both directions: a
// Position never rests inside an empty module.
type State struct {
	pos Position
}

// FirstPosition returns the position of the first concept in the
// tree, skipping empty leading modules.
func FirstPosition(tree *content.Tree) (Position, error) {
	for mi := range tree.Modules {
		if len(tree.Modules[mi].Concepts) > 0 {
			return Position{Module: mi, Concept: 0}, nil
		}
	}
	return Position{}, ErrNoConcepts
}

// Resume creates a State at the stored position, falling back to the
// first valid position when the stored one is corrupt (negative or
// out of bounds for the current tree). This is the only place invalid
// positions are tolerated; see mustValidate.
func Resume(tree *content.Tree, stored Position) (*State, error) {
	if tree.Concept(stored.Module, stored.Concept) != nil {
		return &State{pos: stored}, nil
	}
	first, err := FirstPosition(tree)
	if err != nil {
		return nil, err
	}
	return &State{pos: first}, nil
}

// Current returns the current position.
func (s *State) Current() Position {
	return s.pos
}

// Advance moves forward one concept: within the module if possible,
// otherwise to the first concept of the next non-empty module.
// Returns ok=false at the end of the course, leaving the position
// unchanged.
func (s *State) Advance(tree *content.Tree) (Position, bool) {
	s.mustValidate(tree)

	m := tree.Module(s.pos.Module)
	if s.pos.Concept < len(m.Concepts)-1 {
		s.pos.Concept++
		return s.pos, true
	}
	for mi := s.pos.Module + 1; mi < len(tree.Modules); mi++ {
		if len(tree.Modules[mi].Concepts) > 0 {
			s.pos = Position{Module: mi, Concept: 0}
			return s.pos, true
		}
	}
	return s.pos, false
}

// Retreat moves back one concept. Within a module it only decrements
// the concept index; it must not jump to the last concept of the
// module. Crossing a module boundary lands on the last concept of the
// previous non-empty module. Returns ok=false at the start of the
// course.
func (s *State) Retreat(tree *content.Tree) (Position, bool) {
	s.mustValidate(tree)

	if s.pos.Concept > 0 {
		s.pos.Concept--
		return s.pos, true
	}
	for mi := s.pos.Module - 1; mi >= 0; mi-- {
		if n := len(tree.Modules[mi].Concepts); n > 0 {
			s.pos = Position{Module: mi, Concept: n - 1}
			return s.pos, true
		}
	}
	return s.pos, false
}

// IsModuleComplete reports whether the position is on the last
// concept of its module.
func (s *State) IsModuleComplete(tree *content.Tree) bool {
	s.mustValidate(tree)
	m := tree.Module(s.pos.Module)
	return s.pos.Concept == len(m.Concepts)-1
}

// ProgressFraction returns the fraction of the course completed,
// counting the current concept as done. Zero for a tree with no
// concepts.
func (s *State) ProgressFraction(tree *content.Tree) float64 {
	s.mustValidate(tree)
	total := tree.TotalConcepts()
	if total == 0 {
		return 0
	}
	done := tree.ConceptsBefore(s.pos.Module) + s.pos.Concept + 1
	return float64(done) / float64(total)
}

// ConceptsCompleted returns the number of concepts at or before the
// current position.
func (s *State) ConceptsCompleted(tree *content.Tree) int {
	s.mustValidate(tree)
	return tree.ConceptsBefore(s.pos.Module) + s.pos.Concept + 1
}

// ModulesCompleted returns the number of fully traversed modules
// before the current one, plus the current one when the position is
// on its last concept.
func (s *State) ModulesCompleted(tree *content.Tree) int {
	s.mustValidate(tree)
	n := 0
	for mi := 0; mi < s.pos.Module; mi++ {
		if len(tree.Modules[mi].Concepts) > 0 {
			n++
		}
	}
	if s.IsModuleComplete(tree) {
		n++
	}
	return n
}

// mustValidate panics on an out-of-range position. Positions are only
// produced by Advance/Retreat/Resume, so reaching an invalid one is a
// logic defect, not a recoverable condition.
func (s *State) mustValidate(tree *content.Tree) {
	if tree.Concept(s.pos.Module, s.pos.Concept) == nil {
		panic(fmt.Sprintf("nav: position %s out of range for tree %q", s.pos, tree.ID))
	}
}
