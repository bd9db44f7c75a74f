package content

// Concept is a single teachable unit within a module.
type Concept struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Order   int    `json:"order"`
}

// Module groups an ordered list of concepts.
type Module struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Order    int       `json:"order"`
	Concepts []Concept `json:"concepts"`
}

// Tree is a full course: an ordered list of modules. Trees are
// validated once at ingest and treated as read-only afterwards.
type Tree struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Topic   string   `json:"topic"`
	Modules []Module `json:"modules"`
}

// TotalConcepts returns the concept count across all modules.
func (t *Tree) TotalConcepts() int {
	n := 0
	for i := range t.Modules {
		n += len(t.Modules[i].Concepts)
	}
	return n
}

// ConceptsBefore returns the number of concepts in modules preceding
// moduleIdx.
func (t *Tree) ConceptsBefore(moduleIdx int) int {
	n := 0
	for i := 0; i < moduleIdx && i < len(t.Modules); i++ {
		n += len(t.Modules[i].Concepts)
	}
	return n
}

// Module returns the module at idx, or nil if out of range.
func (t *Tree) Module(idx int) *Module {
	if idx < 0 || idx >= len(t.Modules) {
		return nil
	}
	return &t.Modules[idx]
}

// Concept returns the concept at (moduleIdx, conceptIdx), or nil if
// either index is out of range.
func (t *Tree) Concept(moduleIdx, conceptIdx int) *Concept {
	m := t.Module(moduleIdx)
	if m == nil || conceptIdx < 0 || conceptIdx >= len(m.Concepts) {
		return nil
	}
	return &m.Concepts[conceptIdx]
}
