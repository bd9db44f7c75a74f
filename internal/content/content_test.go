package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validCourse = `{
	"id": "go-basics",
	"title": "Go Basics",
	"topic": "programming",
	"modules": [
		{
			"id": "m-syntax",
			"title": "Syntax",
			"order": 7,
			"concepts": [
				{"id": "c-vars", "title": "Variables", "content": "var and :=", "order": 3},
				{"id": "c-funcs", "title": "Functions", "content": "func f() {}", "order": 9}
			]
		},
		{
			"id": "m-types",
			"title": "Types",
			"concepts": [
				{"id": "c-structs", "title": "Structs"}
			]
		}
	]
}`

func TestParseValidCourse(t *testing.T) {
	tree, err := Parse([]byte(validCourse))
	require.NoError(t, err)

	assert.Equal(t, "go-basics", tree.ID)
	assert.Equal(t, "Go Basics", tree.Title)
	assert.Equal(t, "programming", tree.Topic)
	require.Len(t, tree.Modules, 2)
	assert.Equal(t, "m-syntax", tree.Modules[0].ID)
	require.Len(t, tree.Modules[0].Concepts, 2)
	assert.Equal(t, "var and :=", tree.Modules[0].Concepts[0].Content)
}

func TestParseNormalizesOrder(t *testing.T) {
	// Document order fields are arbitrary; Parse rewrites them to list
	// positions so navigation can index directly.
	tree, err := Parse([]byte(validCourse))
	require.NoError(t, err)

	for mi, m := range tree.Modules {
		assert.Equal(t, mi, m.Order, "module %s", m.ID)
		for ci, c := range m.Concepts {
			assert.Equal(t, ci, c.Order, "concept %s", c.ID)
		}
	}
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed json", `{"id": "x"`},
		{"missing id", `{"title": "T", "modules": []}`},
		{"missing title", `{"id": "x", "modules": []}`},
		{"missing modules", `{"id": "x", "title": "T"}`},
		{"empty id", `{"id": "", "title": "T", "modules": []}`},
		{"module without concepts", `{"id": "x", "title": "T", "modules": [{"id": "m", "title": "M"}]}`},
		{"concept without title", `{"id": "x", "title": "T", "modules": [{"id": "m", "title": "M", "concepts": [{"id": "c"}]}]}`},
		{"not an object", `[1, 2, 3]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestTreeHelpers(t *testing.T) {
	tree, err := Parse([]byte(validCourse))
	require.NoError(t, err)

	assert.Equal(t, 3, tree.TotalConcepts())
	assert.Equal(t, 0, tree.ConceptsBefore(0))
	assert.Equal(t, 2, tree.ConceptsBefore(1))
	assert.Equal(t, 3, tree.ConceptsBefore(99))

	require.NotNil(t, tree.Module(1))
	assert.Equal(t, "m-types", tree.Module(1).ID)
	assert.Nil(t, tree.Module(-1))
	assert.Nil(t, tree.Module(2))

	c := tree.Concept(0, 1)
	require.NotNil(t, c)
	assert.Equal(t, "c-funcs", c.ID)
	assert.Nil(t, tree.Concept(0, 2))
	assert.Nil(t, tree.Concept(5, 0))
}

func TestLibraryRoundTrip(t *testing.T) {
	lib, err := NewLibrary(t.TempDir())
	require.NoError(t, err)

	tree, err := lib.Add([]byte(validCourse))
	require.NoError(t, err)
	assert.Equal(t, "go-basics", tree.ID)

	loaded, err := lib.Load("go-basics")
	require.NoError(t, err)
	assert.Equal(t, tree.Title, loaded.Title)
	assert.Equal(t, tree.TotalConcepts(), loaded.TotalConcepts())

	ids, err := lib.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"go-basics"}, ids)

	require.NoError(t, lib.Remove("go-basics"))
	ids, err = lib.List()
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestLibraryUnknownCourse(t *testing.T) {
	lib, err := NewLibrary(t.TempDir())
	require.NoError(t, err)

	_, err = lib.Load("nope")
	assert.ErrorIs(t, err, ErrCourseNotFound)
	assert.ErrorIs(t, lib.Remove("nope"), ErrCourseNotFound)
}

func TestLibraryAddRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	lib, err := NewLibrary(dir)
	require.NoError(t, err)

	_, err = lib.Add([]byte(`{"title": "no id"}`))
	assert.Error(t, err)

	ids, err := lib.List()
	require.NoError(t, err)
	assert.Empty(t, ids, "invalid course must not be written to disk")
}

func TestLibraryListSorted(t *testing.T) {
	lib, err := NewLibrary(t.TempDir())
	require.NoError(t, err)

	for _, id := range []string{"zeta", "alpha", "mid"} {
		doc := `{"id": "` + id + `", "title": "T", "modules": []}`
		_, err := lib.Add([]byte(doc))
		require.NoError(t, err)
	}

	ids, err := lib.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, ids)
}
