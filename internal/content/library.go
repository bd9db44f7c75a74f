package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrCourseNotFound is returned when a course id does not resolve to
// a stored course document.
var ErrCourseNotFound = errors.New("course not found")

// Source provides read-only access to course trees by id.
type Source interface {
	// Load returns the course tree for id, or ErrCourseNotFound.
	Load(id string) (*Tree, error)
}

// Library is a file-backed course store: one JSON document per course
// under a root directory, named <id>.json.
type Library struct {
	root string
}

// NewLibrary creates a Library rooted at dir, creating it if needed.
func NewLibrary(dir string) (*Library, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create course dir: %w", err)
	}
	return &Library{root: dir}, nil
}

func (l *Library) path(id string) string {
	return filepath.Join(l.root, id+".json")
}

// Load reads and parses the course document for id.
func (l *Library) Load(id string) (*Tree, error) {
	data, err := os.ReadFile(l.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrCourseNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("read course %s: %w", id, err)
	}
	return Parse(data)
}

// Add validates and stores a course document, returning the parsed
// tree. An existing course with the same id is overwritten.
func (l *Library) Add(data []byte) (*Tree, error) {
	tree, err := Parse(data)
	if err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode course: %w", err)
	}
	if err := os.WriteFile(l.path(tree.ID), out, 0o644); err != nil {
		return nil, fmt.Errorf("write course %s: %w", tree.ID, err)
	}
	return tree, nil
}

// Remove deletes the course document for id. Removing an unknown id
// returns ErrCourseNotFound.
func (l *Library) Remove(id string) error {
	err := os.Remove(l.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrCourseNotFound, id)
	}
	return err
}

// List returns the ids of all stored courses, sorted.
func (l *Library) List() ([]string, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}
