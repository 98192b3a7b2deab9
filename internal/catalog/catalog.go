// Package catalog holds the static course table and the material viewer
// that browses it.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/iliyamo/oxbridge-lms/internal/model"
)

//go:embed courses.yaml
var defaultCatalog []byte

// ErrDuplicateTitle is returned when a catalog file lists a title twice.
var ErrDuplicateTitle = errors.New("catalog: duplicate course title")

type file struct {
	Courses []model.Course `yaml:"courses"`
}

// Catalog is an immutable, ordered course table keyed by exact title.
type Catalog struct {
	courses []model.Course
	byTitle map[string]int
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file, or the built-in one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a YAML catalog.
func Parse(raw []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	c := &Catalog{courses: f.Courses, byTitle: make(map[string]int, len(f.Courses))}
	for i, course := range f.Courses {
		if _, dup := c.byTitle[course.Title]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTitle, course.Title)
		}
		c.byTitle[course.Title] = i
	}
	return c, nil
}

// Courses returns the courses in declaration order.
func (c *Catalog) Courses() []model.Course {
	out := make([]model.Course, len(c.courses))
	copy(out, c.courses)
	return out
}

// Lookup returns the course with exactly this title.
func (c *Catalog) Lookup(title string) (model.Course, bool) {
	i, ok := c.byTitle[title]
	if !ok {
		return model.Course{}, false
	}
	return c.courses[i], true
}
