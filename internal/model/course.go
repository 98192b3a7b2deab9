package model

// Document references one piece of course material.  An empty Path marks a
// placeholder that is listed as "coming soon" but cannot be opened.
type Document struct {
	Name     string `json:"name" yaml:"name"`
	Path     string `json:"path,omitempty" yaml:"path"`
	Category string `json:"category" yaml:"category"`
}

// Resolvable reports whether the document points at a file.
func (d Document) Resolvable() bool { return d.Path != "" }

// Course is one entry of the static catalog, keyed by its exact title.
type Course struct {
	Title     string     `json:"title" yaml:"title"`
	Documents []Document `json:"documents" yaml:"documents"`
}
