package catalog

import (
	"context"
	"sync"

	"github.com/iliyamo/oxbridge-lms/internal/model"
)

type State string

const (
	StateClosed     State = "closed"
	StateList       State = "list"
	StateComingSoon State = "coming_soon"
	StateDocument   State = "document"
)

// EmbedFlags are appended to a document URL for the embedded PDF viewer:
// fit to height, no toolbar, no side panel.
const EmbedFlags = "#view=FitH&toolbar=0&navpanes=0"

// Resolver turns a catalog document path into a URL the browser can load.
type Resolver interface {
	Resolve(ctx context.Context, path string) (string, error)
}

// ViewerItem is one row of the material list.
type ViewerItem struct {
	Index      int            `json:"index"`
	Document   model.Document `json:"document"`
	ComingSoon bool           `json:"comingSoon"`
}

// ViewerState is a snapshot of the course modal.
type ViewerState struct {
	State    State           `json:"state"`
	Course   string          `json:"course,omitempty"`
	Items    []ViewerItem    `json:"items,omitempty"`
	Document *model.Document `json:"document,omitempty"`
	// Index is the open document's position, set in the document view.
	Index    *int   `json:"index,omitempty"`
	EmbedURL string `json:"embedUrl,omitempty"`
}

// Viewer is the course material modal.
type Viewer struct {
	catalog  *Catalog
	resolver Resolver

	mu      sync.Mutex
	state   State
	current string
	doc     *model.Document
	index   int
	embed   string
}

func NewViewer(c *Catalog, r Resolver) *Viewer {
	return &Viewer{catalog: c, resolver: r, state: StateClosed}
}

// Open shows the materials of title, replacing whatever was open.
func (v *Viewer) Open(title string) ViewerState {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = title
	v.showListLocked()
	return v.snapshotLocked()
}

// Select opens the document at index. Placeholders, out-of-range indexes
// and selections outside the list view leave the view unchanged.
func (v *Viewer) Select(ctx context.Context, index int) (ViewerState, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != StateList {
		return v.snapshotLocked(), nil
	}
	course, _ := v.catalog.Lookup(v.current)
	if index < 0 || index >= len(course.Documents) {
		return v.snapshotLocked(), nil
	}
	doc := course.Documents[index]
	if !doc.Resolvable() {
		return v.snapshotLocked(), nil
	}
	url, err := v.resolver.Resolve(ctx, doc.Path)
	if err != nil {
		return v.snapshotLocked(), err
	}
	v.state = StateDocument
	v.doc = &doc
	v.index = index
	v.embed = url + EmbedFlags
	return v.snapshotLocked(), nil
}

// Back returns from a document to the list of the current course.
func (v *Viewer) Back() ViewerState {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state == StateDocument {
		v.showListLocked()
	}
	return v.snapshotLocked()
}

// Close hides the modal and forgets the current course.
func (v *Viewer) Close() ViewerState {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = StateClosed
	v.current = ""
	v.doc = nil
	v.embed = ""
	return v.snapshotLocked()
}

func (v *Viewer) State() ViewerState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

func (v *Viewer) showListLocked() {
	v.doc = nil
	v.embed = ""
	course, ok := v.catalog.Lookup(v.current)
	if !ok || len(course.Documents) == 0 {
		v.state = StateComingSoon
		return
	}
	v.state = StateList
}

func (v *Viewer) snapshotLocked() ViewerState {
	s := ViewerState{State: v.state, Course: v.current}
	switch v.state {
	case StateList:
		course, _ := v.catalog.Lookup(v.current)
		s.Items = make([]ViewerItem, 0, len(course.Documents))
		for i, d := range course.Documents {
			s.Items = append(s.Items, ViewerItem{Index: i, Document: d, ComingSoon: !d.Resolvable()})
		}
	case StateDocument:
		d, i := *v.doc, v.index
		s.Document = &d
		s.Index = &i
		s.EmbedURL = v.embed
	}
	return s
}
