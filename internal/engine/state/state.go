package state

import (
	"github.com/go-prosehist/prosehist/internal/engine/cursor"
	"github.com/go-prosehist/prosehist/internal/engine/stepmap"
)

// EditorState is the external EditorState collaborator: an immutable
// snapshot of the document, the current selection, and the set of
// installed plugins (along with their opaque per-plugin values).
type EditorState struct {
	Doc       string
	Selection cursor.Selection
	Plugins   []*Plugin

	values map[PluginKey]any
}

// NewEditorState creates a fresh state over doc with the cursor at the
// start and no plugins installed.
func NewEditorState(doc string) *EditorState {
	return &EditorState{
		Doc:       doc,
		Selection: cursor.NewCursorSelection(0),
		values:    map[PluginKey]any{},
	}
}

// Tr starts a new Transform over this state's document.
func (s *EditorState) Tr() *stepmap.Transform {
	return stepmap.NewTransform(s.Doc)
}

// Bookmark captures the current selection as a Bookmark.
func (s *EditorState) Bookmark() Bookmark {
	return NewBookmark(s.Selection)
}

// HasCollaborationPlugin reports whether any installed plugin is
// collaboration-aware. The history engine's preserveItems predicate is
// exactly this query.
func (s *EditorState) HasCollaborationPlugin() bool {
	for _, p := range s.Plugins {
		if p.Collaboration {
			return true
		}
	}
	return false
}

// WithPlugins returns a shallow copy of s with plugins installed.
func (s *EditorState) WithPlugins(plugins ...*Plugin) *EditorState {
	next := *s
	next.Plugins = append([]*Plugin(nil), plugins...)
	next.values = map[PluginKey]any{}
	for k, v := range s.values {
		next.values[k] = v
	}
	return &next
}

// PluginState returns the opaque value stored for key, if any.
func (s *EditorState) PluginState(key PluginKey) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// SetPluginState stores value under key, returning a new EditorState; the
// receiver's values are left unchanged.
func (s *EditorState) SetPluginState(key PluginKey, value any) *EditorState {
	next := *s
	next.values = map[PluginKey]any{}
	for k, v := range s.values {
		next.values[k] = v
	}
	next.values[key] = value
	return &next
}

// Apply produces the next EditorState by applying tr's accumulated steps to
// the document. If tr carries an explicit selection (set via SetSelection,
// as Undo/Redo do to restore the selection active before the undone
// event), that bookmark is resolved against the new document; otherwise
// the current selection is mapped forward through tr's mapping. Metadata
// attached to tr is not retained on the resulting state; it is consumed by
// whoever dispatches tr (e.g. the history Engine's ApplyTransaction).
func (s *EditorState) Apply(tr *stepmap.Transform) *EditorState {
	next := *s
	next.Doc = tr.Doc()
	if v, ok := tr.Selection(); ok {
		if bm, ok := v.(Bookmark); ok {
			next.Selection = bm.Resolve(tr.Doc())
			return &next
		}
	}
	next.Selection = s.Bookmark().Map(tr.Mapping()).Resolve(tr.Doc())
	return &next
}
