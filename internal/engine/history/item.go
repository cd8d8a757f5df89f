package history

import (
	"github.com/go-prosehist/prosehist/internal/engine/state"
	"github.com/go-prosehist/prosehist/internal/engine/stepmap"
)

// Item is one immutable entry in a Branch: a forward position map, an
// optional inverted step, and an optional selection bookmark marking the
// start of an undoable event.
//
// An Item either records an edit (Step is non-nil) or is a pure position
// map placeholder for an external change (Step is nil, a "map-only" item).
// Only Items with a Step may carry a Selection.
type Item struct {
	// Map is the forward position map this item induces, always present.
	Map stepmap.PositionMap
	// Step is the inverted edit: applying it to the post-edit document
	// yields the pre-edit document. Nil for map-only items.
	Step stepmap.Step
	// Selection is the bookmark of the selection active before the event
	// this item starts, non-nil only on an event's first item.
	Selection *state.Bookmark
	// MirrorOffset, when non-nil, records that this item's map is the
	// inverse of another map at index i-*MirrorOffset in the same Branch.
	// It is a remapping optimization; -1 in *MirrorOffset never occurs,
	// and a nil value means "no known mirror", which is always safe to
	// assume.
	MirrorOffset *int
}

// HasStep reports whether this item records an edit.
func (it Item) HasStep() bool { return it.Step != nil }

// merge attempts to fuse it (the older item) with other (a directly
// following item), returning the fused item on success. Fusion is only
// attempted when both items carry a step and other carries no selection,
// since merging across an event boundary would erase that boundary.
func (it Item) merge(other Item) (Item, bool) {
	if it.Step == nil || other.Step == nil || other.Selection != nil {
		return Item{}, false
	}
	fused, ok := it.Step.Merge(other.Step)
	if !ok {
		return Item{}, false
	}
	return Item{Map: fused.ForwardMap().Invert(), Step: fused, Selection: it.Selection}, true
}
