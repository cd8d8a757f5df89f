package state

import (
	"github.com/go-prosehist/prosehist/internal/engine/cursor"
	"github.com/go-prosehist/prosehist/internal/engine/stepmap"
)

// Bookmark is a selection reference that outlives the document it was taken
// against: it stores anchor and head as positions that can be carried
// forward through a Mapping, and later resolved into a concrete Selection
// against a specific document. This is the external SelectionBookmark
// collaborator.
type Bookmark struct {
	Anchor int64
	Head   int64
}

// NewBookmark captures sel as a bookmark.
func NewBookmark(sel cursor.Selection) Bookmark {
	return Bookmark{Anchor: int64(sel.Anchor), Head: int64(sel.Head)}
}

// NewCursorBookmark captures a collapsed cursor position as a bookmark.
func NewCursorBookmark(pos int64) Bookmark {
	return Bookmark{Anchor: pos, Head: pos}
}

// Map carries the bookmark forward through mapping. The anchor sticks to
// content before it and the head sticks to content after it, matching the
// forward-leaning bias a selection takes when the document grows at its
// position.
func (b Bookmark) Map(mapping *stepmap.Mapping) Bookmark {
	return Bookmark{
		Anchor: mapping.Map(b.Anchor, -1),
		Head:   mapping.Map(b.Head, 1),
	}
}

// Resolve turns the bookmark back into a concrete Selection against doc.
// The bookmark does not itself validate against doc length; callers that
// need clamping should clamp the resolved selection.
func (b Bookmark) Resolve(doc string) cursor.Selection {
	return cursor.NewSelection(cursor.ByteOffset(b.Anchor), cursor.ByteOffset(b.Head))
}
