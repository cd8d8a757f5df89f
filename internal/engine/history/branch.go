package history

import (
	"github.com/go-prosehist/prosehist/internal/engine/history/itemlist"
	"github.com/go-prosehist/prosehist/internal/engine/state"
	"github.com/go-prosehist/prosehist/internal/engine/stepmap"
)

// depthOverflow is the slack past a configured depth before a Branch
// actually trims its oldest events. Amortizing the trim over a slack of
// events avoids paying an O(events) slice cost on every single edit once a
// history is at capacity.
const depthOverflow = 20

// maxEmptyItems is the number of map-only items a Branch tolerates before
// triggering a Compress pass.
const maxEmptyItems = 500

// Branch is an ordered, persistent sequence of Items forming one half
// (undo or redo) of a HistoryState. The zero value is a valid empty
// Branch.
type Branch struct {
	items      itemlist.List[Item]
	eventCount int
}

// EventCount returns the number of distinct undoable/redoable events this
// Branch holds.
func (b Branch) EventCount() int { return b.eventCount }

// Len returns the number of Items, including map-only placeholders.
func (b Branch) Len() int { return b.items.Len() }

// emptyItemCount returns the number of map-only items in the Branch.
func (b Branch) emptyItemCount() int {
	n := 0
	b.items.ForEach(func(_ int, it Item) bool {
		if !it.HasStep() {
			n++
		}
		return true
	})
	return n
}

// AddTransform records the inverse of every step in tr as Items appended
// to the Branch. selection, when non-nil, is attached to the first new
// Item, opening a new event; pass nil to continue the current event.
// preserveItems disables coalescing merges with the existing tail item,
// which is required once a collaboration-aware plugin may later rebase
// these items.
func (b Branch) AddTransform(tr *stepmap.Transform, selection *state.Bookmark, depth int, preserveItems bool) Branch {
	items := b.items
	eventCount := b.eventCount

	for i, step := range tr.Steps() {
		inverted := step.Invert(tr.Docs()[i])
		var sel *state.Bookmark
		if i == 0 {
			sel = selection
		}
		newItem := Item{Map: tr.Mapping().At(i), Step: inverted, Selection: sel}

		merged := false
		if !preserveItems && items.Len() > 0 {
			tailIdx := items.Len() - 1
			tail := items.At(tailIdx)
			if m, ok := tail.merge(newItem); ok {
				items = items.Slice(0, tailIdx).Append(m)
				merged = true
			}
		}
		if !merged {
			items = items.Append(newItem)
		}
		if sel != nil {
			eventCount++
		}
	}

	next := Branch{items: items, eventCount: eventCount}
	return next.trimOverflow(depth)
}

// trimOverflow drops the oldest events once eventCount exceeds depth by
// more than depthOverflow, per the overflow-slack policy.
func (b Branch) trimOverflow(depth int) Branch {
	if depth < 0 {
		depth = 0
	}
	if b.eventCount <= depth+depthOverflow {
		return b
	}
	overflow := depthOverflow
	seen := 0
	cut := b.items.Len()
	b.items.ForEach(func(i int, it Item) bool {
		if it.Selection != nil {
			seen++
			if seen == overflow+1 {
				cut = i
				return false
			}
		}
		return true
	})
	return Branch{items: b.items.Slice(cut, b.items.Len()), eventCount: b.eventCount - overflow}
}

// PopEvent returns the transform that undoes (or, on the redo branch,
// redoes) the most recent event, the selection to restore, and the
// remaining Branch with that event removed. It returns ok=false when the
// Branch holds no events.
func (b Branch) PopEvent(st *state.EditorState, preserveItems bool) (tr *stepmap.Transform, selection *state.Bookmark, remaining Branch, ok bool) {
	if b.eventCount == 0 {
		return nil, nil, Branch{}, false
	}

	n := b.items.Len()
	end := -1
	for i := n - 1; i >= 0; i-- {
		if b.items.At(i).Selection != nil {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, nil, Branch{}, false
	}

	tr = st.Tr()
	var remap *stepmap.Mapping
	var addBefore []Item
	var addAfter []Item
	// stepDropped records that a step earlier in this scan (closer to the
	// tip) failed to apply. Once that happens, map-only items further on
	// must still be retained in addBefore even without preserveItems,
	// since the skipped step's position information was never folded into
	// the emitted transform and remains load-bearing for the remainder of
	// this Branch.
	stepDropped := false

	for i := n - 1; i >= end; i-- {
		item := b.items.At(i)

		if !item.HasStep() {
			if remap == nil {
				remap = stepmap.NewMapping()
			}
			remap.AppendMap(item.Map)
			if preserveItems || stepDropped {
				addBefore = append(addBefore, item)
			}
			continue
		}

		step := item.Step
		applied := false
		if remap != nil {
			if mapped, mapOk := step.MapThrough(remap); mapOk {
				if _, stepOk := tr.MaybeStep(mapped); stepOk {
					applied = true
					if preserveItems {
						addAfter = append(addAfter, Item{Map: mapped.ForwardMap()})
					}
				}
			}
		} else {
			if _, stepOk := tr.MaybeStep(step); stepOk {
				applied = true
			}
		}
		if !applied {
			stepDropped = true
			if remap == nil {
				remap = stepmap.NewMapping()
			}
		}

		if item.Selection != nil {
			sel := item.Selection
			if remap != nil {
				mapped := sel.Map(remap)
				sel = &mapped
			}
			selection = sel
			break
		}
	}

	// addBefore was collected tip-to-start; it must be reattached start-to-tip.
	for i, j := 0, len(addBefore)-1; i < j; i, j = i+1, j-1 {
		addBefore[i], addBefore[j] = addBefore[j], addBefore[i]
	}

	lower := b.items.Slice(0, end)
	newItems := lower.AppendSlice(addBefore).AppendSlice(addAfter)
	remaining = Branch{items: newItems, eventCount: b.eventCount - 1}
	return tr, selection, remaining, true
}

// Rebased describes the result of rebasing the last N items of a Branch
// (where N == len(Mirrors)) on top of remote changes, as handed to the
// engine by the collaboration layer described in the external interfaces.
// NewSteps/NewDocs give the replacement forward step and its pre-edit
// document for each originally-rebased item that survived (Mirrors[i] ==
// true); RemoteMaps are the position maps of intervening remote changes.
// MirrorPositions[i], valid when Mirrors[i] is true, is how many of the
// leading entries of RemoteMaps the collaboration layer reports as already
// reflected in that surviving item's own rebased position — the index at
// which that item's mirror was located in the rebased mapping.
type Rebased struct {
	Mirrors         []bool
	MirrorPositions []int
	NewSteps        []stepmap.Step
	NewDocs         []string
	RemoteMaps      []stepmap.PositionMap
}

// Rebased applies reb to the Branch: the trailing len(reb.Mirrors) items
// are replaced by their rebased counterparts (items with no mirror are
// dropped, their edits having been absorbed by a remote change), and fresh
// map-only items are inserted ahead of them for the remote changes that
// preceded the oldest surviving mirror — the remote changes no surviving
// item's own forward map has absorbed.
func (b Branch) Rebased(reb Rebased) Branch {
	if b.eventCount == 0 {
		return b
	}
	n := b.items.Len()
	start := n - len(reb.Mirrors)
	if start < 0 {
		start = 0
	}

	eventCount := b.eventCount
	for i := start; i < n; i++ {
		if b.items.At(i).Selection != nil {
			eventCount--
		}
	}

	remoteMapping := stepmap.MappingFrom(reb.RemoteMaps)
	newUntil := len(reb.RemoteMaps)
	var rebasedItems []Item
	for idx := range reb.Mirrors {
		if !reb.Mirrors[idx] {
			continue
		}
		if idx < len(reb.MirrorPositions) && reb.MirrorPositions[idx] < newUntil {
			newUntil = reb.MirrorPositions[idx]
		}
		old := b.items.At(start + idx)
		var newStep stepmap.Step
		if old.HasStep() && idx < len(reb.NewSteps) {
			newStep = reb.NewSteps[idx].Invert(reb.NewDocs[idx])
		}
		var newMap stepmap.PositionMap
		if idx < len(reb.NewSteps) {
			newMap = reb.NewSteps[idx].ForwardMap()
		} else {
			newMap = old.Map
		}
		var sel *state.Bookmark
		if old.Selection != nil {
			remapped := old.Selection.Map(remoteMapping)
			sel = &remapped
			eventCount++
		}
		rebasedItems = append(rebasedItems, Item{Map: newMap, Step: newStep, Selection: sel})
	}

	kept := reb.RemoteMaps[:newUntil]
	remoteItems := make([]Item, len(kept))
	for i, m := range kept {
		remoteItems[i] = Item{Map: m}
	}

	lower := b.items.Slice(0, start)
	newItems := lower.AppendSlice(remoteItems).AppendSlice(rebasedItems)
	next := Branch{items: newItems, eventCount: eventCount}

	if next.emptyItemCount() > maxEmptyItems {
		next = next.Compress(newItems.Len() - len(rebasedItems))
	}
	return next
}

// AddMaps appends each map in maps as a map-only item, tracking external
// changes so future undos continue to translate positions correctly. It is
// a no-op on a Branch with no events, since there is nothing to keep
// aligned against.
func (b Branch) AddMaps(maps []stepmap.PositionMap) Branch {
	if b.eventCount == 0 || len(maps) == 0 {
		return b
	}
	items := b.items
	for _, m := range maps {
		items = items.Append(Item{Map: m})
	}
	next := Branch{items: items, eventCount: b.eventCount}
	if next.emptyItemCount() > maxEmptyItems {
		next = next.Compress(items.Len())
	}
	return next
}

// Compress rewrites items below upto, folding each run of map-only items
// into the step item that *precedes* it (the nearest step item closer to
// the base) by remapping that step's stored inverted step and forward map
// through the run's maps, so the total forward-map composition of
// items[0:upto] is unchanged while redundant map-only items disappear.
// This is the same remapping a step undergoes when PopEvent walks past
// intervening map-only items on its way to applying it: a step's inverted
// step is only valid once it has been carried forward through whatever
// map-only items (external changes) came after it, so folding must walk
// from the tip of the compressed section toward the base, accumulating
// maps as it goes and discharging them into the first step it reaches.
// Items at or above upto pass through unmodified, which is required for
// the rebase protocol's assumption that items above that bound remain
// pointwise identifiable.
func (b Branch) Compress(upto int) Branch {
	n := b.items.Len()
	if upto > n {
		upto = n
	}
	if upto < 0 {
		upto = 0
	}

	lower := b.items.Slice(0, upto).ToSlice()
	upper := b.items.Slice(upto, n)

	out := make([]Item, 0, len(lower))
	pending := stepmap.NewMapping()
	for i := len(lower) - 1; i >= 0; i-- {
		it := lower[i]

		if !it.HasStep() {
			pending.AppendMap(it.Map)
			continue
		}

		step := it.Step
		sel := it.Selection
		if pending.Len() > 0 {
			if mapped, ok := step.MapThrough(pending); ok {
				step = mapped
			}
			if sel != nil {
				remapped := sel.Map(pending)
				sel = &remapped
			}
			pending = stepmap.NewMapping()
		}

		newItem := Item{Map: step.ForwardMap().Invert(), Step: step, Selection: sel}
		if len(out) > 0 {
			if merged, ok := newItem.merge(out[len(out)-1]); ok {
				out[len(out)-1] = merged
				continue
			}
		}
		out = append(out, newItem)
	}

	// out was built tip-to-base (reverse); items are stored base-to-tip.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}

	newLower := itemlist.FromSlice(out)
	return Branch{items: newLower.Concat(upper), eventCount: b.eventCount}
}

// Remapping builds a Mapping from the forward maps of items[from:to),
// wiring mirror relationships for items whose mirror partner also lies in
// that range.
func (b Branch) Remapping(from, to int) *stepmap.Mapping {
	m := stepmap.NewMapping()
	for i := from; i < to; i++ {
		it := b.items.At(i)
		if it.MirrorOffset != nil {
			orig := i - *it.MirrorOffset
			if orig >= from && orig < to {
				m.AppendMap(it.Map, orig-from)
				continue
			}
		}
		m.AppendMap(it.Map)
	}
	return m
}
