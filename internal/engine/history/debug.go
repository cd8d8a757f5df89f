package history

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// DumpJSON flattens a HistoryState into a JSON document holding, for each
// branch, its event count, item count and map-only item count, plus
// prevRanges (when non-empty) and prevTime, for test assertions and a host
// application's debug overlay. It has no per-item entries: step and
// position content, event boundaries and mirror offsets are not included.
func DumpJSON(h HistoryState) string {
	doc := "{}"
	doc, _ = sjson.Set(doc, "done.eventCount", h.Done.EventCount())
	doc, _ = sjson.Set(doc, "done.itemCount", h.Done.Len())
	doc, _ = sjson.Set(doc, "done.emptyItemCount", h.Done.emptyItemCount())
	doc, _ = sjson.Set(doc, "undone.eventCount", h.Undone.EventCount())
	doc, _ = sjson.Set(doc, "undone.itemCount", h.Undone.Len())
	doc, _ = sjson.Set(doc, "undone.emptyItemCount", h.Undone.emptyItemCount())
	if len(h.PrevRanges) > 0 {
		ranges := make([]int64, len(h.PrevRanges))
		copy(ranges, h.PrevRanges)
		doc, _ = sjson.Set(doc, "prevRanges", ranges)
	}
	doc, _ = sjson.Set(doc, "prevTime", h.PrevTime)
	return doc
}

// DumpQuery is a small convenience wrapper around gjson for pulling a
// single field back out of a DumpJSON document in tests, e.g.
// DumpQuery(DumpJSON(h), "done.eventCount").Int().
func DumpQuery(dump, path string) gjson.Result {
	return gjson.Get(dump, path)
}
