package history

import (
	"github.com/go-prosehist/prosehist/internal/engine/state"
	"github.com/go-prosehist/prosehist/internal/engine/stepmap"
)

// Metadata keys the engine recognizes on incoming transactions.
const (
	// MetaHistory carries a historyMeta value: the engine's own emissions
	// from Undo/Redo, recognized so the apply path can short-circuit.
	MetaHistory = "historyMeta"
	// MetaCloseHistory, when true, forces the next recorded edit to open a
	// new event regardless of grouping heuristics.
	MetaCloseHistory = "closeHistory"
	// MetaAddToHistory, when set to false, marks a transaction as
	// non-recorded: its steps still affect document positions but are
	// never undoable.
	MetaAddToHistory = "addToHistory"
	// MetaAppendedTransaction carries the historyMeta of an originating
	// undo/redo that a host hook appended follow-up steps after.
	MetaAppendedTransaction = "appendedTransaction"
	// MetaRebased carries a RebasedMeta describing a rebase of the
	// trailing items of both branches onto remote changes.
	MetaRebased = "rebased"
)

// historyMeta is attached to transactions emitted by Undo/Redo so the
// engine recognizes and short-circuits its own emissions.
type historyMeta struct {
	Redo  bool
	State HistoryState
}

// RebasedMeta bundles the rebase results for both branches, as delivered
// by the collaboration layer described in the external interfaces.
type RebasedMeta struct {
	Done   Rebased
	Undone Rebased
}

// Config configures an Engine.
type Config struct {
	// Depth is the maximum number of events retained per branch before
	// the oldest are trimmed.
	Depth int
	// NewGroupDelay is the maximum time, in the same units as
	// Transform.Time, between two edits for them to be grouped into the
	// same event.
	NewGroupDelay int64
}

// DefaultConfig returns the engine's default configuration: a depth of
// 100 events and a 500ms grouping delay.
func DefaultConfig() Config {
	return Config{Depth: 100, NewGroupDelay: 500}
}

func (c Config) normalized() Config {
	if c.Depth <= 0 {
		c.Depth = 100
	}
	if c.NewGroupDelay <= 0 {
		c.NewGroupDelay = 500
	}
	return c
}

// Engine classifies incoming transactions and routes them to the right
// Branch operation, producing the next HistoryState. It caches the result
// of the preserveItems predicate, which is pure but depends on the host's
// installed plugin set; the cache is invalidated by comparing plugin-slice
// identity, the only mutable cell this package owns.
type Engine struct {
	cfg Config

	cachedPlugins  []*state.Plugin
	cachedPreserve bool
}

// NewEngine returns an Engine with the given configuration; a non-positive
// Depth or NewGroupDelay is replaced by its default.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg.normalized()}
}

func (e *Engine) preserveItems(st *state.EditorState) bool {
	if samePlugins(e.cachedPlugins, st.Plugins) {
		return e.cachedPreserve
	}
	e.cachedPlugins = st.Plugins
	e.cachedPreserve = st.HasCollaborationPlugin()
	return e.cachedPreserve
}

func samePlugins(a, b []*state.Plugin) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ApplyTransaction classifies tr and produces the HistoryState that
// follows h once tr is applied. It is the engine's sole entry point; the
// host editor's plugin-apply hook calls this on every transaction.
func (e *Engine) ApplyTransaction(st *state.EditorState, tr *stepmap.Transform, h HistoryState) HistoryState {
	if v, ok := tr.GetMeta(MetaHistory); ok {
		if hm, isHM := v.(historyMeta); isHM {
			return hm.State
		}
	}

	if v, ok := tr.GetMeta(MetaCloseHistory); ok {
		if closed, _ := v.(bool); closed {
			h.PrevRanges = nil
			h.PrevTime = 0
		}
	}

	if len(tr.Steps()) == 0 {
		return h
	}

	if v, ok := tr.GetMeta(MetaAppendedTransaction); ok {
		if parent, isHM := v.(historyMeta); isHM {
			preserve := e.preserveItems(st)
			if parent.Redo {
				h.Done = h.Done.AddTransform(tr, nil, e.cfg.Depth, preserve)
				h.PrevRanges = lastMapRanges(tr)
			} else {
				h.Undone = h.Undone.AddTransform(tr, nil, e.cfg.Depth, preserve)
				h.PrevRanges = nil
			}
			return h
		}
	}

	if v, ok := tr.GetMeta(MetaRebased); ok {
		if reb, isReb := v.(RebasedMeta); isReb {
			h.Done = h.Done.Rebased(reb.Done)
			h.Undone = h.Undone.Rebased(reb.Undone)
			h.PrevRanges = remapRanges(h.PrevRanges, tr.Mapping())
			return h
		}
	}

	addToHistory := true
	if v, ok := tr.GetMeta(MetaAddToHistory); ok {
		if b, isBool := v.(bool); isBool && !b {
			addToHistory = false
		}
	}

	if addToHistory {
		newRanges := lastMapRanges(tr)
		newEvent := h.PrevTime == 0 ||
			tr.Time-h.PrevTime > e.cfg.NewGroupDelay ||
			!rangesAdjacent(h.PrevRanges, firstMapRanges(tr))

		var sel *state.Bookmark
		if newEvent {
			bm := st.Bookmark()
			sel = &bm
			h.Undone = Branch{}
		}
		h.Done = h.Done.AddTransform(tr, sel, e.cfg.Depth, e.preserveItems(st))
		h.PrevRanges = newRanges
		h.PrevTime = tr.Time
		return h
	}

	maps := allMaps(tr.Mapping())
	h.Done = h.Done.AddMaps(maps)
	h.Undone = h.Undone.AddMaps(maps)
	h.PrevRanges = remapRanges(h.PrevRanges, tr.Mapping())
	return h
}

func allMaps(m *stepmap.Mapping) []stepmap.PositionMap {
	out := make([]stepmap.PositionMap, m.Len())
	for i := range out {
		out[i] = m.At(i)
	}
	return out
}

func lastMapRanges(tr *stepmap.Transform) []int64 {
	n := tr.Mapping().Len()
	if n == 0 {
		return nil
	}
	_, _, startNew, endNew := tr.Mapping().At(n - 1).Range()
	return []int64{startNew, endNew}
}

// firstMapRanges returns the touched range of a Transform's first step,
// used for the new-event adjacency decision: spec says that decision
// looks at the new change's first map, while the PrevRanges bookkeeping
// that carries forward to the next transaction uses the last one.
func firstMapRanges(tr *stepmap.Transform) []int64 {
	if tr.Mapping().Len() == 0 {
		return nil
	}
	_, _, startNew, endNew := tr.Mapping().At(0).Range()
	return []int64{startNew, endNew}
}

func rangesAdjacent(prev, next []int64) bool {
	if len(prev) < 2 || len(next) < 2 {
		return false
	}
	return prev[0] <= next[1] && prev[1] >= next[0]
}

func remapRanges(prev []int64, m *stepmap.Mapping) []int64 {
	if len(prev) < 2 {
		return prev
	}
	return []int64{m.Map(prev[0], -1), m.Map(prev[1], 1)}
}
