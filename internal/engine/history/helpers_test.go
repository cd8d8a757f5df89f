package history

import (
	"github.com/go-prosehist/prosehist/internal/engine/state"
	"github.com/go-prosehist/prosehist/internal/engine/stepmap"
)

func newBookmark(pos int64) state.Bookmark {
	return state.Bookmark{Anchor: pos, Head: pos}
}

// insert builds and applies a single-insert transaction against st using
// engine e, returning the resulting EditorState and HistoryState.
func insert(e *Engine, st *state.EditorState, h HistoryState, at int64, text string, atTime int64) (*state.EditorState, HistoryState) {
	tr := st.Tr()
	tr.Time = atTime
	tr.MaybeStep(stepmap.NewEditStep(at, "", text))
	h = e.ApplyTransaction(st, tr, h)
	return st.Apply(tr), h
}

func del(e *Engine, st *state.EditorState, h HistoryState, at int64, text string, atTime int64) (*state.EditorState, HistoryState) {
	tr := st.Tr()
	tr.Time = atTime
	tr.MaybeStep(stepmap.NewEditStep(at, text, ""))
	h = e.ApplyTransaction(st, tr, h)
	return st.Apply(tr), h
}

// remoteInsert applies a non-recorded insert, as a remote collaborator's
// change would arrive.
func remoteInsert(e *Engine, st *state.EditorState, h HistoryState, at int64, text string) (*state.EditorState, HistoryState) {
	tr := st.Tr()
	tr.MaybeStep(stepmap.NewEditStep(at, "", text))
	tr.SetMeta(MetaAddToHistory, false)
	h = e.ApplyTransaction(st, tr, h)
	return st.Apply(tr), h
}

// dispatchUndo runs Undo against h and applies the resulting transform to
// st, also feeding it back through the engine so the short-circuit path is
// exercised the way a real host's apply loop would.
func dispatchUndo(e *Engine, st *state.EditorState, h HistoryState) (*state.EditorState, HistoryState, bool) {
	tr, ok := Undo(e.cfg, h, st)
	if !ok {
		return st, h, false
	}
	next := e.ApplyTransaction(st, tr, h)
	return st.Apply(tr), next, true
}

func dispatchRedo(e *Engine, st *state.EditorState, h HistoryState) (*state.EditorState, HistoryState, bool) {
	tr, ok := Redo(e.cfg, h, st)
	if !ok {
		return st, h, false
	}
	next := e.ApplyTransaction(st, tr, h)
	return st.Apply(tr), next, true
}
