package history

import (
	"github.com/go-prosehist/prosehist/internal/engine/state"
	"github.com/go-prosehist/prosehist/internal/engine/stepmap"
)

// Undo pops the most recent event from the done branch and returns the
// transform that undoes it, pre-annotated with history metadata so that
// dispatching it through Engine.ApplyTransaction reproduces exactly the
// HistoryState this call computes. It returns ok=false when there is
// nothing to undo.
func Undo(cfg Config, h HistoryState, st *state.EditorState) (tr *stepmap.Transform, ok bool) {
	return popToOpposite(cfg, h, st, false)
}

// Redo is the symmetric counterpart of Undo, consuming from the undone
// branch and pushing onto the done branch.
func Redo(cfg Config, h HistoryState, st *state.EditorState) (tr *stepmap.Transform, ok bool) {
	return popToOpposite(cfg, h, st, true)
}

func popToOpposite(cfg Config, h HistoryState, st *state.EditorState, redo bool) (*stepmap.Transform, bool) {
	cfg = cfg.normalized()
	preserve := st.HasCollaborationPlugin()

	source := h.Done
	if redo {
		source = h.Undone
	}

	tr, sel, remaining, ok := source.PopEvent(st, preserve)
	if !ok {
		return nil, false
	}

	beforeSel := st.Bookmark()
	var next HistoryState
	if redo {
		next = HistoryState{Done: h.Done.AddTransform(tr, &beforeSel, cfg.Depth, preserve), Undone: remaining}
	} else {
		next = HistoryState{Done: remaining, Undone: h.Undone.AddTransform(tr, &beforeSel, cfg.Depth, preserve)}
	}

	if sel != nil {
		tr.SetSelection(*sel)
	}
	tr.SetMeta(MetaHistory, historyMeta{Redo: redo, State: next})
	return tr, true
}

// UndoDepth returns the number of undoable events.
func UndoDepth(h HistoryState) int { return h.UndoDepth() }

// RedoDepth returns the number of redoable events.
func RedoDepth(h HistoryState) int { return h.RedoDepth() }

// CloseHistory annotates tr so that the next recorded edit after it opens
// a new event, even if it would otherwise be grouped with edits before tr.
func CloseHistory(tr *stepmap.Transform) *stepmap.Transform {
	return tr.SetMeta(MetaCloseHistory, true)
}
