package history

// HistoryState pairs the undo and redo Branches with the recency
// bookkeeping used to decide whether the next recorded edit continues the
// current event or opens a new one. The zero value is the initial state:
// both branches empty, no recent edit.
//
// A HistoryState is replaced, never mutated, on every transaction;
// structural sharing through the persistent Branch/itemlist makes that
// cheap.
type HistoryState struct {
	Done       Branch
	Undone     Branch
	PrevRanges []int64
	PrevTime   int64
}

// NewHistoryState returns the initial, empty HistoryState.
func NewHistoryState() HistoryState {
	return HistoryState{}
}

// UndoDepth returns the number of undoable events.
func (h HistoryState) UndoDepth() int { return h.Done.EventCount() }

// RedoDepth returns the number of redoable events.
func (h HistoryState) RedoDepth() int { return h.Undone.EventCount() }
