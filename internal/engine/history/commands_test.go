package history

import (
	"testing"

	"github.com/go-prosehist/prosehist/internal/engine/state"
)

func TestUndoRedoDepthHelpers(t *testing.T) {
	e := NewEngine(DefaultConfig())
	st := state.NewEditorState("x")
	h := NewHistoryState()

	if UndoDepth(h) != 0 || RedoDepth(h) != 0 {
		t.Fatalf("fresh history should report zero depths")
	}

	st, h = insert(e, st, h, 1, "y", 1000)
	if UndoDepth(h) != 1 {
		t.Fatalf("UndoDepth(h) = %d, want 1", UndoDepth(h))
	}

	_, h, ok := dispatchUndo(e, st, h)
	if !ok {
		t.Fatal("Undo should succeed")
	}
	if UndoDepth(h) != 0 || RedoDepth(h) != 1 {
		t.Fatalf("depths = %d/%d, want 0/1", UndoDepth(h), RedoDepth(h))
	}
}

func TestUndoOnEmptyHistoryFails(t *testing.T) {
	st := state.NewEditorState("x")
	h := NewHistoryState()
	if _, ok := Undo(DefaultConfig(), h, st); ok {
		t.Fatal("Undo should fail on an empty history")
	}
}

func TestRedoOnEmptyHistoryFails(t *testing.T) {
	st := state.NewEditorState("x")
	h := NewHistoryState()
	if _, ok := Redo(DefaultConfig(), h, st); ok {
		t.Fatal("Redo should fail on an empty history")
	}
}

func TestUndoEmitsSelfRecognizedHistoryMeta(t *testing.T) {
	e := NewEngine(DefaultConfig())
	st := state.NewEditorState("x")
	h := NewHistoryState()
	st, h = insert(e, st, h, 1, "y", 1000)

	tr, ok := Undo(e.cfg, h, st)
	if !ok {
		t.Fatal("Undo should succeed")
	}
	if _, ok := tr.GetMeta(MetaHistory); !ok {
		t.Fatal("Undo's transform should carry MetaHistory so ApplyTransaction short-circuits")
	}
	next := e.ApplyTransaction(st, tr, h)
	if next.UndoDepth() != 0 || next.RedoDepth() != 1 {
		t.Fatalf("depths after dispatch = %d/%d, want 0/1", next.UndoDepth(), next.RedoDepth())
	}
}
