package history

import (
	"testing"

	"github.com/go-prosehist/prosehist/internal/engine/state"
	"github.com/go-prosehist/prosehist/internal/engine/stepmap"
)

func TestBranchAddTransformOpensEventAndMerges(t *testing.T) {
	st := state.NewEditorState("hello")
	var b Branch

	tr := st.Tr()
	tr.MaybeStep(stepmap.NewEditStep(5, "", " a"))
	sel := newBookmark(0)
	b = b.AddTransform(tr, &sel, 100, false)
	if b.EventCount() != 1 {
		t.Fatalf("EventCount() = %d, want 1", b.EventCount())
	}
	if b.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", b.Len())
	}

	st2 := st.Apply(tr)
	tr2 := st2.Tr()
	tr2.MaybeStep(stepmap.NewEditStep(7, "", "b"))
	b = b.AddTransform(tr2, nil, 100, false)

	if b.EventCount() != 1 {
		t.Fatalf("EventCount() after continuation = %d, want 1", b.EventCount())
	}
	if b.Len() != 1 {
		t.Fatalf("Len() after merge = %d, want 1 (items should have merged)", b.Len())
	}
}

func TestBranchAddTransformPreserveItemsDisablesMerge(t *testing.T) {
	st := state.NewEditorState("hello")
	var b Branch

	tr := st.Tr()
	tr.MaybeStep(stepmap.NewEditStep(5, "", "a"))
	sel := newBookmark(0)
	b = b.AddTransform(tr, &sel, 100, true)

	st2 := st.Apply(tr)
	tr2 := st2.Tr()
	tr2.MaybeStep(stepmap.NewEditStep(6, "", "b"))
	b = b.AddTransform(tr2, nil, 100, true)

	if b.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (preserveItems should disable merge)", b.Len())
	}
	if b.EventCount() != 1 {
		t.Fatalf("EventCount() = %d, want 1", b.EventCount())
	}
}

func TestBranchTrimOverflow(t *testing.T) {
	// Matches spec's own worked example: depth=3, after 24 events the
	// oldest 20 are dropped (the fixed depthOverflow slack, not
	// eventCount-depth), leaving exactly 4.
	var b Branch
	doc := ""
	for i := 0; i < 24; i++ {
		s := state.NewEditorState(doc)
		tr := s.Tr()
		tr.MaybeStep(stepmap.NewEditStep(int64(len(doc)), "", "x"))
		sel := newBookmark(0)
		b = b.AddTransform(tr, &sel, 3, false)
		doc = s.Apply(tr).Doc
	}
	if b.EventCount() != 4 {
		t.Fatalf("EventCount() = %d, want 4", b.EventCount())
	}
}

func TestBranchPopEventRoundTrip(t *testing.T) {
	st := state.NewEditorState("hello")
	var b Branch

	tr := st.Tr()
	tr.MaybeStep(stepmap.NewEditStep(5, "", " world"))
	sel := newBookmark(0)
	b = b.AddTransform(tr, &sel, 100, false)

	afterInsert := st.Apply(tr)
	if afterInsert.Doc != "hello world" {
		t.Fatalf("Doc = %q, want %q", afterInsert.Doc, "hello world")
	}

	undoTr, undoSel, remaining, ok := b.PopEvent(afterInsert, false)
	if !ok {
		t.Fatal("PopEvent should succeed")
	}
	if undoSel == nil || undoSel.Anchor != 0 || undoSel.Head != 0 {
		t.Fatalf("undoSel = %+v, want zero bookmark", undoSel)
	}
	restored := afterInsert.Apply(undoTr)
	if restored.Doc != "hello" {
		t.Fatalf("restored.Doc = %q, want %q", restored.Doc, "hello")
	}
	if remaining.EventCount() != 0 {
		t.Fatalf("remaining.EventCount() = %d, want 0", remaining.EventCount())
	}
}

func TestBranchPopEventEmptyFails(t *testing.T) {
	var b Branch
	st := state.NewEditorState("x")
	if _, _, _, ok := b.PopEvent(st, false); ok {
		t.Fatal("PopEvent on an empty Branch should fail")
	}
}

func TestBranchAddMapsNoopWhenEmpty(t *testing.T) {
	var b Branch
	next := b.AddMaps([]stepmap.PositionMap{stepmap.NewPositionMap(0, 0, 1)})
	if next.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 (AddMaps on empty branch is a no-op)", next.Len())
	}
}

func TestBranchAddMapsAccumulatesOnNonEmpty(t *testing.T) {
	st := state.NewEditorState("hello")
	var b Branch
	tr := st.Tr()
	tr.MaybeStep(stepmap.NewEditStep(5, "", " x"))
	sel := newBookmark(0)
	b = b.AddTransform(tr, &sel, 100, false)

	before := b.Len()
	b = b.AddMaps([]stepmap.PositionMap{stepmap.NewPositionMap(0, 0, 3)})
	if b.Len() != before+1 {
		t.Fatalf("Len() = %d, want %d", b.Len(), before+1)
	}
}

func TestBranchCompressFoldsTrailingMapOnlyItemsIntoPrecedingStep(t *testing.T) {
	st := state.NewEditorState("hello")
	var b Branch
	tr := st.Tr()
	tr.MaybeStep(stepmap.NewEditStep(5, "", " x"))
	sel := newBookmark(0)
	b = b.AddTransform(tr, &sel, 100, true)

	// Several remote map-only items land after the recorded step, as
	// AddMaps appends them: the step is the only fold target available, so
	// compress must fold them into it rather than dropping them.
	b = b.AddMaps([]stepmap.PositionMap{
		stepmap.NewPositionMap(0, 0, 2),
		stepmap.NewPositionMap(0, 0, 1),
	})

	compressed := b.Compress(b.Len())
	if compressed.emptyItemCount() != 0 {
		t.Fatalf("emptyItemCount() = %d, want 0 after compress", compressed.emptyItemCount())
	}
	if compressed.EventCount() != b.EventCount() {
		t.Fatalf("EventCount() changed across Compress: %d vs %d", compressed.EventCount(), b.EventCount())
	}
}

func TestBranchCompressKeepsUndoCorrectAcrossRemoteEdits(t *testing.T) {
	st0 := state.NewEditorState("ac")
	tr := st0.Tr()
	tr.MaybeStep(stepmap.NewEditStep(1, "", "b"))
	sel := newBookmark(0)
	var b Branch
	b = b.AddTransform(tr, &sel, 100, true)

	after := st0.Apply(tr)
	if after.Doc != "abc" {
		t.Fatalf("Doc = %q, want %q", after.Doc, "abc")
	}

	// Five remote inserts land at the tail of the document, one after
	// another, well clear of the recorded step's own range. AddMaps
	// crosses the 500 map-only item threshold in real usage; here we drive
	// Compress directly to check it folds all five away without disturbing
	// what the step undoes.
	doc := after.Doc
	var maps []stepmap.PositionMap
	for i := 0; i < 5; i++ {
		maps = append(maps, stepmap.NewPositionMap(int64(len(doc)), 0, 1))
		doc += "z"
	}
	b = b.AddMaps(maps)

	compressed := b.Compress(b.Len())
	if compressed.emptyItemCount() != 0 {
		t.Fatalf("emptyItemCount() = %d, want 0 after compress", compressed.emptyItemCount())
	}
	if compressed.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (step should have absorbed every remote map)", compressed.Len())
	}

	postRemote := state.NewEditorState(doc)
	undoTr, _, _, ok := compressed.PopEvent(postRemote, false)
	if !ok {
		t.Fatal("PopEvent should succeed against the post-remote document")
	}
	restored := postRemote.Apply(undoTr)
	want := "ac" + "zzzzz"
	if restored.Doc != want {
		t.Fatalf("restored.Doc = %q, want %q", restored.Doc, want)
	}
}

func TestBranchRebasedDropsUnmirroredItems(t *testing.T) {
	st := state.NewEditorState("hello")
	var b Branch
	tr := st.Tr()
	tr.MaybeStep(stepmap.NewEditStep(5, "", " x"))
	sel := newBookmark(0)
	b = b.AddTransform(tr, &sel, 100, true)

	before := b.Len()
	reb := Rebased{Mirrors: []bool{false}}
	next := b.Rebased(reb)
	if next.Len() != before-1 {
		t.Fatalf("Len() = %d, want %d (unmirrored item should be dropped)", next.Len(), before-1)
	}
	if next.EventCount() != 0 {
		t.Fatalf("EventCount() = %d, want 0 (lost selection)", next.EventCount())
	}
}

func TestBranchRebasedKeepsOnlyRemoteMapsBeforeLowestMirrorPosition(t *testing.T) {
	st := state.NewEditorState("hello")
	var b Branch
	tr := st.Tr()
	tr.MaybeStep(stepmap.NewEditStep(5, "", " x"))
	sel := newBookmark(0)
	b = b.AddTransform(tr, &sel, 100, true)

	after := st.Apply(tr)
	tr2 := after.Tr()
	tr2.MaybeStep(stepmap.NewEditStep(7, "", "y"))
	b = b.AddTransform(tr2, nil, 100, true)

	remoteMaps := []stepmap.PositionMap{
		stepmap.NewPositionMap(0, 0, 1),
		stepmap.NewPositionMap(0, 0, 1),
		stepmap.NewPositionMap(0, 0, 1),
	}
	reb := Rebased{
		Mirrors:         []bool{true, true},
		MirrorPositions: []int{2, 1},
		NewSteps: []stepmap.Step{
			stepmap.NewEditStep(6, "", " x"),
			stepmap.NewEditStep(8, "", "y"),
		},
		NewDocs:    []string{"hello ", "hello  xy"},
		RemoteMaps: remoteMaps,
	}
	next := b.Rebased(reb)

	// newUntil is the minimum of the two mirror positions (1), not the
	// maximum (2): only the single remote map before the lower-positioned
	// mirror needs a fresh placeholder item.
	want := 1 + len(reb.Mirrors)
	if next.Len() != want {
		t.Fatalf("Len() = %d, want %d", next.Len(), want)
	}
}

func TestBranchRebasedDropsRemoteMapsAbsorbedByEveryMirror(t *testing.T) {
	st := state.NewEditorState("hello")
	var b Branch
	tr := st.Tr()
	tr.MaybeStep(stepmap.NewEditStep(5, "", " x"))
	sel := newBookmark(0)
	b = b.AddTransform(tr, &sel, 100, true)

	remoteMaps := []stepmap.PositionMap{
		stepmap.NewPositionMap(0, 0, 1),
		stepmap.NewPositionMap(0, 0, 1),
	}
	reb := Rebased{
		Mirrors:         []bool{true},
		MirrorPositions: []int{0},
		NewSteps:        []stepmap.Step{stepmap.NewEditStep(6, "", " x")},
		NewDocs:         []string{"hello "},
		RemoteMaps:      remoteMaps,
	}
	next := b.Rebased(reb)

	// A mirror position of 0 leaves nothing preceding it, so no
	// placeholder items should be materialized for the remote maps.
	if next.Len() != len(reb.Mirrors) {
		t.Fatalf("Len() = %d, want %d", next.Len(), len(reb.Mirrors))
	}
}

func TestBranchRebasedKeepsMirroredItems(t *testing.T) {
	st := state.NewEditorState("hello")
	var b Branch
	tr := st.Tr()
	tr.MaybeStep(stepmap.NewEditStep(5, "", " x"))
	sel := newBookmark(0)
	b = b.AddTransform(tr, &sel, 100, true)

	reb := Rebased{
		Mirrors:  []bool{true},
		NewSteps: []stepmap.Step{stepmap.NewEditStep(6, "", " x")},
		NewDocs:  []string{"hello "},
	}
	next := b.Rebased(reb)
	if next.EventCount() != 1 {
		t.Fatalf("EventCount() = %d, want 1 (mirrored item should keep its selection)", next.EventCount())
	}
}
