package stepmap

import "errors"

// ErrStepFailed describes a step that cannot be applied. No function in this
// package returns it: Apply, MapThrough, Merge and Transform.MaybeStep
// report failure through their boolean result, which callers treat as a
// graceful no-op, not a fatal condition.
var ErrStepFailed = errors.New("stepmap: step did not apply")

// Step is the external step collaborator: a single document transformation
// that knows how to invert, map itself through later changes, merge with an
// adjacent step, and report the forward position map it induces.
type Step interface {
	// Apply applies the step to doc, returning the resulting document.
	Apply(doc string) (string, bool)
	// Invert returns the step that undoes this step, given the document the
	// step was originally applied to.
	Invert(preDoc string) Step
	// MapThrough rebases the step onto a document shifted by mapping,
	// returning the adjusted step, or false if the step's target content no
	// longer exists.
	MapThrough(mapping *Mapping) (Step, bool)
	// Merge attempts to fuse this step with a directly-following step,
	// returning the fused step on success.
	Merge(other Step) (Step, bool)
	// ForwardMap returns the position map this step induces.
	ForwardMap() PositionMap
}

// EditStep is the concrete Step used throughout this module: replace the
// byte range [Start, Start+len(OldText)) with NewText.
type EditStep struct {
	Start   int64
	OldText string
	NewText string
}

// NewEditStep builds a step replacing oldText at start with newText.
func NewEditStep(start int64, oldText, newText string) EditStep {
	return EditStep{Start: start, OldText: oldText, NewText: newText}
}

func (s EditStep) end() int64 { return s.Start + int64(len(s.OldText)) }

// Apply implements Step.
func (s EditStep) Apply(doc string) (string, bool) {
	start, end := s.Start, s.end()
	if start < 0 || end > int64(len(doc)) || start > end {
		return "", false
	}
	if doc[start:end] != s.OldText {
		return "", false
	}
	return doc[:start] + s.NewText + doc[end:], true
}

// Invert implements Step.
func (s EditStep) Invert(preDoc string) Step {
	return EditStep{Start: s.Start, OldText: s.NewText, NewText: s.OldText}
}

// MapThrough implements Step.
func (s EditStep) MapThrough(mapping *Mapping) (Step, bool) {
	newStart, newEnd := mapping.MapRange(s.Start, s.end())
	if newEnd < newStart {
		return nil, false
	}
	return EditStep{Start: newStart, OldText: s.OldText, NewText: s.NewText}, true
}

// Merge implements Step. s and other coalesce in either of two shapes,
// checked symmetrically since callers merge in both directions (a tail
// item absorbing the step that was just recorded after it, and an item
// absorbing the inverted step that undoes most recently): one step's old
// range falls entirely inside the other's new range (coalescing adjacent
// character insertions within one event), or the two steps' old ranges are
// disjoint and directly abut (coalescing the inverted steps of two
// adjacent events, where neither range nests inside the other's edit).
func (s EditStep) Merge(other Step) (Step, bool) {
	o, ok := other.(EditStep)
	if !ok {
		return nil, false
	}

	if merged, ok := mergeNested(s, o); ok {
		return merged, true
	}
	if merged, ok := mergeNested(o, s); ok {
		return merged, true
	}
	if s.Start+int64(len(s.OldText)) == o.Start {
		return EditStep{Start: s.Start, OldText: s.OldText + o.OldText, NewText: s.NewText + o.NewText}, true
	}
	if o.Start+int64(len(o.OldText)) == s.Start {
		return EditStep{Start: o.Start, OldText: o.OldText + s.OldText, NewText: o.NewText + s.NewText}, true
	}
	return nil, false
}

// mergeNested handles the case where inner's old range lies entirely
// inside outer's new range, splicing inner's replacement into outer's.
func mergeNested(outer, inner EditStep) (EditStep, bool) {
	outerEndNew := outer.Start + int64(len(outer.NewText))
	if inner.Start < outer.Start || inner.Start > outerEndNew {
		return EditStep{}, false
	}
	if inner.Start+int64(len(inner.OldText)) > outerEndNew {
		return EditStep{}, false
	}
	offset := inner.Start - outer.Start
	mergedNew := outer.NewText[:offset] + inner.NewText + outer.NewText[offset+int64(len(inner.OldText)):]
	return EditStep{Start: outer.Start, OldText: outer.OldText, NewText: mergedNew}, true
}

// ForwardMap implements Step.
func (s EditStep) ForwardMap() PositionMap {
	return NewPositionMap(s.Start, int64(len(s.OldText)), int64(len(s.NewText)))
}
