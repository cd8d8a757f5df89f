package stepmap

// Transform is the external Transform collaborator: an ordered list of
// steps applied in sequence to a starting document, together with the
// pre-edit document captured before each step and the cumulative mapping
// those steps induce. It also carries arbitrary metadata, mirroring the
// transaction metadata keys the history engine inspects.
type Transform struct {
	startDoc string
	doc      string
	steps    []Step
	docs     []string
	mapping  *Mapping
	meta     map[string]any
	failed   string
	selection    any
	scrollIntoView bool

	// Time is the logical timestamp of the transaction, used for the
	// grouping heuristic. Zero means "unset".
	Time int64
}

// NewTransform starts a transform over doc.
func NewTransform(doc string) *Transform {
	return &Transform{startDoc: doc, doc: doc, mapping: NewMapping(), meta: map[string]any{}}
}

// Steps returns the steps applied so far.
func (t *Transform) Steps() []Step { return t.steps }

// Docs returns the pre-edit document captured before each step.
func (t *Transform) Docs() []string { return t.docs }

// Mapping returns the cumulative mapping of all steps applied so far.
func (t *Transform) Mapping() *Mapping { return t.mapping }

// Doc returns the document after all steps applied so far.
func (t *Transform) Doc() string { return t.doc }

// StartDoc returns the document the transform began from.
func (t *Transform) StartDoc() string { return t.startDoc }

// Failed reports the reason the most recent MaybeStep call failed, if any.
func (t *Transform) Failed() string { return t.failed }

// MaybeStep attempts to apply step to the current document, recording it
// and extending the mapping on success. It never panics on a step that does
// not apply; it reports failure instead, per the engine's graceful
// degradation contract.
func (t *Transform) MaybeStep(step Step) (doc string, ok bool) {
	newDoc, applied := step.Apply(t.doc)
	if !applied {
		t.failed = "step did not apply to the current document"
		return t.doc, false
	}
	t.docs = append(t.docs, t.doc)
	t.steps = append(t.steps, step)
	t.mapping.AppendMap(step.ForwardMap())
	t.doc = newDoc
	t.failed = ""
	return t.doc, true
}

// SetMeta attaches a metadata value under key.
func (t *Transform) SetMeta(key string, value any) *Transform {
	t.meta[key] = value
	return t
}

// GetMeta retrieves a metadata value.
func (t *Transform) GetMeta(key string) (any, bool) {
	v, ok := t.meta[key]
	return v, ok
}

// SetSelection records the selection the dispatcher should restore once
// this transform is applied. The concrete type is opaque to this package
// (the state package's Bookmark, in practice) to avoid an import cycle.
func (t *Transform) SetSelection(sel any) *Transform {
	t.selection = sel
	return t
}

// Selection returns the selection set by SetSelection, if any.
func (t *Transform) Selection() (any, bool) {
	if t.selection == nil {
		return nil, false
	}
	return t.selection, true
}

// ScrollIntoView marks that the dispatcher should scroll the restored
// selection into view once this transform is applied.
func (t *Transform) ScrollIntoView() *Transform {
	t.scrollIntoView = true
	return t
}

// ShouldScrollIntoView reports whether ScrollIntoView was called.
func (t *Transform) ShouldScrollIntoView() bool {
	return t.scrollIntoView
}
