package itemlist

// Tree shape constants: the maximum number of elements in a leaf and of
// children in an internal node.
const (
	maxLeafItems = 8
	maxChildren  = 8
)

// node is one node of the persistent tree. A leaf (height == 0) stores
// elements directly; an internal node stores child nodes. Nodes are never
// mutated after construction — every operation that would change a node
// builds a replacement and shares the rest of the tree.
type node[T any] struct {
	height   int
	count    int
	items    []T
	children []*node[T]
}

func newLeaf[T any](items []T) *node[T] {
	return &node[T]{height: 0, count: len(items), items: items}
}

func newInternal[T any](children []*node[T]) *node[T] {
	n := &node[T]{height: children[0].height + 1, children: children}
	for _, c := range children {
		n.count += c.count
	}
	return n
}

func (n *node[T]) at(i int) T {
	if n.height == 0 {
		return n.items[i]
	}
	for _, c := range n.children {
		if i < c.count {
			return c.at(i)
		}
		i -= c.count
	}
	panic("itemlist: index out of range")
}

func (n *node[T]) flatten(out []T) []T {
	if n == nil {
		return out
	}
	if n.height == 0 {
		return append(out, n.items...)
	}
	for _, c := range n.children {
		out = c.flatten(out)
	}
	return out
}

func (n *node[T]) forEach(fn func(i int, v T) bool, base int) (int, bool) {
	if n == nil {
		return base, true
	}
	if n.height == 0 {
		for _, v := range n.items {
			if !fn(base, v) {
				return base, false
			}
			base++
		}
		return base, true
	}
	for _, c := range n.children {
		var cont bool
		base, cont = c.forEach(fn, base)
		if !cont {
			return base, false
		}
	}
	return base, true
}

// appendNode persistently appends v to the subtree rooted at n. It returns
// the replacement node and, when n was full, an overflow sibling of the
// same height that the caller must incorporate.
func appendNode[T any](n *node[T], v T) (*node[T], *node[T]) {
	if n == nil {
		return newLeaf([]T{v}), nil
	}
	if n.height == 0 {
		if len(n.items) < maxLeafItems {
			items := make([]T, len(n.items)+1)
			copy(items, n.items)
			items[len(n.items)] = v
			return newLeaf(items), nil
		}
		return n, newLeaf([]T{v})
	}
	lastIdx := len(n.children) - 1
	newLast, overflow := appendNode(n.children[lastIdx], v)
	children := make([]*node[T], len(n.children))
	copy(children, n.children)
	children[lastIdx] = newLast
	if overflow == nil {
		return newInternal(children), nil
	}
	if len(children) < maxChildren {
		children = append(children, overflow)
		return newInternal(children), nil
	}
	return newInternal(children), newInternal([]*node[T]{overflow})
}

func buildLevel[T any](nodes []*node[T]) *node[T] {
	if len(nodes) == 0 {
		return nil
	}
	if len(nodes) == 1 {
		return nodes[0]
	}
	next := make([]*node[T], 0, (len(nodes)+maxChildren-1)/maxChildren)
	for i := 0; i < len(nodes); i += maxChildren {
		end := i + maxChildren
		if end > len(nodes) {
			end = len(nodes)
		}
		group := make([]*node[T], end-i)
		copy(group, nodes[i:end])
		next = append(next, newInternal(group))
	}
	return buildLevel(next)
}

func fromSlice[T any](items []T) *node[T] {
	if len(items) == 0 {
		return nil
	}
	leaves := make([]*node[T], 0, (len(items)+maxLeafItems-1)/maxLeafItems)
	for i := 0; i < len(items); i += maxLeafItems {
		end := i + maxLeafItems
		if end > len(items) {
			end = len(items)
		}
		chunk := make([]T, end-i)
		copy(chunk, items[i:end])
		leaves = append(leaves, newLeaf(chunk))
	}
	return buildLevel(leaves)
}

// buildFromChildren assembles an internal node (or chain of internal nodes,
// if there are more than maxChildren of them) from an already-homogeneous
// slice of same-height children, same shape as buildLevel but for a single
// level's worth of children produced by split.
func buildFromChildren[T any](children []*node[T]) *node[T] {
	if len(children) == 0 {
		return nil
	}
	if len(children) == 1 {
		return children[0]
	}
	if len(children) <= maxChildren {
		return newInternal(children)
	}
	parents := make([]*node[T], 0, (len(children)+maxChildren-1)/maxChildren)
	for i := 0; i < len(children); i += maxChildren {
		end := i + maxChildren
		if end > len(children) {
			end = len(children)
		}
		group := make([]*node[T], end-i)
		copy(group, children[i:end])
		parents = append(parents, newInternal(group))
	}
	return buildFromChildren(parents)
}

// split divides the subtree rooted at n at index i, returning the left
// part [0,i) and the right part [i,n.count). Children entirely on one side
// of the cut are reused by pointer, not copied; only the spine down to the
// cut point is rebuilt, so split costs O(log n) plus the size of one leaf.
func (n *node[T]) split(i int) (*node[T], *node[T]) {
	if n == nil {
		return nil, nil
	}
	if i <= 0 {
		return nil, n
	}
	if i >= n.count {
		return n, nil
	}
	if n.height == 0 {
		left := make([]T, i)
		copy(left, n.items[:i])
		right := make([]T, len(n.items)-i)
		copy(right, n.items[i:])
		return newLeaf(left), newLeaf(right)
	}

	var leftChildren, rightChildren []*node[T]
	offset := 0
	for _, c := range n.children {
		switch {
		case offset+c.count <= i:
			leftChildren = append(leftChildren, c)
		case offset >= i:
			rightChildren = append(rightChildren, c)
		default:
			cl, cr := c.split(i - offset)
			if cl != nil {
				leftChildren = append(leftChildren, cl)
			}
			if cr != nil {
				rightChildren = append(rightChildren, cr)
			}
		}
		offset += c.count
	}
	return buildFromChildren(leftChildren), buildFromChildren(rightChildren)
}

// concatNodes joins left and right into one tree, sharing both subtrees by
// pointer wherever the branching factor allows and only rebuilding the
// nodes along the seam.
func concatNodes[T any](left, right *node[T]) *node[T] {
	if left == nil {
		return right
	}
	if right == nil {
		return left
	}
	if left.height == 0 && right.height == 0 {
		return concatLeaves(left, right)
	}
	for left.height < right.height {
		left = newInternal([]*node[T]{left})
	}
	for right.height < left.height {
		right = newInternal([]*node[T]{right})
	}
	return mergeNodes(left, right)
}

func concatLeaves[T any](left, right *node[T]) *node[T] {
	total := len(left.items) + len(right.items)
	if total <= maxLeafItems {
		items := make([]T, 0, total)
		items = append(items, left.items...)
		items = append(items, right.items...)
		return newLeaf(items)
	}
	return newInternal([]*node[T]{left, right})
}

// mergeNodes joins two same-height nodes, reusing both child slices by
// pointer and only allocating the new parent(s).
func mergeNodes[T any](left, right *node[T]) *node[T] {
	if left.height == 0 {
		return concatLeaves(left, right)
	}
	children := make([]*node[T], 0, len(left.children)+len(right.children))
	children = append(children, left.children...)
	children = append(children, right.children...)
	if len(children) <= maxChildren {
		return newInternal(children)
	}
	return buildFromChildren(children)
}

// List is a persistent, indexed sequence of T. The zero value is an empty
// list. Every mutating-looking method returns a new List and leaves the
// receiver's tree untouched, so two Lists may share structure freely.
type List[T any] struct {
	root *node[T]
}

// New returns an empty list.
func New[T any]() List[T] {
	return List[T]{}
}

// FromSlice builds a list containing a copy of items, in order.
func FromSlice[T any](items []T) List[T] {
	cp := make([]T, len(items))
	copy(cp, items)
	return List[T]{root: fromSlice(cp)}
}

// Len returns the number of elements in the list.
func (l List[T]) Len() int {
	if l.root == nil {
		return 0
	}
	return l.root.count
}

// IsEmpty reports whether the list has no elements.
func (l List[T]) IsEmpty() bool { return l.Len() == 0 }

// At returns the element at index i. It panics if i is out of range.
func (l List[T]) At(i int) T {
	if l.root == nil || i < 0 || i >= l.root.count {
		panic("itemlist: index out of range")
	}
	return l.root.at(i)
}

// Append returns a new list with v appended at the tail. This is the
// operation the history engine's Branch relies on most heavily, and it
// runs in O(log n) time and allocates only along the tree's spine.
func (l List[T]) Append(v T) List[T] {
	root, overflow := appendNode(l.root, v)
	if overflow != nil {
		root = newInternal([]*node[T]{root, overflow})
	}
	return List[T]{root: root}
}

// AppendSlice appends each element of items in order.
func (l List[T]) AppendSlice(items []T) List[T] {
	for _, v := range items {
		l = l.Append(v)
	}
	return l
}

// Slice returns the sublist [from, to). Both bounds are clamped to the
// list's length. It shares structure with l: only the nodes straddling the
// two cut points are rebuilt, so this runs in O(log n), not O(n).
func (l List[T]) Slice(from, to int) List[T] {
	n := l.Len()
	if from < 0 {
		from = 0
	}
	if to > n {
		to = n
	}
	if from >= to {
		return List[T]{}
	}
	_, after := l.root.split(from)
	mid, _ := after.split(to - from)
	return List[T]{root: mid}
}

// Concat returns a new list containing l's elements followed by other's.
// Both l and other are reused by pointer wherever the branching factor
// allows, so this runs in O(log n + log m), not O(n+m).
func (l List[T]) Concat(other List[T]) List[T] {
	return List[T]{root: concatNodes(l.root, other.root)}
}

// ToSlice materializes the list's elements into a fresh slice, in order.
func (l List[T]) ToSlice() []T {
	if l.root == nil {
		return nil
	}
	return l.root.flatten(make([]T, 0, l.root.count))
}

// ForEach calls fn for every element in order, stopping early if fn
// returns false.
func (l List[T]) ForEach(fn func(i int, v T) bool) {
	if l.root == nil {
		return
	}
	l.root.forEach(fn, 0)
}
