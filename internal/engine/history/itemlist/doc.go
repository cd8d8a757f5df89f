// Package itemlist implements a persistent, generic indexed sequence with
// O(log n) append, slice and concatenation and structural sharing between
// versions. It is a chunked B+ tree of the shape a text rope uses, over an
// arbitrary element type, so it can back a history Branch's ordered list
// of Items with a rope's amortized cost profile for deep,
// frequently-copied undo histories.
package itemlist
