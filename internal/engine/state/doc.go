// Package state provides concrete implementations of the editor-state and
// plugin-infrastructure collaborators the history engine otherwise treats
// as opaque: EditorState (document plus selection plus installed plugins),
// Bookmark (a selection reference that survives document changes via
// position mapping), and a minimal Plugin/PluginKey registry used to decide
// whether a collaboration-aware plugin is installed.
package state
