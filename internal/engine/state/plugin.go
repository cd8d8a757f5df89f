package state

import "github.com/google/uuid"

// PluginKey identifies an installed plugin for the purposes of per-plugin
// state lookup. Each key carries a uuid so that two plugins registered
// under the same human-readable name remain distinguishable, mirroring the
// identity-based lookup the teacher's plugin manager performs by name.
type PluginKey struct {
	Name string
	id   uuid.UUID
}

// NewPluginKey allocates a fresh key for a plugin named name.
func NewPluginKey(name string) PluginKey {
	return PluginKey{Name: name, id: uuid.New()}
}

// Plugin is the minimal plugin-infrastructure collaborator the history
// engine needs: identity, and whether it is collaboration-aware (i.e.
// whether the host may later rebase transactions, which forces the history
// engine's preserveItems behavior).
type Plugin struct {
	Key           PluginKey
	Collaboration bool
}

// NewPlugin registers a plugin under key.
func NewPlugin(key PluginKey, collaboration bool) *Plugin {
	return &Plugin{Key: key, Collaboration: collaboration}
}
