package registry

import (
	"github.com/leeforge/console/errors"
)

// NavigationSnapshot is a point-in-time view of the navigation state.
type NavigationSnapshot struct {
	SelectedPlugin string   `json:"selectedPlugin,omitempty"`
	SelectedPage   string   `json:"selectedPage,omitempty"`
	History        []string `json:"history"`
	Cursor         int      `json:"cursor"`
}

// Snapshot is a full consistent view of the registry for rendering.
type Snapshot struct {
	Plugins    []Info                   `json:"plugins"`
	Active     []string                 `json:"active"`
	Loading    []string                 `json:"loading"`
	Errors     map[string]*errors.Error `json:"errors,omitempty"`
	Navigation NavigationSnapshot       `json:"navigation"`
}

// State returns a consistent snapshot of the whole registry: catalog
// entries sorted by name, active and loading sets, recorded failures and
// the navigation state. The snapshot shares nothing mutable with the
// registry.
func (r *Registry) State() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := Snapshot{
		Plugins: make([]Info, 0, len(r.plugins)),
		Active:  sortedKeys(r.active),
		Loading: sortedKeys(r.inflight),
		Navigation: NavigationSnapshot{
			SelectedPlugin: r.nav.selectedPlugin,
			SelectedPage:   r.nav.selectedPage,
			History:        append([]string{}, r.nav.history...),
			Cursor:         r.nav.cursor,
		},
	}

	for _, name := range sortedKeys(r.plugins) {
		snap.Plugins = append(snap.Plugins, r.infoLocked(name, r.plugins[name]))
	}

	if len(r.failures) > 0 {
		snap.Errors = make(map[string]*errors.Error, len(r.failures))
		for name, e := range r.failures {
			snap.Errors[name] = e
		}
	}
	return snap
}
