package registry

import (
	"sort"

	"github.com/leeforge/console/errors"
)

// Graph maps every registered plugin name to its declared dependency
// names. It is a point-in-time snapshot, not kept in sync with the
// catalog; callers needing a live view should use Dependents.
type Graph map[string][]string

// ValidateDependencies checks that every dependency declared by the named
// plugin is registered. Dependencies do not need to be active. The check
// mutates nothing.
func (r *Registry) ValidateDependencies(name string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rp, ok := r.plugins[name]
	if !ok {
		return errors.Newf(errors.CodePluginNotFound,
			"plugin %q is not registered", name)
	}
	if missing := r.missingDependenciesLocked(rp); len(missing) > 0 {
		return errors.Newf(errors.CodeMissingDependencies,
			"plugin %q has unregistered dependencies", name).
			WithDetail("missing", missing)
	}
	return nil
}

// BuildDependencyGraph snapshots the dependency lists of every registered
// plugin. Dependency cycles are not detected here; the graph records
// declarations as-is.
func (r *Registry) BuildDependencyGraph() (graph Graph, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			graph = nil
			err = errors.Newf(errors.CodeGraphBuildFailed,
				"building dependency graph panicked: %v", rec).WithStack()
		}
	}()

	r.mu.RLock()
	defer r.mu.RUnlock()

	graph = make(Graph, len(r.plugins))
	for name, rp := range r.plugins {
		deps := append([]string(nil), rp.descriptor.Dependencies...)
		sort.Strings(deps)
		graph[name] = deps
	}
	return graph, nil
}

// Dependents returns the names of every registered plugin that declares
// the named plugin as a dependency, regardless of active state. Sorted.
func (r *Registry) Dependents(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dependentsLocked(name)
}

func (r *Registry) dependentsLocked(name string) []string {
	var dependents []string
	for other, rp := range r.plugins {
		if other == name {
			continue
		}
		for _, dep := range rp.descriptor.Dependencies {
			if dep == name {
				dependents = append(dependents, other)
				break
			}
		}
	}
	sort.Strings(dependents)
	return dependents
}

func (r *Registry) missingDependenciesLocked(rp *registeredPlugin) []string {
	var missing []string
	for _, dep := range rp.descriptor.Dependencies {
		if _, ok := r.plugins[dep]; !ok {
			missing = append(missing, dep)
		}
	}
	sort.Strings(missing)
	return missing
}
