package registry

import (
	"sort"
	"sync"
	"time"

	validatorV10 "github.com/go-playground/validator/v10"
	"github.com/leeforge/console/errors"
	"github.com/leeforge/console/plugin"
	"go.uber.org/zap"
)

// Config holds configuration for creating a new Registry.
type Config struct {
	Logger *zap.Logger
}

// registeredPlugin is the mutable catalog entry wrapping a descriptor.
// Its fields are only touched by the registry itself, under r.mu.
type registeredPlugin struct {
	descriptor plugin.Descriptor
	status     plugin.Status
	loadedAt   time.Time // zero until the first successful activation
	capability any       // cached result of the server capability factory
	loaded     bool      // capability is cached (the result itself may be nil)
}

// Registry owns all plugin catalog, lifecycle, navigation and dependency
// state for one console process. All mutations are serialized through a
// single mutex; capability factories run outside the lock.
type Registry struct {
	mu       sync.RWMutex
	logger   *zap.Logger
	validate *validatorV10.Validate

	plugins  map[string]*registeredPlugin
	active   map[string]struct{}
	inflight map[string]*inflight
	failures map[string]*errors.Error
	nav      navigationState
}

// New creates an empty Registry.
func New(cfg Config) *Registry {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Registry{
		logger:   cfg.Logger,
		validate: validatorV10.New(),
		plugins:  make(map[string]*registeredPlugin),
		active:   make(map[string]struct{}),
		inflight: make(map[string]*inflight),
		failures: make(map[string]*errors.Error),
		nav:      newNavigationState(),
	}
}

// Register adds a plugin descriptor to the catalog with status Idle.
// The descriptor is validated structurally; a duplicate name fails
// without mutating any state.
func (r *Registry) Register(desc plugin.Descriptor) error {
	if err := r.validate.Struct(desc); err != nil {
		e := errors.Wrap(errors.CodeRegistrationFailed,
			"plugin descriptor failed validation", err)
		if fieldErrs, ok := err.(validatorV10.ValidationErrors); ok {
			fields := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				fields = append(fields, fe.Namespace())
			}
			e.WithDetail("fields", fields)
		}
		return e
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[desc.Name]; exists {
		return errors.Newf(errors.CodePluginAlreadyExists,
			"plugin %q is already registered", desc.Name)
	}

	r.plugins[desc.Name] = &registeredPlugin{
		descriptor: desc,
		status:     plugin.StatusIdle,
	}

	r.logger.Info("plugin registered",
		zap.String("name", desc.Name),
		zap.String("kind", string(desc.Kind)),
		zap.String("version", desc.Version))
	return nil
}

// Unregister removes a plugin from the catalog. It fails while any other
// registered plugin, active or not, declares this plugin as a dependency.
// An active plugin is deactivated first; a deactivation failure aborts
// the unregistration.
func (r *Registry) Unregister(name string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.Newf(errors.CodeUnregistrationFailed,
				"unregistering %q panicked: %v", name, rec).WithStack()
		}
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plugins[name]; !ok {
		return errors.Newf(errors.CodePluginNotFound,
			"plugin %q is not registered", name)
	}

	if dependents := r.dependentsLocked(name); len(dependents) > 0 {
		return errors.Newf(errors.CodeHasDependents,
			"plugin %q is required by other registered plugins", name).
			WithDetail("dependents", dependents)
	}

	if e := r.deactivateLocked(name); e != nil {
		return e
	}

	delete(r.plugins, name)
	delete(r.failures, name)
	r.clearSelectionLocked(name)

	r.logger.Info("plugin unregistered", zap.String("name", name))
	return nil
}

// Info is a point-in-time view of one catalog entry.
type Info struct {
	Name         string                  `json:"name"`
	Kind         plugin.Kind             `json:"kind"`
	Version      string                  `json:"version"`
	Dependencies []string                `json:"dependencies,omitempty"`
	Capabilities []plugin.CapabilityKind `json:"capabilities,omitempty"`
	Status       plugin.Status           `json:"status"`
	Loaded       bool                    `json:"loaded"`
	LoadedAt     *time.Time              `json:"loadedAt,omitempty"`
}

func (r *Registry) infoLocked(name string, rp *registeredPlugin) Info {
	info := Info{
		Name:         name,
		Kind:         rp.descriptor.Kind,
		Version:      rp.descriptor.Version,
		Dependencies: append([]string(nil), rp.descriptor.Dependencies...),
		Capabilities: rp.descriptor.Capabilities.Kinds(),
		Status:       rp.status,
		Loaded:       rp.loaded,
	}
	if !rp.loadedAt.IsZero() {
		at := rp.loadedAt
		info.LoadedAt = &at
	}
	return info
}

// GetPlugin returns a snapshot of one plugin's catalog entry.
func (r *Registry) GetPlugin(name string) (Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rp, ok := r.plugins[name]
	if !ok {
		return Info{}, false
	}
	return r.infoLocked(name, rp), true
}

// ActivePlugins returns the names of all active plugins, sorted.
func (r *Registry) ActivePlugins() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.active)
}

// LoadingState returns the names of all plugins with an in-flight load,
// sorted.
func (r *Registry) LoadingState() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.inflight)
}

// IsPluginActive reports whether the named plugin is currently active.
func (r *Registry) IsPluginActive(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.active[name]
	return ok
}

// IsPluginLoaded reports whether the named plugin's server capability
// result is cached.
func (r *Registry) IsPluginLoaded(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rp, ok := r.plugins[name]
	return ok && rp.loaded
}

// Capability returns the cached server capability value for the named
// plugin, if one has been loaded.
func (r *Registry) Capability(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rp, ok := r.plugins[name]
	if !ok || !rp.loaded {
		return nil, false
	}
	return rp.capability, true
}

// HasErrors reports whether any plugin, or each of the given plugins,
// carries a recorded failure.
func (r *Registry) HasErrors(names ...string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(names) == 0 {
		return len(r.failures) > 0
	}
	for _, name := range names {
		if _, ok := r.failures[name]; !ok {
			return false
		}
	}
	return true
}

// PluginError returns the recorded failure for the named plugin, if any.
func (r *Registry) PluginError(name string) (*errors.Error, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.failures[name]
	return e, ok
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
