package registry

import (
	"context"
	"time"

	"github.com/leeforge/console/errors"
	"github.com/leeforge/console/plugin"
	"go.uber.org/zap"
)

// LoadPlugin loads the named plugin's server capability without
// activating it. The factory is invoked at most once per plugin lifetime:
// a cached result short-circuits, and concurrent loads join the in-flight
// invocation. Omitting the capability argument loads "server".
//
// The "components" and "hooks" capabilities are never invoked here; a
// load request for them only verifies that the plugin declares them.
// Their factories are called on demand by the rendering layer.
func (r *Registry) LoadPlugin(ctx context.Context, name string, capability ...plugin.CapabilityKind) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.Newf(errors.CodeLoadError,
				"loading %q panicked: %v", name, rec).WithStack()
		}
	}()

	kind := plugin.CapabilityServer
	if len(capability) > 0 {
		kind = capability[0]
	}

	for {
		r.mu.Lock()

		rp, ok := r.plugins[name]
		if !ok {
			r.mu.Unlock()
			return errors.Newf(errors.CodePluginNotFound,
				"plugin %q is not registered", name)
		}

		if kind != plugin.CapabilityServer {
			declared := rp.descriptor.Capabilities.Has(kind)
			r.mu.Unlock()
			if !declared {
				return errors.Newf(errors.CodeLoadFailed,
					"plugin %q does not declare the %q capability", name, kind).
					WithDetail("capability", string(kind))
			}
			return nil
		}

		if rp.descriptor.Capabilities.Server == nil || rp.loaded {
			r.mu.Unlock()
			return nil
		}
		if fut, loading := r.inflight[name]; loading {
			r.mu.Unlock()
			if e := fut.wait(); e != nil {
				return e
			}
			continue
		}

		fut := newInflight()
		r.inflight[name] = fut
		factory := rp.descriptor.Capabilities.Server
		r.mu.Unlock()

		if e := r.finishLoad(ctx, name, fut, factory); e != nil {
			return e
		}
		return nil
	}
}

func (r *Registry) finishLoad(ctx context.Context, name string, fut *inflight, factory plugin.Factory) *errors.Error {
	var lerr *errors.Error

	value, ferr := invokeFactory(ctx, factory)
	if ferr != nil {
		lerr = errors.Wrap(errors.CodeLoadFailed,
			"server capability factory failed", ferr).
			WithDetail("plugin", name).
			WithStack()
		if inner := errors.FromError(ferr); inner != nil && len(inner.Stack) > 0 {
			lerr.WithDetail("trace", inner.Stack)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	defer func() { fut.complete(lerr) }()

	delete(r.inflight, name)

	rp, ok := r.plugins[name]
	if !ok {
		lerr = errors.Newf(errors.CodePluginNotFound,
			"plugin %q was unregistered while loading", name)
		return lerr
	}

	if lerr != nil {
		// The capability stays unset so a later load can retry.
		r.failures[name] = lerr
		r.logger.Warn("plugin load failed",
			zap.String("name", name), zap.Error(lerr))
		return lerr
	}

	rp.capability = value
	rp.loaded = true
	r.logger.Info("plugin loaded", zap.String("name", name))
	return nil
}

// UnloadPlugin returns the named plugin to a pristine Idle state: it is
// deactivated if active, and its cached capability, load timestamp and
// any recorded failure are cleared. A failed deactivation (active
// dependents) aborts the unload.
func (r *Registry) UnloadPlugin(name string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.Newf(errors.CodeUnloadFailed,
				"unloading %q panicked: %v", name, rec).WithStack()
		}
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	rp, ok := r.plugins[name]
	if !ok {
		return errors.Newf(errors.CodePluginNotFound,
			"plugin %q is not registered", name)
	}

	if e := r.deactivateLocked(name); e != nil {
		return e
	}

	rp.capability = nil
	rp.loaded = false
	rp.loadedAt = time.Time{}
	rp.status = plugin.StatusIdle
	delete(r.failures, name)

	r.logger.Info("plugin unloaded", zap.String("name", name))
	return nil
}
