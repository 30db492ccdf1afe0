package registry

import (
	"context"
	"time"

	"github.com/leeforge/console/errors"
	"github.com/leeforge/console/plugin"
	"go.uber.org/zap"
)

// inflight is the shared result of one in-progress capability load.
// Concurrent Activate/LoadPlugin calls on the same plugin wait on it
// instead of invoking the factory a second time.
type inflight struct {
	done chan struct{}
	err  *errors.Error
}

func newInflight() *inflight {
	return &inflight{done: make(chan struct{})}
}

func (f *inflight) complete(err *errors.Error) {
	f.err = err
	close(f.done)
}

func (f *inflight) wait() *errors.Error {
	<-f.done
	return f.err
}

// Activate transitions the named plugin Idle → Loading → Active. It is
// idempotent for an already-active plugin, validates dependencies before
// mutating anything, and deduplicates concurrent calls against the same
// in-flight load. A loader failure leaves the plugin Failed; calling
// Activate again retries and clears the failure record on success.
func (r *Registry) Activate(ctx context.Context, name string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.Newf(errors.CodeActivationError,
				"activating %q panicked: %v", name, rec).WithStack()
		}
	}()

	for {
		r.mu.Lock()

		rp, ok := r.plugins[name]
		if !ok {
			r.mu.Unlock()
			return errors.Newf(errors.CodePluginNotFound,
				"plugin %q is not registered", name)
		}
		if _, active := r.active[name]; active {
			r.mu.Unlock()
			return nil
		}
		if fut, loading := r.inflight[name]; loading {
			r.mu.Unlock()
			if e := fut.wait(); e != nil {
				return e
			}
			// The load this call joined may have been a bare LoadPlugin,
			// which does not activate. Re-check from the top.
			continue
		}

		if missing := r.missingDependenciesLocked(rp); len(missing) > 0 {
			r.mu.Unlock()
			return errors.Newf(errors.CodeMissingDependencies,
				"plugin %q has unregistered dependencies", name).
				WithDetail("missing", missing)
		}

		fut := newInflight()
		r.inflight[name] = fut
		rp.status = plugin.StatusLoading

		var factory plugin.Factory
		if rp.descriptor.Capabilities.Server != nil && !rp.loaded {
			factory = rp.descriptor.Capabilities.Server
		}
		r.mu.Unlock()

		if e := r.finishActivation(ctx, name, fut, factory); e != nil {
			return e
		}
		return nil
	}
}

// finishActivation runs the (possibly suspending) factory outside the
// lock, then applies the resulting state transition and completes the
// in-flight future.
func (r *Registry) finishActivation(ctx context.Context, name string, fut *inflight, factory plugin.Factory) *errors.Error {
	var (
		aerr   *errors.Error
		value  any
		loaded bool
	)
	if factory != nil {
		v, ferr := invokeFactory(ctx, factory)
		if ferr != nil {
			aerr = errors.Wrap(errors.CodeActivationFailed,
				"server capability failed to load", ferr).
				WithDetail("plugin", name).
				WithStack()
		} else {
			value = v
			loaded = true
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	defer func() { fut.complete(aerr) }()

	delete(r.inflight, name)

	rp, ok := r.plugins[name]
	if !ok {
		aerr = errors.Newf(errors.CodePluginNotFound,
			"plugin %q was unregistered while loading", name)
		return aerr
	}

	if aerr != nil {
		rp.status = plugin.StatusFailed
		r.failures[name] = aerr
		r.logger.Warn("plugin activation failed",
			zap.String("name", name), zap.Error(aerr))
		return aerr
	}

	if loaded {
		rp.capability = value
		rp.loaded = true
	}
	rp.status = plugin.StatusActive
	if rp.loadedAt.IsZero() {
		rp.loadedAt = time.Now()
	}
	r.active[name] = struct{}{}
	delete(r.failures, name)

	r.logger.Info("plugin activated", zap.String("name", name))
	return nil
}

// Deactivate transitions the named plugin Active → Idle. Deactivating a
// plugin that is not active, including one that was never registered, is
// a no-op. The call fails without mutation while other active plugins
// depend on this one.
func (r *Registry) Deactivate(name string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.Newf(errors.CodeDeactivationFailed,
				"deactivating %q panicked: %v", name, rec).WithStack()
		}
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	if e := r.deactivateLocked(name); e != nil {
		return e
	}
	return nil
}

func (r *Registry) deactivateLocked(name string) *errors.Error {
	if _, active := r.active[name]; !active {
		return nil
	}

	var activeDependents []string
	for _, dep := range r.dependentsLocked(name) {
		if _, ok := r.active[dep]; ok {
			activeDependents = append(activeDependents, dep)
		}
	}
	if len(activeDependents) > 0 {
		return errors.Newf(errors.CodeHasActiveDependents,
			"plugin %q is required by active plugins", name).
			WithDetail("dependents", activeDependents)
	}

	delete(r.active, name)
	r.plugins[name].status = plugin.StatusIdle
	r.clearSelectionLocked(name)

	r.logger.Info("plugin deactivated", zap.String("name", name))
	return nil
}

// invokeFactory shields the registry from a panicking capability factory.
func invokeFactory(ctx context.Context, factory plugin.Factory) (value any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			value = nil
			err = errors.Newf(errors.CodeLoadFailed,
				"capability factory panicked: %v", rec).WithStack()
		}
	}()
	return factory(ctx)
}
