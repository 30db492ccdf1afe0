package registry

import (
	"context"

	"github.com/leeforge/console/errors"
)

// ActivateMultiple activates the named plugins in order. The first
// failure aborts the run and is returned wrapped; plugins processed
// before it keep whatever state their own activation left them in.
// There is no rollback.
func (r *Registry) ActivateMultiple(ctx context.Context, names []string) error {
	for _, name := range names {
		if err := r.Activate(ctx, name); err != nil {
			return errors.Wrap(errors.CodeBulkActivationFailed,
				"bulk activation aborted", err).
				WithDetail("plugin", name)
		}
	}
	return nil
}

// DeactivateMultiple deactivates the named plugins in order with the
// same fail-fast, no-rollback semantics as ActivateMultiple.
func (r *Registry) DeactivateMultiple(names []string) error {
	for _, name := range names {
		if err := r.Deactivate(name); err != nil {
			return errors.Wrap(errors.CodeBulkDeactivationFailed,
				"bulk deactivation aborted", err).
				WithDetail("plugin", name)
		}
	}
	return nil
}

// ReloadAll deactivates every active plugin and reactivates the same
// snapshot. The reload is not atomic: an abort during either phase
// leaves the partial result visible.
func (r *Registry) ReloadAll(ctx context.Context) error {
	snapshot := r.ActivePlugins()

	if err := r.DeactivateMultiple(snapshot); err != nil {
		return errors.Wrap(errors.CodeReloadAllFailed,
			"reload aborted during deactivation", err)
	}
	if err := r.ActivateMultiple(ctx, snapshot); err != nil {
		return errors.Wrap(errors.CodeReloadAllFailed,
			"reload aborted during reactivation", err)
	}
	return nil
}
