package host

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/leeforge/console/api"
	"github.com/leeforge/console/config"
	"github.com/leeforge/console/logging"
	"github.com/leeforge/console/plugin"
	"github.com/leeforge/console/registry"
	"go.uber.org/zap"
)

// Supplier produces zero or more plugin descriptors for registration.
// The host has no knowledge of how descriptors are authored.
type Supplier func() []plugin.Descriptor

// Options configures a new Host.
type Options struct {
	Config    *config.Config
	Logger    *zap.Logger // built from the config's logging section when nil
	Suppliers []Supplier
}

// Host wires the configuration, logger, registry and HTTP control
// surface into one console process.
type Host struct {
	cfg       *config.Config
	logger    *zap.Logger
	reg       *registry.Registry
	suppliers []Supplier
	handler   http.Handler
}

// New creates a Host. Bootstrap must be called before serving.
func New(opts Options) *Host {
	logger := opts.Logger
	if logger == nil && opts.Config != nil {
		logger = logging.New(opts.Config.Host().Logging)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	reg := registry.New(registry.Config{Logger: logger})
	return &Host{
		cfg:       opts.Config,
		logger:    logger,
		reg:       reg,
		suppliers: opts.Suppliers,
		handler:   api.NewHandler(reg).Routes(),
	}
}

// Registry exposes the underlying registry for direct (non-HTTP) callers.
func (h *Host) Registry() *registry.Registry {
	return h.reg
}

// Handler returns the HTTP control surface.
func (h *Host) Handler() http.Handler {
	return h.handler
}

// PluginConfig returns the scoped configuration for the named plugin.
func (h *Host) PluginConfig(name string) plugin.ConfigProvider {
	if h.cfg == nil {
		return plugin.EmptyConfig()
	}
	return h.cfg.PluginConfig(name)
}

// Bootstrap registers every supplied descriptor, then activates the
// plugins marked enabled in the host configuration, in name order. A
// failure on a plugin marked optional is logged and skipped; any other
// failure aborts the bootstrap.
func (h *Host) Bootstrap(ctx context.Context) error {
	start := time.Now()
	if ctx == nil {
		ctx = context.Background()
	}

	for _, supply := range h.suppliers {
		for _, desc := range supply() {
			if err := h.reg.Register(desc); err != nil {
				return fmt.Errorf("registering plugin %q: %w", desc.Name, err)
			}
		}
	}

	if h.cfg != nil {
		for _, name := range h.cfg.EnabledPlugins() {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("bootstrap canceled: %w", err)
			}
			if err := h.reg.Activate(ctx, name); err != nil {
				if h.cfg.Host().Plugins[name].Optional {
					h.logger.Warn("optional plugin failed, continuing",
						zap.String("plugin", name), zap.Error(err))
					continue
				}
				return fmt.Errorf("required plugin %q failed: %w", name, err)
			}
		}
	}

	h.logger.Info("bootstrap completed",
		zap.Duration("duration", time.Since(start)),
		zap.Int("active", len(h.reg.ActivePlugins())))
	return nil
}

// Serve runs the HTTP control surface until ctx is canceled.
func (h *Host) Serve(ctx context.Context) error {
	listen := ":8640"
	if h.cfg != nil {
		listen = h.cfg.Host().Listen
	}

	srv := &http.Server{
		Addr:    listen,
		Handler: h.handler,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
