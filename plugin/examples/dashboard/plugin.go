// Package dashboard is a reference plugin showing how a descriptor
// supplier hands capabilities to the registry.
package dashboard

import (
	"context"

	"github.com/leeforge/console/plugin"
	"go.uber.org/zap"
)

// Server is the value produced by the dashboard's server capability.
// The registry caches it after the first load; the rendering layer
// retrieves it via Registry.Capability.
type Server struct {
	logger *zap.Logger
	config plugin.ConfigProvider
}

// Descriptor builds the dashboard plugin descriptor. The core plugin has
// no dependencies; its server capability wires the scoped config and
// logger into the Server on first load.
func Descriptor(logger *zap.Logger, config plugin.ConfigProvider) plugin.Descriptor {
	return plugin.Descriptor{
		Name:    "dashboard",
		Kind:    plugin.KindCore,
		Version: "1.0.0",
		Capabilities: plugin.Capabilities{
			Server: func(ctx context.Context) (any, error) {
				srv := &Server{logger: logger, config: config}
				logger.Info("dashboard server ready",
					zap.String("title", srv.Title()))
				return srv, nil
			},
			Components: func(ctx context.Context) (any, error) {
				return []string{"summary", "activity", "system-load"}, nil
			},
		},
	}
}

// Title returns the configured dashboard title.
func (s *Server) Title() string {
	return s.config.GetString("title", "Overview")
}

// Columns returns the configured grid width.
func (s *Server) Columns() int {
	return s.config.GetInt("columns", 3)
}
