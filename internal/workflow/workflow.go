package workflow

import (
	"context"
	"fmt"

	"github.com/codebypatrickleung/wfmigrate/internal/config"
	"github.com/codebypatrickleung/wfmigrate/internal/logger"
)

// Manager selects the handler for the configured route and runs it.
type Manager struct {
	config  *config.Config
	logger  *logger.Logger
	handler Handler
	version string
}

// newDefaultRegistry registers every built-in handler.
func newDefaultRegistry() (*Registry, error) {
	registry := NewRegistry()
	for _, h := range []Handler{NewAEMToCloudHandler()} {
		if err := registry.Register(h); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", h.Name(), err)
		}
	}
	return registry, nil
}

// NewManager creates a Manager with an initialized handler for cfg's route.
func NewManager(cfg *config.Config, log *logger.Logger, version string) (*Manager, error) {
	registry, err := newDefaultRegistry()
	if err != nil {
		return nil, err
	}

	handler, err := registry.Get(cfg.SourcePlatform, cfg.TargetPlatform)
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow handler: %w", err)
	}
	if err := handler.Initialize(cfg, log); err != nil {
		return nil, fmt.Errorf("failed to initialize %s: %w", handler.Name(), err)
	}

	return &Manager{
		config:  cfg,
		logger:  log,
		handler: handler,
		version: version,
	}, nil
}

// Run executes the handler and logs a summary of the changes it recorded.
func (m *Manager) Run(ctx context.Context) error {
	m.logger.Info("=========================================")
	m.logger.Infof("wfmigrate - Asset Workflow Migration Tool v%s", m.version)
	m.logger.Info("=========================================")
	m.logger.Infof("Route: %s", routeKey(m.config.SourcePlatform, m.config.TargetPlatform))
	m.logger.Infof("Project: %s", m.config.ProjectPath)
	m.logger.Info("=========================================")

	err := m.handler.Execute(ctx)
	if r, ok := m.handler.(Reporter); ok {
		m.summarize(r)
	}
	if err != nil {
		m.logger.Errorf("Workflow failed: %v", err)
		return err
	}
	return nil
}

func (m *Manager) summarize(r Reporter) {
	t := r.Tracker()
	if t == nil {
		return
	}
	m.logger.Infof("Run %s summary:", t.RunID())
	if !t.HasChanges() {
		m.logger.Warning("  No workflow configuration was changed")
	}
	m.logger.Infof("  Launchers disabled:   %d", len(t.DisabledLaunchers()))
	m.logger.Infof("  Profiles created:     %d", len(t.CreatedProfiles()))
	m.logger.Infof("  Models modified:      %d", len(t.ModifiedModels()))
	m.logger.Infof("  Runner configs:       %d", len(t.RunnerConfigs()))
	if n := len(t.Failures()); n > 0 {
		m.logger.Warningf("  Migration issues:     %d", n)
	}
	if path := r.ReportPath(); path != "" {
		m.logger.Infof("  Report:               %s", path)
	}
}
