// Package workflow defines the migration handlers and the manager that runs them.
package workflow

import (
	"context"

	"github.com/codebypatrickleung/wfmigrate/internal/audit"
	"github.com/codebypatrickleung/wfmigrate/internal/config"
	"github.com/codebypatrickleung/wfmigrate/internal/logger"
)

// Handler migrates one kind of project from a source platform to a target platform.
type Handler interface {
	Name() string
	SourcePlatform() string
	TargetPlatform() string

	// Initialize binds the handler to cfg; it must be called once before Execute.
	Initialize(cfg *config.Config, log *logger.Logger) error

	// Execute runs every migration step in order and stops at the first failing one.
	Execute(ctx context.Context) error
}

// Reporter is implemented by handlers that record what a run changed.
type Reporter interface {
	Tracker() *audit.Tracker
	ReportPath() string
}

// Publisher uploads the files below dir, naming them prefix/<relative path>.
type Publisher interface {
	Publish(ctx context.Context, prefix, dir string) (int, error)
}
