package workflow

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/codebypatrickleung/wfmigrate/internal/audit"
	"github.com/codebypatrickleung/wfmigrate/internal/config"
	"github.com/codebypatrickleung/wfmigrate/internal/logger"
)

// MockHandler is a workflow handler that records its calls.
type MockHandler struct {
	name           string
	source         string
	target         string
	initCalled     bool
	executeCalled  bool
	shouldFailInit bool
	shouldFailExec bool
}

func (m *MockHandler) Name() string           { return m.name }
func (m *MockHandler) SourcePlatform() string { return m.source }
func (m *MockHandler) TargetPlatform() string { return m.target }

func (m *MockHandler) Initialize(cfg *config.Config, log *logger.Logger) error {
	m.initCalled = true
	if m.shouldFailInit {
		return &testError{"mock init error"}
	}
	return nil
}

func (m *MockHandler) Execute(ctx context.Context) error {
	m.executeCalled = true
	if m.shouldFailExec {
		return &testError{"mock execute error"}
	}
	return nil
}

// reportingHandler is a MockHandler that also exposes a tracker.
type reportingHandler struct {
	MockHandler
	tracker *audit.Tracker
}

func (r *reportingHandler) Tracker() *audit.Tracker { return r.tracker }
func (r *reportingHandler) ReportPath() string      { return "/tmp/migration-report.md" }

type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}

func TestRegistry(t *testing.T) {
	t.Run("Register and Get", func(t *testing.T) {
		registry := NewRegistry()
		handler := &MockHandler{name: "Test Handler", source: "aem", target: "aem-cloud"}

		if err := registry.Register(handler); err != nil {
			t.Fatalf("Failed to register handler: %v", err)
		}

		got, err := registry.Get("aem", "aem-cloud")
		if err != nil {
			t.Fatalf("Failed to get handler: %v", err)
		}
		if got.Name() != "Test Handler" {
			t.Errorf("Expected 'Test Handler', got '%s'", got.Name())
		}
	})

	t.Run("Register Duplicate Route", func(t *testing.T) {
		registry := NewRegistry()
		registry.Register(&MockHandler{name: "first", source: "aem", target: "aem-cloud"})

		err := registry.Register(&MockHandler{name: "second", source: "aem", target: "aem-cloud"})
		if err == nil {
			t.Fatal("Expected error when registering a route twice")
		}
		if !strings.Contains(err.Error(), `"first"`) {
			t.Errorf("Expected the error to name the existing handler, got '%v'", err)
		}
	})

	t.Run("Get Unknown Route Lists Supported Routes", func(t *testing.T) {
		registry := NewRegistry()
		registry.Register(&MockHandler{source: "aem", target: "aem-cloud"})

		_, err := registry.Get("azure", "oci")
		if err == nil {
			t.Fatal("Expected error for an unknown route")
		}
		if !strings.Contains(err.Error(), "azure-to-oci") || !strings.Contains(err.Error(), "aem-to-aem-cloud") {
			t.Errorf("Unexpected error '%v'", err)
		}
	})

	t.Run("Routes", func(t *testing.T) {
		registry := NewRegistry()
		registry.Register(&MockHandler{source: "b", target: "x"})
		registry.Register(&MockHandler{source: "a", target: "x"})

		routes := registry.Routes()
		if len(routes) != 2 || routes[0] != "a-to-x" || routes[1] != "b-to-x" {
			t.Errorf("Expected sorted routes [a-to-x b-to-x], got %v", routes)
		}
	})
}

func TestNewManager(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		target  string
		wantErr bool
	}{
		{"AEM to AEM Cloud", "aem", "aem-cloud", false},
		{"Unsupported Route", "unsupported", "platform", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				SourcePlatform: tt.source,
				TargetPlatform: tt.target,
				ProjectPath:    t.TempDir(),
				OutputDir:      t.TempDir(),
			}

			manager, err := NewManager(cfg, logger.New(false), "1.0.0")
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Failed to create manager: %v", err)
			}
			if manager.handler == nil {
				t.Error("Handler is nil")
			}
		})
	}
}

func TestManagerRun(t *testing.T) {
	cfg := &config.Config{SourcePlatform: "aem", TargetPlatform: "aem-cloud"}

	t.Run("Success", func(t *testing.T) {
		handler := &MockHandler{}
		m := &Manager{config: cfg, logger: logger.New(false), handler: handler, version: "1.0.0"}

		if err := m.Run(context.Background()); err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
		if !handler.executeCalled {
			t.Error("Expected Execute to be called")
		}
	})

	t.Run("Failure Is Returned", func(t *testing.T) {
		handler := &reportingHandler{MockHandler: MockHandler{shouldFailExec: true}, tracker: audit.NewTracker()}
		m := &Manager{config: cfg, logger: logger.New(false), handler: handler, version: "1.0.0"}

		err := m.Run(context.Background())
		if err == nil || err.Error() != "mock execute error" {
			t.Errorf("Expected mock execute error, got %v", err)
		}
	})
}

func TestManagerRunSummary(t *testing.T) {
	cfg := &config.Config{SourcePlatform: "aem", TargetPlatform: "aem-cloud"}

	tests := []struct {
		name      string
		track     func(*audit.Tracker)
		contains  []string
		forbidden []string
	}{
		{
			name:     "No Changes",
			track:    func(*audit.Tracker) {},
			contains: []string{"No workflow configuration was changed", "/tmp/migration-report.md"},
		},
		{
			name: "Changes And Issues",
			track: func(tr *audit.Tracker) {
				tr.TrackLauncherDisabled("launcher/config/custom/.content.xml")
				tr.TrackFailure("custom", "", "broken runtime")
			},
			contains:  []string{"Launchers disabled:   1", "Migration issues:     1"},
			forbidden: []string{"No workflow configuration was changed"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logFile := filepath.Join(t.TempDir(), "run.log")
			log, err := logger.NewWithFile(false, logFile)
			if err != nil {
				t.Fatalf("Failed to create logger: %v", err)
			}
			tracker := audit.NewTracker()
			tt.track(tracker)
			m := &Manager{config: cfg, logger: log, handler: &reportingHandler{tracker: tracker}, version: "1.0.0"}

			if err := m.Run(context.Background()); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			log.Close()

			content, err := os.ReadFile(logFile)
			if err != nil {
				t.Fatalf("Failed to read log file: %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(string(content), want) {
					t.Errorf("Expected log to contain %q", want)
				}
			}
			for _, unwanted := range tt.forbidden {
				if strings.Contains(string(content), unwanted) {
					t.Errorf("Expected log not to contain %q", unwanted)
				}
			}
		})
	}
}

func TestAEMToCloudHandler(t *testing.T) {
	handler := NewAEMToCloudHandler()

	t.Run("Name", func(t *testing.T) {
		if handler.Name() != "AEM to AEM Assets Cloud Service Workflow Migration" {
			t.Errorf("Unexpected name '%s'", handler.Name())
		}
	})

	t.Run("Route", func(t *testing.T) {
		if key := routeKey(handler.SourcePlatform(), handler.TargetPlatform()); key != "aem-to-aem-cloud" {
			t.Errorf("Expected 'aem-to-aem-cloud', got '%s'", key)
		}
	})

	t.Run("Implements Reporter", func(t *testing.T) {
		var h Handler = handler
		if _, ok := h.(Reporter); !ok {
			t.Error("Expected the handler to implement Reporter")
		}
	})
}
