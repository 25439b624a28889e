package steps

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codebypatrickleung/wfmigrate/internal/model"
)

const (
	offloadingProcess = "com.day.cq.dam.core.process.AssetOffloadingProcess"
	emailProcess      = "com.day.cq.dam.core.impl.process.SendTransientWorkflowCompletedEmailProcess"
	languageCopy      = "com.day.cq.dam.core.impl.process.CreateAssetLanguageCopyProcess"
	completedProcess  = "com.day.cq.dam.core.impl.process.DamUpdateAssetWorkflowCompletedProcess"
	customProcess     = "com.example.CustomProcess"
)

func TestDefaultTable(t *testing.T) {
	table, err := DefaultTable()
	require.NoError(t, err)
	assert.Greater(t, table.Len(), 10)

	c := NewClassifier(table)
	tests := []struct {
		processID string
		status    model.SupportStatus
		enabled   bool
		optional  bool
	}{
		{offloadingProcess, model.StatusNuiOOTB, false, false},
		{emailProcess, model.StatusOptional, true, true},
		{languageCopy, model.StatusSupported, true, false},
		{completedProcess, model.StatusRequired, true, true},
		{"com.day.cq.dam.core.process.CreateWebEnabledImageProcess", model.StatusNuiMigrated, false, false},
		{"com.day.cq.dam.core.process.CommandLineProcess", model.StatusUnsupported, false, false},
		{customProcess, model.StatusUnknown, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.processID, func(t *testing.T) {
			assert.Equal(t, tt.status, c.Classify(tt.processID))
			assert.Equal(t, tt.enabled, c.IsEnabled(tt.processID))
			assert.Equal(t, tt.optional, c.IsOptional(tt.processID))
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	c := NewClassifier(NewTable(map[string]model.SupportStatus{languageCopy: model.StatusSupported}))
	for i := 0; i < 5; i++ {
		assert.Equal(t, model.StatusUnknown, c.Classify(customProcess))
		assert.True(t, c.IsEnabled(customProcess))
		assert.Equal(t, model.StatusSupported, c.Classify(languageCopy))
	}
}

func TestNilTable(t *testing.T) {
	c := NewClassifier(nil)
	assert.Equal(t, model.StatusUnknown, c.Classify(offloadingProcess))
	assert.True(t, c.IsEnabled(offloadingProcess))
}

func TestNewTableCopiesEntries(t *testing.T) {
	entries := map[string]model.SupportStatus{customProcess: model.StatusUnsupported}
	table := NewTable(entries)
	entries[customProcess] = model.StatusSupported

	s, ok := table.Lookup(customProcess)
	require.True(t, ok)
	assert.Equal(t, model.StatusUnsupported, s)
}

func TestLoadTable(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expectErr bool
		size      int
	}{
		{"valid", "SUPPORTED:\n  - a\n  - b\nunsupported:\n  - c\n", false, 3},
		{"empty document", "", false, 0},
		{"unknown status", "MAYBE:\n  - a\n", true, 0},
		{"conflicting entries", "SUPPORTED:\n  - a\nUNSUPPORTED:\n  - a\n", true, 0},
		{"malformed yaml", "SUPPORTED: [a, b\n", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := LoadTable(strings.NewReader(tt.input))
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.size, table.Len())
		})
	}
}

func TestLoadTableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "steps.yaml")
	require.NoError(t, os.WriteFile(path, []byte("OPTIONAL:\n  - "+customProcess+"\n"), 0644))

	table, err := LoadTableFile(path)
	require.NoError(t, err)
	assert.True(t, NewClassifier(table).IsOptional(customProcess))

	_, err = LoadTableFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
