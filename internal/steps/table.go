// Package steps classifies legacy workflow processes by their support on the cloud service.
package steps

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/codebypatrickleung/wfmigrate/internal/model"
)

//go:embed steps.yaml
var defaultTable []byte

// Table is an immutable map from process identifier to support status.
type Table struct {
	statuses map[string]model.SupportStatus
}

// NewTable builds a Table from a copy of entries.
func NewTable(entries map[string]model.SupportStatus) *Table {
	statuses := make(map[string]model.SupportStatus, len(entries))
	for k, v := range entries {
		statuses[k] = v
	}
	return &Table{statuses: statuses}
}

// LoadTable reads a YAML document mapping status names to lists of process identifiers.
func LoadTable(r io.Reader) (*Table, error) {
	var raw map[string][]string
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse step table: %w", err)
	}

	statuses := make(map[string]model.SupportStatus)
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		status, err := model.ParseSupportStatus(name)
		if err != nil {
			return nil, fmt.Errorf("invalid step table: %w", err)
		}
		for _, processID := range raw[name] {
			if prev, exists := statuses[processID]; exists && prev != status {
				return nil, fmt.Errorf("invalid step table: %s listed as both %s and %s", processID, prev, status)
			}
			statuses[processID] = status
		}
	}
	return &Table{statuses: statuses}, nil
}

// LoadTableFile reads a step table from path.
func LoadTableFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open step table: %w", err)
	}
	defer f.Close()
	return LoadTable(f)
}

// DefaultTable returns the table bundled with the binary.
func DefaultTable() (*Table, error) {
	return LoadTable(bytes.NewReader(defaultTable))
}

// Lookup returns the configured status of processID.
func (t *Table) Lookup(processID string) (model.SupportStatus, bool) {
	s, ok := t.statuses[processID]
	return s, ok
}

// Len returns the number of configured processes.
func (t *Table) Len() int {
	return len(t.statuses)
}
