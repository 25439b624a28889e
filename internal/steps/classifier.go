package steps

import "github.com/codebypatrickleung/wfmigrate/internal/model"

// Classifier answers support questions about process identifiers from a fixed Table.
type Classifier struct {
	table *Table
}

// NewClassifier creates a Classifier backed by table. A nil table classifies everything as unknown.
func NewClassifier(table *Table) *Classifier {
	if table == nil {
		table = NewTable(nil)
	}
	return &Classifier{table: table}
}

// Classify returns the configured status, or StatusUnknown for unlisted processes.
func (c *Classifier) Classify(processID string) model.SupportStatus {
	if s, ok := c.table.Lookup(processID); ok {
		return s
	}
	return model.StatusUnknown
}

// IsEnabled reports whether the process may stay in a migrated workflow.
// Unknown processes are presumed customer-authored and stay enabled.
func (c *Classifier) IsEnabled(processID string) bool {
	return c.Classify(processID).Action() != model.ActionRemoved
}

// IsOptional reports whether the process alone does not justify running a migrated workflow.
func (c *Classifier) IsOptional(processID string) bool {
	s := c.Classify(processID)
	return s == model.StatusOptional || s == model.StatusRequired
}
