// Package model defines the workflow, launcher and rendition types shared by the migration packages.
package model

// Metadata is an ordered string map holding the attributes of a step's metaData element.
// Lookups are by key; insertion order is kept so documents can be written back unchanged.
type Metadata struct {
	keys   []string
	values map[string]string
}

// NewMetadata creates Metadata from alternating key/value pairs.
func NewMetadata(pairs ...string) Metadata {
	var m Metadata
	for i := 0; i+1 < len(pairs); i += 2 {
		m.Set(pairs[i], pairs[i+1])
	}
	return m
}

// Set adds or replaces a value. Replacing keeps the original position.
func (m *Metadata) Set(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key and whether it was present.
func (m Metadata) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Value returns the value for key, or an empty string.
func (m Metadata) Value(key string) string {
	return m.values[key]
}

// Has reports whether key is present.
func (m Metadata) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Keys returns the keys in insertion order.
func (m Metadata) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of entries.
func (m Metadata) Len() int {
	return len(m.keys)
}

// WorkflowStep is one executable unit of a workflow model.
type WorkflowStep struct {
	ProcessID    string
	NodeName     string
	Title        string
	Description  string
	ResourceType string
	Metadata     Metadata
}

// WorkflowModel is a named sequence of steps plus the on-disk locations of its two graph documents.
type WorkflowModel struct {
	Name              string
	ConfigurationPage string // JCR path of the design-time model page
	ConfigurationFile string
	RuntimeComponent  string // JCR path of the runtime model
	RuntimeFile       string // empty when the runtime document is not checked in
	VideoProfileDir   string
	Steps             []WorkflowStep
}

// HasStep reports whether any step runs processID.
func (m *WorkflowModel) HasStep(processID string) bool {
	for _, s := range m.Steps {
		if s.ProcessID == processID {
			return true
		}
	}
	return false
}

// HasRuntimeGraph reports whether the runtime document exists on disk.
func (m *WorkflowModel) HasRuntimeGraph() bool {
	return m.RuntimeFile != ""
}

// Launcher is a trigger rule that starts a workflow model.
type Launcher struct {
	Name         string
	RelativePath string
	File         string
	Glob         string
	ExcludeList  string
	Conditions   []string
	Enabled      bool
	ModelPath    string

	// Synthetic launchers stand in for platform defaults and are never written to disk.
	Synthetic bool
}

// Workflow is a model together with the launchers that trigger it.
type Workflow struct {
	Model     *WorkflowModel
	Launchers []*Launcher
	Eligible  bool
}

// AddLauncher appends a launcher.
func (w *Workflow) AddLauncher(l *Launcher) {
	w.Launchers = append(w.Launchers, l)
}

// Name returns the model name, or the first launcher's model path when the model could not be loaded.
func (w *Workflow) Name() string {
	if w.Model != nil {
		return w.Model.Name
	}
	if len(w.Launchers) > 0 {
		return w.Launchers[0].ModelPath
	}
	return ""
}

// Project is one content module containing workflow configuration.
type Project struct {
	Path      string
	Workflows []*Workflow
}
