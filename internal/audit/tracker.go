// Package audit records every change and failure of a migration run for the final report.
package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/codebypatrickleung/wfmigrate/internal/model"
)

// StepChange is one step added to or removed from a workflow model.
type StepChange struct {
	ProcessID string
	Status    model.SupportStatus
}

// Action returns whether the step was added or removed.
func (c StepChange) Action() model.Action {
	return c.Status.Action()
}

// ModelChanges lists the step changes of one workflow model in the order they were made.
type ModelChanges struct {
	Model string
	Steps []StepChange
}

// RunnerConfig maps a launcher pattern to the runtime model run after asset processing.
type RunnerConfig struct {
	Pattern string
	Model   string
	ByPath  bool
}

// Failure is a change that could not be made.
type Failure struct {
	Subject string
	Step    string
	Reason  string
}

// Tracker accumulates the outcome of one run. It is not safe for concurrent use.
type Tracker struct {
	runID     string
	startedAt time.Time

	models            []*ModelChanges
	modelIndex        map[string]*ModelChanges
	disabledLaunchers []string
	runnerConfigs     []RunnerConfig
	runnerIndex       map[string]int
	createdProfiles   []*model.ProcessingProfile
	failedProfiles    []string
	failures          []Failure
}

// NewTracker creates an empty Tracker with a fresh run id.
func NewTracker() *Tracker {
	return &Tracker{
		runID:       uuid.NewString(),
		startedAt:   time.Now(),
		modelIndex:  make(map[string]*ModelChanges),
		runnerIndex: make(map[string]int),
	}
}

// RunID identifies this run in logs, reports and uploaded artifacts.
func (t *Tracker) RunID() string { return t.runID }

// StartedAt returns when the tracker was created.
func (t *Tracker) StartedAt() time.Time { return t.startedAt }

// TrackModifiedStep records a step added to or removed from the model at modelPath.
// Recording the same process twice for one model keeps the first position and the latest status.
func (t *Tracker) TrackModifiedStep(modelPath, processID string, status model.SupportStatus) {
	mc, ok := t.modelIndex[modelPath]
	if !ok {
		mc = &ModelChanges{Model: modelPath}
		t.modelIndex[modelPath] = mc
		t.models = append(t.models, mc)
	}
	for i := range mc.Steps {
		if mc.Steps[i].ProcessID == processID {
			mc.Steps[i].Status = status
			return
		}
	}
	mc.Steps = append(mc.Steps, StepChange{ProcessID: processID, Status: status})
}

// TrackLauncherDisabled records a launcher that was switched off.
func (t *Tracker) TrackLauncherDisabled(launcherPath string) {
	t.disabledLaunchers = append(t.disabledLaunchers, launcherPath)
}

// TrackRunnerConfig records a pattern routed to a workflow model. A pattern maps to one model;
// tracking it again replaces the model.
func (t *Tracker) TrackRunnerConfig(pattern, modelPath string, byPath bool) {
	rc := RunnerConfig{Pattern: pattern, Model: modelPath, ByPath: byPath}
	if i, ok := t.runnerIndex[pattern]; ok {
		t.runnerConfigs[i] = rc
		return
	}
	t.runnerIndex[pattern] = len(t.runnerConfigs)
	t.runnerConfigs = append(t.runnerConfigs, rc)
}

// TrackProfileCreated records a processing profile that was written.
func (t *Tracker) TrackProfileCreated(profile *model.ProcessingProfile) {
	t.createdProfiles = append(t.createdProfiles, profile)
}

// TrackProfileFailed records a processing profile that lost renditions or could not be written.
func (t *Tracker) TrackProfileFailed(name string) {
	for _, n := range t.failedProfiles {
		if n == name {
			return
		}
	}
	t.failedProfiles = append(t.failedProfiles, name)
}

// TrackFailure records a change that could not be made.
func (t *Tracker) TrackFailure(subject, step, reason string) {
	t.failures = append(t.failures, Failure{Subject: subject, Step: step, Reason: reason})
}

// ModifiedModels returns the step changes grouped by model, in first-modified order.
func (t *Tracker) ModifiedModels() []ModelChanges {
	out := make([]ModelChanges, len(t.models))
	for i, mc := range t.models {
		out[i] = ModelChanges{Model: mc.Model, Steps: append([]StepChange(nil), mc.Steps...)}
	}
	return out
}

// DisabledLaunchers returns the disabled launcher paths.
func (t *Tracker) DisabledLaunchers() []string {
	return append([]string(nil), t.disabledLaunchers...)
}

// RunnerConfigs returns the tracked runner configurations in first-tracked order.
func (t *Tracker) RunnerConfigs() []RunnerConfig {
	return append([]RunnerConfig(nil), t.runnerConfigs...)
}

// CreatedProfiles returns the written processing profiles.
func (t *Tracker) CreatedProfiles() []*model.ProcessingProfile {
	return append([]*model.ProcessingProfile(nil), t.createdProfiles...)
}

// FailedProfiles returns the names of profiles with failed renditions.
func (t *Tracker) FailedProfiles() []string {
	return append([]string(nil), t.failedProfiles...)
}

// Failures returns every recorded failure.
func (t *Tracker) Failures() []Failure {
	return append([]Failure(nil), t.failures...)
}

// HasChanges reports whether the run changed anything on disk.
func (t *Tracker) HasChanges() bool {
	return len(t.models) > 0 || len(t.disabledLaunchers) > 0 || len(t.runnerConfigs) > 0 || len(t.createdProfiles) > 0
}
