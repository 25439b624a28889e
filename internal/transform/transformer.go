// Package transform rewrites customer workflows so they run on AEM Assets as a Cloud Service.
package transform

import (
	"fmt"

	"github.com/codebypatrickleung/wfmigrate/internal/audit"
	"github.com/codebypatrickleung/wfmigrate/internal/logger"
	"github.com/codebypatrickleung/wfmigrate/internal/model"
	"github.com/codebypatrickleung/wfmigrate/internal/steps"
)

// CompletionProcess signals that the asset update workflow finished. Every migrated
// workflow must end with it.
const CompletionProcess = "com.day.cq.dam.core.impl.process.DamUpdateAssetWorkflowCompletedProcess"

// StepStore applies step mutations to the persisted documents of a workflow model.
type StepStore interface {
	RemoveStep(processID string, m *model.WorkflowModel) error
	AddStep(step model.WorkflowStep, m *model.WorkflowModel) error
}

// CompletionStep returns a fresh copy of the step that runs CompletionProcess.
func CompletionStep() model.WorkflowStep {
	return model.WorkflowStep{
		ProcessID:    CompletionProcess,
		NodeName:     "damupdateassetworkflowcompletedprocess",
		Title:        "DAM Update Asset Workflow Completed",
		Description:  "This process will send DamEvent.Type.DAM_UPDATE_ASSET_WORKFLOW_COMPLETED event when DAM update asset workflow is completed",
		ResourceType: "dam/components/workflow/damupdateassetworkflowcompletedprocess",
		Metadata: model.NewMetadata(
			"PROCESS", CompletionProcess,
			"PROCESS_AUTO_ADVANCE", "true",
		),
	}
}

// Transformer strips unsupported steps from eligible workflow models and appends the
// completion step when it is missing.
type Transformer struct {
	classifier *steps.Classifier
	store      StepStore
	tracker    *audit.Tracker
	logger     *logger.Logger
}

// NewTransformer creates a Transformer.
func NewTransformer(classifier *steps.Classifier, store StepStore, tracker *audit.Tracker, log *logger.Logger) *Transformer {
	return &Transformer{
		classifier: classifier,
		store:      store,
		tracker:    tracker,
		logger:     log,
	}
}

// IsEligible reports whether the model still does work the cloud service does not
// do on its own, which is the case when at least one step is enabled and not optional.
func (t *Transformer) IsEligible(m *model.WorkflowModel) bool {
	if m == nil {
		return false
	}
	for _, step := range m.Steps {
		if step.ProcessID == CompletionProcess {
			continue
		}
		if t.classifier.IsEnabled(step.ProcessID) && !t.classifier.IsOptional(step.ProcessID) {
			return true
		}
	}
	return false
}

// TransformModel marks w eligible or not and rewrites the model of an eligible workflow.
// Ineligible workflows are left untouched.
func (t *Transformer) TransformModel(w *model.Workflow) error {
	m := w.Model
	w.Eligible = t.IsEligible(m)
	if !w.Eligible {
		t.logger.Debugf("Workflow %s has no steps left to run in the cloud service, leaving it untouched", w.Name())
		return nil
	}
	t.logger.Infof("Transforming workflow model %s", m.ConfigurationPage)

	// the store shrinks m.Steps in place
	current := make([]model.WorkflowStep, len(m.Steps))
	copy(current, m.Steps)

	removed := make(map[string]bool)
	for _, step := range current {
		if removed[step.ProcessID] || t.classifier.IsEnabled(step.ProcessID) {
			continue
		}
		status := t.classifier.Classify(step.ProcessID)
		if err := t.store.RemoveStep(step.ProcessID, m); err != nil {
			return fmt.Errorf("failed to remove %s from %s: %w", step.ProcessID, m.Name, err)
		}
		removed[step.ProcessID] = true
		t.tracker.TrackModifiedStep(m.ConfigurationPage, step.ProcessID, status)
		t.logger.Debugf("Removed %s (%s) from %s", step.ProcessID, status, m.Name)
	}

	if !m.HasStep(CompletionProcess) {
		if err := t.store.AddStep(CompletionStep(), m); err != nil {
			return fmt.Errorf("failed to add the completion step to %s: %w", m.Name, err)
		}
		t.tracker.TrackModifiedStep(m.ConfigurationPage, CompletionProcess, model.StatusRequired)
		t.logger.Debugf("Added %s to %s", CompletionProcess, m.Name)
	}
	return nil
}
