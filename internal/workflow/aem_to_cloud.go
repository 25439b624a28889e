package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/codebypatrickleung/wfmigrate/internal/audit"
	"github.com/codebypatrickleung/wfmigrate/internal/cloud/azure"
	"github.com/codebypatrickleung/wfmigrate/internal/cloud/oci"
	"github.com/codebypatrickleung/wfmigrate/internal/common"
	"github.com/codebypatrickleung/wfmigrate/internal/config"
	"github.com/codebypatrickleung/wfmigrate/internal/graph"
	"github.com/codebypatrickleung/wfmigrate/internal/logger"
	"github.com/codebypatrickleung/wfmigrate/internal/model"
	"github.com/codebypatrickleung/wfmigrate/internal/profile"
	"github.com/codebypatrickleung/wfmigrate/internal/project"
	"github.com/codebypatrickleung/wfmigrate/internal/report"
	"github.com/codebypatrickleung/wfmigrate/internal/steps"
	"github.com/codebypatrickleung/wfmigrate/internal/transform"
)

// MigrationPackage names the content module that receives generated configuration.
const MigrationPackage = "aem-cloud-migration"

// AEMToCloudHandler implements the workflow for migrating the asset workflows of an AEM
// project to AEM Assets as a Cloud Service.
type AEMToCloudHandler struct {
	config     *config.Config
	logger     *logger.Logger
	tracker    *audit.Tracker
	classifier *steps.Classifier
	store      *graph.Store
	publisher  Publisher
	projects   []*model.Project
	reportPath string
}

func NewAEMToCloudHandler() *AEMToCloudHandler      { return &AEMToCloudHandler{} }
func (h *AEMToCloudHandler) Name() string           { return "AEM to AEM Assets Cloud Service Workflow Migration" }
func (h *AEMToCloudHandler) SourcePlatform() string { return "aem" }
func (h *AEMToCloudHandler) TargetPlatform() string { return "aem-cloud" }

func (h *AEMToCloudHandler) Initialize(cfg *config.Config, log *logger.Logger) error {
	h.config, h.logger = cfg, log
	h.tracker = audit.NewTracker()
	h.store = graph.NewStore(log)

	table, err := loadTable(cfg.StepsFile)
	if err != nil {
		return fmt.Errorf("failed to load the step support table: %w", err)
	}
	h.classifier = steps.NewClassifier(table)

	if cfg.Publishing() && h.publisher == nil {
		if h.publisher, err = newPublisher(cfg, log); err != nil {
			return fmt.Errorf("failed to initialize %s publisher: %w", cfg.PublishTarget, err)
		}
	}
	return nil
}

func loadTable(path string) (*steps.Table, error) {
	if path == "" {
		return steps.DefaultTable()
	}
	return steps.LoadTableFile(path)
}

// Tracker returns the audit trail of the run.
func (h *AEMToCloudHandler) Tracker() *audit.Tracker { return h.tracker }

// ReportPath returns the path of the written report, or an empty string.
func (h *AEMToCloudHandler) ReportPath() string { return h.reportPath }

func (h *AEMToCloudHandler) Execute(ctx context.Context) error {
	h.logger.Info("=========================================")
	h.logger.Infof("Executing: %s", h.Name())
	h.logger.Info("=========================================")

	steps := []struct {
		skip    bool
		skipMsg string
		errMsg  string
		fn      func(context.Context) error
	}{
		{false, "", "prerequisite checks failed", h.runPrerequisites},
		{false, "", "project copy failed", h.copyProject},
		{false, "", "project loading failed", h.loadProjects},
		{h.config.SkipLaunchers, "Skipping launcher changes (SKIP_LAUNCHERS=true)", "launcher changes failed", h.disableLaunchers},
		{h.config.SkipProfiles, "Skipping processing profiles (SKIP_PROFILES=true)", "processing profile creation failed", h.createProfiles},
		{h.config.SkipModels, "Skipping workflow model changes (SKIP_MODELS=true)", "workflow model transformation failed", h.transformModels},
		{h.config.SkipReport, "Skipping migration report (SKIP_REPORT=true)", "report generation failed", h.writeReport},
		{!h.config.Publishing(), "Skipping artifact publishing", "artifact publishing failed", h.publish},
	}
	for _, step := range steps {
		if step.skip {
			h.logger.Warning(step.skipMsg)
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := step.fn(ctx); err != nil {
			return fmt.Errorf("%s: %w", step.errMsg, err)
		}
	}

	h.logger.Success("=========================================")
	h.logger.Success("Workflow migration completed successfully!")
	h.logger.Success("=========================================")
	h.logger.Infof("Migrated project: %s", h.config.OutputDir)
	if h.reportPath != "" {
		h.logger.Infof("Review the migration report before deploying: %s", h.reportPath)
	}
	return nil
}

func (h *AEMToCloudHandler) runPrerequisites(ctx context.Context) error {
	h.logger.Step(1, "Reviewing Migration Configuration")
	h.logger.Infof("Project Path: %s", h.config.ProjectPath)
	h.logger.Infof("Output Dir: %s", h.config.OutputDir)
	h.logger.Infof("Report Dir: %s", h.config.ReportDir)
	if h.config.StepsFile != "" {
		h.logger.Infof("Steps File: %s", h.config.StepsFile)
	}
	if h.config.PublishTarget != "" {
		h.logger.Infof("Publish Target: %s", h.config.PublishTarget)
	}
	h.logger.Infof("Run ID: %s", h.tracker.RunID())

	info, err := os.Stat(h.config.ProjectPath)
	if err != nil {
		return fmt.Errorf("project path not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("project path %s is not a directory", h.config.ProjectPath)
	}
	h.logger.Successf("✓ Project '%s' is accessible", h.config.ProjectPath)
	return nil
}

func (h *AEMToCloudHandler) copyProject(ctx context.Context) error {
	h.logger.Step(2, "Copying Project")
	if err := common.CopyTree(h.config.ProjectPath, h.config.OutputDir); err != nil {
		return err
	}
	h.logger.Successf("✓ Project copied to %s", h.config.OutputDir)
	return nil
}

func (h *AEMToCloudHandler) loadProjects(ctx context.Context) error {
	h.logger.Step(3, "Loading Workflow Configuration")
	projects, err := project.NewLoader(h.store, h.logger).Load(h.config.OutputDir)
	if err != nil {
		return err
	}
	h.projects = projects
	for _, p := range projects {
		h.logger.Successf("✓ %d workflows found in %s", len(p.Workflows), p.Path)
	}
	return nil
}

func (h *AEMToCloudHandler) workflows() []*model.Workflow {
	var out []*model.Workflow
	for _, p := range h.projects {
		out = append(out, p.Workflows...)
	}
	return out
}

// jcrRoot is the content root of the module generated configuration is written to.
func (h *AEMToCloudHandler) jcrRoot() string {
	return filepath.Join(h.packageDir(), graph.PathToJcrRoot)
}

func (h *AEMToCloudHandler) packageDir() string {
	return filepath.Join(h.config.OutputDir, MigrationPackage)
}

func (h *AEMToCloudHandler) disableLaunchers(ctx context.Context) error {
	h.logger.Step(4, "Disabling Workflow Launchers")
	count := transform.NewLauncherDisabler(h.tracker, h.logger).DisableLaunchers(h.workflows())
	h.logger.Successf("✓ %d launchers disabled", count)
	return nil
}

// createProfiles runs before transformModels so every mapper sees the original steps.
func (h *AEMToCloudHandler) createProfiles(ctx context.Context) error {
	h.logger.Step(5, "Creating Processing Profiles")
	registry := profile.NewDefaultRegistry(nil)
	for _, m := range registry.List() {
		h.logger.Debugf("Rendition mapper %s handles %v", m.Name(), m.ProcessIDs())
	}
	creator := profile.NewCreator(registry, profile.NewWriter(h.jcrRoot(), h.logger), h.tracker, h.logger)

	created := 0
	for _, w := range h.workflows() {
		p, err := creator.CreateProfile(w)
		if err != nil {
			h.logger.Errorf("Unable to create a processing profile for %s: %v", w.Name(), err)
			continue
		}
		if p != nil {
			created++
		}
	}
	h.logger.Successf("✓ %d processing profiles created", created)
	return nil
}

func (h *AEMToCloudHandler) transformModels(ctx context.Context) error {
	h.logger.Step(6, "Transforming Workflow Models")
	transformer := transform.NewTransformer(h.classifier, h.store, h.tracker, h.logger)
	runner := transform.NewRunnerConfigCreator(h.jcrRoot(), h.tracker, h.logger)

	for _, w := range h.workflows() {
		if w.Model == nil {
			continue
		}
		if err := transformer.TransformModel(w); err != nil {
			h.recordWorkflowError(w, err)
			continue
		}
		if err := runner.CreateConfigs(w); err != nil {
			h.recordWorkflowError(w, err)
		}
	}
	h.logger.Successf("✓ %d workflow models modified", len(h.tracker.ModifiedModels()))
	return nil
}

func (h *AEMToCloudHandler) recordWorkflowError(w *model.Workflow, err error) {
	var sie *model.StructuralInvariantError
	if errors.As(err, &sie) {
		h.logger.Errorf("The runtime model of %s is not a linear chain, it was not changed: %v", w.Name(), err)
	} else {
		h.logger.Errorf("Unable to migrate workflow %s: %v", w.Name(), err)
	}
	h.tracker.TrackFailure(w.Name(), "", err.Error())
}

func (h *AEMToCloudHandler) writeReport(ctx context.Context) error {
	h.logger.Step(7, "Writing Migration Report")
	packageDir := ""
	if fileExists(h.packageDir()) {
		packageDir = h.packageDir()
	}
	path, err := report.NewGenerator(h.config.ReportDir, packageDir, h.tracker, h.logger).Generate()
	if err != nil {
		return err
	}
	h.reportPath = path
	return nil
}

func (h *AEMToCloudHandler) publish(ctx context.Context) error {
	h.logger.Step(8, "Publishing Migration Artifacts")
	prefix := h.tracker.RunID()
	uploaded := 0
	for _, dir := range []string{h.packageDir(), h.config.ReportDir} {
		if !fileExists(dir) {
			continue
		}
		n, err := h.publisher.Publish(ctx, prefix+"/"+filepath.Base(dir), dir)
		if err != nil {
			return err
		}
		uploaded += n
	}
	h.logger.Successf("✓ %d files published under %s", uploaded, prefix)
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

type azurePublisher struct {
	provider  *azure.Provider
	container string
}

func (p *azurePublisher) Publish(ctx context.Context, prefix, dir string) (int, error) {
	return p.provider.UploadDir(ctx, p.container, prefix, dir)
}

type ociPublisher struct {
	provider      *oci.Provider
	compartmentID string
	bucket        string
}

func (p *ociPublisher) Publish(ctx context.Context, prefix, dir string) (int, error) {
	return p.provider.UploadDir(ctx, p.compartmentID, p.bucket, prefix, dir)
}

func newPublisher(cfg *config.Config, log *logger.Logger) (Publisher, error) {
	switch cfg.PublishTarget {
	case config.PublishAzure:
		provider, err := azure.NewProvider(cfg.AzureStorageAccountURL, log)
		if err != nil {
			return nil, err
		}
		return &azurePublisher{provider: provider, container: cfg.AzureContainer}, nil
	case config.PublishOCI:
		provider, err := oci.NewProvider(cfg.OCIRegion, log)
		if err != nil {
			return nil, err
		}
		return &ociPublisher{provider: provider, compartmentID: cfg.OCICompartmentID, bucket: cfg.OCIBucketName}, nil
	}
	return nil, fmt.Errorf("unsupported publish target %q", cfg.PublishTarget)
}
