package transform

import (
	"os"
	"strings"

	"github.com/beevik/etree"

	"github.com/codebypatrickleung/wfmigrate/internal/audit"
	"github.com/codebypatrickleung/wfmigrate/internal/common"
	"github.com/codebypatrickleung/wfmigrate/internal/jcr"
	"github.com/codebypatrickleung/wfmigrate/internal/logger"
	"github.com/codebypatrickleung/wfmigrate/internal/model"
)

// OSGi configuration of the custom workflow runner.
const (
	RunnerConfigJcrPath = "/apps/aem-cloud-migration/config/com.adobe.cq.dam.processor.nui.impl.workflow.CustomDamWorkflowRunnerImpl"

	ByPathProp       = "postProcWorkflowsByPath"
	ByExpressionProp = "postProcWorkflowsByExpression"

	contentSuffix   = "/jcr:content"
	originalSuffix  = "renditions/original"
	modelSeparator  = ":"
	configExtension = ".xml"
)

// RunnerConfigCreator maps the launcher globs of eligible workflows onto the custom
// workflow runner, which starts them once asset processing completes.
type RunnerConfigCreator struct {
	path    string
	tracker *audit.Tracker
	logger  *logger.Logger
}

// NewRunnerConfigCreator creates a RunnerConfigCreator writing below jcrRoot.
func NewRunnerConfigCreator(jcrRoot string, tracker *audit.Tracker, log *logger.Logger) *RunnerConfigCreator {
	return &RunnerConfigCreator{
		path:    jcr.DiskPath(jcrRoot, RunnerConfigJcrPath) + configExtension,
		tracker: tracker,
		logger:  log,
	}
}

// Path returns the file the configuration is written to.
func (c *RunnerConfigCreator) Path() string {
	return c.path
}

// RunnerPattern derives the runner pattern from a launcher glob and reports whether it
// is a plain path rather than an expression.
func RunnerPattern(glob string) (string, bool) {
	pattern, _, _ := strings.Cut(glob, contentSuffix)
	if common.IsJcrSafePath(pattern) {
		return pattern, true
	}
	pattern = strings.Replace(pattern, originalSuffix, "", 1)
	if i := strings.LastIndex(pattern, "/"); i >= 0 {
		pattern = pattern[:i] + pattern[i+1:]
	}
	return pattern, false
}

// CreateConfigs registers every distinct launcher glob of an eligible workflow.
// Ineligible workflows and workflows without a runtime component are skipped.
func (c *RunnerConfigCreator) CreateConfigs(w *model.Workflow) error {
	if !w.Eligible || w.Model == nil || w.Model.RuntimeComponent == "" {
		return nil
	}

	var globs []string
	for _, l := range w.Launchers {
		if l.Glob != "" {
			globs = common.AppendUnique(globs, l.Glob)
		}
	}
	if len(globs) == 0 {
		return nil
	}

	doc, root, err := c.load()
	if err != nil {
		return err
	}
	for _, glob := range globs {
		pattern, byPath := RunnerPattern(glob)
		prop := ByExpressionProp
		if byPath {
			prop = ByPathProp
		}
		entry := pattern + modelSeparator + w.Model.RuntimeComponent
		values := common.AppendUnique(common.ParseList(jcr.Attr(root, prop)), entry)
		root.CreateAttr(prop, common.FormatList(values))
		c.tracker.TrackRunnerConfig(pattern, w.Model.RuntimeComponent, byPath)
		c.logger.Debugf("Runner configuration %s=%s", prop, entry)
	}

	if err := jcr.Save(doc, c.path); err != nil {
		return model.NewCustomerDataError(c.path, "unable to write the workflow runner configuration", err)
	}
	c.logger.Infof("Configured the workflow runner for %s", w.Name())
	return nil
}

func (c *RunnerConfigCreator) load() (*etree.Document, *etree.Element, error) {
	if _, err := os.Stat(c.path); err == nil {
		doc, err := jcr.Load(c.path)
		if err != nil {
			return nil, nil, model.NewCustomerDataError(c.path, "unable to read the workflow runner configuration", err)
		}
		return doc, doc.Root(), nil
	}
	doc, root := jcr.NewDocument(jcr.TypeOsgiConfig, "sling", "jcr")
	return doc, root, nil
}
