// Package project discovers the workflow launchers and models of a customer repository.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/codebypatrickleung/wfmigrate/internal/graph"
	"github.com/codebypatrickleung/wfmigrate/internal/jcr"
	"github.com/codebypatrickleung/wfmigrate/internal/logger"
	"github.com/codebypatrickleung/wfmigrate/internal/model"
)

// Patterns, relative to the repository and to a jcr_root, that locate workflow content.
const (
	modulePattern  = "**/" + graph.PathToJcrRoot
	contentPattern = "{conf,etc}/**/" + jcr.ContentXML
)

// Directories that never hold source content modules.
var ignoredDirs = []string{"**/target/**", "**/node_modules/**", "**/.git/**"}

// ModelLoader loads a workflow model from a content module.
type ModelLoader interface {
	LoadModel(moduleRoot, modelPath string) (*model.WorkflowModel, error)
}

// Loader builds the workflows of every content module of a repository.
type Loader struct {
	models ModelLoader
	logger *logger.Logger
}

// NewLoader creates a Loader.
func NewLoader(models ModelLoader, log *logger.Logger) *Loader {
	return &Loader{models: models, logger: log}
}

// Load returns a project for every content module below root that holds asset workflow
// configuration. It returns model.ErrNoWorkflowProjects when there is none.
func (l *Loader) Load(root string) ([]*model.Project, error) {
	l.logger.Debugf("Loading projects for %s", root)

	modules, err := FindModules(root)
	if err != nil {
		return nil, err
	}

	var projects []*model.Project
	for _, moduleRoot := range modules {
		l.logger.Debugf("Content module found at %s", moduleRoot)
		p, err := l.LoadModule(moduleRoot)
		if err != nil {
			return nil, err
		}
		if len(p.Workflows) > 0 {
			projects = append(projects, p)
		}
	}

	if len(projects) == 0 {
		return nil, model.ErrNoWorkflowProjects
	}
	return projects, nil
}

// FindModules returns the roots of the content modules below root, in lexical order.
func FindModules(root string) ([]string, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("project path not accessible: %w", err)
	}
	matches, err := doublestar.Glob(os.DirFS(root), modulePattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s for content modules: %w", root, err)
	}

	var modules []string
	for _, m := range matches {
		if ignored(m) {
			continue
		}
		moduleRel := strings.TrimSuffix(strings.TrimSuffix(m, graph.PathToJcrRoot), "/")
		modules = append(modules, filepath.Join(root, filepath.FromSlash(moduleRel)))
	}
	return modules, nil
}

func ignored(rel string) bool {
	for _, pattern := range ignoredDirs {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// LoadModule builds the workflows of one content module. Launchers and models that cannot
// be parsed are logged and left out.
func (l *Loader) LoadModule(moduleRoot string) (*model.Project, error) {
	launcherFiles, modelPaths, err := l.scan(moduleRoot)
	if err != nil {
		return nil, err
	}

	b := newBuilder(l.models, moduleRoot, l.logger)
	for _, file := range launcherFiles {
		b.addLauncher(file)
	}
	for _, modelPath := range modelPaths {
		b.addDefaultModel(modelPath)
	}
	return &model.Project{Path: moduleRoot, Workflows: b.workflows}, nil
}

// scan classifies the content documents below the conf and etc trees of the module.
func (l *Loader) scan(moduleRoot string) (launchers, models []string, err error) {
	jcrRoot := filepath.Join(moduleRoot, graph.PathToJcrRoot)
	matches, err := doublestar.Glob(os.DirFS(jcrRoot), contentPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to search %s for workflow content: %w", jcrRoot, err)
	}

	for _, rel := range matches {
		file := filepath.Join(jcrRoot, filepath.FromSlash(rel))
		doc, err := jcr.Load(file)
		if err != nil {
			l.logger.Warningf("Skipping unreadable content file %s: %v", file, err)
			continue
		}
		root := doc.Root()
		switch {
		case jcr.Attr(root, jcr.PrimaryType) == jcr.TypeLauncher:
			launchers = append(launchers, file)
		case isModelPage(root):
			models = append(models, modelPathOf(rel))
		}
	}
	return launchers, models, nil
}

func isModelPage(root *etree.Element) bool {
	for _, child := range root.ChildElements() {
		if child.FullTag() == jcr.ContentElement {
			return jcr.Attr(child, jcr.ResourceType) == jcr.ModelResourceType
		}
	}
	return false
}

// modelPathOf maps the location of a model page below jcr_root to its JCR path.
func modelPathOf(rel string) string {
	p := "/" + strings.TrimSuffix(rel, "/"+jcr.ContentXML)
	p = strings.TrimSuffix(p, "/"+jcr.ContentOnDisk+"/model")
	return strings.TrimSuffix(p, "/jcr:content/model")
}

// builder groups launchers by the model they start.
type builder struct {
	models     ModelLoader
	moduleRoot string
	logger     *logger.Logger

	workflows  []*model.Workflow
	byRuntime  map[string]*model.Workflow
	configured map[string]bool
}

func newBuilder(models ModelLoader, moduleRoot string, log *logger.Logger) *builder {
	return &builder{
		models:     models,
		moduleRoot: moduleRoot,
		logger:     log,
		byRuntime:  make(map[string]*model.Workflow),
		configured: make(map[string]bool),
	}
}

func (b *builder) addLauncher(file string) {
	launcher, err := ParseLauncher(b.moduleRoot, file)
	if err != nil {
		b.logger.Errorf("Unable to parse the workflow launcher %s, it will not be migrated: %v", file, err)
		return
	}
	b.configured[modelName(launcher.ModelPath)] = true
	if !launcher.Enabled || !IsAssetLauncher(launcher) {
		b.logger.Debugf("Ignoring launcher %s", launcher.RelativePath)
		return
	}

	w, err := b.workflowFor(launcher.ModelPath)
	if err != nil {
		b.logger.Errorf("Unable to load the workflow model %s of launcher %s, neither will be migrated: %v",
			launcher.ModelPath, launcher.RelativePath, err)
		return
	}
	w.AddLauncher(launcher)
}

// addDefaultModel includes an overlaid product model whose launcher was not overlaid,
// started by the launcher the product ships for it.
func (b *builder) addDefaultModel(modelPath string) {
	name := modelName(modelPath)
	if b.configured[name] {
		return
	}
	launcher := DefaultLauncher(name)
	if launcher == nil {
		return
	}
	launcher.ModelPath = modelPath

	w, err := b.workflowFor(modelPath)
	if err != nil {
		b.logger.Errorf("Unable to load the workflow model %s, it will not be migrated: %v", modelPath, err)
		return
	}
	if w.Model == nil {
		return
	}
	b.configured[name] = true
	w.AddLauncher(launcher)
}

func (b *builder) workflowFor(modelPath string) (*model.Workflow, error) {
	_, runtime, err := graph.ResolveModelPaths(modelPath)
	if err != nil {
		return nil, err
	}
	if w, ok := b.byRuntime[runtime]; ok {
		return w, nil
	}
	m, err := b.models.LoadModel(b.moduleRoot, modelPath)
	if err != nil {
		return nil, err
	}
	if m == nil {
		b.logger.Debugf("Model %s is not part of %s", modelPath, b.moduleRoot)
	}
	w := &model.Workflow{Model: m}
	b.byRuntime[runtime] = w
	b.workflows = append(b.workflows, w)
	return w, nil
}
