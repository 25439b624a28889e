package graph

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/codebypatrickleung/wfmigrate/internal/jcr"
	"github.com/codebypatrickleung/wfmigrate/internal/logger"
	"github.com/codebypatrickleung/wfmigrate/internal/model"
)

// Repository layout of workflow models.
const (
	PathToJcrRoot  = "src/main/content/jcr_root"
	varRoot        = "/var"
	confPath       = "/conf/global/settings"
	etcRoot        = "/etc"
	etcModelSuffix = "/jcr:content/model"
)

var (
	confVideoProfiles = filepath.Join("conf", "global", "settings", "dam", "video")
	etcVideoProfiles  = filepath.Join("etc", "dam", "video")
)

// Store loads workflow models from a content module and applies step mutations to both
// of their documents. Every mutation is a full read-modify-write of the files involved.
type Store struct {
	logger *logger.Logger
}

// NewStore creates a Store.
func NewStore(log *logger.Logger) *Store {
	return &Store{logger: log}
}

// ResolveModelPaths maps any of the four accepted model path styles to the configuration
// page path and the runtime model path.
func ResolveModelPaths(modelPath string) (configPage, runtime string, err error) {
	switch {
	case strings.HasPrefix(modelPath, varRoot+"/"):
		return confPath + strings.TrimPrefix(modelPath, varRoot), modelPath, nil
	case strings.HasPrefix(modelPath, confPath+"/"):
		return modelPath, varRoot + strings.TrimPrefix(modelPath, confPath), nil
	case strings.HasPrefix(modelPath, etcRoot+"/") && strings.HasSuffix(modelPath, etcModelSuffix):
		return strings.TrimSuffix(modelPath, etcModelSuffix), modelPath, nil
	case strings.HasPrefix(modelPath, etcRoot+"/"):
		return modelPath, modelPath + etcModelSuffix, nil
	}
	return "", "", fmt.Errorf("unrecognized workflow model path %q", modelPath)
}

// LoadModel reads the model referenced by modelPath from the content module at moduleRoot.
// It returns nil and no error when the module does not contain the model's configuration
// page, which happens when a launcher targets a product-provided model.
func (s *Store) LoadModel(moduleRoot, modelPath string) (*model.WorkflowModel, error) {
	s.logger.Debugf("Loading workflow model %s from %s", modelPath, moduleRoot)

	configPage, runtime, err := ResolveModelPaths(modelPath)
	if err != nil {
		return nil, model.NewCustomerDataError(moduleRoot, "unable to resolve workflow model", err)
	}

	jcrRoot := filepath.Join(moduleRoot, PathToJcrRoot)
	configFile := filepath.Join(jcr.DiskPath(jcrRoot, configPage), jcr.ContentXML)
	if _, err := os.Stat(configFile); errors.Is(err, os.ErrNotExist) {
		s.logger.Debugf("No configuration page at %s", configFile)
		return nil, nil
	}

	m := &model.WorkflowModel{
		Name:              path.Base(configPage),
		ConfigurationPage: configPage,
		ConfigurationFile: configFile,
		RuntimeComponent:  runtime,
		VideoProfileDir:   videoProfileDir(jcrRoot, configPage),
	}
	if runtimeFile := jcr.DiskPath(jcrRoot, runtime) + ".xml"; fileExists(runtimeFile) {
		m.RuntimeFile = runtimeFile
	}

	g, err := LoadConfig(configFile)
	if err != nil {
		return nil, err
	}
	steps, skipped := g.Steps()
	for _, name := range skipped {
		s.logger.Warningf("Unable to map workflow step %s in %s because it does not contain a %s or %s value; "+
			"other step types, such as OR splits, are not supported", name, configFile, ProcessProp, ExternalProcessProp)
	}
	m.Steps = steps
	return m, nil
}

// RemoveStep removes every step running processID from both documents of m and from m.Steps.
// The configuration document is written before the runtime document is touched, so a
// runtime failure leaves the configuration change in place.
func (s *Store) RemoveStep(processID string, m *model.WorkflowModel) error {
	cfg, err := LoadConfig(m.ConfigurationFile)
	if err != nil {
		return fmt.Errorf("unable to update the workflow model for %s: %w", m.Name, err)
	}
	if cfg.RemoveStep(processID) > 0 {
		if err := cfg.Save(); err != nil {
			return model.NewCustomerDataError(m.ConfigurationFile, "unable to update the workflow model for "+m.Name, err)
		}
	}
	m.Steps = removeSteps(m.Steps, processID)

	if !m.HasRuntimeGraph() {
		return nil
	}
	rt, err := LoadRuntime(m.RuntimeFile)
	if err != nil {
		return err
	}
	if rt.RemoveStep(processID) == 0 {
		return nil
	}
	if err := rt.Validate(); err != nil {
		return err
	}
	if err := rt.Save(); err != nil {
		return model.NewCustomerDataError(m.RuntimeFile, "unable to update the workflow runtime for "+m.Name, err)
	}
	return nil
}

// AddStep appends step to both documents of m and to m.Steps.
func (s *Store) AddStep(step model.WorkflowStep, m *model.WorkflowModel) error {
	cfg, err := LoadConfig(m.ConfigurationFile)
	if err != nil {
		return fmt.Errorf("unable to add a workflow step to %s: %w", m.Name, err)
	}
	cfg.AddStep(step)
	if err := cfg.Save(); err != nil {
		return model.NewCustomerDataError(m.ConfigurationFile, "unable to add a workflow step to "+m.Name, err)
	}
	m.Steps = append(m.Steps, step)

	if !m.HasRuntimeGraph() {
		return nil
	}
	rt, err := LoadRuntime(m.RuntimeFile)
	if err != nil {
		return err
	}
	if err := rt.AddStep(step); err != nil {
		return err
	}
	if err := rt.Save(); err != nil {
		return model.NewCustomerDataError(m.RuntimeFile, "unable to add a workflow step to the runtime of "+m.Name, err)
	}
	return nil
}

func removeSteps(steps []model.WorkflowStep, processID string) []model.WorkflowStep {
	out := steps[:0]
	for _, st := range steps {
		if st.ProcessID != processID {
			out = append(out, st)
		}
	}
	return out
}

// videoProfileDir prefers whichever video profile root exists, falling back on the one
// matching the model's path style.
func videoProfileDir(jcrRoot, configPage string) string {
	conf := filepath.Join(jcrRoot, confVideoProfiles)
	etc := filepath.Join(jcrRoot, etcVideoProfiles)
	switch {
	case fileExists(conf):
		return conf
	case fileExists(etc):
		return etc
	case strings.HasPrefix(configPage, etcRoot+"/"):
		return etc
	}
	return conf
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
