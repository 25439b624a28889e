package project

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/codebypatrickleung/wfmigrate/internal/common"
	"github.com/codebypatrickleung/wfmigrate/internal/jcr"
	"github.com/codebypatrickleung/wfmigrate/internal/model"
)

// Launcher document properties.
const (
	globProp        = "glob"
	excludeListProp = "excludeList"
	workflowProp    = "workflow"
	conditionsProp  = "conditions"
	conditionProp   = "condition"
	enabledProp     = "enabled"
)

// Glob fragments that identify launchers reacting to asset changes.
const (
	contentDamPath = "/content/dam"
	collections    = "collections"
	metadata       = "metadata"
)

// ParseLauncher reads the launcher document at file, which lives in the content module at moduleRoot.
func ParseLauncher(moduleRoot, file string) (*model.Launcher, error) {
	doc, err := jcr.Load(file)
	if err != nil {
		return nil, model.NewCustomerDataError(file, "unable to parse workflow launcher", err)
	}
	root := doc.Root()
	if t := jcr.Attr(root, jcr.PrimaryType); t != jcr.TypeLauncher {
		return nil, model.NewCustomerDataError(file, fmt.Sprintf("unexpected primary type %q for a workflow launcher", t), nil)
	}

	rel, err := filepath.Rel(moduleRoot, file)
	if err != nil {
		rel = file
	}
	conditions := jcr.Attr(root, conditionsProp)
	if conditions == "" {
		conditions = jcr.Attr(root, conditionProp)
	}

	return &model.Launcher{
		Name:         filepath.Base(filepath.Dir(file)),
		RelativePath: filepath.ToSlash(rel),
		File:         file,
		Glob:         jcr.Attr(root, globProp),
		ExcludeList:  jcr.Attr(root, excludeListProp),
		Conditions:   common.ParseList(conditions),
		Enabled:      jcr.Attr(root, enabledProp) == jcr.TrueValue,
		ModelPath:    jcr.Attr(root, workflowProp),
	}, nil
}

// IsAssetLauncher reports whether l starts a workflow on asset changes in the DAM.
// Collection and metadata launchers are not asset processing.
func IsAssetLauncher(l *model.Launcher) bool {
	return strings.Contains(l.Glob, contentDamPath) &&
		!strings.Contains(l.Glob, collections) &&
		!strings.Contains(l.Glob, metadata)
}

// DefaultLauncher returns the launcher the product ships for the default model named
// modelName, or nil when the model is not started by a product launcher.
func DefaultLauncher(modelName string) *model.Launcher {
	var glob string
	var conditions []string
	switch modelName {
	case "batch-thumbnails":
		glob, conditions = "/var/dam/pending-thumbs(/.*)", []string{"paths!="}
	case "dynamic-media-encode-video":
		glob, conditions = "/content/dam(/.*/)renditions/original", []string{"jcr:content/jcr:mimeType==video/.*"}
	case "process_subasset":
		glob, conditions = "/content/dam(/.*/)(subassets)(/.*/)renditions/original", []string{"jcr:content/jcr:mimeType!=video/.*"}
	case "update_asset":
		glob = "/content/dam(/((?!/subassets).)*/)renditions/original"
	case "update_from_lightbox":
		glob = "/var/lightbox"
	default:
		return nil
	}
	return &model.Launcher{
		Name:       modelName,
		Glob:       glob,
		Conditions: conditions,
		Enabled:    true,
		Synthetic:  true,
	}
}

// modelName returns the last segment of a model path in any of its styles.
func modelName(modelPath string) string {
	modelPath = strings.TrimSuffix(modelPath, "/"+jcr.ContentXML)
	modelPath = strings.TrimSuffix(modelPath, "/jcr:content/model")
	return path.Base(modelPath)
}
