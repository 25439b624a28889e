package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/codebypatrickleung/wfmigrate/internal/common"
	"github.com/codebypatrickleung/wfmigrate/internal/jcr"
	"github.com/codebypatrickleung/wfmigrate/internal/logger"
	"github.com/codebypatrickleung/wfmigrate/internal/model"
)

// JCR location and properties of processing profiles.
const (
	ProfilesJcrPath = "/conf/global/settings/dam/processing"

	profileResourceType   = "dam/processing/profile"
	renditionResourceType = "dam/processing/profile/rendition"
	videoResourceType     = "dam/processing/profile/video"
	mergeListProp         = "mergeList"
)

// Writer persists processing profiles as FileVault content below a jcr_root directory.
// Every profile and rendition gets its own node; names already taken on disk get a numeric suffix.
type Writer struct {
	root   string
	logger *logger.Logger
}

// NewWriter creates a Writer for the content package rooted at jcrRoot.
func NewWriter(jcrRoot string, log *logger.Logger) *Writer {
	return &Writer{
		root:   jcr.DiskPath(jcrRoot, ProfilesJcrPath),
		logger: log,
	}
}

// Root returns the directory profiles are written to.
func (w *Writer) Root() string {
	return w.root
}

// Write stores p and returns the directory of its node.
func (w *Writer) Write(p *model.ProcessingProfile) (string, error) {
	if err := w.ensureRootPage(); err != nil {
		return "", err
	}

	dir := uniqueDir(w.root, common.JcrSafeNodeName(p.Name))
	doc, root := jcr.NewDocument(jcr.TypePage, "cq", "jcr", "nt", "sling")
	content := jcr.AddContentNode(root)
	content.CreateAttr(jcr.Title, p.Name)
	content.CreateAttr(jcr.ResourceType, profileResourceType)
	if err := jcr.Save(doc, filepath.Join(dir, jcr.ContentXML)); err != nil {
		return "", fmt.Errorf("failed to write processing profile %s: %w", p.Name, err)
	}

	for _, r := range p.Renditions {
		if err := w.writeRendition(dir, r); err != nil {
			return dir, fmt.Errorf("failed to write rendition %s of %s: %w", r.FileName, p.Name, err)
		}
	}
	w.logger.Debugf("Wrote processing profile %s with %d renditions", p.Name, len(p.Renditions))
	return dir, nil
}

func (w *Writer) ensureRootPage() error {
	path := filepath.Join(w.root, jcr.ContentXML)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	doc, root := jcr.NewDocument(jcr.TypePage, "cq", "jcr", "nt")
	content := jcr.AddContentNode(root)
	content.CreateAttr(mergeListProp, jcr.TrueValue)
	if err := jcr.Save(doc, path); err != nil {
		return fmt.Errorf("failed to create processing profile root: %w", err)
	}
	return nil
}

func (w *Writer) writeRendition(profileDir string, r model.RenditionConfig) error {
	doc, root := jcr.NewDocument(jcr.TypePage, "cq", "jcr", "nt", "sling")
	content := jcr.AddContentNode(root)
	if r.IsVideo() {
		content.CreateAttr(jcr.ResourceType, videoResourceType)
		content.CreateAttr("bitrate", strconv.Itoa(r.Video.BitRate))
		content.CreateAttr("codec", r.Video.Codec)
	} else {
		content.CreateAttr(jcr.ResourceType, renditionResourceType)
	}
	content.CreateAttr("fmt", r.Format)
	content.CreateAttr("name", r.FileName)
	content.CreateAttr("wid", strconv.Itoa(r.Width))
	content.CreateAttr("hei", strconv.Itoa(r.Height))
	content.CreateAttr("excludeMimeTypes", common.JoinCSV(r.ExcludeMimeTypes))
	content.CreateAttr("includeMimeTypes", common.JoinCSV(r.IncludeMimeTypes))
	if r.Quality > 0 {
		content.CreateAttr("qlt", strconv.Itoa(r.Quality))
	}
	dir := uniqueDir(profileDir, common.JcrSafeNodeName(r.NodeName))
	return jcr.Save(doc, filepath.Join(dir, jcr.ContentXML))
}

// uniqueDir returns parent/name, or parent/name-N for the first N not yet on disk.
func uniqueDir(parent, name string) string {
	candidate := filepath.Join(parent, name)
	for i := 1; ; i++ {
		if _, err := os.Stat(candidate); err != nil {
			return candidate
		}
		candidate = filepath.Join(parent, name+"-"+strconv.Itoa(i))
	}
}
