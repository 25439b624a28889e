package profile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/codebypatrickleung/wfmigrate/internal/common"
	"github.com/codebypatrickleung/wfmigrate/internal/model"
)

// Rendition naming.
const (
	renditionPrefix = "cq5dam"
	previewPrefix   = "cqdam"
	pngFormat       = "png"
	jpegFormat      = "jpeg"
	skipPrefix      = "skip:"

	thumbnailNode = "thumbnail"
	webNode       = "web"
	previewNode   = "preview"
	fpoNode       = "fpo"
	videoNode     = "video"
)

// Size is a rendition's width and height in pixels.
type Size struct {
	Width  int
	Height int
}

// ParseSizes extracts W:H[:flag] sizes from either size encoding: a single delimited string
// such as "[140:100],[48:48]" or a list of entries such as "140:100:false". Tokens that are
// not sizes, like "count:4", are ignored.
func ParseSizes(entries ...string) []Size {
	var sizes []Size
	for _, entry := range entries {
		for _, tok := range tokens(entry) {
			parts := strings.Split(tok, ":")
			if len(parts) < 2 {
				continue
			}
			w, errW := strconv.Atoi(strings.TrimSpace(parts[0]))
			h, errH := strconv.Atoi(strings.TrimSpace(parts[1]))
			if errW != nil || errH != nil || w <= 0 || h <= 0 {
				continue
			}
			sizes = append(sizes, Size{Width: w, Height: h})
		}
	}
	return sizes
}

// tokens splits a comma separated value, removing brackets around the whole value and around each item.
func tokens(s string) []string {
	var out []string
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(common.RemoveBrackets(strings.TrimSpace(tok)))
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// mimeList parses a mimetype list, dropping the "skip:" marker some step dialogs prefix entries with.
func mimeList(s string) []string {
	var out []string
	for _, tok := range tokens(s) {
		if tok = strings.TrimSpace(strings.TrimPrefix(tok, skipPrefix)); tok != "" {
			out = common.AppendUnique(out, tok)
		}
	}
	return out
}

// intProp reads an integer metadata value. A missing key is not an error.
func intProp(m *model.WorkflowModel, step model.WorkflowStep, key string) (int, bool, error) {
	raw, ok := step.Metadata.Get(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false, model.NewCustomerDataError(configFile(m),
			fmt.Sprintf("invalid %s value %q on step %s", key, raw, step.NodeName), err)
	}
	return v, true, nil
}

func configFile(m *model.WorkflowModel) string {
	if m == nil {
		return ""
	}
	return m.ConfigurationFile
}

// thumbnailRendition builds a fixed-size PNG thumbnail.
func thumbnailRendition(size Size, include, exclude []string) model.RenditionConfig {
	return model.RenditionConfig{
		NodeName:         thumbnailNode,
		FileName:         fmt.Sprintf("%s.%s.%d.%d.%s", renditionPrefix, thumbnailNode, size.Width, size.Height, pngFormat),
		Width:            size.Width,
		Height:           size.Height,
		Format:           pngFormat,
		IncludeMimeTypes: include,
		ExcludeMimeTypes: exclude,
	}
}

// webRendition builds the web-enabled rendition shared by the web and thumbnail steps.
func webRendition(m *model.WorkflowModel, step model.WorkflowStep, nodeName string) (model.RenditionConfig, error) {
	r := model.RenditionConfig{NodeName: nodeName, Format: pngFormat}

	var err error
	if r.Width, _, err = intProp(m, step, "WIDTH"); err != nil {
		return r, err
	}
	if r.Height, _, err = intProp(m, step, "HEIGHT"); err != nil {
		return r, err
	}
	if r.Quality, _, err = intProp(m, step, "QUALITY"); err != nil {
		return r, err
	}
	if mime := strings.TrimSpace(step.Metadata.Value("MIME_TYPE")); mime != "" {
		if _, subtype, ok := strings.Cut(mime, "/"); ok {
			r.Format = subtype
		} else {
			r.Format = mime
		}
	}
	r.IncludeMimeTypes = mimeList(step.Metadata.Value("KEEP_FORMAT_LIST"))
	r.ExcludeMimeTypes = mimeList(step.Metadata.Value("SKIP"))
	r.FileName = fmt.Sprintf("%s.%s.%d.%d.%s", renditionPrefix, nodeName, r.Width, r.Height, r.Format)
	return r, nil
}

// IsOOTB reports whether the cloud service already produces r out of the box.
func IsOOTB(r model.RenditionConfig) bool {
	switch {
	case r.Width == 319 && r.Height == 319 && r.Format == pngFormat:
		return true
	case r.Width == 140 && r.Height == 100 && r.Format == pngFormat:
		return true
	case r.Width == 48 && r.Height == 48 && r.Format == pngFormat:
		return true
	case r.Width == 1280 && r.Height == 1280 && r.Format == jpegFormat && r.Quality == 90:
		return true
	}
	return false
}
