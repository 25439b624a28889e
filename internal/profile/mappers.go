package profile

import (
	"fmt"
	"strings"

	"github.com/codebypatrickleung/wfmigrate/internal/model"
)

// PreviewMapper maps the PDF preview step. It yields nothing when the model deletes
// image previews later on.
type PreviewMapper struct{}

func (p *PreviewMapper) Name() string         { return "CreatePdfPreviewProcess" }
func (p *PreviewMapper) ProcessIDs() []string { return []string{CreatePdfPreviewProcess} }

func (p *PreviewMapper) MapToRenditions(m *model.WorkflowModel, step model.WorkflowStep) ([]model.RenditionConfig, error) {
	if m != nil && m.HasStep(DeleteImagePreviewProcess) {
		return nil, nil
	}
	r := model.RenditionConfig{
		NodeName:         previewNode,
		FileName:         fmt.Sprintf("%s.%s.%s", previewPrefix, previewNode, pngFormat),
		Format:           pngFormat,
		IncludeMimeTypes: mimeList(step.Metadata.Value("MIME_TYPES")),
	}
	var err error
	if r.Width, _, err = intProp(m, step, "MAX_WIDTH"); err != nil {
		return nil, err
	}
	if r.Height, _, err = intProp(m, step, "MAX_HEIGHT"); err != nil {
		return nil, err
	}
	return []model.RenditionConfig{r}, nil
}

// WebMapper maps the web-enabled image step.
type WebMapper struct{}

func (w *WebMapper) Name() string         { return "CreateWebEnabledImageProcess" }
func (w *WebMapper) ProcessIDs() []string { return []string{CreateWebEnabledImageProcess} }

func (w *WebMapper) MapToRenditions(m *model.WorkflowModel, step model.WorkflowStep) ([]model.RenditionConfig, error) {
	r, err := webRendition(m, step, webNode)
	if err != nil {
		return nil, err
	}
	return []model.RenditionConfig{r}, nil
}

// VideoThumbnailMapper maps the video thumbnail step.
type VideoThumbnailMapper struct{}

func (v *VideoThumbnailMapper) Name() string         { return "FFMpegThumbnailProcess" }
func (v *VideoThumbnailMapper) ProcessIDs() []string { return []string{FFMpegThumbnailProcess} }

func (v *VideoThumbnailMapper) MapToRenditions(m *model.WorkflowModel, step model.WorkflowStep) ([]model.RenditionConfig, error) {
	var out []model.RenditionConfig
	for _, size := range ParseSizes(sizeSource(step)) {
		out = append(out, thumbnailRendition(size, []string{"video/.*"}, nil))
	}
	return out, nil
}

// ThumbnailMapper maps both thumbnail step implementations. Steps configured through
// PROCESS_ARGS only ever produced thumbnails; the newer dialog also drives a web rendition
// and an optional FPO rendition from the same metadata.
type ThumbnailMapper struct{}

func (t *ThumbnailMapper) Name() string { return "ThumbnailProcess" }
func (t *ThumbnailMapper) ProcessIDs() []string {
	return []string{ThumbnailProcess, ThumbnailImplProcess}
}

func (t *ThumbnailMapper) MapToRenditions(m *model.WorkflowModel, step model.WorkflowStep) ([]model.RenditionConfig, error) {
	var out []model.RenditionConfig
	if args, ok := step.Metadata.Get("PROCESS_ARGS"); ok {
		for _, size := range ParseSizes(args) {
			out = append(out, thumbnailRendition(size, nil, nil))
		}
		return out, nil
	}

	skip := mimeList(step.Metadata.Value("SKIP_MIME_TYPES"))
	for _, size := range ParseSizes(step.Metadata.Value("CONFIGS")) {
		out = append(out, thumbnailRendition(size, nil, skip))
	}

	web, err := webRendition(m, step, thumbnailNode)
	if err != nil {
		return nil, err
	}
	out = append(out, web)

	if strings.TrimSpace(step.Metadata.Value("FPO_CREATION_ENABLED")) == "true" {
		fpo := model.RenditionConfig{
			NodeName:         fpoNode,
			FileName:         fmt.Sprintf("%s.%s.%s", renditionPrefix, fpoNode, jpegFormat),
			Format:           jpegFormat,
			IncludeMimeTypes: mimeList(step.Metadata.Value("CREATE_FPO_MIMETYPES")),
		}
		if fpo.Quality, _, err = intProp(m, step, "FPO_QUALITY"); err != nil {
			return nil, err
		}
		out = append(out, fpo)
	}
	return out, nil
}

// sizeSource returns the legacy PROCESS_ARGS value when present, otherwise CONFIGS.
func sizeSource(step model.WorkflowStep) string {
	if args, ok := step.Metadata.Get("PROCESS_ARGS"); ok {
		return args
	}
	return step.Metadata.Value("CONFIGS")
}
