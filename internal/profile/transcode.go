package profile

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/codebypatrickleung/wfmigrate/internal/jcr"
	"github.com/codebypatrickleung/wfmigrate/internal/model"
)

// The only encoding the cloud service transcodes to.
const (
	SupportedCodec  = "h264"
	SupportedFormat = "mp4"
)

// VideoProfile is a legacy video encoding profile referenced by transcode steps.
type VideoProfile struct {
	Width     int
	Height    int
	Codec     string
	BitRate   int
	Extension string
}

// VideoProfileReader loads a named video profile from a profile directory.
type VideoProfileReader interface {
	ReadVideoProfile(dir, name string) (VideoProfile, error)
}

// FileVideoProfileReader reads profiles stored as <dir>/<name>/.content.xml.
type FileVideoProfileReader struct{}

// ReadVideoProfile reads the jcr:content attributes of the named profile.
func (FileVideoProfileReader) ReadVideoProfile(dir, name string) (VideoProfile, error) {
	path := filepath.Join(dir, name, jcr.ContentXML)
	doc, err := jcr.Load(path)
	if err != nil {
		return VideoProfile{}, model.NewCustomerDataError(path, "unable to read video profile "+name, err)
	}
	content := jcr.FindElement(doc.Root(), jcr.ContentElement)
	if content == nil {
		return VideoProfile{}, model.NewCustomerDataError(path, "video profile has no "+jcr.ContentElement+" node", nil)
	}

	vp := VideoProfile{
		Codec:     jcr.Attr(content, "videoCodec"),
		Extension: jcr.Attr(content, "extension"),
	}
	for key, dst := range map[string]*int{"width": &vp.Width, "height": &vp.Height, "videoBitrate": &vp.BitRate} {
		raw := jcr.Attr(content, key)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return VideoProfile{}, model.NewCustomerDataError(path, fmt.Sprintf("invalid %s value %q", key, raw), err)
		}
		*dst = v
	}
	return vp, nil
}

// TranscodeMapper maps the video transcode step through the video profiles it names.
type TranscodeMapper struct {
	videos VideoProfileReader
}

// NewTranscodeMapper creates a TranscodeMapper. A nil reader reads profiles from disk.
func NewTranscodeMapper(videos VideoProfileReader) *TranscodeMapper {
	if videos == nil {
		videos = FileVideoProfileReader{}
	}
	return &TranscodeMapper{videos: videos}
}

func (t *TranscodeMapper) Name() string         { return "FFMpegTranscodeProcess" }
func (t *TranscodeMapper) ProcessIDs() []string { return []string{FFMpegTranscodeProcess} }

// MapToRenditions yields one video rendition per accepted profile entry. Entries naming an
// unsupported codec or format are reported as UnsupportedConfigurationErrors.
func (t *TranscodeMapper) MapToRenditions(m *model.WorkflowModel, step model.WorkflowStep) ([]model.RenditionConfig, error) {
	var out []model.RenditionConfig
	var errs []error
	for _, entry := range tokens(sizeSource(step)) {
		_, name, ok := strings.Cut(entry, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			errs = append(errs, &model.UnsupportedConfigurationError{
				ProcessID: FFMpegTranscodeProcess,
				Subject:   entry,
				Reason:    "expected an entry of the form <name>:<profile>",
			})
			continue
		}
		if i := strings.Index(name, ":"); i >= 0 {
			name = name[:i]
		}

		vp, err := t.videos.ReadVideoProfile(videoDir(m), name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if vp.Codec != SupportedCodec || vp.Extension != SupportedFormat {
			errs = append(errs, &model.UnsupportedConfigurationError{
				ProcessID: FFMpegTranscodeProcess,
				Subject:   name,
				Reason: fmt.Sprintf("the only supported codec and format are %s and %s; no rendition is created for %s %s",
					SupportedCodec, SupportedFormat, vp.Codec, vp.Extension),
			})
			continue
		}
		out = append(out, model.RenditionConfig{
			NodeName:         videoNode,
			FileName:         fmt.Sprintf("%s.%s.%d.%d", renditionPrefix, videoNode, vp.Width, vp.Height),
			Width:            vp.Width,
			Height:           vp.Height,
			Format:           vp.Extension,
			IncludeMimeTypes: []string{"video/.*"},
			ExcludeMimeTypes: []string{"image/.*", "application/.*"},
			Video:            &model.VideoSettings{BitRate: vp.BitRate, Codec: vp.Codec},
		})
	}
	return out, errors.Join(errs...)
}

func videoDir(m *model.WorkflowModel) string {
	if m == nil {
		return ""
	}
	return m.VideoProfileDir
}
