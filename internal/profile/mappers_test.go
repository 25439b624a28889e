package profile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codebypatrickleung/wfmigrate/internal/model"
)

func stepWith(processID string, pairs ...string) model.WorkflowStep {
	return model.WorkflowStep{ProcessID: processID, NodeName: "step", Metadata: model.NewMetadata(pairs...)}
}

func modelWith(steps ...model.WorkflowStep) *model.WorkflowModel {
	return &model.WorkflowModel{Name: "custom", ConfigurationFile: "/tmp/custom/.content.xml", VideoProfileDir: "/videos", Steps: steps}
}

type fileSummary struct {
	width, height int
	fileName      string
}

func summarize(renditions []model.RenditionConfig) []fileSummary {
	var out []fileSummary
	for _, r := range renditions {
		out = append(out, fileSummary{r.Width, r.Height, r.FileName})
	}
	return out
}

func TestParseSizes(t *testing.T) {
	tests := []struct {
		name     string
		entries  []string
		expected []Size
	}{
		{"legacy string", []string{"[100:100:false, 200:200:false]"}, []Size{{100, 100}, {200, 200}}},
		{"modern list", []string{"100:100:false", "200:200:false"}, []Size{{100, 100}, {200, 200}}},
		{"bracket per item", []string{"[140:100],[48:48]"}, []Size{{140, 100}, {48, 48}}},
		{"non-size tokens ignored", []string{"count:4,index:2,[319:319]"}, []Size{{319, 319}}},
		{"malformed", []string{"abc", "0:10", "10"}, nil},
		{"empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseSizes(tt.entries...))
		})
	}
}

func TestVideoThumbnailEncodingTolerance(t *testing.T) {
	mapper := &VideoThumbnailMapper{}
	legacy, err := mapper.MapToRenditions(modelWith(), stepWith(FFMpegThumbnailProcess, "PROCESS_ARGS", "[100:100:false, 200:200:false]"))
	require.NoError(t, err)
	modern, err := mapper.MapToRenditions(modelWith(), stepWith(FFMpegThumbnailProcess, "CONFIGS", "[100:100:false,200:200:false]"))
	require.NoError(t, err)

	require.Len(t, legacy, 2)
	assert.Equal(t, summarize(legacy), summarize(modern))
	assert.Equal(t, "cq5dam.thumbnail.200.200.png", legacy[1].FileName)
	assert.Equal(t, []string{"video/.*"}, legacy[0].IncludeMimeTypes)
}

func TestPreviewMapper(t *testing.T) {
	step := stepWith(CreatePdfPreviewProcess, "MAX_WIDTH", "2048", "MAX_HEIGHT", "1024", "MIME_TYPES", "[application/pdf,application/illustrator]")

	renditions, err := (&PreviewMapper{}).MapToRenditions(modelWith(step), step)
	require.NoError(t, err)
	require.Len(t, renditions, 1)
	r := renditions[0]
	assert.Equal(t, "preview", r.NodeName)
	assert.Equal(t, "cqdam.preview.png", r.FileName)
	assert.Equal(t, 2048, r.Width)
	assert.Equal(t, 1024, r.Height)
	assert.Equal(t, []string{"application/pdf", "application/illustrator"}, r.IncludeMimeTypes)

	suppressed, err := (&PreviewMapper{}).MapToRenditions(modelWith(step, stepWith(DeleteImagePreviewProcess)), step)
	require.NoError(t, err)
	assert.Empty(t, suppressed)
}

func TestWebMapper(t *testing.T) {
	tests := []struct {
		name      string
		step      model.WorkflowStep
		fileName  string
		format    string
		quality   int
		expectErr bool
	}{
		{
			name:     "jpeg output",
			step:     stepWith(CreateWebEnabledImageProcess, "WIDTH", "1280", "HEIGHT", "1280", "QUALITY", "90", "MIME_TYPE", "image/jpeg", "KEEP_FORMAT_LIST", "image/pjpeg, image/jpeg", "SKIP", "image/tiff"),
			fileName: "cq5dam.web.1280.1280.jpeg",
			format:   "jpeg",
			quality:  90,
		},
		{
			name:     "png by default",
			step:     stepWith(CreateWebEnabledImageProcess, "WIDTH", "800", "HEIGHT", "600"),
			fileName: "cq5dam.web.800.600.png",
			format:   "png",
		},
		{
			name:      "invalid width",
			step:      stepWith(CreateWebEnabledImageProcess, "WIDTH", "wide"),
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renditions, err := (&WebMapper{}).MapToRenditions(modelWith(tt.step), tt.step)
			if tt.expectErr {
				var cde *model.CustomerDataError
				assert.True(t, errors.As(err, &cde))
				return
			}
			require.NoError(t, err)
			require.Len(t, renditions, 1)
			assert.Equal(t, "web", renditions[0].NodeName)
			assert.Equal(t, tt.fileName, renditions[0].FileName)
			assert.Equal(t, tt.format, renditions[0].Format)
			assert.Equal(t, tt.quality, renditions[0].Quality)
		})
	}

	r, err := (&WebMapper{}).MapToRenditions(nil, tests[0].step)
	require.NoError(t, err)
	assert.Equal(t, []string{"image/pjpeg", "image/jpeg"}, r[0].IncludeMimeTypes)
	assert.Equal(t, []string{"image/tiff"}, r[0].ExcludeMimeTypes)
}

func TestThumbnailMapperLegacy(t *testing.T) {
	step := stepWith(ThumbnailProcess, "PROCESS_ARGS", "[140:100],[48:48],[319:319]")
	renditions, err := (&ThumbnailMapper{}).MapToRenditions(modelWith(step), step)
	require.NoError(t, err)
	assert.Equal(t, []fileSummary{
		{140, 100, "cq5dam.thumbnail.140.100.png"},
		{48, 48, "cq5dam.thumbnail.48.48.png"},
		{319, 319, "cq5dam.thumbnail.319.319.png"},
	}, summarize(renditions))
}

func TestThumbnailMapperModern(t *testing.T) {
	step := stepWith(ThumbnailImplProcess,
		"CONFIGS", "[140:100:false,300:300:false]",
		"SKIP_MIME_TYPES", "[skip:image/tiff]",
		"WIDTH", "1280", "HEIGHT", "1280", "QUALITY", "90", "MIME_TYPE", "image/jpeg",
		"FPO_CREATION_ENABLED", "true", "CREATE_FPO_MIMETYPES", "image/jpeg,image/png", "FPO_QUALITY", "10")

	renditions, err := (&ThumbnailMapper{}).MapToRenditions(modelWith(step), step)
	require.NoError(t, err)
	require.Len(t, renditions, 4)

	assert.Equal(t, []string{"image/tiff"}, renditions[0].ExcludeMimeTypes)
	assert.Equal(t, "cq5dam.thumbnail.300.300.png", renditions[1].FileName)

	web := renditions[2]
	assert.Equal(t, "thumbnail", web.NodeName)
	assert.Equal(t, "cq5dam.thumbnail.1280.1280.jpeg", web.FileName)
	assert.Equal(t, 90, web.Quality)

	fpo := renditions[3]
	assert.Equal(t, "fpo", fpo.NodeName)
	assert.Equal(t, "cq5dam.fpo.jpeg", fpo.FileName)
	assert.Equal(t, "jpeg", fpo.Format)
	assert.Equal(t, 10, fpo.Quality)
	assert.Equal(t, []string{"image/jpeg", "image/png"}, fpo.IncludeMimeTypes)
}

func TestThumbnailMapperWithoutFPO(t *testing.T) {
	step := stepWith(ThumbnailImplProcess, "CONFIGS", "[140:100:false]", "FPO_CREATION_ENABLED", "false")
	renditions, err := (&ThumbnailMapper{}).MapToRenditions(modelWith(step), step)
	require.NoError(t, err)
	assert.Len(t, renditions, 2)
}

type fakeVideos map[string]VideoProfile

func (f fakeVideos) ReadVideoProfile(dir, name string) (VideoProfile, error) {
	vp, ok := f[name]
	if !ok {
		return VideoProfile{}, model.NewCustomerDataError(filepath.Join(dir, name), "missing video profile", os.ErrNotExist)
	}
	return vp, nil
}

func unsupportedIn(err error) []*model.UnsupportedConfigurationError {
	var out []*model.UnsupportedConfigurationError
	for _, leaf := range model.Leaves(err) {
		var u *model.UnsupportedConfigurationError
		if errors.As(leaf, &u) {
			out = append(out, u)
		}
	}
	return out
}

func TestTranscodeMapper(t *testing.T) {
	videos := fakeVideos{
		"hq":  {Width: 320, Height: 240, Codec: "h264", BitRate: 4096, Extension: "mp4"},
		"ogg": {Width: 320, Height: 240, Codec: "theora", BitRate: 4096, Extension: "ogg"},
	}
	mapper := NewTranscodeMapper(videos)

	t.Run("supported profile", func(t *testing.T) {
		step := stepWith(FFMpegTranscodeProcess, "CONFIGS", "[video:hq]")
		renditions, err := mapper.MapToRenditions(modelWith(step), step)
		require.NoError(t, err)
		require.Len(t, renditions, 1)
		r := renditions[0]
		assert.Equal(t, 320, r.Width)
		assert.Equal(t, 240, r.Height)
		assert.Equal(t, "mp4", r.Format)
		assert.Equal(t, "video", r.NodeName)
		assert.Equal(t, "cq5dam.video.320.240", r.FileName)
		require.True(t, r.IsVideo())
		assert.Equal(t, model.VideoSettings{BitRate: 4096, Codec: "h264"}, *r.Video)
		assert.Equal(t, []string{"video/.*"}, r.IncludeMimeTypes)
		assert.Equal(t, []string{"image/.*", "application/.*"}, r.ExcludeMimeTypes)
	})

	t.Run("unsupported format", func(t *testing.T) {
		step := stepWith(FFMpegTranscodeProcess, "PROCESS_ARGS", "[video:ogg]")
		renditions, err := mapper.MapToRenditions(modelWith(step), step)
		assert.Empty(t, renditions)
		unsupported := unsupportedIn(err)
		require.Len(t, unsupported, 1)
		assert.Contains(t, unsupported[0].Reason, "ogg")
	})

	t.Run("mixed entries", func(t *testing.T) {
		step := stepWith(FFMpegTranscodeProcess, "CONFIGS", "[video:hq,video:ogg,broken,video:missing]")
		renditions, err := mapper.MapToRenditions(modelWith(step), step)
		assert.Len(t, renditions, 1)
		assert.Len(t, unsupportedIn(err), 2)
		assert.Len(t, model.Leaves(err), 3)
		var cde *model.CustomerDataError
		assert.True(t, errors.As(err, &cde))
	})
}

func TestFileVideoProfileReader(t *testing.T) {
	dir := t.TempDir()
	content := `<?xml version="1.0" encoding="UTF-8"?>
<jcr:root xmlns:jcr="http://www.jcp.org/jcr/1.0" jcr:primaryType="cq:Page">
    <jcr:content jcr:primaryType="nt:unstructured" width="320" height="240" videoCodec="h264" videoBitrate="4096" extension="mp4"/>
</jcr:root>
`
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "hq"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hq", ".content.xml"), []byte(content), 0644))

	vp, err := FileVideoProfileReader{}.ReadVideoProfile(dir, "hq")
	require.NoError(t, err)
	assert.Equal(t, VideoProfile{Width: 320, Height: 240, Codec: "h264", BitRate: 4096, Extension: "mp4"}, vp)

	_, err = FileVideoProfileReader{}.ReadVideoProfile(dir, "missing")
	var cde *model.CustomerDataError
	assert.True(t, errors.As(err, &cde))
}

func TestIsOOTB(t *testing.T) {
	tests := []struct {
		name      string
		rendition model.RenditionConfig
		expected  bool
	}{
		{"319 png", model.RenditionConfig{Width: 319, Height: 319, Format: "png"}, true},
		{"140x100 png", model.RenditionConfig{Width: 140, Height: 100, Format: "png"}, true},
		{"48 png", model.RenditionConfig{Width: 48, Height: 48, Format: "png"}, true},
		{"1280 jpeg q90", model.RenditionConfig{Width: 1280, Height: 1280, Format: "jpeg", Quality: 90}, true},
		{"1280 jpeg q80", model.RenditionConfig{Width: 1280, Height: 1280, Format: "jpeg", Quality: 80}, false},
		{"319 jpeg", model.RenditionConfig{Width: 319, Height: 319, Format: "jpeg"}, false},
		{"300 png", model.RenditionConfig{Width: 300, Height: 300, Format: "png"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsOOTB(tt.rendition))
		})
	}
}

func TestDefaultRegistry(t *testing.T) {
	registry := NewDefaultRegistry(nil)
	assert.Len(t, registry.List(), 5)

	tests := []struct {
		processID string
		name      string
	}{
		{CreatePdfPreviewProcess, "CreatePdfPreviewProcess"},
		{CreateWebEnabledImageProcess, "CreateWebEnabledImageProcess"},
		{FFMpegThumbnailProcess, "FFMpegThumbnailProcess"},
		{ThumbnailProcess, "ThumbnailProcess"},
		{ThumbnailImplProcess, "ThumbnailProcess"},
		{FFMpegTranscodeProcess, "FFMpegTranscodeProcess"},
	}
	for _, tt := range tests {
		t.Run(tt.processID, func(t *testing.T) {
			mapper := registry.Get(model.WorkflowStep{ProcessID: tt.processID})
			require.NotNil(t, mapper)
			assert.Equal(t, tt.name, mapper.Name())
		})
	}

	assert.Nil(t, registry.Get(model.WorkflowStep{ProcessID: "com.example.Custom"}))
	assert.Error(t, registry.Register(&WebMapper{}))
	assert.Len(t, registry.List(), 5)
}
