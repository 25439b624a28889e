package model

// RenditionConfig describes one derived asset rendition of a processing profile.
type RenditionConfig struct {
	NodeName         string
	FileName         string
	Width            int
	Height           int
	Format           string
	Quality          int
	IncludeMimeTypes []string
	ExcludeMimeTypes []string

	// Video is set only for transcoded video renditions.
	Video *VideoSettings
}

// VideoSettings carries the encoder settings of a video rendition.
type VideoSettings struct {
	BitRate int
	Codec   string
}

// IsVideo reports whether the rendition is a video transcode.
func (r RenditionConfig) IsVideo() bool {
	return r.Video != nil
}

// ProcessingProfile is a named collection of renditions derived from one workflow.
type ProcessingProfile struct {
	Name       string
	Renditions []RenditionConfig
}

// AddRendition appends a rendition.
func (p *ProcessingProfile) AddRendition(r RenditionConfig) {
	p.Renditions = append(p.Renditions, r)
}
