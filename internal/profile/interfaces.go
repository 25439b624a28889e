// Package profile maps legacy rendition steps to processing profile renditions and persists the profiles.
package profile

import (
	"github.com/codebypatrickleung/wfmigrate/internal/model"
)

// Process identifiers handled by the mappers.
const (
	CreatePdfPreviewProcess      = "com.day.cq.dam.core.process.CreatePdfPreviewProcess"
	DeleteImagePreviewProcess    = "com.day.cq.dam.core.process.DeleteImagePreviewProcess"
	CreateWebEnabledImageProcess = "com.day.cq.dam.core.process.CreateWebEnabledImageProcess"
	FFMpegThumbnailProcess       = "com.day.cq.dam.video.FFMpegThumbnailProcess"
	ThumbnailProcess             = "com.day.cq.dam.core.process.ThumbnailProcess"
	ThumbnailImplProcess         = "com.day.cq.dam.core.impl.process.ThumbnailProcess"
	FFMpegTranscodeProcess       = "com.day.cq.dam.video.FFMpegTranscodeProcess"
)

// Mapper converts the configuration of one kind of legacy step into renditions.
type Mapper interface {
	// Name returns a short label used in logs and failure reports.
	Name() string

	// ProcessIDs returns the process identifiers this mapper handles.
	ProcessIDs() []string

	// MapToRenditions derives renditions from step. The model is passed for mappers that
	// depend on other steps or on files next to the model. Partial results may be returned
	// together with UnsupportedConfigurationErrors for entries that could not be mapped.
	MapToRenditions(m *model.WorkflowModel, step model.WorkflowStep) ([]model.RenditionConfig, error)
}
