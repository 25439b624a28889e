package profile

import (
	"github.com/codebypatrickleung/wfmigrate/internal/audit"
	"github.com/codebypatrickleung/wfmigrate/internal/logger"
	"github.com/codebypatrickleung/wfmigrate/internal/mimetype"
	"github.com/codebypatrickleung/wfmigrate/internal/model"
)

// ProfileNamePrefix prefixes the names of generated profiles.
const ProfileNamePrefix = "Migrated from "

// ProfileWriter persists processing profiles.
type ProfileWriter interface {
	Write(p *model.ProcessingProfile) (string, error)
}

// Creator builds a processing profile per workflow from its rendition steps.
type Creator struct {
	registry *Registry
	writer   ProfileWriter
	tracker  *audit.Tracker
	logger   *logger.Logger
}

// NewCreator creates a Creator. A nil writer builds profiles without persisting them.
func NewCreator(registry *Registry, writer ProfileWriter, tracker *audit.Tracker, log *logger.Logger) *Creator {
	return &Creator{
		registry: registry,
		writer:   writer,
		tracker:  tracker,
		logger:   log,
	}
}

// BuildProfile maps every step of the workflow's model, drops renditions the cloud service
// already produces and merges each remaining rendition's mimetypes with the conditions of
// all launchers of the workflow. Mapping failures are recorded and do not stop the build.
func (c *Creator) BuildProfile(w *model.Workflow) *model.ProcessingProfile {
	if w.Model == nil {
		return nil
	}
	p := &model.ProcessingProfile{Name: ProfileNamePrefix + w.Model.Name}

	var sources []mimetype.RuleSet
	for _, l := range w.Launchers {
		sources = append(sources, mimetype.RuleSetFromConditions(l.Conditions))
	}

	for _, step := range w.Model.Steps {
		mapper := c.registry.Get(step)
		if mapper == nil {
			continue
		}
		renditions, err := mapper.MapToRenditions(w.Model, step)
		if err != nil {
			c.recordFailures(p.Name, mapper.Name(), err)
		}
		for _, r := range renditions {
			if IsOOTB(r) {
				c.logger.Debugf("Skipping %s in %s, the cloud service provides it", r.FileName, p.Name)
				continue
			}
			merged := mimetype.Merge(mimetype.RuleSet{Includes: r.IncludeMimeTypes, Excludes: r.ExcludeMimeTypes}, sources...)
			r.IncludeMimeTypes, r.ExcludeMimeTypes = merged.Includes, merged.Excludes
			p.AddRendition(r)
		}
	}
	return p
}

// CreateProfile builds the workflow's profile and writes it when it has renditions.
// It returns nil when there is nothing to write.
func (c *Creator) CreateProfile(w *model.Workflow) (*model.ProcessingProfile, error) {
	p := c.BuildProfile(w)
	if p == nil || len(p.Renditions) == 0 {
		return nil, nil
	}
	if c.writer != nil {
		dir, err := c.writer.Write(p)
		if err != nil {
			c.tracker.TrackProfileFailed(p.Name)
			c.tracker.TrackFailure(p.Name, "", err.Error())
			return nil, err
		}
		c.logger.Infof("Created processing profile %s at %s", p.Name, dir)
	}
	c.tracker.TrackProfileCreated(p)
	return p, nil
}

func (c *Creator) recordFailures(profile, step string, err error) {
	c.tracker.TrackProfileFailed(profile)
	for _, leaf := range model.Leaves(err) {
		reason := model.FailureReason(leaf)
		c.logger.Warningf("%s: %s", profile, reason)
		c.tracker.TrackFailure(profile, step, reason)
	}
}
