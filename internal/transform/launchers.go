package transform

import (
	"github.com/codebypatrickleung/wfmigrate/internal/audit"
	"github.com/codebypatrickleung/wfmigrate/internal/jcr"
	"github.com/codebypatrickleung/wfmigrate/internal/logger"
	"github.com/codebypatrickleung/wfmigrate/internal/model"
)

const enabledProp = "enabled"

// LauncherDisabler switches off the customer's workflow launchers. Asset processing in
// the cloud service is started by processing profiles and the runner configuration instead.
type LauncherDisabler struct {
	tracker *audit.Tracker
	logger  *logger.Logger
}

// NewLauncherDisabler creates a LauncherDisabler.
func NewLauncherDisabler(tracker *audit.Tracker, log *logger.Logger) *LauncherDisabler {
	return &LauncherDisabler{tracker: tracker, logger: log}
}

// DisableLaunchers disables every launcher backed by a file, whether or not its workflow
// is eligible. It returns the number of launchers disabled. A launcher that cannot be
// rewritten is logged and recorded, the rest are still processed.
func (d *LauncherDisabler) DisableLaunchers(workflows []*model.Workflow) int {
	count := 0
	for _, w := range workflows {
		for _, l := range w.Launchers {
			if l.Synthetic || l.File == "" {
				continue
			}
			if err := d.disable(l); err != nil {
				d.logger.Warningf("Unable to disable launcher at %s: %v", l.RelativePath, err)
				d.tracker.TrackFailure(l.RelativePath, "", err.Error())
				continue
			}
			d.tracker.TrackLauncherDisabled(launcherName(l))
			count++
		}
	}
	return count
}

func (d *LauncherDisabler) disable(l *model.Launcher) error {
	doc, err := jcr.Load(l.File)
	if err != nil {
		return err
	}
	doc.Root().CreateAttr(enabledProp, jcr.FalseValue)
	if err := jcr.Save(doc, l.File); err != nil {
		return err
	}
	l.Enabled = false
	d.logger.Debugf("Disabled launcher %s", l.File)
	return nil
}

func launcherName(l *model.Launcher) string {
	if l.RelativePath != "" {
		return l.RelativePath
	}
	return l.Name
}
