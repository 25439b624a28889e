// Package report renders the outcome of a migration run.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"

	"github.com/codebypatrickleung/wfmigrate/internal/audit"
	"github.com/codebypatrickleung/wfmigrate/internal/common"
	"github.com/codebypatrickleung/wfmigrate/internal/logger"
	"github.com/codebypatrickleung/wfmigrate/internal/model"
)

// Report file naming.
const (
	ReportName      = "migration-report"
	ReportExtension = ".md"
	ReadmeName      = "README.md"
)

const (
	reportTemplate = "migration-report.md.tmpl"
	readmeTemplate = "README.md.tmpl"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("report").
	Funcs(sprig.TxtFuncMap()).
	Funcs(template.FuncMap{"code": code, "escape": escape}).
	ParseFS(templateFS, "templates/*.tmpl"))

// Data is what the templates render.
type Data struct {
	RunID          string
	StartedAt      time.Time
	PackageName    string
	Launchers      []string
	RunnerConfigs  []audit.RunnerConfig
	Models         []audit.ModelChanges
	Profiles       []*model.ProcessingProfile
	FailedProfiles []string
	Failures       []audit.Failure
}

// NewData snapshots the tracker.
func NewData(tracker *audit.Tracker, packageName string) Data {
	return Data{
		RunID:          tracker.RunID(),
		StartedAt:      tracker.StartedAt(),
		PackageName:    packageName,
		Launchers:      tracker.DisabledLaunchers(),
		RunnerConfigs:  tracker.RunnerConfigs(),
		Models:         tracker.ModifiedModels(),
		Profiles:       tracker.CreatedProfiles(),
		FailedProfiles: tracker.FailedProfiles(),
		Failures:       tracker.Failures(),
	}
}

// Generator writes the migration report and the README of the migration content package.
type Generator struct {
	reportDir  string
	packageDir string
	tracker    *audit.Tracker
	logger     *logger.Logger
}

// NewGenerator creates a Generator. An empty packageDir skips the README.
func NewGenerator(reportDir, packageDir string, tracker *audit.Tracker, log *logger.Logger) *Generator {
	return &Generator{
		reportDir:  reportDir,
		packageDir: packageDir,
		tracker:    tracker,
		logger:     log,
	}
}

// Generate writes all files and returns the path of the report.
func (g *Generator) Generate() (string, error) {
	if err := common.EnsureDir(g.reportDir); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	data := NewData(g.tracker, filepath.Base(g.packageDir))

	reportPath := NextReportPath(g.reportDir)
	if err := writeFile(reportPath, func(w io.Writer) error { return Render(w, data) }); err != nil {
		return "", err
	}
	g.logger.Successf("Migration report written to %s", reportPath)

	if g.packageDir != "" {
		if err := common.EnsureDir(g.packageDir); err != nil {
			return reportPath, fmt.Errorf("failed to create package directory: %w", err)
		}
		readme := filepath.Join(g.packageDir, ReadmeName)
		err := writeFile(readme, func(w io.Writer) error { return templates.ExecuteTemplate(w, readmeTemplate, data) })
		if err != nil {
			return reportPath, err
		}
		g.logger.Debugf("Package README written to %s", readme)
	}
	return reportPath, nil
}

func writeFile(path string, render func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return fmt.Errorf("failed to render %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Render writes the migration report for data to w.
func Render(w io.Writer, data Data) error {
	return templates.ExecuteTemplate(w, reportTemplate, data)
}

// NextReportPath returns dir/migration-report.md, or migration-report-N.md for the first N
// that cannot be stat'ed. Earlier reports are never overwritten; a path that fails for
// another reason is returned so that writing it reports the real error.
func NextReportPath(dir string) string {
	candidate := filepath.Join(dir, ReportName+ReportExtension)
	for i := 1; ; i++ {
		if _, err := os.Stat(candidate); err != nil {
			return candidate
		}
		candidate = filepath.Join(dir, ReportName+"-"+strconv.Itoa(i)+ReportExtension)
	}
}

// code formats s as inline code that is safe inside a table cell.
func code(s string) string {
	return "`" + escape(s) + "`"
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
