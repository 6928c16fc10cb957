package assets

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"
)

const statisticsTemplateName = "statistics-report.md.go.tmpl"

//go:embed templates/statistics-report.md.go.tmpl
var fallbackStatisticsTemplate string

// StatisticsTemplate is the top-level data structure for statistics report templates
type StatisticsTemplate struct {
	Title       string
	GeneratedAt time.Time
	Sections    []ReportSection
}

// ReportSection is one table of the report, e.g. Users
type ReportSection struct {
	Title string
	Rows  []ReportRow
}

type ReportRow struct {
	Metric string
	Count  int
}

// ParseStatisticsTemplate parses the template at templatePath, falling back
// to the embedded one when the path is empty, missing or unparsable.
func ParseStatisticsTemplate(templatePath string) (*template.Template, error) {
	return parseTemplateWithFallback(templatePath, statisticsTemplateName, fallbackStatisticsTemplate)
}

func parseTemplateWithFallback(templatePath string, fallbackName string, fallbackTemplate string) (*template.Template, error) {
	funcMap := template.FuncMap{
		"join": strings.Join,
	}

	// First, try to read from the filesystem
	if templatePath != "" {
		if _, err := os.Stat(templatePath); err == nil {
			fileName := filepath.Base(templatePath)
			tmpl, err := template.New(fileName).
				Funcs(funcMap).
				ParseFiles(templatePath)
			if err == nil {
				return tmpl, nil
			}
			slog.Default().Warn("failed to parse a templatePath",
				slog.String("templatePath", templatePath),
				slog.Any("error", err),
			)
		}
	}

	tmpl, err := template.New(fallbackName).
		Funcs(funcMap).
		Parse(fallbackTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded template: %w", err)
	}
	return tmpl, nil
}

// WriteStatisticsReport executes tmpl with data into w.
func WriteStatisticsReport(w io.Writer, tmpl *template.Template, data StatisticsTemplate) error {
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("tmpl.Execute() > %w", err)
	}
	return nil
}
