// Package statistics aggregates counts across the four repositories.
package statistics

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/at-ishikawa/elearn/internal/assets"
	"github.com/at-ishikawa/elearn/internal/query"
	"github.com/at-ishikawa/elearn/internal/repository"
)

type UserStatistics struct {
	Total    int `json:"total" yaml:"total"`
	Students int `json:"students" yaml:"students"`
	Teachers int `json:"teachers" yaml:"teachers"`
	Admins   int `json:"admins" yaml:"admins"`
	Active   int `json:"active" yaml:"active"`
}

type CourseStatistics struct {
	Total     int `json:"total" yaml:"total"`
	Published int `json:"published" yaml:"published"`
	Draft     int `json:"draft" yaml:"draft"`
}

type QuizStatistics struct {
	Total  int `json:"total" yaml:"total"`
	Active int `json:"active" yaml:"active"` // deadline in the future
}

type ActivityStatistics struct {
	Total int `json:"total" yaml:"total"`
	Today int `json:"today" yaml:"today"`
}

// Report is the dashboard summary.
type Report struct {
	Users      UserStatistics     `json:"users" yaml:"users"`
	Courses    CourseStatistics   `json:"courses" yaml:"courses"`
	Quizzes    QuizStatistics     `json:"quizzes" yaml:"quizzes"`
	Activities ActivityStatistics `json:"activities" yaml:"activities"`
}

// Aggregator loads every repository and computes a Report.
type Aggregator struct {
	users   query.Loader
	courses query.Loader
	quizzes query.Loader
	logs    query.Loader
	now     func() time.Time
	logger  *slog.Logger
}

func NewAggregator(users, courses, quizzes, logs query.Loader, now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{
		users:   users,
		courses: courses,
		quizzes: quizzes,
		logs:    logs,
		now:     now,
		logger:  slog.Default(),
	}
}

// Aggregate runs the four loads concurrently and waits for all of them.
// A failed load contributes whatever the repository returned, normally an
// empty slice, and is logged rather than returned.
func (a *Aggregator) Aggregate(ctx context.Context) (Report, error) {
	var users, courses, quizzes, logs []repository.Record

	g, gctx := errgroup.WithContext(ctx)
	load := func(name string, loader query.Loader, dst *[]repository.Record) {
		g.Go(func() error {
			records, err := loader.Load(gctx, false)
			if err != nil {
				a.logger.Warn("Statistics computed without a collection",
					slog.String("collection", name),
					slog.Any("error", err),
				)
			}
			*dst = records
			return nil
		})
	}
	load("users", a.users, &users)
	load("courses", a.courses, &courses)
	load("quizzes", a.quizzes, &quizzes)
	load("logs", a.logs, &logs)
	if err := g.Wait(); err != nil {
		return Report{}, fmt.Errorf("errgroup.Wait() > %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	return Calculate(users, courses, quizzes, logs, a.now()), nil
}

// Calculate computes a Report from snapshots as of now.
func Calculate(users, courses, quizzes, logs []repository.Record, now time.Time) Report {
	var report Report

	report.Users.Total = len(users)
	for _, u := range users {
		switch u.String("role") {
		case "student":
			report.Users.Students++
		case "teacher":
			report.Users.Teachers++
		case "admin":
			report.Users.Admins++
		}
		if query.UserStatus(u, now) == query.StatusActive {
			report.Users.Active++
		}
	}

	report.Courses.Total = len(courses)
	for _, c := range courses {
		switch c.String("status") {
		case "published":
			report.Courses.Published++
		case "draft":
			report.Courses.Draft++
		}
	}

	report.Quizzes.Total = len(quizzes)
	for _, q := range quizzes {
		if deadline, ok := q.Time("deadline"); ok && deadline.After(now) {
			report.Quizzes.Active++
		}
	}

	report.Activities.Total = len(logs)
	for _, l := range logs {
		if ts, ok := l.Time("timestamp"); ok && sameDate(ts.In(now.Location()), now) {
			report.Activities.Today++
		}
	}
	return report
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// TemplateData lays the report out as the tables of the markdown report.
func TemplateData(report Report, generatedAt time.Time) assets.StatisticsTemplate {
	return assets.StatisticsTemplate{
		Title:       "E-learning Statistics Report",
		GeneratedAt: generatedAt,
		Sections: []assets.ReportSection{
			{Title: "Users", Rows: []assets.ReportRow{
				{Metric: "Total", Count: report.Users.Total},
				{Metric: "Students", Count: report.Users.Students},
				{Metric: "Teachers", Count: report.Users.Teachers},
				{Metric: "Admins", Count: report.Users.Admins},
				{Metric: "Active (7 days)", Count: report.Users.Active},
			}},
			{Title: "Courses", Rows: []assets.ReportRow{
				{Metric: "Total", Count: report.Courses.Total},
				{Metric: "Published", Count: report.Courses.Published},
				{Metric: "Draft", Count: report.Courses.Draft},
			}},
			{Title: "Quizzes", Rows: []assets.ReportRow{
				{Metric: "Total", Count: report.Quizzes.Total},
				{Metric: "Open", Count: report.Quizzes.Active},
			}},
			{Title: "Activities", Rows: []assets.ReportRow{
				{Metric: "Total", Count: report.Activities.Total},
				{Metric: "Today", Count: report.Activities.Today},
			}},
		},
	}
}

// RenderMarkdown formats the report as a markdown document using the template
// at templatePath, or the built-in one when templatePath is empty.
func RenderMarkdown(report Report, generatedAt time.Time, templatePath string) ([]byte, error) {
	tmpl, err := assets.ParseStatisticsTemplate(templatePath)
	if err != nil {
		return nil, fmt.Errorf("assets.ParseStatisticsTemplate() > %w", err)
	}
	var buf bytes.Buffer
	if err := assets.WriteStatisticsReport(&buf, tmpl, TemplateData(report, generatedAt)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
