// Package detail builds the company detail page: one web search and one
// LLM extraction per field, plus the latest news links.
package detail

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/search"
)

// Evidence fetched per field and news links attached to the page.
const (
	DefaultMaxResults = 3
	DefaultNewsCount  = 3
)

// Field outcome statuses.
const (
	StatusFound   = "found"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// Searcher is the web search surface the pipeline needs.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) []search.Result
	LatestNews(ctx context.Context, companyName string, count int) []search.NewsLink
}

// FieldExtractor turns reference text into a single field value.
type FieldExtractor interface {
	ExtractField(ctx context.Context, companyName, field, reference string) (any, error)
}

// FieldOutcome records what happened to one field.
type FieldOutcome struct {
	Field  string `json:"field"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Report is the result of one detail run. Result is the flat mapping the
// page renders: each found field, its "<field>_sources" links, "news" and
// "company_name".
type Report struct {
	CompanyName string         `json:"company_name"`
	Result      map[string]any `json:"result"`
	Outcomes    []FieldOutcome `json:"outcomes"`
}

// Found counts the fields that produced a value.
func (r *Report) Found() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == StatusFound {
			n++
		}
	}
	return n
}

// Service runs the detail pipeline.
type Service struct {
	search     Searcher
	extractor  FieldExtractor
	fields     []Field
	maxResults int
	newsCount  int
}

// Option configures a Service.
type Option func(*Service)

// WithFields replaces the built-in field list.
func WithFields(fields []Field) Option {
	return func(s *Service) {
		s.fields = fields
	}
}

// WithMaxResults sets how many search results feed each field.
func WithMaxResults(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxResults = n
		}
	}
}

// WithNewsCount sets how many news links are attached.
func WithNewsCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.newsCount = n
		}
	}
}

// NewService creates a detail Service.
func NewService(s Searcher, e FieldExtractor, opts ...Option) *Service {
	svc := &Service{
		search:     s,
		extractor:  e,
		fields:     DefaultFields(),
		maxResults: DefaultMaxResults,
		newsCount:  DefaultNewsCount,
	}
	for _, o := range opts {
		o(svc)
	}
	return svc
}

// Fields returns the fields in page order.
func (s *Service) Fields() []Field {
	return s.fields
}

// Run searches and extracts every field in order. Fields without search
// evidence or whose extraction fails are left out of Result and recorded
// in Outcomes. Nothing is persisted.
func (s *Service) Run(ctx context.Context, companyName string) *Report {
	log := zap.L().With(zap.String("company", companyName))

	report := &Report{
		CompanyName: companyName,
		Result:      make(map[string]any, 2*len(s.fields)+2),
		Outcomes:    make([]FieldOutcome, 0, len(s.fields)),
	}

	for _, f := range s.fields {
		query := f.QueryFor(companyName)
		results := s.search.Search(ctx, query, s.maxResults)
		if len(results) == 0 {
			log.Info("detail: no search evidence", zap.String("field", f.Name), zap.String("query", query))
			report.Outcomes = append(report.Outcomes, FieldOutcome{Field: f.Name, Status: StatusSkipped})
			continue
		}

		contents := make([]string, 0, len(results))
		sources := make([]search.NewsLink, 0, len(results))
		for _, r := range results {
			contents = append(contents, r.Content)
			sources = append(sources, search.NewsLink{Title: search.TitleOrPlaceholder(r.Title), URL: r.URL})
		}

		value, err := s.extractor.ExtractField(ctx, companyName, f.Name, strings.Join(contents, "\n\n"))
		if err != nil {
			log.Warn("detail: extraction failed", zap.String("field", f.Name), zap.Error(err))
			report.Outcomes = append(report.Outcomes, FieldOutcome{Field: f.Name, Status: StatusFailed, Error: err.Error()})
			continue
		}

		report.Result[f.Name] = value
		report.Result[f.Name+"_sources"] = sources
		report.Outcomes = append(report.Outcomes, FieldOutcome{Field: f.Name, Status: StatusFound})
	}

	report.Result["news"] = s.search.LatestNews(ctx, companyName, s.newsCount)
	report.Result["company_name"] = companyName

	log.Info("detail: run complete",
		zap.Int("fields", len(s.fields)),
		zap.Int("found", report.Found()),
	)
	return report
}
