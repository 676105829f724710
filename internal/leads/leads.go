// Package leads proposes and stores scored sales prospects for a source
// company, using its profile document analyses when there are any and
// web search otherwise.
package leads

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/extract"
	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/store"
)

// DefaultCount is how many prospects are requested.
const DefaultCount = 5

// Result statuses and sources.
const (
	StatusSuccess = "success"
	StatusError   = "error"

	SourcePDFAnalysis = "pdf_analysis"
	SourceWebSearch   = "web_search"
)

// User-facing failure messages.
const (
	MsgSourceNotFound = "Source company not found"
	MsgEmptyResponse  = "Failed to generate leads - empty response"
	MsgNoLeadsKey     = "Invalid response format - 'leads' key not found"
	MsgLeadsNotList   = "Invalid response format - 'leads' is not a list"
)

// Researcher answers a prompt with web search available.
type Researcher interface {
	Research(ctx context.Context, prompt string) (string, error)
}

// Analyzer produces and stores the analysis of one profile document.
type Analyzer interface {
	Analyze(ctx context.Context, profile *model.Profile) (model.AnalysisFields, bool)
}

// Lead is one stored prospect as reported to the caller.
type Lead struct {
	Company        string   `json:"company"`
	Industry       *string  `json:"industry"`
	Sales          *float64 `json:"sales"`
	TotalFunding   *float64 `json:"total_funding"`
	Homepage       *string  `json:"homepage"`
	KeyExecutive   *string  `json:"key_executive"`
	RelevanceScore float64  `json:"relevance_score"`
	Reasoning      string   `json:"reasoning"`
}

// LeadOutcome records a proposed lead that could not be stored.
type LeadOutcome struct {
	Index   int    `json:"index"`
	Company string `json:"company"`
	Error   string `json:"error"`
}

// Result summarizes one discovery run. Pipeline-level failures set Status
// to StatusError with a readable Message.
type Result struct {
	Status     string        `json:"status"`
	Message    string        `json:"message"`
	SourceUsed string        `json:"source_used,omitempty"`
	Leads      []Lead        `json:"leads"`
	Skipped    []LeadOutcome `json:"skipped,omitempty"`
}

func errorResult(msg string) *Result {
	return &Result{Status: StatusError, Message: msg}
}

// Service runs lead discovery.
type Service struct {
	store      store.Store
	analyzer   Analyzer
	researcher Researcher
	count      int
}

// NewService creates a lead discovery Service. count <= 0 uses
// DefaultCount.
func NewService(s store.Store, a Analyzer, r Researcher, count int) *Service {
	if count <= 0 {
		count = DefaultCount
	}
	return &Service{store: s, analyzer: a, researcher: r, count: count}
}

// Find proposes prospects for the company with id sourceID and upserts
// each one as a company plus a lead edge. The returned error is reserved
// for storage failures before any lead was proposed; everything else is
// reported through Result.
func (s *Service) Find(ctx context.Context, sourceID int64) (*Result, error) {
	log := zap.L().With(zap.Int64("company_id", sourceID))

	source, err := s.store.GetCompany(ctx, sourceID)
	if err != nil {
		return nil, eris.Wrap(err, "leads: load source company")
	}
	if source == nil {
		log.Warn("leads: source company not found")
		return errorResult(MsgSourceNotFound), nil
	}

	analyses := s.collectAnalyses(ctx, source)
	sourceUsed := SourceWebSearch
	if len(analyses) > 0 {
		sourceUsed = SourcePDFAnalysis
	}
	log.Info("leads: researching prospects",
		zap.String("company", source.Name),
		zap.Int("analyses", len(analyses)),
		zap.String("source_used", sourceUsed),
	)

	prompt := fmt.Sprintf(researchPrompt, describeCompany(source), describeAnalyses(analyses), s.count)
	text, err := s.researcher.Research(ctx, prompt)
	if err != nil || strings.TrimSpace(text) == "" {
		log.Error("leads: research returned nothing", zap.Error(err))
		return errorResult(MsgEmptyResponse), nil
	}

	proposed, msg := decodeLeads(text)
	if msg != "" {
		log.Error("leads: unusable research response", zap.String("reason", msg))
		return errorResult(msg), nil
	}

	res := &Result{
		Status:     StatusSuccess,
		SourceUsed: sourceUsed,
		Leads:      make([]Lead, 0, len(proposed)),
	}
	for i, raw := range proposed {
		lead, err := s.storeLead(ctx, source.ID, raw)
		if err != nil {
			log.Warn("leads: lead skipped", zap.Int("index", i), zap.Error(err))
			res.Skipped = append(res.Skipped, LeadOutcome{Index: i, Company: leadName(raw), Error: err.Error()})
			continue
		}
		res.Leads = append(res.Leads, *lead)
	}
	res.Message = fmt.Sprintf("Found %d potential leads", len(res.Leads))

	log.Info("leads: run complete", zap.Int("stored", len(res.Leads)), zap.Int("skipped", len(res.Skipped)))
	return res, nil
}

// collectAnalyses reuses stored analyses and produces missing ones.
// Profiles that fail are logged and left out.
func (s *Service) collectAnalyses(ctx context.Context, source *model.Company) []model.AnalysisFields {
	profiles, err := s.store.ListProfiles(ctx, source.ID)
	if err != nil {
		zap.L().Warn("leads: list profiles", zap.Int64("company_id", source.ID), zap.Error(err))
		return nil
	}

	var out []model.AnalysisFields
	for i := range profiles {
		p := &profiles[i]
		existing, err := s.store.GetAnalysis(ctx, source.ID, p.ID)
		if err != nil {
			zap.L().Warn("leads: load analysis", zap.Int64("profile_id", p.ID), zap.Error(err))
			continue
		}
		if existing != nil {
			zap.L().Debug("leads: reusing analysis", zap.Int64("profile_id", p.ID))
			out = append(out, existing.AnalysisFields)
			continue
		}
		if fields, ok := s.analyzer.Analyze(ctx, p); ok {
			out = append(out, fields)
		}
	}
	return out
}

// storeLead upserts the prospect company and the lead edge from source.
func (s *Service) storeLead(ctx context.Context, sourceID int64, raw any) (*Lead, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, eris.Errorf("leads: entry is %T, not an object", raw)
	}

	prospect, err := s.store.UpsertCompany(ctx, leadName(obj), leadAttributes(obj))
	if err != nil {
		return nil, eris.Wrap(err, "leads: upsert prospect")
	}

	score, _ := extract.Number(obj["relevance_score"])
	reasoning, _ := extract.Text(obj["reasoning"])
	edge, err := s.store.UpsertLead(ctx, sourceID, prospect.ID, model.ClampScore(score), reasoning)
	if err != nil {
		return nil, eris.Wrap(err, "leads: upsert lead")
	}

	return &Lead{
		Company:        prospect.Name,
		Industry:       prospect.Industry,
		Sales:          prospect.Sales,
		TotalFunding:   prospect.TotalFunding,
		Homepage:       prospect.Homepage,
		KeyExecutive:   prospect.KeyExecutive,
		RelevanceScore: edge.RelevanceScore,
		Reasoning:      edge.Reasoning,
	}, nil
}

// decodeLeads parses the research response. An unparseable response
// counts as zero leads; a parsed object without a usable "leads" list
// yields a failure message.
func decodeLeads(text string) ([]any, string) {
	obj, err := extract.DecodeObject(text)
	if err != nil {
		zap.L().Warn("leads: response is not JSON, treating as no leads", zap.Error(err))
		return []any{}, ""
	}

	raw, ok := obj["leads"]
	if !ok {
		return nil, MsgNoLeadsKey
	}
	if raw == nil {
		return []any{}, ""
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, MsgLeadsNotList
	}
	return list, ""
}

func leadName(raw any) string {
	obj, _ := raw.(map[string]any)
	if name, ok := extract.Text(obj["company"]); ok {
		return name
	}
	return unknownValue
}

func leadAttributes(obj map[string]any) model.CompanyAttributes {
	text := func(key string) *string {
		if s, ok := extract.Text(obj[key]); ok {
			return &s
		}
		return nil
	}
	number := func(key string) *float64 {
		if f, ok := extract.Number(obj[key]); ok {
			return &f
		}
		return nil
	}
	return model.CompanyAttributes{
		Industry:     text("industry"),
		Sales:        number("sales"),
		TotalFunding: number("total_funding"),
		Homepage:     text("homepage"),
		KeyExecutive: text("key_executive"),
		Address:      text("address"),
		Email:        text("email"),
		PhoneNumber:  text("phone_number"),
	}
}

func describeCompany(c *model.Company) string {
	var b strings.Builder
	line := func(label, value string) {
		if value == "" {
			value = unknownValue
		}
		fmt.Fprintf(&b, "- %s: %s\n", label, value)
	}
	line("Name", c.Name)
	line("Industry", model.Deref(c.Industry))
	line("Revenue", formatNumber(c.Sales))
	line("Total funding", formatNumber(c.TotalFunding))
	line("Homepage", model.Deref(c.Homepage))
	line("Key executive", model.Deref(c.KeyExecutive))
	line("Address", model.Deref(c.Address))
	line("Email", model.Deref(c.Email))
	line("Phone", model.Deref(c.PhoneNumber))
	return b.String()
}

// describeAnalyses lists the first non-empty narrative value of each kind
// across all analyses.
func describeAnalyses(analyses []model.AnalysisFields) string {
	if len(analyses) == 0 {
		return ""
	}

	narrative := []struct {
		label string
		get   func(model.AnalysisFields) *string
	}{
		{"Description", func(f model.AnalysisFields) *string { return f.CompanyDescription }},
		{"Products and services", func(f model.AnalysisFields) *string { return f.ProductsServices }},
		{"Target customers", func(f model.AnalysisFields) *string { return f.TargetCustomers }},
		{"Competitors", func(f model.AnalysisFields) *string { return f.Competitors }},
		{"Strengths", func(f model.AnalysisFields) *string { return f.Strengths }},
		{"Business model", func(f model.AnalysisFields) *string { return f.BusinessModel }},
	}

	var b strings.Builder
	for _, n := range narrative {
		for _, a := range analyses {
			if v := strings.TrimSpace(model.Deref(n.get(a))); v != "" {
				fmt.Fprintf(&b, "- %s: %s\n", n.label, v)
				break
			}
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "\nFrom the company's profile documents:\n" + b.String()
}

func formatNumber(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
