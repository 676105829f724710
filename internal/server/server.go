// Package server exposes the detail, lead discovery and PDF analysis
// pipelines over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sells-group/leadscout/internal/apperr"
	"github.com/sells-group/leadscout/internal/detail"
	"github.com/sells-group/leadscout/internal/leads"
	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/store"
)

// DetailRunner builds company detail reports.
type DetailRunner interface {
	Run(ctx context.Context, companyName string) *detail.Report
	Fields() []detail.Field
}

// LeadFinder runs lead discovery for a source company.
type LeadFinder interface {
	Find(ctx context.Context, sourceID int64) (*leads.Result, error)
}

// ProfileAnalyzer analyzes one profile document.
type ProfileAnalyzer interface {
	Analyze(ctx context.Context, profile *model.Profile) (model.AnalysisFields, bool)
}

// Deps are the services the handlers call.
type Deps struct {
	Store    store.Repository
	Details  DetailRunner
	Leads    LeadFinder
	Analyzer ProfileAnalyzer
}

// Options tune the HTTP layer.
type Options struct {
	AllowedOrigins []string
}

type handler struct {
	Deps
}

// NewRouter wires every route. Paths match with or without a trailing
// slash.
func NewRouter(d Deps, opts Options) http.Handler {
	h := &handler{Deps: d}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.StripSlashes)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", h.health)
	r.Post("/details", h.details)
	r.Post("/find-leads", h.findLeads)
	r.Post("/analyze-pdf", h.analyzePDF)
	r.Post("/analyze-pdf/{profileID}", h.analyzePDF)
	r.Get("/analyze-pdf/{profileID}", h.getAnalysis)
	r.Post("/companies", h.upsertCompany)
	r.Route("/companies/{companyID}", func(r chi.Router) {
		r.Get("/", h.getCompany)
		r.Post("/profiles", h.createProfile)
		r.Get("/profiles", h.listProfiles)
		r.Get("/leads", h.listLeads)
	})

	return r
}

// NewHTTPServer wraps the router in an http.Server with the timeouts used
// in production. Lead discovery waits on a web-searching model, so the
// write timeout is generous.
func NewHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) details(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	name := model.NormalizeName(fields["search_company_name"])
	if name == "" {
		writeMessage(w, http.StatusBadRequest, "company_name is required")
		return
	}

	report := h.Details.Run(r.Context(), name)
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, report)
		return
	}
	renderDetail(w, newDetailPage(h.Details.Fields(), report))
}

func (h *handler) findLeads(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := parseID("company_id", fields["company_id"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.Leads.Find(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if res.Status == leads.StatusError {
		writeMessage(w, http.StatusBadRequest, res.Message)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) analyzePDF(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "profileID")
	if raw == "" {
		fields, err := readFields(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		raw = fields["profile_id"]
	}
	id, err := parseID("profile_id", raw)
	if err != nil {
		writeError(w, r, err)
		return
	}

	profile, err := h.Store.GetProfile(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if profile == nil {
		writeError(w, r, apperr.NewNotFound("profile", id))
		return
	}

	fields, ok := h.Analyzer.Analyze(r.Context(), profile)
	if !ok {
		writeMessage(w, http.StatusInternalServerError, "Failed to analyze PDF")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"message":  "PDF analysis completed successfully",
		"analysis": fields,
	})
}

// storedAnalysis is the GET /analyze-pdf response body.
type storedAnalysis struct {
	model.AnalysisFields
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h *handler) getAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := parseID("profile_id", chi.URLParam(r, "profileID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	a, err := h.Store.GetAnalysisByProfile(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if a == nil {
		writeError(w, r, apperr.NewNotFound("analysis for profile", id))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"analysis": storedAnalysis{
			AnalysisFields: a.AnalysisFields,
			CreatedAt:      a.CreatedAt,
			UpdatedAt:      a.UpdatedAt,
		},
	})
}

func (h *handler) upsertCompany(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	name := model.NormalizeName(fields["company"])
	if name == "" {
		writeError(w, r, apperr.Required("company"))
		return
	}
	attrs, err := companyAttributes(fields)
	if err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.Store.UpsertCompany(r.Context(), name, attrs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *handler) getCompany(w http.ResponseWriter, r *http.Request) {
	company, ok := h.company(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, company)
}

// companyAttributes picks the attribute keys present in fields. Absent or
// blank keys stay nil so stored values survive.
func companyAttributes(fields map[string]string) (model.CompanyAttributes, error) {
	text := func(key string) *string {
		if v := strings.TrimSpace(fields[key]); v != "" {
			return model.String(v)
		}
		return nil
	}
	number := func(key string) (*float64, error) {
		v := strings.TrimSpace(fields[key])
		if v == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, apperr.NewValidation(key, key+" must be a number")
		}
		return model.Float(f), nil
	}

	sales, err := number("sales")
	if err != nil {
		return model.CompanyAttributes{}, err
	}
	funding, err := number("total_funding")
	if err != nil {
		return model.CompanyAttributes{}, err
	}
	return model.CompanyAttributes{
		Industry:     text("industry"),
		Sales:        sales,
		TotalFunding: funding,
		Address:      text("address"),
		Email:        text("email"),
		Homepage:     text("homepage"),
		KeyExecutive: text("key_executive"),
		LogoURL:      text("logo_url"),
		PhoneNumber:  text("phone_number"),
	}, nil
}

func (h *handler) createProfile(w http.ResponseWriter, r *http.Request) {
	company, ok := h.company(w, r)
	if !ok {
		return
	}
	fields, err := readFields(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	url := strings.TrimSpace(fields["url"])
	if url == "" {
		writeError(w, r, apperr.Required("url"))
		return
	}
	fileName := strings.TrimSpace(fields["file_name"])
	if fileName == "" {
		fileName = url[strings.LastIndex(url, "/")+1:]
	}

	p, err := h.Store.CreateProfile(r.Context(), company.ID, fileName, url)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *handler) listProfiles(w http.ResponseWriter, r *http.Request) {
	company, ok := h.company(w, r)
	if !ok {
		return
	}
	profiles, err := h.Store.ListProfiles(r.Context(), company.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if profiles == nil {
		profiles = []model.Profile{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"profiles": profiles})
}

func (h *handler) listLeads(w http.ResponseWriter, r *http.Request) {
	company, ok := h.company(w, r)
	if !ok {
		return
	}
	views, err := h.Store.ListLeads(r.Context(), company.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if views == nil {
		views = []model.LeadView{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"company": company, "leads": views})
}

// company loads the {companyID} path company, writing the error response
// itself when it cannot.
func (h *handler) company(w http.ResponseWriter, r *http.Request) (*model.Company, bool) {
	id, err := parseID("company_id", chi.URLParam(r, "companyID"))
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	c, err := h.Store.GetCompany(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	if c == nil {
		writeError(w, r, apperr.NewNotFound("company", id))
		return nil, false
	}
	return c, true
}

// readFields flattens a JSON or form request body into string values.
// Numbers keep their literal text; nested values are ignored.
func readFields(r *http.Request) (map[string]string, error) {
	out := map[string]string{}

	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return nil, apperr.NewValidation("body", "invalid form body")
		}
		for k, v := range r.PostForm {
			if len(v) > 0 {
				out[k] = v[0]
			}
		}
		return out, nil
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		return nil, apperr.NewValidation("body", "invalid request body")
	}
	for k, v := range raw {
		switch t := v.(type) {
		case string:
			out[k] = t
		case json.Number:
			out[k] = t.String()
		}
	}
	return out, nil
}
