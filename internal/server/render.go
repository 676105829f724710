package server

import (
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/apperr"
	"github.com/sells-group/leadscout/internal/detail"
	"github.com/sells-group/leadscout/internal/extract"
	"github.com/sells-group/leadscout/internal/search"
)

//go:embed templates/*.html
var templateFS embed.FS

var detailTemplate = template.Must(template.New("detail.html").Funcs(template.FuncMap{
	"display": displayValue,
	"isURL":   isURL,
}).ParseFS(templateFS, "templates/detail.html"))

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

// errorBody is the error response shape.
type errorBody struct {
	Error string `json:"error"`
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeError maps err to a status and user-facing message. Internal
// errors are logged with the request ID and reported generically.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		zap.L().Error("server: handler failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeMessage(w, status, apperr.Message(err))
}

// detailRow is one rendered field of the detail page.
type detailRow struct {
	Name    string
	Label   string
	Value   any
	Sources []search.NewsLink
}

type detailPage struct {
	CompanyName string
	Rows        []detailRow
	Missing     []string
	News        []search.NewsLink
}

func newDetailPage(fields []detail.Field, report *detail.Report) detailPage {
	page := detailPage{CompanyName: report.CompanyName}
	for _, f := range fields {
		v, ok := report.Result[f.Name]
		if !ok {
			page.Missing = append(page.Missing, f.Label)
			continue
		}
		sources, _ := report.Result[f.Name+"_sources"].([]search.NewsLink)
		page.Rows = append(page.Rows, detailRow{Name: f.Name, Label: f.Label, Value: v, Sources: sources})
	}
	page.News, _ = report.Result["news"].([]search.NewsLink)
	return page
}

func renderDetail(w http.ResponseWriter, page detailPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := detailTemplate.Execute(w, page); err != nil {
		zap.L().Error("server: render detail page", zap.Error(err))
	}
}

func displayValue(v any) string {
	s, ok := extract.Text(v)
	if !ok {
		return "-"
	}
	return s
}

func isURL(v any) bool {
	s, ok := v.(string)
	return ok && (strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://"))
}

// wantsJSON reports whether the client asked for JSON instead of HTML.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// parseID reads a positive integer identifier. field names the request
// field for validation messages.
func parseID(field, raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, apperr.Required(field)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.NewValidation(field, field+" must be a positive integer")
	}
	return id, nil
}
