package detail

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/apperr"
	"github.com/sells-group/leadscout/internal/search"
)

type mockSearcher struct{ mock.Mock }

func (m *mockSearcher) Search(ctx context.Context, query string, maxResults int) []search.Result {
	args := m.Called(ctx, query, maxResults)
	return args.Get(0).([]search.Result)
}

func (m *mockSearcher) LatestNews(ctx context.Context, companyName string, count int) []search.NewsLink {
	args := m.Called(ctx, companyName, count)
	return args.Get(0).([]search.NewsLink)
}

type mockExtractor struct{ mock.Mock }

func (m *mockExtractor) ExtractField(ctx context.Context, companyName, field, reference string) (any, error) {
	args := m.Called(ctx, companyName, field, reference)
	return args.Get(0), args.Error(1)
}

func TestDefaultFields(t *testing.T) {
	fields := DefaultFields()

	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
		assert.NotEmpty(t, f.Label)
	}
	assert.Equal(t, []string{
		"industry", "homepage_url", "key_executives", "company_address",
		"company_summary", "target_customers", "competitors", "strengths",
		"risk_factors", "recent_trends", "financial_info", "founded_date", "logo_url",
	}, names)
	assert.Equal(t, "Acme CEO", fields[2].QueryFor("Acme"))
}

func TestParseFields_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantMsg string
	}{
		{"empty", "fields: []", "no fields"},
		{"bad yaml", "fields: [", "parse fields"},
		{"no name", "fields:\n  - query: '{company} x'", "has no name"},
		{"duplicate", "fields:\n  - {name: a, query: '{company} a'}\n  - {name: a, query: '{company} b'}", `duplicate field "a"`},
		{"no placeholder", "fields:\n  - {name: a, query: 'static'}", "must contain {company}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFields([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoadFields(t *testing.T) {
	fields, err := LoadFields("")
	require.NoError(t, err)
	assert.Len(t, fields, 13)

	path := filepath.Join(t.TempDir(), "fields.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fields:\n  - {name: ceo, query: '{company} 대표이사'}\n"), 0o600))

	fields, err = LoadFields(path)
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "ceo", fields[0].Label)
	assert.Equal(t, "한빛 대표이사", fields[0].QueryFor("한빛"))

	_, err = LoadFields(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func threeFields() []Field {
	return []Field{
		{Name: "homepage_url", Label: "Homepage", Query: "{company} official homepage"},
		{Name: "key_executives", Label: "Key executives", Query: "{company} CEO"},
		{Name: "founded_date", Label: "Founded", Query: "{company} founding date"},
	}
}

func TestRun(t *testing.T) {
	s := &mockSearcher{}
	e := &mockExtractor{}

	s.On("Search", mock.Anything, "Acme official homepage", 3).Return([]search.Result{
		{Title: "Acme", URL: "https://acme.test", Content: "Welcome to Acme"},
		{Title: "", URL: "https://wiki.test/acme", Content: "Acme is a company"},
	})
	s.On("Search", mock.Anything, "Acme CEO", 3).Return([]search.Result{})
	s.On("Search", mock.Anything, "Acme founding date", 3).Return([]search.Result{
		{Title: "History", URL: "https://acme.test/history", Content: "Founded 1999"},
	})
	s.On("LatestNews", mock.Anything, "Acme", 3).Return([]search.NewsLink{{Title: "Acme raises", URL: "https://news.test/1"}})

	e.On("ExtractField", mock.Anything, "Acme", "homepage_url", "Welcome to Acme\n\nAcme is a company").
		Return("https://acme.test", nil)
	e.On("ExtractField", mock.Anything, "Acme", "founded_date", "Founded 1999").
		Return(nil, apperr.NewExtractionError("founded_date", errors.New("bad json")))

	report := NewService(s, e, WithFields(threeFields())).Run(context.Background(), "Acme")

	assert.Equal(t, "https://acme.test", report.Result["homepage_url"])
	assert.Equal(t, []search.NewsLink{
		{Title: "Acme", URL: "https://acme.test"},
		{Title: search.NoTitle, URL: "https://wiki.test/acme"},
	}, report.Result["homepage_url_sources"])

	assert.NotContains(t, report.Result, "key_executives")
	assert.NotContains(t, report.Result, "key_executives_sources")
	assert.NotContains(t, report.Result, "founded_date")
	assert.NotContains(t, report.Result, "founded_date_sources")

	assert.Equal(t, []search.NewsLink{{Title: "Acme raises", URL: "https://news.test/1"}}, report.Result["news"])
	assert.Equal(t, "Acme", report.Result["company_name"])
	assert.Len(t, report.Result, 4)

	require.Len(t, report.Outcomes, 3)
	assert.Equal(t, FieldOutcome{Field: "homepage_url", Status: StatusFound}, report.Outcomes[0])
	assert.Equal(t, FieldOutcome{Field: "key_executives", Status: StatusSkipped}, report.Outcomes[1])
	assert.Equal(t, "founded_date", report.Outcomes[2].Field)
	assert.Equal(t, StatusFailed, report.Outcomes[2].Status)
	assert.Contains(t, report.Outcomes[2].Error, "bad json")
	assert.Equal(t, 1, report.Found())

	s.AssertExpectations(t)
	e.AssertExpectations(t)
	e.AssertNotCalled(t, "ExtractField", mock.Anything, "Acme", "key_executives", mock.Anything)
}

func TestRun_NoEvidenceAnywhere(t *testing.T) {
	s := &mockSearcher{}
	e := &mockExtractor{}
	s.On("Search", mock.Anything, mock.Anything, 3).Return([]search.Result{})
	s.On("LatestNews", mock.Anything, "Ghost Co", 3).Return([]search.NewsLink{})

	report := NewService(s, e).Run(context.Background(), "Ghost Co")

	assert.Equal(t, map[string]any{
		"news":         []search.NewsLink{},
		"company_name": "Ghost Co",
	}, report.Result)
	assert.Len(t, report.Outcomes, 13)
	for _, o := range report.Outcomes {
		assert.Equal(t, StatusSkipped, o.Status)
	}
	e.AssertNotCalled(t, "ExtractField", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_FieldsInOrder(t *testing.T) {
	var queries []string
	s := &mockSearcher{}
	s.On("Search", mock.Anything, mock.Anything, 5).
		Run(func(args mock.Arguments) { queries = append(queries, args.String(1)) }).
		Return([]search.Result{})
	s.On("LatestNews", mock.Anything, "Acme", 2).Return([]search.NewsLink{})

	NewService(s, &mockExtractor{}, WithMaxResults(5), WithNewsCount(2)).Run(context.Background(), "Acme")

	require.Len(t, queries, 13)
	for i, f := range DefaultFields() {
		assert.True(t, strings.HasPrefix(queries[i], "Acme "), queries[i])
		assert.Equal(t, f.QueryFor("Acme"), queries[i])
	}
}

func TestRun_EveryFieldHasOneSource(t *testing.T) {
	s := &mockSearcher{}
	e := &mockExtractor{}
	s.On("Search", mock.Anything, mock.Anything, 3).Return([]search.Result{
		{Title: "Acme", URL: "https://acme.test/about", Content: "Acme is a widget maker"},
	})
	s.On("LatestNews", mock.Anything, "Acme", 3).Return([]search.NewsLink{})
	e.On("ExtractField", mock.Anything, "Acme", mock.Anything, "Acme is a widget maker").Return("widgets", nil)

	report := NewService(s, e).Run(context.Background(), "Acme")

	assert.Equal(t, "widgets", report.Result["industry"])
	assert.Equal(t, []search.NewsLink{{Title: "Acme", URL: "https://acme.test/about"}}, report.Result["industry_sources"])
	assert.Equal(t, "Acme", report.Result["company_name"])
	assert.Equal(t, 13, report.Found())
}
