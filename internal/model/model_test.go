package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	// "한" as decomposed jamo vs precomposed syllable.
	decomposed := "\u1112\u1161\u11ab"
	tests := []struct {
		in   string
		want string
	}{
		{"Acme", "Acme"},
		{"  Acme   Corp ", "Acme Corp"},
		{"Acme\tCorp\n", "Acme Corp"},
		{decomposed + "국전력", "한국전력"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NormalizeName(tt.in))
		})
	}
}

func TestCompanyAttributesIsEmpty(t *testing.T) {
	t.Parallel()
	assert.True(t, CompanyAttributes{}.IsEmpty())
	assert.False(t, CompanyAttributes{LogoURL: String("x")}.IsEmpty())
}

func TestStringHelper(t *testing.T) {
	t.Parallel()
	assert.Nil(t, String(""))
	assert.Nil(t, String("   "))
	require.NotNil(t, String("a"))
	assert.Equal(t, "a", Deref(String("a")))
	assert.Equal(t, "", Deref(nil))
}

func TestAnalysisFieldsAttributes(t *testing.T) {
	t.Parallel()

	f := AnalysisFields{
		Industry:           String("software"),
		TotalFunding:       Float(5e9),
		PhoneNumber:        String("02-123-4567"),
		CompanyDescription: String("makes software"),
	}
	attrs := f.Attributes()
	assert.Equal(t, "software", *attrs.Industry)
	assert.InDelta(t, 5e9, *attrs.TotalFunding, 1)
	assert.Equal(t, "02-123-4567", *attrs.PhoneNumber)
	assert.Nil(t, attrs.LogoURL)
	assert.False(t, f.IsZero())
	assert.True(t, AnalysisFields{}.IsZero())
}

func TestAnalysisKeysMatchJSONTags(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(AnalysisFields{})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Len(t, m, len(AnalysisKeys))
	for _, k := range AnalysisKeys {
		assert.Contains(t, m, k)
	}
}

func TestCompanyJSONFlattensAttributes(t *testing.T) {
	t.Parallel()

	c := Company{ID: 7, Name: "Acme", CompanyAttributes: CompanyAttributes{Industry: String("widgets")}}
	raw, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"company":"Acme"`)
	assert.Contains(t, string(raw), `"industry":"widgets"`)
}

func TestClampScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want float64
	}{
		{0.5, 0.5},
		{-0.2, 0},
		{1.7, 1},
		{0, 0},
		{1, 1},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, ClampScore(tt.in), 1e-9)
	}
}
