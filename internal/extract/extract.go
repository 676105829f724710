// Package extract turns free text into structured company data with an
// LLM: one field at a time for the detail page, or the fixed profile
// schema for uploaded documents.
package extract

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/apperr"
	"github.com/sells-group/leadscout/internal/llm"
	"github.com/sells-group/leadscout/internal/model"
)

// numericKeys are the profile keys held as numbers.
var numericKeys = map[string]bool{"sales": true, "total_funding": true}

// Extractor issues extraction prompts through an LLM client.
type Extractor struct {
	llm llm.Client
}

// New creates an Extractor.
func New(client llm.Client) *Extractor {
	return &Extractor{llm: client}
}

// ExtractField asks for a single field of companyName, grounded on
// reference, and returns the value the model gave under that key. The
// value may be nil when the model answered null. Any failure is an
// *apperr.ExtractionError.
func (e *Extractor) ExtractField(ctx context.Context, companyName, field, reference string) (any, error) {
	prompt := fmt.Sprintf(fieldPrompt, companyName, field, reference)

	text, err := e.llm.CompleteJSON(ctx, fieldSystemText, prompt)
	if err != nil {
		return nil, apperr.NewExtractionError(field, err)
	}

	obj, err := DecodeObject(text)
	if err != nil {
		return nil, apperr.NewExtractionError(field, err)
	}

	value, ok := obj[field]
	if !ok {
		return nil, apperr.NewExtractionError(field, eris.Errorf("response has no %q key", field))
	}
	return plain(value), nil
}

// ExtractDocumentProfile extracts the fixed analysis schema from document
// text. It never fails: any error is logged and the zero value returned.
func (e *Extractor) ExtractDocumentProfile(ctx context.Context, text, companyName string) model.AnalysisFields {
	log := zap.L().With(zap.String("company", companyName))

	prompt := fmt.Sprintf(profilePrompt, companyName, text)
	out, err := e.llm.CompleteJSON(ctx, profileSystemText, prompt)
	if err != nil {
		log.Warn("extract: profile request failed", zap.Error(err))
		return model.AnalysisFields{}
	}

	fields, err := ParseProfile(out)
	if err != nil {
		log.Warn("extract: profile response rejected", zap.Error(err))
		return model.AnalysisFields{}
	}
	return fields
}

// ParseProfile decodes a profile response into AnalysisFields. Unknown keys
// are dropped, placeholder strings become null, and sales/total_funding
// must parse as numbers or become null. The cleaned object is validated
// against the profile schema before use.
func ParseProfile(text string) (model.AnalysisFields, error) {
	obj, err := DecodeObject(text)
	if err != nil {
		return model.AnalysisFields{}, apperr.NewExtractionError("profile", err)
	}

	clean := SanitizeProfile(obj)
	if err := profileSchema.Validate(clean); err != nil {
		return model.AnalysisFields{}, apperr.NewExtractionError("profile", eris.Wrap(err, "schema validation"))
	}

	b, err := json.Marshal(clean)
	if err != nil {
		return model.AnalysisFields{}, apperr.NewExtractionError("profile", err)
	}
	var fields model.AnalysisFields
	if err := json.Unmarshal(b, &fields); err != nil {
		return model.AnalysisFields{}, apperr.NewExtractionError("profile", err)
	}
	return fields, nil
}

// SanitizeProfile keeps the known profile keys with usable values.
func SanitizeProfile(raw map[string]any) map[string]any {
	out := make(map[string]any, len(model.AnalysisKeys))
	for _, key := range model.AnalysisKeys {
		v, ok := raw[key]
		if !ok {
			continue
		}
		if numericKeys[key] {
			if f, ok := Number(v); ok {
				out[key] = f
			}
			continue
		}
		if s, ok := Text(v); ok {
			out[key] = s
		}
	}
	return out
}

// plain converts json.Number leaves back to float64 so values render and
// re-encode like ordinary decoded JSON.
func plain(v any) any {
	switch t := v.(type) {
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case []any:
		for i := range t {
			t[i] = plain(t[i])
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = plain(t[k])
		}
		return t
	default:
		return v
	}
}
