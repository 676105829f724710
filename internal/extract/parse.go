package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// DecodeObject parses text as a JSON object. Model output wrapped in a
// markdown fence or surrounded by prose is recovered by taking the span
// from the first '{' to the last '}'.
func DecodeObject(text string) (map[string]any, error) {
	var obj map[string]any
	err := decode(text, &obj)
	if err == nil && obj != nil {
		return obj, nil
	}

	salvaged, ok := Salvage(stripFence(text))
	if !ok {
		if err == nil {
			err = eris.New("not a JSON object")
		}
		return nil, eris.Wrap(err, "extract: decode response")
	}
	obj = nil
	if err := decode(salvaged, &obj); err != nil || obj == nil {
		if err == nil {
			err = eris.New("not a JSON object")
		}
		return nil, eris.Wrap(err, "extract: decode salvaged response")
	}
	return obj, nil
}

func decode(text string, v any) error {
	dec := json.NewDecoder(strings.NewReader(strings.TrimSpace(text)))
	dec.UseNumber()
	return dec.Decode(v)
}

// Salvage returns the substring from the first '{' to the last '}'. ok is
// false when there is no such pair.
func Salvage(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func stripFence(text string) string {
	text = strings.TrimSpace(text)
	for _, prefix := range []string{"```json", "```"} {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			if idx := strings.LastIndex(text, "```"); idx >= 0 {
				text = text[:idx]
			}
			break
		}
	}
	return strings.TrimSpace(text)
}

// nullWords are placeholder answers models give instead of null.
var nullWords = map[string]bool{
	"null":      true,
	"none":      true,
	"n/a":       true,
	"unknown":   true,
	"not found": true,
	"정보 없음":     true,
	"없음":        true,
}

// IsNullText reports whether s is empty or a placeholder for "no data".
func IsNullText(s string) bool {
	return nullWords[strings.ToLower(strings.TrimSpace(s))]
}

// Text converts a decoded JSON value to a display string. Lists become
// comma-separated. ok is false for null and placeholder values.
func Text(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		s := strings.TrimSpace(t)
		if s == "" || IsNullText(s) {
			return "", false
		}
		return s, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := Text(item); ok {
				parts = append(parts, s)
			}
		}
		if len(parts) == 0 {
			return "", false
		}
		return strings.Join(parts, ", "), true
	default:
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(t); err != nil {
			return fmt.Sprint(t), true
		}
		return strings.TrimSpace(buf.String()), true
	}
}

// numberNoise is stripped from numeric strings before parsing.
var numberNoise = strings.NewReplacer(
	",", "", " ", "", "\t", "", "\u00a0", "",
	"$", "", "₩", "", "€", "", "£", "", "¥", "",
	"USD", "", "KRW", "", "EUR", "",
)

// Number converts a decoded JSON value to a finite float. Numeric strings
// are accepted once commas, currency markers and whitespace are removed.
// Anything else, including values with units such as "10억" and NaN or
// infinities, is rejected.
func Number(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case float64:
		f = t
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		s := numberNoise.Replace(strings.TrimSpace(t))
		if s == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
