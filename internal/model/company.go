package model

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Company is the canonical record of one company's known attributes.
// Name is the natural key used for upserts.
type Company struct {
	ID   int64  `json:"id"`
	Name string `json:"company"`
	CompanyAttributes
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompanyAttributes is the optional attribute set of a company. A nil
// field means "not supplied" and never overwrites a stored value.
type CompanyAttributes struct {
	Industry     *string  `json:"industry"`
	Sales        *float64 `json:"sales"`
	TotalFunding *float64 `json:"total_funding"`
	Address      *string  `json:"address"`
	Email        *string  `json:"email"`
	Homepage     *string  `json:"homepage"`
	KeyExecutive *string  `json:"key_executive"`
	LogoURL      *string  `json:"logo_url"`
	PhoneNumber  *string  `json:"phone_number"`
}

// IsEmpty reports whether no attribute is set.
func (a CompanyAttributes) IsEmpty() bool {
	return a == CompanyAttributes{}
}

// NormalizeName canonicalizes a company name for matching: Unicode NFC,
// trimmed, inner whitespace collapsed. Hangul names typed on different
// platforms otherwise compare unequal.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(norm.NFC.String(name)), " ")
}

// String returns a pointer to s, or nil when s is blank.
func String(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// Float returns a pointer to f.
func Float(f float64) *float64 {
	return &f
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
