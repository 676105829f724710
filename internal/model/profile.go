package model

import "time"

// Profile is a stored document (usually a PDF company profile) attached to
// a company.
type Profile struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	FileName  string    `json:"file_name"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AnalysisFields is the fixed schema extracted from a profile document:
// the company base attributes plus narrative fields.
type AnalysisFields struct {
	Industry           *string  `json:"industry"`
	Sales              *float64 `json:"sales"`
	TotalFunding       *float64 `json:"total_funding"`
	Homepage           *string  `json:"homepage"`
	KeyExecutive       *string  `json:"key_executive"`
	Address            *string  `json:"address"`
	Email              *string  `json:"email"`
	PhoneNumber        *string  `json:"phone_number"`
	CompanyDescription *string  `json:"company_description"`
	ProductsServices   *string  `json:"products_services"`
	TargetCustomers    *string  `json:"target_customers"`
	Competitors        *string  `json:"competitors"`
	Strengths          *string  `json:"strengths"`
	BusinessModel      *string  `json:"business_model"`
}

// AnalysisKeys lists the JSON keys of AnalysisFields in prompt order.
var AnalysisKeys = []string{
	"industry", "sales", "total_funding", "homepage", "key_executive",
	"address", "email", "phone_number", "company_description",
	"products_services", "target_customers", "competitors", "strengths",
	"business_model",
}

// IsZero reports whether no field was extracted.
func (f AnalysisFields) IsZero() bool {
	return f == AnalysisFields{}
}

// Attributes returns the base company attributes carried by the analysis.
func (f AnalysisFields) Attributes() CompanyAttributes {
	return CompanyAttributes{
		Industry:     f.Industry,
		Sales:        f.Sales,
		TotalFunding: f.TotalFunding,
		Address:      f.Address,
		Email:        f.Email,
		Homepage:     f.Homepage,
		KeyExecutive: f.KeyExecutive,
		PhoneNumber:  f.PhoneNumber,
	}
}

// Analysis is the structured extraction result for one (company, profile)
// pair. At most one exists per pair.
type Analysis struct {
	ID        int64 `json:"id"`
	CompanyID int64 `json:"company_id"`
	ProfileID int64 `json:"profile_id"`
	AnalysisFields
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
