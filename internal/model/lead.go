package model

import (
	"math"
	"time"
)

// Lead is a scored, directed edge from a source company to a prospect.
// At most one exists per ordered (source, prospect) pair.
type Lead struct {
	ID                int64     `json:"id"`
	SourceCompanyID   int64     `json:"source_company_id"`
	ProspectCompanyID int64     `json:"prospect_company_id"`
	RelevanceScore    float64   `json:"relevance_score"`
	Reasoning         string    `json:"reasoning"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// LeadView is a lead joined with its prospect company.
type LeadView struct {
	Lead
	Prospect Company `json:"prospect"`
}

// ClampScore bounds a relevance score to [0, 1]. NaN becomes 0.
func ClampScore(s float64) float64 {
	switch {
	case math.IsNaN(s), s < 0:
		return 0
	case s > 1:
		return 1
	default:
		return s
	}
}
