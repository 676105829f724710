// Package analysis turns a stored profile document into a persisted
// company analysis: download, extract text, ask the LLM for the fixed
// profile schema, then write the company and analysis rows together.
package analysis

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/apperr"
	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/store"
)

// TextLoader returns the (truncated) text of the document at url, or ""
// when it cannot be read.
type TextLoader interface {
	Load(ctx context.Context, url string) string
}

// ProfileExtractor extracts the fixed profile schema from document text.
type ProfileExtractor interface {
	ExtractDocumentProfile(ctx context.Context, text, companyName string) model.AnalysisFields
}

// Service analyzes profile documents.
type Service struct {
	store     store.Store
	loader    TextLoader
	extractor ProfileExtractor
}

// NewService creates an analysis Service.
func NewService(s store.Store, l TextLoader, e ProfileExtractor) *Service {
	return &Service{store: s, loader: l, extractor: e}
}

// Analyze runs the document pipeline for profile. ok is false when no
// text could be read, nothing was extracted, or the write failed. An
// all-null extraction is still written. The
// company upsert and analysis upsert commit together or not at all.
func (s *Service) Analyze(ctx context.Context, profile *model.Profile) (model.AnalysisFields, bool) {
	fields, err := s.analyze(ctx, profile)
	if err != nil {
		zap.L().Warn("analysis: profile failed",
			zap.Int64("profile_id", profile.ID),
			zap.String("url", profile.URL),
			zap.Error(err),
		)
		return model.AnalysisFields{}, false
	}
	return fields, true
}

func (s *Service) analyze(ctx context.Context, profile *model.Profile) (model.AnalysisFields, error) {
	company, err := s.store.GetCompany(ctx, profile.CompanyID)
	if err != nil {
		return model.AnalysisFields{}, eris.Wrap(err, "analysis: load company")
	}
	if company == nil {
		return model.AnalysisFields{}, apperr.NewNotFound("company", profile.CompanyID)
	}

	text := s.loader.Load(ctx, profile.URL)
	if text == "" {
		return model.AnalysisFields{}, apperr.NewExtractionError("", eris.New("no text extracted from document"))
	}

	// An empty extraction is still stored so the profile counts as
	// analyzed; it is reported as a failure to the caller.
	fields := s.extractor.ExtractDocumentProfile(ctx, text, company.Name)

	err = s.store.InTx(ctx, func(repo store.Repository) error {
		if attrs := fields.Attributes(); !attrs.IsEmpty() {
			if _, err := repo.UpsertCompany(ctx, company.Name, attrs); err != nil {
				return err
			}
		}
		_, err := repo.UpsertAnalysis(ctx, company.ID, profile.ID, fields)
		return err
	})
	if err != nil {
		return model.AnalysisFields{}, eris.Wrap(err, "analysis: save")
	}
	if fields.IsZero() {
		return model.AnalysisFields{}, apperr.NewExtractionError("", eris.New("no fields extracted from document"))
	}

	zap.L().Info("analysis: profile analyzed",
		zap.Int64("profile_id", profile.ID),
		zap.String("company", company.Name),
		zap.Int("text_chars", len([]rune(text))),
	)
	return fields, nil
}
