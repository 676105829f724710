package store

import (
	"context"
	"strings"

	"github.com/sells-group/leadscout/internal/model"
)

// Repository holds the row-level operations on companies, profiles,
// analyses and leads. Getters return (nil, nil) when the row is absent.
type Repository interface {
	// Companies
	GetCompany(ctx context.Context, id int64) (*model.Company, error)
	GetCompanyByName(ctx context.Context, name string) (*model.Company, error)
	// UpsertCompany matches by normalized name. Existing rows keep every
	// attribute that attrs leaves nil.
	UpsertCompany(ctx context.Context, name string, attrs model.CompanyAttributes) (*model.Company, error)

	// Profiles
	CreateProfile(ctx context.Context, companyID int64, fileName, url string) (*model.Profile, error)
	GetProfile(ctx context.Context, id int64) (*model.Profile, error)
	ListProfiles(ctx context.Context, companyID int64) ([]model.Profile, error)

	// Analyses
	GetAnalysis(ctx context.Context, companyID, profileID int64) (*model.Analysis, error)
	GetAnalysisByProfile(ctx context.Context, profileID int64) (*model.Analysis, error)
	// UpsertAnalysis replaces every field of the (company, profile) analysis.
	UpsertAnalysis(ctx context.Context, companyID, profileID int64, fields model.AnalysisFields) (*model.Analysis, error)

	// Leads
	UpsertLead(ctx context.Context, sourceID, prospectID int64, score float64, reasoning string) (*model.Lead, error)
	ListLeads(ctx context.Context, sourceID int64) ([]model.LeadView, error)
}

// Store is a Repository bound to a database connection.
type Store interface {
	Repository

	// InTx runs fn against a transaction-scoped Repository. Writes made
	// through it commit together when fn returns nil.
	InTx(ctx context.Context, fn func(Repository) error) error

	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}

const companyColumns = `id, name, industry, sales, total_funding, address, email, homepage,
	key_executive, logo_url, phone_number, created_at, updated_at`

const profileColumns = `id, company_id, file_name, url, created_at, updated_at`

const analysisColumns = `id, company_id, profile_id, industry, sales, total_funding, homepage,
	key_executive, address, email, phone_number, company_description, products_services,
	target_customers, competitors, strengths, business_model, created_at, updated_at`

const leadColumns = `id, source_company_id, prospect_company_id, relevance_score, reasoning,
	created_at, updated_at`

// qualify prefixes every column in cols with alias.
func qualify(alias, cols string) string {
	parts := strings.Split(cols, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

type scannable interface {
	Scan(dest ...any) error
}

func companyDests(c *model.Company) []any {
	return []any{
		&c.ID, &c.Name, &c.Industry, &c.Sales, &c.TotalFunding, &c.Address, &c.Email,
		&c.Homepage, &c.KeyExecutive, &c.LogoURL, &c.PhoneNumber, &c.CreatedAt, &c.UpdatedAt,
	}
}

func companyArgs(name string, a model.CompanyAttributes) []any {
	return []any{
		name, a.Industry, a.Sales, a.TotalFunding, a.Address, a.Email,
		a.Homepage, a.KeyExecutive, a.LogoURL, a.PhoneNumber,
	}
}

func profileDests(p *model.Profile) []any {
	return []any{&p.ID, &p.CompanyID, &p.FileName, &p.URL, &p.CreatedAt, &p.UpdatedAt}
}

func analysisDests(a *model.Analysis) []any {
	return []any{
		&a.ID, &a.CompanyID, &a.ProfileID, &a.Industry, &a.Sales, &a.TotalFunding, &a.Homepage,
		&a.KeyExecutive, &a.Address, &a.Email, &a.PhoneNumber, &a.CompanyDescription,
		&a.ProductsServices, &a.TargetCustomers, &a.Competitors, &a.Strengths,
		&a.BusinessModel, &a.CreatedAt, &a.UpdatedAt,
	}
}

func analysisArgs(f model.AnalysisFields) []any {
	return []any{
		f.Industry, f.Sales, f.TotalFunding, f.Homepage, f.KeyExecutive, f.Address, f.Email,
		f.PhoneNumber, f.CompanyDescription, f.ProductsServices, f.TargetCustomers,
		f.Competitors, f.Strengths, f.BusinessModel,
	}
}

func leadDests(l *model.Lead) []any {
	return []any{
		&l.ID, &l.SourceCompanyID, &l.ProspectCompanyID, &l.RelevanceScore, &l.Reasoning,
		&l.CreatedAt, &l.UpdatedAt,
	}
}

func scanLeadView(row scannable) (model.LeadView, error) {
	var v model.LeadView
	dests := append(leadDests(&v.Lead), companyDests(&v.Prospect)...)
	err := row.Scan(dests...)
	return v, err
}
