package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/db"
	"github.com/sells-group/leadscout/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pgRepo
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return newPostgresStore(pool), nil
}

func newPostgresStore(pool db.Pool) *PostgresStore {
	return &PostgresStore{pgRepo: pgRepo{q: pool}, pool: pool, closeFn: pool.Close}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id            BIGSERIAL PRIMARY KEY,
	name          TEXT NOT NULL UNIQUE,
	industry      TEXT,
	sales         DOUBLE PRECISION,
	total_funding DOUBLE PRECISION,
	address       TEXT,
	email         TEXT,
	homepage      TEXT,
	key_executive TEXT,
	logo_url      TEXT,
	phone_number  TEXT,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS company_profiles (
	id         BIGSERIAL PRIMARY KEY,
	company_id BIGINT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	file_name  TEXT NOT NULL,
	url        TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS profile_analyses (
	id                  BIGSERIAL PRIMARY KEY,
	company_id          BIGINT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	profile_id          BIGINT NOT NULL REFERENCES company_profiles(id) ON DELETE CASCADE,
	industry            TEXT,
	sales               DOUBLE PRECISION,
	total_funding       DOUBLE PRECISION,
	homepage            TEXT,
	key_executive       TEXT,
	address             TEXT,
	email               TEXT,
	phone_number        TEXT,
	company_description TEXT,
	products_services   TEXT,
	target_customers    TEXT,
	competitors         TEXT,
	strengths           TEXT,
	business_model      TEXT,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (company_id, profile_id)
);

CREATE TABLE IF NOT EXISTS lead_prospects (
	id                  BIGSERIAL PRIMARY KEY,
	source_company_id   BIGINT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	prospect_company_id BIGINT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	relevance_score     DOUBLE PRECISION NOT NULL DEFAULT 0,
	reasoning           TEXT NOT NULL DEFAULT '',
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (source_company_id, prospect_company_id)
);

CREATE INDEX IF NOT EXISTS idx_company_profiles_company_id ON company_profiles(company_id);
CREATE INDEX IF NOT EXISTS idx_lead_prospects_source ON lead_prospects(source_company_id, relevance_score DESC);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) InTx(ctx context.Context, fn func(Repository) error) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&pgRepo{q: tx})
	})
}

// pgRepo implements Repository over a pool or a transaction.
type pgRepo struct {
	q db.Querier
}

func (r *pgRepo) GetCompany(ctx context.Context, id int64) (*model.Company, error) {
	var c model.Company
	err := r.q.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = $1`, id,
	).Scan(companyDests(&c)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get company %d", id)
	}
	return &c, nil
}

func (r *pgRepo) GetCompanyByName(ctx context.Context, name string) (*model.Company, error) {
	var c model.Company
	err := r.q.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE name = $1`, model.NormalizeName(name),
	).Scan(companyDests(&c)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get company %q", name)
	}
	return &c, nil
}

func (r *pgRepo) UpsertCompany(ctx context.Context, name string, attrs model.CompanyAttributes) (*model.Company, error) {
	name = model.NormalizeName(name)
	if name == "" {
		return nil, eris.New("postgres: upsert company: empty name")
	}
	now := time.Now().UTC()

	var c model.Company
	args := append(companyArgs(name, attrs), now)
	err := r.q.QueryRow(ctx,
		`INSERT INTO companies (name, industry, sales, total_funding, address, email, homepage,
			key_executive, logo_url, phone_number, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		 ON CONFLICT (name) DO UPDATE SET
			industry = COALESCE(EXCLUDED.industry, companies.industry),
			sales = COALESCE(EXCLUDED.sales, companies.sales),
			total_funding = COALESCE(EXCLUDED.total_funding, companies.total_funding),
			address = COALESCE(EXCLUDED.address, companies.address),
			email = COALESCE(EXCLUDED.email, companies.email),
			homepage = COALESCE(EXCLUDED.homepage, companies.homepage),
			key_executive = COALESCE(EXCLUDED.key_executive, companies.key_executive),
			logo_url = COALESCE(EXCLUDED.logo_url, companies.logo_url),
			phone_number = COALESCE(EXCLUDED.phone_number, companies.phone_number),
			updated_at = EXCLUDED.updated_at
		 RETURNING `+companyColumns,
		args...,
	).Scan(companyDests(&c)...)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: upsert company %q", name)
	}
	return &c, nil
}

func (r *pgRepo) CreateProfile(ctx context.Context, companyID int64, fileName, url string) (*model.Profile, error) {
	now := time.Now().UTC()
	var p model.Profile
	err := r.q.QueryRow(ctx,
		`INSERT INTO company_profiles (company_id, file_name, url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)
		 RETURNING `+profileColumns,
		companyID, fileName, url, now,
	).Scan(profileDests(&p)...)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: create profile for company %d", companyID)
	}
	return &p, nil
}

func (r *pgRepo) GetProfile(ctx context.Context, id int64) (*model.Profile, error) {
	var p model.Profile
	err := r.q.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM company_profiles WHERE id = $1`, id,
	).Scan(profileDests(&p)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get profile %d", id)
	}
	return &p, nil
}

func (r *pgRepo) ListProfiles(ctx context.Context, companyID int64) ([]model.Profile, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+profileColumns+` FROM company_profiles WHERE company_id = $1 ORDER BY id`, companyID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list profiles for company %d", companyID)
	}
	defer rows.Close()

	var out []model.Profile
	for rows.Next() {
		var p model.Profile
		if err := rows.Scan(profileDests(&p)...); err != nil {
			return nil, eris.Wrap(err, "postgres: scan profile")
		}
		out = append(out, p)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list profiles iterate")
}

func (r *pgRepo) GetAnalysis(ctx context.Context, companyID, profileID int64) (*model.Analysis, error) {
	var a model.Analysis
	err := r.q.QueryRow(ctx,
		`SELECT `+analysisColumns+` FROM profile_analyses WHERE company_id = $1 AND profile_id = $2`,
		companyID, profileID,
	).Scan(analysisDests(&a)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get analysis %d/%d", companyID, profileID)
	}
	return &a, nil
}

func (r *pgRepo) GetAnalysisByProfile(ctx context.Context, profileID int64) (*model.Analysis, error) {
	var a model.Analysis
	err := r.q.QueryRow(ctx,
		`SELECT `+analysisColumns+` FROM profile_analyses WHERE profile_id = $1
		 ORDER BY updated_at DESC LIMIT 1`,
		profileID,
	).Scan(analysisDests(&a)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get analysis for profile %d", profileID)
	}
	return &a, nil
}

func (r *pgRepo) UpsertAnalysis(ctx context.Context, companyID, profileID int64, fields model.AnalysisFields) (*model.Analysis, error) {
	now := time.Now().UTC()
	args := append([]any{companyID, profileID}, analysisArgs(fields)...)
	args = append(args, now)

	var a model.Analysis
	err := r.q.QueryRow(ctx,
		`INSERT INTO profile_analyses (company_id, profile_id, industry, sales, total_funding,
			homepage, key_executive, address, email, phone_number, company_description,
			products_services, target_customers, competitors, strengths, business_model,
			created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $17)
		 ON CONFLICT (company_id, profile_id) DO UPDATE SET
			industry = EXCLUDED.industry,
			sales = EXCLUDED.sales,
			total_funding = EXCLUDED.total_funding,
			homepage = EXCLUDED.homepage,
			key_executive = EXCLUDED.key_executive,
			address = EXCLUDED.address,
			email = EXCLUDED.email,
			phone_number = EXCLUDED.phone_number,
			company_description = EXCLUDED.company_description,
			products_services = EXCLUDED.products_services,
			target_customers = EXCLUDED.target_customers,
			competitors = EXCLUDED.competitors,
			strengths = EXCLUDED.strengths,
			business_model = EXCLUDED.business_model,
			updated_at = EXCLUDED.updated_at
		 RETURNING `+analysisColumns,
		args...,
	).Scan(analysisDests(&a)...)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: upsert analysis %d/%d", companyID, profileID)
	}
	return &a, nil
}

func (r *pgRepo) UpsertLead(ctx context.Context, sourceID, prospectID int64, score float64, reasoning string) (*model.Lead, error) {
	now := time.Now().UTC()
	var l model.Lead
	err := r.q.QueryRow(ctx,
		`INSERT INTO lead_prospects (source_company_id, prospect_company_id, relevance_score,
			reasoning, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5)
		 ON CONFLICT (source_company_id, prospect_company_id) DO UPDATE SET
			relevance_score = EXCLUDED.relevance_score,
			reasoning = EXCLUDED.reasoning,
			updated_at = EXCLUDED.updated_at
		 RETURNING `+leadColumns,
		sourceID, prospectID, model.ClampScore(score), reasoning, now,
	).Scan(leadDests(&l)...)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: upsert lead %d->%d", sourceID, prospectID)
	}
	return &l, nil
}

func (r *pgRepo) ListLeads(ctx context.Context, sourceID int64) ([]model.LeadView, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+qualify("l", leadColumns)+`, `+qualify("c", companyColumns)+`
		 FROM lead_prospects l
		 JOIN companies c ON c.id = l.prospect_company_id
		 WHERE l.source_company_id = $1
		 ORDER BY l.relevance_score DESC, l.id`,
		sourceID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list leads for company %d", sourceID)
	}
	defer rows.Close()

	var out []model.LeadView
	for rows.Next() {
		v, err := scanLeadView(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		out = append(out, v)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list leads iterate")
}
