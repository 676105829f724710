package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadscout/internal/model"
)

// dialect captures the statements that differ between SQLite and MySQL.
type dialect struct {
	name      string
	migration []string
	// upsert clauses, appended after the INSERT ... VALUES
	companyConflict  string
	analysisConflict string
	leadConflict     string
}

// sqliteDialect uses ON CONFLICT with the excluded pseudo-table.
var sqliteDialect = dialect{
	name: "sqlite",
	migration: []string{`
CREATE TABLE IF NOT EXISTS companies (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	name          TEXT NOT NULL UNIQUE,
	industry      TEXT,
	sales         REAL,
	total_funding REAL,
	address       TEXT,
	email         TEXT,
	homepage      TEXT,
	key_executive TEXT,
	logo_url      TEXT,
	phone_number  TEXT,
	created_at    DATETIME NOT NULL,
	updated_at    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS company_profiles (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	company_id INTEGER NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	file_name  TEXT NOT NULL,
	url        TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS profile_analyses (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	company_id          INTEGER NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	profile_id          INTEGER NOT NULL REFERENCES company_profiles(id) ON DELETE CASCADE,
	industry            TEXT,
	sales               REAL,
	total_funding       REAL,
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
	created_at          DATETIME NOT NULL,
	updated_at          DATETIME NOT NULL,
	UNIQUE (company_id, profile_id)
);

CREATE TABLE IF NOT EXISTS lead_prospects (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	source_company_id   INTEGER NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	prospect_company_id INTEGER NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	relevance_score     REAL NOT NULL DEFAULT 0,
	reasoning           TEXT NOT NULL DEFAULT '',
	created_at          DATETIME NOT NULL,
	updated_at          DATETIME NOT NULL,
	UNIQUE (source_company_id, prospect_company_id)
);

CREATE INDEX IF NOT EXISTS idx_company_profiles_company_id ON company_profiles(company_id);
CREATE INDEX IF NOT EXISTS idx_lead_prospects_source ON lead_prospects(source_company_id);
`},
	companyConflict: ` ON CONFLICT (name) DO UPDATE SET
	industry = COALESCE(excluded.industry, companies.industry),
	sales = COALESCE(excluded.sales, companies.sales),
	total_funding = COALESCE(excluded.total_funding, companies.total_funding),
	address = COALESCE(excluded.address, companies.address),
	email = COALESCE(excluded.email, companies.email),
	homepage = COALESCE(excluded.homepage, companies.homepage),
	key_executive = COALESCE(excluded.key_executive, companies.key_executive),
	logo_url = COALESCE(excluded.logo_url, companies.logo_url),
	phone_number = COALESCE(excluded.phone_number, companies.phone_number),
	updated_at = excluded.updated_at`,
	analysisConflict: ` ON CONFLICT (company_id, profile_id) DO UPDATE SET
	industry = excluded.industry,
	sales = excluded.sales,
	total_funding = excluded.total_funding,
	homepage = excluded.homepage,
	key_executive = excluded.key_executive,
	address = excluded.address,
	email = excluded.email,
	phone_number = excluded.phone_number,
	company_description = excluded.company_description,
	products_services = excluded.products_services,
	target_customers = excluded.target_customers,
	competitors = excluded.competitors,
	strengths = excluded.strengths,
	business_model = excluded.business_model,
	updated_at = excluded.updated_at`,
	leadConflict: ` ON CONFLICT (source_company_id, prospect_company_id) DO UPDATE SET
	relevance_score = excluded.relevance_score,
	reasoning = excluded.reasoning,
	updated_at = excluded.updated_at`,
}

// mysqlDialect uses ON DUPLICATE KEY UPDATE with VALUES().
var mysqlDialect = dialect{
	name: "mysql",
	migration: []string{
		`CREATE TABLE IF NOT EXISTS companies (
	id            BIGINT AUTO_INCREMENT PRIMARY KEY,
	name          VARCHAR(255) NOT NULL UNIQUE,
	industry      TEXT,
	sales         DOUBLE,
	total_funding DOUBLE,
	address       TEXT,
	email         VARCHAR(255),
	homepage      VARCHAR(1024),
	key_executive VARCHAR(255),
	logo_url      VARCHAR(1024),
	phone_number  VARCHAR(64),
	created_at    DATETIME(6) NOT NULL,
	updated_at    DATETIME(6) NOT NULL
) DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS company_profiles (
	id         BIGINT AUTO_INCREMENT PRIMARY KEY,
	company_id BIGINT NOT NULL,
	file_name  VARCHAR(255) NOT NULL,
	url        VARCHAR(2048) NOT NULL,
	created_at DATETIME(6) NOT NULL,
	updated_at DATETIME(6) NOT NULL,
	INDEX idx_company_profiles_company_id (company_id),
	FOREIGN KEY (company_id) REFERENCES companies(id) ON DELETE CASCADE
) DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS profile_analyses (
	id                  BIGINT AUTO_INCREMENT PRIMARY KEY,
	company_id          BIGINT NOT NULL,
	profile_id          BIGINT NOT NULL,
	industry            TEXT,
	sales               DOUBLE,
	total_funding       DOUBLE,
	homepage            VARCHAR(1024),
	key_executive       VARCHAR(255),
	address             TEXT,
	email               VARCHAR(255),
	phone_number        VARCHAR(64),
	company_description TEXT,
	products_services   TEXT,
	target_customers    TEXT,
	competitors         TEXT,
	strengths           TEXT,
	business_model      TEXT,
	created_at          DATETIME(6) NOT NULL,
	updated_at          DATETIME(6) NOT NULL,
	UNIQUE KEY uq_analysis_company_profile (company_id, profile_id),
	FOREIGN KEY (company_id) REFERENCES companies(id) ON DELETE CASCADE,
	FOREIGN KEY (profile_id) REFERENCES company_profiles(id) ON DELETE CASCADE
) DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS lead_prospects (
	id                  BIGINT AUTO_INCREMENT PRIMARY KEY,
	source_company_id   BIGINT NOT NULL,
	prospect_company_id BIGINT NOT NULL,
	relevance_score     DOUBLE NOT NULL DEFAULT 0,
	reasoning           TEXT NOT NULL,
	created_at          DATETIME(6) NOT NULL,
	updated_at          DATETIME(6) NOT NULL,
	UNIQUE KEY uq_lead_source_prospect (source_company_id, prospect_company_id),
	FOREIGN KEY (source_company_id) REFERENCES companies(id) ON DELETE CASCADE,
	FOREIGN KEY (prospect_company_id) REFERENCES companies(id) ON DELETE CASCADE
) DEFAULT CHARSET=utf8mb4`,
	},
	companyConflict: ` ON DUPLICATE KEY UPDATE
	industry = COALESCE(VALUES(industry), industry),
	sales = COALESCE(VALUES(sales), sales),
	total_funding = COALESCE(VALUES(total_funding), total_funding),
	address = COALESCE(VALUES(address), address),
	email = COALESCE(VALUES(email), email),
	homepage = COALESCE(VALUES(homepage), homepage),
	key_executive = COALESCE(VALUES(key_executive), key_executive),
	logo_url = COALESCE(VALUES(logo_url), logo_url),
	phone_number = COALESCE(VALUES(phone_number), phone_number),
	updated_at = VALUES(updated_at)`,
	analysisConflict: ` ON DUPLICATE KEY UPDATE
	industry = VALUES(industry),
	sales = VALUES(sales),
	total_funding = VALUES(total_funding),
	homepage = VALUES(homepage),
	key_executive = VALUES(key_executive),
	address = VALUES(address),
	email = VALUES(email),
	phone_number = VALUES(phone_number),
	company_description = VALUES(company_description),
	products_services = VALUES(products_services),
	target_customers = VALUES(target_customers),
	competitors = VALUES(competitors),
	strengths = VALUES(strengths),
	business_model = VALUES(business_model),
	updated_at = VALUES(updated_at)`,
	leadConflict: ` ON DUPLICATE KEY UPDATE
	relevance_score = VALUES(relevance_score),
	reasoning = VALUES(reasoning),
	updated_at = VALUES(updated_at)`,
}

// SQLStore implements Store over database/sql for SQLite and MySQL.
type SQLStore struct {
	sqlRepo
	db *sql.DB
}

// NewSQLite opens a SQLite database at path with WAL journaling and
// foreign keys enforced on every pooled connection.
func NewSQLite(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	return &SQLStore{sqlRepo: sqlRepo{q: db, d: sqliteDialect}, db: db}, nil
}

// sqliteDSN appends connection pragmas to path. Pragmas set with Exec
// would only reach one connection of the pool.
func sqliteDSN(path string) string {
	pragmas := []string{
		"_pragma=journal_mode(WAL)",
		"_pragma=busy_timeout(5000)",
		"_pragma=synchronous(NORMAL)",
		"_pragma=foreign_keys(1)",
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(pragmas, "&")
}

// NewMySQL opens a MySQL database. parseTime is forced on so DATETIME
// columns scan into time.Time.
func NewMySQL(ctx context.Context, dsn string) (*SQLStore, error) {
	mcfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, eris.Wrap(err, "mysql: parse dsn")
	}
	mcfg.ParseTime = true
	mcfg.Loc = time.UTC

	connector, err := mysql.NewConnector(mcfg)
	if err != nil {
		return nil, eris.Wrap(err, "mysql: connector")
	}
	db := sql.OpenDB(connector)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetMaxIdleConns(5)

	if err := db.PingContext(ctx); err != nil {
		db.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "mysql: ping")
	}
	return &SQLStore{sqlRepo: sqlRepo{q: db, d: mysqlDialect}, db: db}, nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return eris.Wrapf(s.db.PingContext(ctx), "%s: ping", s.d.name)
}

func (s *SQLStore) Migrate(ctx context.Context) error {
	for _, stmt := range s.d.migration {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return eris.Wrapf(err, "%s: migrate", s.d.name)
		}
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) InTx(ctx context.Context, fn func(Repository) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrapf(err, "%s: begin tx", s.d.name)
	}

	if err := fn(&sqlRepo{q: tx, d: s.d}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			zap.L().Warn("store: rollback failed", zap.String("driver", s.d.name), zap.Error(rbErr))
		}
		return err
	}

	return eris.Wrapf(tx.Commit(), "%s: commit tx", s.d.name)
}

// sqlQuerier is satisfied by *sql.DB and *sql.Tx.
type sqlQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// sqlRepo implements Repository for the database/sql drivers. Neither
// dialect shares a RETURNING form, so writes re-read the row by its
// natural key.
type sqlRepo struct {
	q sqlQuerier
	d dialect
}

func (r *sqlRepo) GetCompany(ctx context.Context, id int64) (*model.Company, error) {
	var c model.Company
	err := r.q.QueryRowContext(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = ?`, id,
	).Scan(companyDests(&c)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "%s: get company %d", r.d.name, id)
	}
	return &c, nil
}

func (r *sqlRepo) GetCompanyByName(ctx context.Context, name string) (*model.Company, error) {
	var c model.Company
	err := r.q.QueryRowContext(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE name = ?`, model.NormalizeName(name),
	).Scan(companyDests(&c)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "%s: get company %q", r.d.name, name)
	}
	return &c, nil
}

func (r *sqlRepo) UpsertCompany(ctx context.Context, name string, attrs model.CompanyAttributes) (*model.Company, error) {
	name = model.NormalizeName(name)
	if name == "" {
		return nil, eris.Errorf("%s: upsert company: empty name", r.d.name)
	}
	now := time.Now().UTC()

	args := append(companyArgs(name, attrs), now, now)
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO companies (name, industry, sales, total_funding, address, email, homepage,
			key_executive, logo_url, phone_number, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`+r.d.companyConflict,
		args...,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "%s: upsert company %q", r.d.name, name)
	}

	c, err := r.GetCompanyByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, eris.Errorf("%s: upsert company %q: row missing after write", r.d.name, name)
	}
	return c, nil
}

func (r *sqlRepo) CreateProfile(ctx context.Context, companyID int64, fileName, url string) (*model.Profile, error) {
	now := time.Now().UTC()
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO company_profiles (company_id, file_name, url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		companyID, fileName, url, now, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "%s: create profile for company %d", r.d.name, companyID)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, eris.Wrapf(err, "%s: profile id", r.d.name)
	}
	return &model.Profile{
		ID:        id,
		CompanyID: companyID,
		FileName:  fileName,
		URL:       url,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (r *sqlRepo) GetProfile(ctx context.Context, id int64) (*model.Profile, error) {
	var p model.Profile
	err := r.q.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM company_profiles WHERE id = ?`, id,
	).Scan(profileDests(&p)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "%s: get profile %d", r.d.name, id)
	}
	return &p, nil
}

func (r *sqlRepo) ListProfiles(ctx context.Context, companyID int64) ([]model.Profile, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM company_profiles WHERE company_id = ? ORDER BY id`, companyID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "%s: list profiles for company %d", r.d.name, companyID)
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Profile
	for rows.Next() {
		var p model.Profile
		if err := rows.Scan(profileDests(&p)...); err != nil {
			return nil, eris.Wrapf(err, "%s: scan profile", r.d.name)
		}
		out = append(out, p)
	}
	return out, eris.Wrapf(rows.Err(), "%s: list profiles iterate", r.d.name)
}

func (r *sqlRepo) GetAnalysis(ctx context.Context, companyID, profileID int64) (*model.Analysis, error) {
	var a model.Analysis
	err := r.q.QueryRowContext(ctx,
		`SELECT `+analysisColumns+` FROM profile_analyses WHERE company_id = ? AND profile_id = ?`,
		companyID, profileID,
	).Scan(analysisDests(&a)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "%s: get analysis %d/%d", r.d.name, companyID, profileID)
	}
	return &a, nil
}

func (r *sqlRepo) GetAnalysisByProfile(ctx context.Context, profileID int64) (*model.Analysis, error) {
	var a model.Analysis
	err := r.q.QueryRowContext(ctx,
		`SELECT `+analysisColumns+` FROM profile_analyses WHERE profile_id = ?
		 ORDER BY updated_at DESC LIMIT 1`,
		profileID,
	).Scan(analysisDests(&a)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "%s: get analysis for profile %d", r.d.name, profileID)
	}
	return &a, nil
}

func (r *sqlRepo) UpsertAnalysis(ctx context.Context, companyID, profileID int64, fields model.AnalysisFields) (*model.Analysis, error) {
	now := time.Now().UTC()
	args := append([]any{companyID, profileID}, analysisArgs(fields)...)
	args = append(args, now, now)

	_, err := r.q.ExecContext(ctx,
		`INSERT INTO profile_analyses (company_id, profile_id, industry, sales, total_funding,
			homepage, key_executive, address, email, phone_number, company_description,
			products_services, target_customers, competitors, strengths, business_model,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`+r.d.analysisConflict,
		args...,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "%s: upsert analysis %d/%d", r.d.name, companyID, profileID)
	}

	a, err := r.GetAnalysis(ctx, companyID, profileID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, eris.Errorf("%s: upsert analysis %d/%d: row missing after write", r.d.name, companyID, profileID)
	}
	return a, nil
}

func (r *sqlRepo) UpsertLead(ctx context.Context, sourceID, prospectID int64, score float64, reasoning string) (*model.Lead, error) {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO lead_prospects (source_company_id, prospect_company_id, relevance_score,
			reasoning, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`+r.d.leadConflict,
		sourceID, prospectID, model.ClampScore(score), reasoning, now, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "%s: upsert lead %d->%d", r.d.name, sourceID, prospectID)
	}

	var l model.Lead
	err = r.q.QueryRowContext(ctx,
		`SELECT `+leadColumns+` FROM lead_prospects WHERE source_company_id = ? AND prospect_company_id = ?`,
		sourceID, prospectID,
	).Scan(leadDests(&l)...)
	if err != nil {
		return nil, eris.Wrapf(err, "%s: read lead %d->%d", r.d.name, sourceID, prospectID)
	}
	return &l, nil
}

func (r *sqlRepo) ListLeads(ctx context.Context, sourceID int64) ([]model.LeadView, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+qualify("l", leadColumns)+`, `+qualify("c", companyColumns)+`
		 FROM lead_prospects l
		 JOIN companies c ON c.id = l.prospect_company_id
		 WHERE l.source_company_id = ?
		 ORDER BY l.relevance_score DESC, l.id`,
		sourceID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "%s: list leads for company %d", r.d.name, sourceID)
	}
	defer rows.Close() //nolint:errcheck

	var out []model.LeadView
	for rows.Next() {
		v, err := scanLeadView(rows)
		if err != nil {
			return nil, eris.Wrapf(err, "%s: scan lead", r.d.name)
		}
		out = append(out, v)
	}
	return out, eris.Wrapf(rows.Err(), "%s: list leads iterate", r.d.name)
}
