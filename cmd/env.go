package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/analysis"
	"github.com/sells-group/leadscout/internal/detail"
	"github.com/sells-group/leadscout/internal/document"
	"github.com/sells-group/leadscout/internal/extract"
	"github.com/sells-group/leadscout/internal/fetcher"
	"github.com/sells-group/leadscout/internal/leads"
	"github.com/sells-group/leadscout/internal/llm"
	"github.com/sells-group/leadscout/internal/objstore"
	"github.com/sells-group/leadscout/internal/pdftext"
	"github.com/sells-group/leadscout/internal/search"
	"github.com/sells-group/leadscout/internal/store"
)

// appEnv holds the initialized store, clients and services a command
// needs. Fields a command's mode does not need stay nil.
type appEnv struct {
	Store    store.Store
	Objects  *objstore.Client // nil unless objstore.endpoint is set
	Details  *detail.Service
	Analysis *analysis.Service
	Leads    *leads.Service
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv validates the configuration for mode and builds what that mode
// uses. Callers should defer env.Close().
func initEnv(ctx context.Context, mode string) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}
	env := &appEnv{}

	needsStore := mode != "details"
	needsDetails := mode == "details" || mode == "serve"
	needsLLM := needsDetails || mode == "leads" || mode == "analyze"

	if needsStore {
		st, err := initStore(ctx)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, eris.Wrap(err, "migrate store")
		}
		env.Store = st
	}

	if cfg.ObjStore.Endpoint != "" {
		objects, err := objstore.New(ctx, cfg.ObjStore)
		if err != nil {
			env.Close()
			return nil, err
		}
		env.Objects = objects
	}

	if !needsLLM {
		return env, nil
	}

	client, err := llm.New(cfg)
	if err != nil {
		env.Close()
		return nil, err
	}
	extractor := extract.New(client)

	if needsDetails {
		searcher, err := search.New(cfg)
		if err != nil {
			env.Close()
			return nil, err
		}
		fields, err := detail.LoadFields(cfg.Detail.FieldsFile)
		if err != nil {
			env.Close()
			return nil, err
		}
		env.Details = detail.NewService(searcher, extractor,
			detail.WithFields(fields),
			detail.WithMaxResults(cfg.Search.MaxResults),
			detail.WithNewsCount(cfg.Search.NewsCount),
		)
	}

	if env.Store != nil {
		loader, err := initLoader(env.Objects)
		if err != nil {
			env.Close()
			return nil, err
		}
		env.Analysis = analysis.NewService(env.Store, loader, extractor)
		env.Leads = leads.NewService(env.Store, env.Analysis, client, cfg.Leads.Count)
	}

	zap.L().Debug("environment ready",
		zap.String("mode", mode),
		zap.String("store", cfg.Store.Driver),
		zap.String("llm", cfg.LLM.Provider),
		zap.Bool("objstore", env.Objects != nil),
	)
	return env, nil
}

// initStore opens the configured database.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "leadscout.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	case "mysql":
		return store.NewMySQL(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initLoader builds the document loader. s3:// URLs are readable only
// when an object store is configured.
func initLoader(objects *objstore.Client) (*document.Loader, error) {
	extractor, err := pdftext.New(cfg.PDF)
	if err != nil {
		return nil, err
	}

	web := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:   cfg.Fetch.UserAgent,
		Timeout:     time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		RatePerHost: cfg.Fetch.RatePerHost,
	})
	var objFetcher fetcher.Fetcher
	if objects != nil {
		objFetcher = fetcher.NewObjectFetcher(objects)
	}

	return document.NewLoader(fetcher.NewRouter(web, objFetcher), extractor, cfg.Fetch.MaxChars), nil
}
