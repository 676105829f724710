package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/config"
)

// useConfig installs a sqlite-backed config for the duration of a test.
func useConfig(t *testing.T) *config.Config {
	t.Helper()
	prev := cfg
	cfg = &config.Config{
		Store: config.StoreConfig{
			Driver:      "sqlite",
			DatabaseURL: filepath.Join(t.TempDir(), "leadscout.db"),
		},
		Fetch: config.FetchConfig{MaxChars: 15000},
	}
	t.Cleanup(func() { cfg = prev })
	return cfg
}

func TestInitStore_SQLite(t *testing.T) {
	useConfig(t)

	st, err := initStore(context.Background())
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	require.NoError(t, st.Migrate(context.Background()))
	require.NoError(t, st.Ping(context.Background()))
}

func TestInitStore_UnsupportedDriver(t *testing.T) {
	c := useConfig(t)
	c.Store.Driver = "oracle"

	_, err := initStore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver: oracle")
}

func TestInitEnv_StoreOnlyModes(t *testing.T) {
	for _, mode := range []string{"migrate", "company", "profile"} {
		t.Run(mode, func(t *testing.T) {
			useConfig(t)

			env, err := initEnv(context.Background(), mode)
			require.NoError(t, err)
			defer env.Close()

			assert.NotNil(t, env.Store)
			assert.Nil(t, env.Objects)
			assert.Nil(t, env.Details)
			assert.Nil(t, env.Analysis)
			assert.Nil(t, env.Leads)
		})
	}
}

func TestInitEnv_ValidatesMode(t *testing.T) {
	useConfig(t)

	_, err := initEnv(context.Background(), "leads")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm.provider")

	_, err = initEnv(context.Background(), "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestInitEnv_LeadsWiresServices(t *testing.T) {
	c := useConfig(t)
	c.LLM.Provider = "openai"
	c.OpenAI.Key = "sk-test"
	c.PDF.Provider = "auto"

	env, err := initEnv(context.Background(), "leads")
	require.NoError(t, err)
	defer env.Close()

	assert.NotNil(t, env.Analysis)
	assert.NotNil(t, env.Leads)
	assert.Nil(t, env.Details)
}

func TestInitEnv_DetailsSkipsStore(t *testing.T) {
	c := useConfig(t)
	c.LLM.Provider = "openai"
	c.OpenAI.Key = "sk-test"
	c.Search.Provider = "tavily"
	c.Tavily.Key = "tvly-test"

	env, err := initEnv(context.Background(), "details")
	require.NoError(t, err)
	defer env.Close()

	assert.Nil(t, env.Store)
	require.NotNil(t, env.Details)
	assert.Len(t, env.Details.Fields(), 13)
}
