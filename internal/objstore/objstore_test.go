package objstore

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/config"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantBucket string
		wantKey    string
		wantErr    bool
	}{
		{"simple", "s3://company-profiles/profiles/1/deck.pdf", "company-profiles", "profiles/1/deck.pdf", false},
		{"wrong scheme", "https://company-profiles/deck.pdf", "", "", true},
		{"no key", "s3://company-profiles/", "", "", true},
		{"no bucket", "s3:///deck.pdf", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, key, err := ParseURL(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func TestURLRoundTrip(t *testing.T) {
	raw := URL("bucket", "profiles/9/a.pdf")
	assert.Equal(t, "s3://bucket/profiles/9/a.pdf", raw)

	bucket, key, err := ParseURL(raw)
	require.NoError(t, err)
	assert.Equal(t, "bucket", bucket)
	assert.Equal(t, "profiles/9/a.pdf", key)
}

func TestProfileKey(t *testing.T) {
	a := ProfileKey(42, "/tmp/uploads/Deck Q3.pdf")
	b := ProfileKey(42, "/tmp/uploads/Deck Q3.pdf")

	assert.True(t, strings.HasPrefix(a, "profiles/42/"))
	assert.True(t, strings.HasSuffix(a, "-Deck Q3.pdf"))
	assert.NotEqual(t, a, b)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentType("a.PDF"))
	assert.Equal(t, "application/json", ContentType("a.json"))
	assert.Equal(t, "text/plain", ContentType("notes.txt"))
	assert.Equal(t, "application/octet-stream", ContentType("a.bin"))
}

func TestNew_RequiresEndpointAndBucket(t *testing.T) {
	_, err := New(context.Background(), config.ObjStoreConfig{Bucket: "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint is required")

	_, err = New(context.Background(), config.ObjStoreConfig{Endpoint: "localhost:9000"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket is required")
}
