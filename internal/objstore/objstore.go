// Package objstore keeps uploaded profile documents in an S3-compatible
// bucket (MinIO, S3, R2) and reads them back.
package objstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/config"
)

// Scheme is the URL scheme of stored object references.
const Scheme = "s3"

// Client uploads and opens objects in one bucket.
type Client struct {
	client *minio.Client
	bucket string
}

// New connects to the configured endpoint and creates the bucket when it
// does not exist yet.
func New(ctx context.Context, cfg config.ObjStoreConfig) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, eris.New("objstore: endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, eris.New("objstore: bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, eris.Wrap(err, "objstore: new client")
	}

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, eris.Wrapf(err, "objstore: check bucket %s", cfg.Bucket)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, eris.Wrapf(err, "objstore: make bucket %s", cfg.Bucket)
		}
		zap.L().Info("objstore: created bucket", zap.String("bucket", cfg.Bucket))
	}

	return &Client{client: cli, bucket: cfg.Bucket}, nil
}

// Upload stores the file at localPath under key and returns its s3:// URL.
func (c *Client) Upload(ctx context.Context, localPath, key string) (string, error) {
	_, err := c.client.FPutObject(ctx, c.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: ContentType(localPath),
	})
	if err != nil {
		return "", eris.Wrapf(err, "objstore: upload %s", key)
	}
	return URL(c.bucket, key), nil
}

// Open returns a reader over the object. Missing objects fail here rather
// than on first read.
func (c *Client) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	obj, err := c.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, eris.Wrapf(err, "objstore: get %s/%s", bucket, key)
	}
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, eris.Wrapf(err, "objstore: stat %s/%s", bucket, key)
	}
	return obj, nil
}

// ProfileKey builds a collision-free object key for a company's document.
func ProfileKey(companyID int64, fileName string) string {
	base := filepath.Base(fileName)
	if base == "." || base == "/" {
		base = "profile.pdf"
	}
	return fmt.Sprintf("profiles/%d/%s-%s", companyID, uuid.NewString(), base)
}

// URL formats an object reference.
func URL(bucket, key string) string {
	return Scheme + "://" + bucket + "/" + key
}

// ParseURL splits an s3://bucket/key reference.
func ParseURL(raw string) (bucket, key string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", eris.Wrap(err, "objstore: parse url")
	}
	if u.Scheme != Scheme {
		return "", "", eris.Errorf("objstore: unsupported scheme %q", u.Scheme)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", eris.Errorf("objstore: %q must name a bucket and key", raw)
	}
	return u.Host, key, nil
}

// ContentType guesses the MIME type from the file extension.
func ContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".json":
		return "application/json"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
