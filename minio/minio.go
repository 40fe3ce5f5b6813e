package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	goerrs "github.com/nicolasparada/go-errs"
)

const Scheme = "s3"

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Secure    bool
}

// Minio reads attachment objects referenced by s3://bucket/key URLs.
type Minio struct {
	client *minio.Client
}

func New(client *minio.Client) *Minio {
	return &Minio{client: client}
}

func Dial(cfg Config) (*Minio, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("new minio client: %w", err)
	}
	return New(client), nil
}

// ParseURL splits s3://bucket/key. ok is false for any other URL.
func ParseURL(rawURL string) (bucket, key string, ok bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme != Scheme || u.Host == "" {
		return "", "", false
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", false
	}
	return u.Host, key, true
}

// Get opens the object for streaming and returns its size.
func (m *Minio) Get(ctx context.Context, bucket, key string) (io.ReadCloser, int64, error) {
	obj, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, fmt.Errorf("get object: %w", err)
	}

	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, 0, goerrs.NotFoundError(fmt.Sprintf("object %s/%s not found", bucket, key))
		}
		return nil, 0, fmt.Errorf("stat object: %w", err)
	}

	return obj, info.Size, nil
}

// Open is Get for an s3:// URL.
func (m *Minio) Open(ctx context.Context, rawURL string) (io.ReadCloser, int64, error) {
	bucket, key, ok := ParseURL(rawURL)
	if !ok {
		return nil, 0, goerrs.InvalidArgumentError("not an s3 url")
	}
	return m.Get(ctx, bucket, key)
}
