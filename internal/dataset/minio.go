package dataset

import (
	"context"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	pkgerrors "github.com/pkg/errors"
)

type MinioOpts func(c *minioConfig)

type minioConfig struct {
	endpoint        string
	bucket          string
	prefix          string
	accessKey       string
	secretAccessKey string
	useSSL          bool
}

// MinioSource serves tables stored as objects in an S3 compatible bucket.
type MinioSource struct {
	cfg    *minioConfig
	client *minio.Client
}

func NewMinioSource(opts ...MinioOpts) (*MinioSource, error) {
	cfg := &minioConfig{}
	for _, o := range opts {
		o(cfg)
	}

	client, err := minio.New(cfg.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.accessKey, cfg.secretAccessKey, ""),
		Secure: cfg.useSSL,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "creating minio client")
	}

	return &MinioSource{cfg: cfg, client: client}, nil
}

func (s *MinioSource) Type() string {
	return "minio"
}

// ObjectName returns the object key a table name maps to.
func (s *MinioSource) ObjectName(name string) string {
	if s.cfg.prefix == "" {
		return name
	}
	return path.Join(s.cfg.prefix, name)
}

func (s *MinioSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if !IsLocalName(name) {
		return nil, NewErrDatasetNotFound(name)
	}

	object, err := s.client.GetObject(ctx, s.cfg.bucket, s.ObjectName(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, s.translate(name, err)
	}

	// GetObject is lazy; Stat surfaces a missing key before the caller starts reading.
	if _, err := object.Stat(); err != nil {
		_ = object.Close()
		return nil, s.translate(name, err)
	}

	return object, nil
}

func (s *MinioSource) translate(name string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return NewErrDatasetNotFound(name)
	}
	return NewErrDataSource(name, pkgerrors.Wrapf(err, "fetching object %s/%s", s.cfg.bucket, s.ObjectName(name)))
}

func WithEndpoint(endpoint string) MinioOpts {
	return func(c *minioConfig) {
		c.endpoint = endpoint
	}
}

func WithBucket(bucket string) MinioOpts {
	return func(c *minioConfig) {
		c.bucket = bucket
	}
}

func WithPrefix(prefix string) MinioOpts {
	return func(c *minioConfig) {
		c.prefix = prefix
	}
}

func WithAccessKey(accessKey string) MinioOpts {
	return func(c *minioConfig) {
		c.accessKey = accessKey
	}
}

func WithSecretKey(secretKey string) MinioOpts {
	return func(c *minioConfig) {
		c.secretAccessKey = secretKey
	}
}

func WithSSL(useSSL bool) MinioOpts {
	return func(c *minioConfig) {
		c.useSSL = useSSL
	}
}
