package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/site-content/pkg/sitecontent"
	"github.com/tendant/site-content/pkg/sitecontent/presigned"
	fsstorage "github.com/tendant/site-content/pkg/sitecontent/storage/fs"
	memorystorage "github.com/tendant/site-content/pkg/sitecontent/storage/memory"
	s3storage "github.com/tendant/site-content/pkg/sitecontent/storage/s3"
)

// Storage types
const (
	StorageS3     = "s3"
	StorageMemory = "memory"
	StorageFS     = "fs"
)

// Config is the process configuration, read from the environment
type Config struct {
	ContentBucket string `env:"CONTENT_BUCKET" env-required:"true" env-description:"bucket holding site content documents"`
	MediaBucket   string `env:"MEDIA_BUCKET" env-required:"true" env-description:"bucket holding uploaded media"`
	StorageType   string `env:"STORAGE_TYPE" env-default:"s3" env-description:"s3, memory or fs"`
	Environment   string `env:"ENVIRONMENT" env-default:"development"`
	LogLevel      string `env:"LOG_LEVEL"`

	// Only preflight answers honour this; handler responses always carry
	// Access-Control-Allow-Origin: *.
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-default:"*" env-separator:"," env-description:"origins allowed on CORS preflight; handler responses always send *"`

	S3 S3Config
	FS FSConfig
}

// S3Config configures the S3 blob stores. Both buckets share one client setup.
type S3Config struct {
	Region                 string `env:"AWS_REGION" env-default:"us-east-1"`
	Endpoint               string `env:"AWS_S3_ENDPOINT"`
	AccessKeyID            string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey        string `env:"AWS_SECRET_ACCESS_KEY"`
	UsePathStyle           bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"false"`
	CreateBucketIfNotExist bool   `env:"S3_CREATE_BUCKET_IF_NOT_EXIST" env-default:"false"`
	EnableSSE              bool   `env:"S3_ENABLE_SSE" env-default:"false"`
	SSEAlgorithm           string `env:"S3_SSE_ALGORITHM"`
	SSEKMSKeyID            string `env:"S3_SSE_KMS_KEY_ID"`
}

// FSConfig configures filesystem blob stores. Each bucket is a directory
// under BaseDir. Upload URLs are URLPrefix/<key>, which cmd/server serves
// at /upload when the prefix points back at it.
type FSConfig struct {
	BaseDir            string `env:"FS_BASE_DIR" env-default:"./data"`
	URLPrefix          string `env:"FS_URL_PREFIX"`
	SignatureSecretKey string `env:"FS_SIGNATURE_SECRET_KEY"`
}

// Load reads the configuration from the process environment. Missing
// bucket names are reported here, at startup.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	if c.ContentBucket == "" {
		return errors.New("CONTENT_BUCKET is required")
	}
	if c.MediaBucket == "" {
		return errors.New("MEDIA_BUCKET is required")
	}

	switch c.StorageType {
	case StorageS3, StorageMemory, StorageFS:
	default:
		return fmt.Errorf("unsupported STORAGE_TYPE: %s (use 's3', 'memory' or 'fs')", c.StorageType)
	}

	return nil
}

// IsProduction reports whether the environment names a production deployment
func (c *Config) IsProduction() bool {
	return c.Environment == "prod" || c.Environment == "production"
}

// BuildStores constructs the content and media blob stores
func (c *Config) BuildStores(ctx context.Context) (content sitecontent.BlobStore, media sitecontent.BlobStore, err error) {
	switch c.StorageType {
	case StorageMemory:
		return memorystorage.New(), memorystorage.New(), nil

	case StorageFS:
		content, err = fsstorage.New(fsstorage.Config{
			BaseDir: filepath.Join(c.FS.BaseDir, c.ContentBucket),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create content store: %w", err)
		}
		media, err = fsstorage.New(fsstorage.Config{
			BaseDir:   filepath.Join(c.FS.BaseDir, c.MediaBucket),
			URLPrefix: c.FS.URLPrefix,
			Signer:    c.Signer(),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create media store: %w", err)
		}
		return content, media, nil

	case StorageS3:
		content, err = s3storage.New(ctx, c.s3Config(c.ContentBucket))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create content store: %w", err)
		}
		media, err = s3storage.New(ctx, c.s3Config(c.MediaBucket))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create media store: %w", err)
		}
		return content, media, nil
	}

	return nil, nil, fmt.Errorf("unsupported STORAGE_TYPE: %s", c.StorageType)
}

func (c *Config) s3Config(bucket string) s3storage.Config {
	return s3storage.Config{
		Region:                 c.S3.Region,
		Bucket:                 bucket,
		AccessKeyID:            c.S3.AccessKeyID,
		SecretAccessKey:        c.S3.SecretAccessKey,
		Endpoint:               c.S3.Endpoint,
		UsePathStyle:           c.S3.UsePathStyle,
		EnableSSE:              c.S3.EnableSSE,
		SSEAlgorithm:           c.S3.SSEAlgorithm,
		SSEKMSKeyID:            c.S3.SSEKMSKeyID,
		CreateBucketIfNotExist: c.S3.CreateBucketIfNotExist,
	}
}

// Signer returns the upload URL signer for filesystem storage. It has no
// key, and so signs nothing, unless FS_SIGNATURE_SECRET_KEY is set.
func (c *Config) Signer() *presigned.Signer {
	return presigned.New(presigned.WithSecretKey(c.FS.SignatureSecretKey))
}

// BuildHandler constructs the stores and the request handler
func (c *Config) BuildHandler(ctx context.Context, logger *slog.Logger) (*sitecontent.Handler, error) {
	content, media, err := c.BuildStores(ctx)
	if err != nil {
		return nil, err
	}

	return NewHandler(content, media, logger)
}

// NewHandler constructs the request handler over already-built stores
func NewHandler(content, media sitecontent.BlobStore, logger *slog.Logger) (*sitecontent.Handler, error) {
	return sitecontent.New(
		sitecontent.WithContentStore(content),
		sitecontent.WithMediaStore(media),
		sitecontent.WithLogger(logger),
	)
}
