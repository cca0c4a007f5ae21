package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rotisserie/eris"
)

// R2Config holds the Cloudflare R2 settings.
type R2Config struct {
	AccountID string `mapstructure:"account_id"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	PublicURL string `mapstructure:"public_url"` // e.g. "https://pub-xxx.r2.dev"
	Endpoint  string `mapstructure:"endpoint"`   // overrides the account endpoint
}

// objectAPI is the part of the S3 client the store calls.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// R2Store saves files to Cloudflare R2 through the S3 API.
type R2Store struct {
	client    objectAPI
	bucket    string
	publicURL string
}

// NewR2Store builds an S3 client for the configured account.
func NewR2Store(ctx context.Context, cfg R2Config) (*R2Store, error) {
	if cfg.Bucket == "" {
		return nil, eris.New("storage: r2 bucket is required")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, eris.Wrap(err, "storage: load aws config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})
	return newR2Store(client, cfg.Bucket, cfg.PublicURL), nil
}

func newR2Store(client objectAPI, bucket, publicURL string) *R2Store {
	return &R2Store{client: client, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
}

// Save uploads r to the bucket under key p.
func (s *R2Store) Save(ctx context.Context, p string, r io.Reader, contentType string) (*FileInfo, error) {
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(p),
		Body:        r,
		ContentType: aws.String(contentType),
	}); err != nil {
		return nil, eris.Wrapf(err, "storage: r2 put %s", p)
	}

	// PutObject does not report the stored size.
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(p),
	})
	if err != nil {
		return nil, eris.Wrapf(err, "storage: r2 head %s", p)
	}
	return &FileInfo{
		URL:      s.URL(p),
		Path:     p,
		FileName: path.Base(p),
		FileSize: aws.ToInt64(head.ContentLength),
		FileType: contentType,
	}, nil
}

// Open streams the object at p.
func (s *R2Store) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(p),
	})
	if err != nil {
		return nil, eris.Wrapf(err, "storage: r2 get %s", p)
	}
	return out.Body, nil
}

// Delete removes the object at p. R2 does not fail for missing keys.
func (s *R2Store) Delete(ctx context.Context, p string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(p),
	})
	return eris.Wrapf(err, "storage: r2 delete %s", p)
}

// URL returns the public URL of p.
func (s *R2Store) URL(p string) string {
	return s.publicURL + "/" + strings.TrimLeft(p, "/")
}
