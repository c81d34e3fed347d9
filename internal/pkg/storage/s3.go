package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/jobboard/cms/internal/config"
)

// S3 stores uploads in an S3-compatible bucket.
type S3 struct {
	client    *s3.Client
	bucket    string
	prefix    string
	publicURL string
}

// NewS3 builds a client from static credentials. A custom endpoint implies
// path-style addressing unless the config says otherwise.
func NewS3(cfg config.S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: cfg.PathStyle || cfg.Endpoint != "",
	}
	if cfg.AccessKeyID != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		opts.BaseEndpoint = aws.String(endpoint)
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		if cfg.Endpoint != "" {
			publicURL = strings.TrimRight(aws.ToString(opts.BaseEndpoint), "/") + "/" + cfg.Bucket
		} else {
			publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	return &S3{
		client:    s3.New(opts),
		bucket:    cfg.Bucket,
		prefix:    cfg.Prefix,
		publicURL: publicURL,
	}, nil
}

func (s *S3) Driver() string { return "s3" }

func (s *S3) key(dir, name string) string {
	if s.prefix == "" {
		return dir + "/" + name
	}
	return s.prefix + "/" + dir + "/" + name
}

func (s *S3) Put(ctx context.Context, dir, name string, body io.Reader, size int64, contentType string) (*Object, error) {
	if err := checkKey(dir, name); err != nil {
		return nil, err
	}
	key := s.key(dir, name)
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return nil, fmt.Errorf("s3 put %s: %w", key, err)
	}
	return &Object{
		Dir:         dir,
		Name:        name,
		URL:         s.publicURL + "/" + key,
		Size:        size,
		ContentType: contentType,
		Storage:     s.Driver(),
	}, nil
}

func (s *S3) Delete(ctx context.Context, dir, name string) error {
	if err := checkKey(dir, name); err != nil {
		return err
	}
	key := s.key(dir, name)
	if _, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)}); err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return ErrNotExist
		}
		return fmt.Errorf("s3 head %s: %w", key, err)
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)}); err != nil {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}
	return nil
}

func (s *S3) Resolve(url string) (string, string, bool) {
	base := s.publicURL + "/"
	if s.prefix != "" {
		base += s.prefix + "/"
	}
	rest, ok := strings.CutPrefix(url, base)
	if !ok {
		return "", "", false
	}
	dir, name, ok := strings.Cut(rest, "/")
	if !ok || checkKey(dir, name) != nil {
		return "", "", false
	}
	return dir, name, true
}

// New picks the backend named by cfg.Storage.Driver.
func New(cfg *config.AppConfig) (Storage, error) {
	if cfg.Storage.Driver == "s3" {
		return NewS3(cfg.Storage.S3)
	}
	return NewLocal(cfg.StaticDir(), "/static"), nil
}
