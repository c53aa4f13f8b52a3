// internal/store/s3.go
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/familyvhs/familyvhs-gallery-go/internal/metrics"
)

// S3Store implements ObjectStore against AWS S3 or an S3-compatible
// service like MinIO.
type S3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	metrics *metrics.Metrics
}

// S3Options carries the settings needed to construct an S3Store.
type S3Options struct {
	Endpoint  string // Empty for AWS; set for S3-compatible services
	Region    string
	Bucket    string
	AccessKey string // Empty to fall back to the default credential chain
	SecretKey string
}

// NewS3 creates an object store backed by S3. When an access key is
// provided it is used as a static credential, otherwise the SDK's default
// chain applies. Path-style addressing is enabled whenever a custom
// endpoint is configured, which MinIO requires.
func NewS3(ctx context.Context, opts S3Options, m *metrics.Metrics) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket name is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.Endpoint != "" {
		loadOpts = append(loadOpts, awsconfig.WithBaseEndpoint(opts.Endpoint))
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(aws.CredentialsProviderFunc(
			func(ctx context.Context) (aws.Credentials, error) {
				return aws.Credentials{
					AccessKeyID:     opts.AccessKey,
					SecretAccessKey: opts.SecretKey,
				}, nil
			})))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  opts.Bucket,
		metrics: m,
	}, nil
}

// observe records one store operation outcome when metrics are wired.
func (s *S3Store) observe(op string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.StoreOperationTotal.WithLabelValues(op, status).Inc()
	s.metrics.StoreOperationDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
}

// List returns every object under the prefix, walking all pages.
func (s *S3Store) List(ctx context.Context, prefix string) (objects []ObjectInfo, err error) {
	start := time.Now()
	defer func() { s.observe("list", start, err) }()

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, perr := paginator.NextPage(ctx)
		if perr != nil {
			return nil, fmt.Errorf("failed to list objects under %q: %w", prefix, perr)
		}
		for _, item := range page.Contents {
			info := ObjectInfo{Key: aws.ToString(item.Key)}
			if item.Size != nil {
				info.Size = *item.Size
			}
			if item.LastModified != nil {
				info.LastModified = *item.LastModified
			}
			objects = append(objects, info)
		}
	}
	return objects, nil
}

// Get retrieves the full object body.
func (s *S3Store) Get(ctx context.Context, key string) (body []byte, err error) {
	start := time.Now()
	defer func() { s.observe("get", start, err) }()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get object %q: %w", key, err)
	}
	defer out.Body.Close()

	body, err = io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %q: %w", key, err)
	}
	return body, nil
}

// Put writes the full object body.
func (s *S3Store) Put(ctx context.Context, key string, body []byte, contentType string) (err error) {
	start := time.Now()
	defer func() { s.observe("put", start, err) }()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %q: %w", key, err)
	}
	return nil
}

// Exists probes for an object by listing with the key as prefix and a
// result cap of one. A key that is a strict prefix of another object
// therefore reads as existing; sibling keys are full filenames so this
// matches how the gallery stores thumbnails and previews.
func (s *S3Store) Exists(ctx context.Context, key string) (exists bool, err error) {
	start := time.Now()
	defer func() { s.observe("exists", start, err) }()

	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(key),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return false, fmt.Errorf("failed to probe object %q: %w", key, err)
	}
	return len(out.Contents) > 0, nil
}

// PresignGet produces a time-limited authorized GET URL for one object.
func (s *S3Store) PresignGet(ctx context.Context, key string, expires time.Duration) (url string, err error) {
	start := time.Now()
	defer func() { s.observe("presign", start, err) }()

	result, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expires
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign object %q: %w", key, err)
	}
	return result.URL, nil
}
