// Package s3 stores uploaded documents in an S3 bucket or any
// S3-compatible server such as MinIO.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/custodia-labs/medichat/internal/core/domain"
	"github.com/custodia-labs/medichat/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ObjectStore = (*Store)(nil)

// Config holds bucket and connection settings.
type Config struct {
	Bucket string
	Region string

	// Endpoint overrides the AWS endpoint for S3-compatible servers.
	Endpoint string

	// PathStyle addresses objects as endpoint/bucket/key.
	PathStyle bool

	// AccessKeyID and SecretAccessKey pin static credentials.
	// When empty the default AWS credential chain applies.
	AccessKeyID     string
	SecretAccessKey string
}

// Store implements driven.ObjectStore on S3.
type Store struct {
	client *awss3.Client
	bucket string
}

// New loads AWS configuration and creates an S3 client.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: s3 bucket is required", domain.ErrInvalidConfiguration)
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: loading aws config: %w", domain.ErrInvalidConfiguration, err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		o.UsePathStyle = cfg.PathStyle
		o.RetryMaxAttempts = 1
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// Most S3-compatible servers reject the newer default checksums.
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
			o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
		}
	})

	return &Store{client: client, bucket: cfg.Bucket}, nil
}

// Exists issues a HEAD request for key.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.head(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Put uploads data under key.
func (s *Store) Put(ctx context.Context, key string, data []byte) (string, error) {
	input := &awss3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", s.wrap("uploading", key, err)
	}
	return s.locationURL(key), nil
}

// List pages through every object under the document prefix.
func (s *Store) List(ctx context.Context) ([]domain.StoredDocument, error) {
	paginator := awss3.NewListObjectsV2Paginator(s.client, &awss3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(domain.DocumentKeyPrefix),
	})

	var docs []domain.StoredDocument
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, s.wrap("listing", domain.DocumentKeyPrefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			docs = append(docs, domain.StoredDocument{
				Key:          key,
				Filename:     domain.FilenameFromKey(key),
				SizeBytes:    aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
				LocationURL:  s.locationURL(key),
			})
		}
	}
	return docs, nil
}

// Get downloads the object.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s.wrap("downloading", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", domain.ErrStoreUnavailable, key, err)
	}
	return data, nil
}

// Stat returns object metadata from a HEAD request.
func (s *Store) Stat(ctx context.Context, key string) (*domain.StoredDocument, error) {
	out, err := s.head(ctx, key)
	if err != nil {
		return nil, err
	}
	return &domain.StoredDocument{
		Key:          key,
		Filename:     domain.FilenameFromKey(key),
		SizeBytes:    aws.ToInt64(out.ContentLength),
		LastModified: aws.ToTime(out.LastModified),
		LocationURL:  s.locationURL(key),
	}, nil
}

func (s *Store) head(ctx context.Context, key string) (*awss3.HeadObjectOutput, error) {
	out, err := s.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s.wrap("checking", key, err)
	}
	return out, nil
}

// wrap maps 404 responses to domain.ErrNotFound and everything else to
// domain.ErrStoreUnavailable.
func (s *Store) wrap(op, key string, err error) error {
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound {
		return fmt.Errorf("%w: s3://%s/%s", domain.ErrNotFound, s.bucket, key)
	}
	return fmt.Errorf("%w: %s s3://%s/%s: %w", domain.ErrStoreUnavailable, op, s.bucket, key, err)
}

func (s *Store) locationURL(key string) string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, key)
}
