// Package storage writes asset blobs to S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
		return c.DeleteObject(ctx, in, optFns...)
	}
)

// BlobStore keeps file blobs under keys and knows their public address.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, keys ...string) error
	URL(key string) string
}

type Settings struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseEndpoint    string
	// PublicURL must serve key k at PublicURL + "/" + k.
	PublicURL string
}

type S3Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewS3Store builds the client once. Static credentials are used when an
// access key is set, otherwise the default AWS chain applies.
func NewS3Store(ctx context.Context, s Settings) (*S3Store, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(s.Region)}
	if s.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.AccessKeyID, s.SecretAccessKey, "")))
	}
	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.BaseEndpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Store(client, s), nil
}

func newS3Store(client *s3.Client, s Settings) *S3Store {
	public := strings.TrimRight(s.PublicURL, "/")
	if public == "" {
		public = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", s.Bucket, s.Region)
	}
	return &S3Store{client: client, bucket: s.Bucket, publicURL: public}
}

func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := putObject(s.client, ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

// Delete removes every key and reports all failures together.
func (s *S3Store) Delete(ctx context.Context, keys ...string) error {
	var errs []error
	for _, key := range keys {
		if key == "" {
			continue
		}
		_, err := deleteObject(s.client, ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("delete object %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

func (s *S3Store) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.publicURL + "/" + key
}
