// Package storage reads stored asset files for client-side download.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/team-dbx/dbx/internal/netx"
)

// DefaultFileName is used when a file url has no trailing path segment.
const DefaultFileName = "downLoad"

var ErrEmptyObject = errors.New("stored object is empty")

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	getObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
		return c.GetObject(ctx, in, optFns...)
	}
)

// Reader resolves a stored file's public address to its bytes and the file
// name it should be saved under.
type Reader interface {
	Read(ctx context.Context, fileURL string) ([]byte, string, error)
}

// ParseFileURL returns the object key (the url-decoded path without the
// leading slash) and the file name (its last segment) of fileURL.
func ParseFileURL(fileURL string) (key, name string, err error) {
	u, err := url.Parse(fileURL)
	if err != nil {
		return "", "", fmt.Errorf("parse file url: %w", err)
	}

	key = strings.TrimPrefix(u.Path, "/")

	name = DefaultFileName
	if key != "" && !strings.HasSuffix(key, "/") {
		name = path.Base(key)
	}
	return key, name, nil
}

type S3Settings struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseEndpoint    string
}

// S3Reader downloads with GetObject from a fixed bucket.
type S3Reader struct {
	settings S3Settings
}

func NewS3Reader(s S3Settings) *S3Reader {
	return &S3Reader{settings: s}
}

func (r *S3Reader) client(ctx context.Context) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(r.settings.Region)}
	if r.settings.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			r.settings.AccessKeyID,
			r.settings.SecretAccessKey,
			"",
		)))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if r.settings.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(r.settings.BaseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func (r *S3Reader) Read(ctx context.Context, fileURL string) ([]byte, string, error) {
	key, name, err := ParseFileURL(fileURL)
	if err != nil {
		return nil, "", err
	}

	c, err := r.client(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("s3 client: %w", err)
	}

	out, err := getObject(c, ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.settings.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("get object %s: %w", key, err)
	}
	if out.Body == nil {
		return nil, "", ErrEmptyObject
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read object %s: %w", key, err)
	}
	if len(data) == 0 {
		return nil, "", ErrEmptyObject
	}
	return data, name, nil
}

// HTTPReader downloads the public url directly. Used when no S3
// credentials are configured.
type HTTPReader struct {
	client *http.Client
}

func NewHTTPReader(c *http.Client) *HTTPReader {
	return &HTTPReader{client: c}
}

func (r *HTTPReader) Read(ctx context.Context, fileURL string) ([]byte, string, error) {
	_, name, err := ParseFileURL(fileURL)
	if err != nil {
		return nil, "", err
	}
	data, err := netx.Download(ctx, r.client, fileURL)
	if err != nil {
		return nil, "", err
	}
	return data, name, nil
}

// NewReader picks the S3 reader when credentials are present.
func NewReader(s S3Settings, c *http.Client) Reader {
	if s.AccessKeyID != "" && s.Bucket != "" {
		return NewS3Reader(s)
	}
	return NewHTTPReader(c)
}
