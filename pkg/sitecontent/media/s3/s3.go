package s3

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Config options for the S3 media resolver
type Config struct {
	Region          string // AWS region
	Bucket          string // S3 bucket name
	AccessKeyID     string // AWS access key ID
	SecretAccessKey string // AWS secret access key
	Endpoint        string // Optional custom endpoint for S3-compatible services
	UsePathStyle    bool   // Use path-style addressing (default: false)
	PresignDuration int    // Duration in seconds for presigned URLs (default: 3600)
	KeyPrefix       string // Prefix of image object keys, e.g. "images/"
}

// Resolver is an S3 implementation of the sitecontent.MediaResolver
// interface. Image ids map to object keys below KeyPrefix; URLs are presigned
// for inline display.
type Resolver struct {
	presignClient   *s3.PresignClient
	bucket          string
	keyPrefix       string
	presignDuration time.Duration
}

// New creates a new S3 media resolver
func New(config Config) (*Resolver, error) {
	if config.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}

	if config.Region == "" {
		config.Region = "us-east-1"
	}

	if config.PresignDuration == 0 {
		config.PresignDuration = 3600 // 1 hour default
	}

	var awsCfg aws.Config
	var err error

	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(config.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				config.AccessKeyID,
				config.SecretAccessKey,
				"",
			)),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(config.Region),
		)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Options []func(*s3.Options)
	if config.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = config.UsePathStyle
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Options...)

	return &Resolver{
		presignClient:   s3.NewPresignClient(client),
		bucket:          config.Bucket,
		keyPrefix:       config.KeyPrefix,
		presignDuration: time.Duration(config.PresignDuration) * time.Second,
	}, nil
}

// ObjectKey returns the object key of an image
func (r *Resolver) ObjectKey(id uuid.UUID) string {
	return r.keyPrefix + id.String()
}

// ImageURLs presigns a preview URL for every id. Presigning happens
// locally; no request reaches the bucket.
func (r *Resolver) ImageURLs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	urls := make(map[uuid.UUID]string, len(ids))
	for _, id := range ids {
		input := &s3.GetObjectInput{
			Bucket:                     aws.String(r.bucket),
			Key:                        aws.String(r.ObjectKey(id)),
			ResponseContentDisposition: aws.String("inline"),
		}

		result, err := r.presignClient.PresignGetObject(ctx, input, func(opts *s3.PresignOptions) {
			opts.Expires = r.presignDuration
		})
		if err != nil {
			return nil, fmt.Errorf("failed to generate presigned preview URL for image %s: %w", id, err)
		}
		urls[id] = result.URL
	}
	return urls, nil
}

// ParseURL reads a resolver config from a URL of the form
// s3://bucket/prefix?region=eu-central-1&endpoint=http://minio:9000&path_style=true
func ParseURL(raw string) (Config, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Config{}, fmt.Errorf("invalid s3 URL: %w", err)
	}
	if u.Scheme != "s3" {
		return Config{}, fmt.Errorf("not an s3 URL: %q", raw)
	}
	if u.Host == "" {
		return Config{}, errors.New("bucket name is required")
	}

	config := Config{Bucket: u.Host}
	if prefix := strings.Trim(u.Path, "/"); prefix != "" {
		config.KeyPrefix = prefix + "/"
	}

	for key, values := range u.Query() {
		value := values[0]
		switch key {
		case "region":
			config.Region = value
		case "endpoint":
			config.Endpoint = value
		case "path_style":
			config.UsePathStyle = value == "true"
		default:
			return Config{}, fmt.Errorf("unknown s3 URL parameter %q", key)
		}
	}
	return config, nil
}
