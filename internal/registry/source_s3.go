package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/agentx-labs/uikit/internal/manifest"
)

// S3API is the subset of the S3 client used by S3Source.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source serves items stored as s3://bucket/prefix/<name>.json.
type S3Source struct {
	Client S3API
	Bucket string
	Prefix string
}

func (s *S3Source) String() string { return "s3://" + path.Join(s.Bucket, s.Prefix) }

func (s *S3Source) key(name string) string {
	return path.Join(s.Prefix, name+".json")
}

// Fetch downloads and validates one item.
func (s *S3Source) Fetch(ctx context.Context, name string) (*manifest.Item, error) {
	data, err := s.get(ctx, s.key(name))
	if err != nil {
		return nil, notFound(name, s.String(), err)
	}
	return decodeItem(data, manifest.FormatJSON, "s3://"+s.Bucket+"/"+s.key(name))
}

// Index downloads <prefix>/index.json.
func (s *S3Source) Index(ctx context.Context) (manifest.Index, error) {
	data, err := s.get(ctx, s.key(IndexName))
	if err != nil {
		return nil, fmt.Errorf("fetching registry index from %s: %w", s, err)
	}
	return manifest.ParseIndex(data, manifest.FormatJSON, s.key(IndexName))
}

func (s *S3Source) get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, errNotFoundStatus
		}
		return nil, err
	}
	defer out.Body.Close()
	return io.ReadAll(io.LimitReader(out.Body, maxItemSize))
}

func parseS3URL(raw string) (bucket, prefix string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("parsing registry URL %s: %w", raw, err)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("registry URL %s: missing bucket", raw)
	}
	prefix = strings.Trim(u.Path, "/")
	// A trailing {name}.json segment is implied.
	prefix = strings.TrimSuffix(prefix, "{name}.json")
	return u.Host, strings.Trim(prefix, "/"), nil
}

// NewS3Client builds a client from the standard AWS environment variables.
// Without AWS_ACCESS_KEY_ID the client signs nothing, which suits public
// buckets. AWS_ENDPOINT_URL_S3 points it at S3-compatible stores.
func NewS3Client() *s3.Client {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-1"
	}
	opts := s3.Options{
		Region:      region,
		Credentials: envCredentials(),
	}
	if endpoint := os.Getenv("AWS_ENDPOINT_URL_S3"); endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

func envCredentials() aws.CredentialsProvider {
	if os.Getenv("AWS_ACCESS_KEY_ID") == "" {
		return aws.AnonymousCredentials{}
	}
	return aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
		return aws.Credentials{
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			Source:          "environment",
		}, nil
	})
}
