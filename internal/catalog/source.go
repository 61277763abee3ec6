package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"google.golang.org/api/option"
)

// maxFeedBytes caps how much of a remote feed is read.
var maxFeedBytes int64 = 8 << 20

var ErrFeedTooLarge = errors.New("product feed too large")

// SourceOptions carries the credentials the remote feed locations need.
type SourceOptions struct {
	AWSRegion      string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	GCSCredentials string
	HTTPClient     *http.Client
}

// Load reads the product feed from source: empty for the embedded feed,
// a local path, an http(s) URL, s3://bucket/key or gs://bucket/object.
func Load(ctx context.Context, source string, opts SourceOptions) (*Catalog, error) {
	b, err := fetch(ctx, source, opts)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

func fetch(ctx context.Context, source string, opts SourceOptions) ([]byte, error) {
	switch {
	case source == "":
		return defaultFeed, nil
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return fetchHTTP(ctx, source, opts.HTTPClient)
	case strings.HasPrefix(source, "s3://"):
		bucket, key, err := splitObjectURL(source)
		if err != nil {
			return nil, err
		}
		return fetchS3(ctx, bucket, key, opts)
	case strings.HasPrefix(source, "gs://"):
		bucket, object, err := splitObjectURL(source)
		if err != nil {
			return nil, err
		}
		return fetchGCS(ctx, bucket, object, opts.GCSCredentials)
	default:
		b, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("read product feed: %w", err)
		}
		return b, nil
	}
}

func readFeed(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, maxFeedBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read product feed: %w", err)
	}
	if int64(len(b)) > maxFeedBytes {
		return nil, fmt.Errorf("%w: over %d bytes", ErrFeedTooLarge, maxFeedBytes)
	}
	return b, nil
}

func splitObjectURL(raw string) (string, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("parse feed location: %w", err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("feed location %q needs a bucket and an object key", raw)
	}
	return u.Host, key, nil
}

func fetchHTTP(ctx context.Context, source string, client *http.Client) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch product feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch product feed: unexpected status %d", resp.StatusCode)
	}
	return readFeed(resp.Body)
}

func fetchS3(ctx context.Context, bucket, key string, opts SourceOptions) ([]byte, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.AWSRegion),
	}
	if opts.S3AccessKey != "" && opts.S3SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.S3AccessKey, opts.S3SecretKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.S3Endpoint)
			o.UsePathStyle = true // R2, MinIO
		}
	})

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get %s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()
	return readFeed(out.Body)
}

func fetchGCS(ctx context.Context, bucket, object, credentialsFile string) ([]byte, error) {
	var clientOpts []option.ClientOption
	if credentialsFile != "" {
		clientOpts = append(clientOpts, option.WithAuthCredentialsFile(option.ServiceAccount, credentialsFile))
	}
	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}
	defer client.Close()

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs read %s/%s: %w", bucket, object, err)
	}
	defer r.Close()
	return readFeed(r)
}
