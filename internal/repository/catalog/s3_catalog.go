package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/schollz/progressbar/v3"

	"github.com/zzenonn/framesync/internal/domain"
)

// S3Catalog reads the catalog out of an S3 bucket. The manifest lives at
// {prefix}/manifest.json and each image at {prefix}/{asset id}.
type S3Catalog struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Catalog initializes a new S3Catalog.
func NewS3Catalog(client *s3.Client, bucket, prefix string) S3Catalog {
	return S3Catalog{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

func (c *S3Catalog) objectKey(name string) string {
	if c.prefix == "" {
		return name
	}
	return c.prefix + "/" + name
}

// FetchManifest downloads and validates the manifest object.
func (c *S3Catalog) FetchManifest(ctx context.Context) (domain.Manifest, error) {
	key := c.objectKey("manifest.json")
	result, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch s3://%s/%s: %w", c.bucket, key, err)
	}
	defer result.Body.Close()

	var raw map[string]string
	if err := json.NewDecoder(result.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode manifest s3://%s/%s: %w", c.bucket, key, err)
	}

	return parseManifest(raw), nil
}

// FetchImage downloads an image object from S3
func (c *S3Catalog) FetchImage(ctx context.Context, id domain.AssetID, quiet bool) (io.ReadCloser, error) {
	result, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.objectKey(string(id))),
	})
	if err != nil {
		return nil, err
	}

	if !quiet {
		var size int64 = -1
		if result.ContentLength != nil {
			size = *result.ContentLength
		}
		bar := progressbar.DefaultBytes(size, "downloading")
		proxyReader := progressbar.NewReader(result.Body, bar)
		return &progressReaderCloser{Reader: &proxyReader, Closer: result.Body}, nil
	}
	return result.Body, nil
}
