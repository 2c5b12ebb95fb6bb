package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"

	"github.com/zzenonn/framesync/internal/domain"
)

// GCSCatalog reads the catalog out of a Google Cloud Storage bucket, using
// the same object layout as the S3 variant.
type GCSCatalog struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSCatalog initializes a new GCSCatalog.
func NewGCSCatalog(client *storage.Client, bucket, prefix string) GCSCatalog {
	return GCSCatalog{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

func (c *GCSCatalog) objectKey(name string) string {
	if c.prefix == "" {
		return name
	}
	return c.prefix + "/" + name
}

// FetchManifest downloads and validates the manifest object.
func (c *GCSCatalog) FetchManifest(ctx context.Context) (domain.Manifest, error) {
	key := c.objectKey("manifest.json")
	reader, err := c.client.Bucket(c.bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch gs://%s/%s: %w", c.bucket, key, err)
	}
	defer reader.Close()

	var raw map[string]string
	if err := json.NewDecoder(reader).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode manifest gs://%s/%s: %w", c.bucket, key, err)
	}

	return parseManifest(raw), nil
}

// progressReader wraps a ReadCloser with a progress bar
type progressReader struct {
	r   io.ReadCloser
	bar *progressbar.ProgressBar
}

func (pr *progressReader) Read(p []byte) (n int, err error) {
	n, err = pr.r.Read(p)
	if pr.bar != nil {
		pr.bar.Add(n)
	}
	return n, err
}

func (pr *progressReader) Close() error {
	return pr.r.Close()
}

// FetchImage downloads an image object from GCS
func (c *GCSCatalog) FetchImage(ctx context.Context, id domain.AssetID, quiet bool) (io.ReadCloser, error) {
	obj := c.client.Bucket(c.bucket).Object(c.objectKey(string(id)))

	if !quiet {
		log.Debugf("Downloading from GCS: gs://%s/%s", c.bucket, c.objectKey(string(id)))
	}

	reader, err := obj.NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to download from GCS: %w", err)
	}

	if quiet {
		return reader, nil
	}

	// Get object attributes for the progress bar
	attrs, err := obj.Attrs(ctx)
	var bar *progressbar.ProgressBar
	if err == nil {
		bar = progressbar.DefaultBytes(attrs.Size, "downloading")
	}

	return &progressReader{r: reader, bar: bar}, nil
}
