package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/zzenonn/framesync/internal/domain"
)

// HTTPCatalog talks to a catalog server over its REST endpoints: GET /assets
// for the manifest and GET /image/{id} for the bytes.
type HTTPCatalog struct {
	baseURL string
	client  *http.Client
}

// NewHTTPCatalog initializes a new HTTPCatalog for the given base URL.
func NewHTTPCatalog(baseURL string) *HTTPCatalog {
	return &HTTPCatalog{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// FetchManifest downloads and validates the catalog's asset listing.
func (c *HTTPCatalog) FetchManifest(ctx context.Context) (domain.Manifest, error) {
	url := c.baseURL + "/assets"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to request assets from %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("got HTTP %d when syncing assets from %s", resp.StatusCode, url)
	}

	var raw map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode assets JSON from %s: %w", url, err)
	}

	return parseManifest(raw), nil
}

// FetchImage downloads an image from the catalog
func (c *HTTPCatalog) FetchImage(ctx context.Context, id domain.AssetID, quiet bool) (io.ReadCloser, error) {
	url := c.baseURL + "/image/" + string(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", url, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("got HTTP %d when downloading %s", resp.StatusCode, url)
	}

	if !quiet {
		bar := progressbar.DefaultBytes(resp.ContentLength, "downloading")
		proxyReader := progressbar.NewReader(resp.Body, bar)
		return &progressReaderCloser{Reader: &proxyReader, Closer: resp.Body}, nil
	}
	return resp.Body, nil
}

type progressReaderCloser struct {
	io.Reader
	io.Closer
}
