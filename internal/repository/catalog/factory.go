package catalog

import (
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// EndpointType represents the transport serving the catalog
type EndpointType string

const (
	HTTPType EndpointType = "http"
	S3Type   EndpointType = "s3"
	GCSType  EndpointType = "gcs"
)

// Endpoint is a parsed catalog location
type Endpoint struct {
	Type EndpointType
	// URL is the full base URL for http(s) endpoints.
	URL string
	// Bucket and Prefix locate s3:// and gs:// catalogs.
	Bucket string
	Prefix string
}

// CatalogFactory creates catalog clients for parsed endpoints
type CatalogFactory struct {
	awsConfig aws.Config
	gcsClient *storage.Client
}

// NewCatalogFactory creates a new factory
func NewCatalogFactory(awsConfig aws.Config, gcsClient *storage.Client) *CatalogFactory {
	return &CatalogFactory{
		awsConfig: awsConfig,
		gcsClient: gcsClient,
	}
}

// CreateCatalog creates a catalog client based on the endpoint type
func (f *CatalogFactory) CreateCatalog(endpoint Endpoint) (Catalog, error) {
	switch endpoint.Type {
	case HTTPType:
		return NewHTTPCatalog(endpoint.URL), nil
	case S3Type:
		client := s3.NewFromConfig(f.awsConfig)
		cat := NewS3Catalog(client, endpoint.Bucket, endpoint.Prefix)
		return &cat, nil
	case GCSType:
		if f.gcsClient == nil {
			return nil, fmt.Errorf("GCS client not configured")
		}
		cat := NewGCSCatalog(f.gcsClient, endpoint.Bucket, endpoint.Prefix)
		return &cat, nil
	default:
		return nil, fmt.Errorf("unsupported endpoint type: %s", endpoint.Type)
	}
}

// ParseEndpoint parses a catalog endpoint string
// Formats: "https://host[/path]", "http://host[/path]", "s3://bucket[/prefix]", "gs://bucket[/prefix]"
func ParseEndpoint(endpoint string) (Endpoint, error) {
	endpoint = strings.TrimSpace(endpoint)

	parts := strings.SplitN(endpoint, "://", 2)
	if len(parts) != 2 {
		return Endpoint{}, fmt.Errorf("invalid endpoint format: %s", endpoint)
	}

	scheme := strings.ToLower(strings.TrimSpace(parts[0]))
	rest := strings.TrimSpace(parts[1])

	if rest == "" {
		return Endpoint{}, fmt.Errorf("endpoint host cannot be empty")
	}

	switch scheme {
	case "http", "https":
		return Endpoint{
			Type: HTTPType,
			URL:  strings.TrimSuffix(endpoint, "/"),
		}, nil
	case "s3", "gs":
		bucket, prefix, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return Endpoint{}, fmt.Errorf("bucket name cannot be empty")
		}

		endpointType := S3Type
		if scheme == "gs" {
			endpointType = GCSType
		}

		return Endpoint{
			Type:   endpointType,
			Bucket: bucket,
			Prefix: strings.Trim(prefix, "/"),
		}, nil
	default:
		return Endpoint{}, fmt.Errorf("unsupported scheme: %s", scheme)
	}
}
