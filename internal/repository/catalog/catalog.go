// Package catalog provides clients for the remote image catalog and a
// factory that picks the transport from the endpoint scheme.
package catalog

import (
	"context"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/zzenonn/framesync/internal/domain"
)

// Catalog is the read side of the remote image catalog.
type Catalog interface {
	// FetchManifest returns every asset the catalog currently serves.
	FetchManifest(ctx context.Context) (domain.Manifest, error)
	// FetchImage streams the image bytes for one asset.
	FetchImage(ctx context.Context, id domain.AssetID, quiet bool) (io.ReadCloser, error)
}

// parseManifest validates raw id to hash pairs. Entries that don't parse are
// logged and dropped rather than failing the whole fetch.
func parseManifest(raw map[string]string) domain.Manifest {
	manifest := make(domain.Manifest, len(raw))
	for rawID, rawHash := range raw {
		id, err := domain.ParseAssetID(rawID)
		if err != nil {
			log.Warnf("Ignoring manifest entry %q: %v", rawID, err)
			continue
		}
		hash, err := domain.ParseContentHash(rawHash)
		if err != nil {
			log.Warnf("Ignoring manifest entry %q: %v", rawID, err)
			continue
		}
		manifest[id] = hash
	}
	return manifest
}
