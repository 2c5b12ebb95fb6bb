// Package service provides the core business logic for the framesync agent:
// planning and executing sync cycles against the remote catalog, evicting
// local assets to keep a free-space floor, and scheduling the slideshow.
//
// The storage scan is the single source of truth. Nothing here caches the
// local index between cycles; every sync and every slideshow pick re-reads
// the filesystem, so a restart or an externally modified asset root needs no
// special recovery path.
package service

import (
	"context"
	"fmt"
	"io"
	"iter"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/zzenonn/framesync/internal/display"
	"github.com/zzenonn/framesync/internal/domain"
)

type AssetRepository interface {
	EnsureRoot() error
	Scan(deleteOrphans bool) iter.Seq[domain.AssetRecord]
	Path(id domain.AssetID, hash domain.ContentHash) string
	Write(id domain.AssetID, hash domain.ContentHash, r io.Reader) (int64, error)
	Remove(id domain.AssetID, hash domain.ContentHash) error
	FreeBytes() (int64, error)
}

type CatalogRepository interface {
	FetchManifest(ctx context.Context) (domain.Manifest, error)
	FetchImage(ctx context.Context, id domain.AssetID, quiet bool) (io.ReadCloser, error)
}

// SyncOptions tunes one SyncService instance.
type SyncOptions struct {
	// DeleteOrphans removes files that don't match the asset naming scheme
	// while scanning during a sync.
	DeleteOrphans bool

	// MinFreeBytes is the free-space floor enforced before each download.
	// Zero or negative disables reclamation.
	MinFreeBytes int64

	// MaxDownloadBps caps download throughput in bytes per second.
	// Zero means unlimited.
	MaxDownloadBps int

	// Quiet suppresses download progress bars.
	Quiet bool
}

// SyncReport summarizes what one sync cycle did.
type SyncReport struct {
	Deleted      int
	Downloaded   int
	Failed       int
	Evicted      int
	BytesWritten int64
}

// SyncService reconciles local storage with the remote catalog.
type SyncService struct {
	assets  AssetRepository
	catalog CatalogRepository
	display display.Display

	deleteOrphans bool
	minFreeBytes  int64
	quiet         bool
	limiter       *rate.Limiter
}

// NewSyncService creates a new SyncService instance
func NewSyncService(assets AssetRepository, catalog CatalogRepository, disp display.Display, opts SyncOptions) *SyncService {
	s := &SyncService{
		assets:        assets,
		catalog:       catalog,
		display:       disp,
		deleteOrphans: opts.DeleteOrphans,
		minFreeBytes:  opts.MinFreeBytes,
		quiet:         opts.Quiet,
	}

	if opts.MaxDownloadBps > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opts.MaxDownloadBps), opts.MaxDownloadBps)
	}

	return s
}

// Sync runs one full cycle: fetch the remote manifest, scan local storage,
// delete stale assets, then download missing ones with a space-reclamation
// pass before each download. Download failures are isolated per asset; a
// manifest fetch failure, a delete failure or an exhausted reclamation abort
// the cycle. Aborted or skipped work is picked up again next cycle because
// the plan is recomputed from a fresh scan every time.
func (s *SyncService) Sync(ctx context.Context) (SyncReport, error) {
	var report SyncReport

	s.display.SetStatus("Syncing images...")

	remote, err := s.catalog.FetchManifest(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to request assets JSON: %w", err)
	}
	log.Infof("Server has %d assets", len(remote))

	local := domain.Manifest{}
	for rec := range s.assets.Scan(s.deleteOrphans) {
		local[rec.ID] = rec.Hash
	}
	log.Infof("Local storage has %d assets", len(local))

	plan := BuildSyncPlan(local, remote)

	// stale assets go first so at most one file per id ever exists on disk
	for _, rec := range plan.Delete {
		if err := s.assets.Remove(rec.ID, rec.Hash); err != nil {
			return report, fmt.Errorf("failed to delete stale asset %s: %w", rec.ID, err)
		}
		report.Deleted++
	}

	log.Infof("%d assets to download", len(plan.Download))

	for _, rec := range plan.Download {
		position := report.Downloaded + 1
		log.Infof("Downloading asset %s (%d of %d)", rec.ID, position, len(plan.Download))
		s.display.SetStatus(fmt.Sprintf("Syncing images (%d/%d)", position, len(plan.Download)))

		evicted, err := s.freeUpSpace(remote)
		report.Evicted += evicted
		if err != nil {
			return report, err
		}

		written, err := s.downloadAsset(ctx, rec)
		if err != nil {
			log.Warnf("Failed to download asset %s with hash %s: %v", rec.ID, rec.Hash, err)
			report.Failed++
			continue
		}
		report.Downloaded++
		report.BytesWritten += written
	}

	log.Infof("Downloaded %d of %d assets, sync done", report.Downloaded, len(plan.Download))
	s.display.ClearStatus()

	return report, nil
}

func (s *SyncService) downloadAsset(ctx context.Context, rec domain.AssetRecord) (int64, error) {
	body, err := s.catalog.FetchImage(ctx, rec.ID, s.quiet)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	var r io.Reader = body
	if s.limiter != nil {
		r = &rateLimitedReader{ctx: ctx, r: body, limiter: s.limiter}
	}

	written, err := s.assets.Write(rec.ID, rec.Hash, r)
	if err != nil {
		return 0, err
	}

	log.Debugf("Downloaded %s (%d bytes)", s.assets.Path(rec.ID, rec.Hash), written)
	return written, nil
}
