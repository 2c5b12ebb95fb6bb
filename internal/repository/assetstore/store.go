// Package assetstore persists slideshow images on local storage, one image
// per asset id:
//
//	{root}/{asset id}/{content hash}.{ext}
//
// The directory tree is the only record of what is stored. Nothing is cached
// between scans, so files added or removed behind the agent's back are
// picked up on the next pass instead of corrupting state.
package assetstore

import (
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/zzenonn/framesync/internal/domain"
)

// Store manages content addressed image files under a single root directory.
type Store struct {
	root string
	ext  string

	// statfs and syncFs are swapped out in tests.
	statfs func(path string, stat *unix.Statfs_t) error
	syncFs func()
}

// NewStore creates a store rooted at root. ext is the image file extension
// without the leading dot.
func NewStore(root, ext string) *Store {
	return &Store{
		root:   root,
		ext:    strings.TrimPrefix(ext, "."),
		statfs: unix.Statfs,
		syncFs: func() { unix.Sync() },
	}
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// EnsureRoot creates the root directory if it doesn't exist yet.
func (s *Store) EnsureRoot() error {
	info, err := os.Stat(s.root)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("path %s exists but isn't a directory", s.root)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", s.root, err)
	}
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", s.root, err)
	}
	s.syncFs()
	return nil
}

// Path returns where the image for the given asset lives. The file doesn't
// necessarily exist.
func (s *Store) Path(id domain.AssetID, hash domain.ContentHash) string {
	return filepath.Join(s.root, string(id), string(hash)+"."+s.ext)
}

// Scan walks the store lazily, yielding a record for every valid asset file.
// Entries that don't fit the naming scheme are logged and skipped, or
// unlinked when deleteOrphans is set. Directories whose names aren't asset
// ids are never deleted.
func (s *Store) Scan(deleteOrphans bool) iter.Seq[domain.AssetRecord] {
	return func(yield func(domain.AssetRecord) bool) {
		entries, err := os.ReadDir(s.root)
		if err != nil {
			if !os.IsNotExist(err) {
				log.Warnf("Failed to read asset root %s: %v", s.root, err)
			}
			return
		}

		for _, entry := range entries {
			assetDir := filepath.Join(s.root, entry.Name())

			id, err := domain.ParseAssetID(entry.Name())
			if err != nil {
				log.Debugf("Ignoring %s because it's not a UUID", assetDir)
				continue
			}

			if !entry.IsDir() {
				log.Debugf("Ignoring %s because it's not a directory", assetDir)
				if deleteOrphans {
					log.Infof("Deleting %s", assetDir)
					if err := os.Remove(assetDir); err != nil {
						log.Warnf("Failed to delete %s: %v", assetDir, err)
					}
				}
				continue
			}

			files, err := os.ReadDir(assetDir)
			if err != nil {
				log.Warnf("Failed to read asset directory %s: %v", assetDir, err)
				continue
			}

			for _, file := range files {
				assetPath := filepath.Join(assetDir, file.Name())

				hash, ok := s.parseAssetFile(file.Name())
				if !ok {
					log.Debugf("Ignoring %s because it doesn't match the filename format", assetPath)
					if deleteOrphans {
						log.Infof("Deleting %s", assetPath)
						if err := os.Remove(assetPath); err != nil {
							log.Warnf("Failed to delete %s: %v", assetPath, err)
						}
					}
					continue
				}

				if !yield(domain.AssetRecord{ID: id, Hash: hash}) {
					return
				}
			}
		}
	}
}

// parseAssetFile extracts the content hash from a stored filename.
func (s *Store) parseAssetFile(name string) (domain.ContentHash, bool) {
	base, found := strings.CutSuffix(name, "."+s.ext)
	if !found {
		return "", false
	}
	hash, err := domain.ParseContentHash(base)
	if err != nil {
		return "", false
	}
	return hash, true
}

// Index walks the store and returns the full id to hash mapping.
func (s *Store) Index() domain.Manifest {
	index := make(domain.Manifest)
	for record := range s.Scan(false) {
		index[record.ID] = record.Hash
	}
	return index
}

// Write streams an image into the store. A file that fails to write in full
// is removed again so a later scan can't mistake it for valid content.
func (s *Store) Write(id domain.AssetID, hash domain.ContentHash, r io.Reader) (int64, error) {
	dir := filepath.Join(s.root, string(id))
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("failed to create asset directory %s: %w", dir, err)
		}
		s.syncFs()
	}

	path := s.Path(id, hash)
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}

	written, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		os.Remove(path)
		return written, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return written, fmt.Errorf("failed to write %s: %w", path, err)
	}

	return written, nil
}

// Remove unlinks an asset's image and flushes the filesystem, so free space
// numbers are current by the time the next probe runs.
func (s *Store) Remove(id domain.AssetID, hash domain.ContentHash) error {
	path := s.Path(id, hash)
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	s.syncFs()
	log.Debugf("Deleted %s", path)
	return nil
}

// FreeBytes reports how much space is left on the filesystem holding the
// store.
func (s *Store) FreeBytes() (int64, error) {
	var stat unix.Statfs_t
	if err := s.statfs(s.root, &stat); err != nil {
		return 0, fmt.Errorf("failed to stat filesystem at %s: %w", s.root, err)
	}
	return int64(stat.Bavail) * stat.Bsize, nil
}
