package service

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/zzenonn/framesync/internal/domain"
	apperrors "github.com/zzenonn/framesync/internal/errors"
)

// freeUpSpace deletes local assets until the free-space floor is met,
// reporting how many were evicted. Assets absent from the protect set go
// first; if that isn't enough, a second pass culls protected assets too.
// Deletion order within a pass is undefined. Returns ErrSpaceExhausted when
// both passes run out of assets with the floor still unmet.
func (s *SyncService) freeUpSpace(protect domain.Manifest) (int, error) {
	if s.minFreeBytes <= 0 {
		return 0, nil
	}

	free, err := s.assets.FreeBytes()
	if err != nil {
		return 0, err
	}
	if free >= s.minFreeBytes {
		return 0, nil
	}

	evicted, enough, err := s.evictPass(protect)
	if err != nil || enough {
		return evicted, err
	}

	more, enough, err := s.evictPass(nil)
	evicted += more
	if err != nil {
		return evicted, err
	}
	if !enough {
		return evicted, fmt.Errorf("%w: need %d free bytes but couldn't find anything else to delete",
			apperrors.ErrSpaceExhausted, s.minFreeBytes)
	}

	return evicted, nil
}

// evictPass deletes scanned assets whose (id, hash) pair is not in the
// protect set, stopping as soon as the floor is met. A nil protect set
// protects nothing. Every deletion is followed by a fresh free-space reading
// because the previous one is stale the moment a file goes away.
func (s *SyncService) evictPass(protect domain.Manifest) (int, bool, error) {
	evicted := 0
	for rec := range s.assets.Scan(false) {
		if hash, ok := protect[rec.ID]; ok && hash == rec.Hash {
			continue
		}

		if err := s.assets.Remove(rec.ID, rec.Hash); err != nil {
			return evicted, false, err
		}
		evicted++

		free, err := s.assets.FreeBytes()
		if err != nil {
			return evicted, false, err
		}
		log.Infof("Deleted %s; need %d bytes free, %d now free", s.assets.Path(rec.ID, rec.Hash), s.minFreeBytes, free)

		if free >= s.minFreeBytes {
			return evicted, true, nil
		}
	}

	return evicted, false, nil
}
