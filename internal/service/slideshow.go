package service

import (
	"math/rand"

	"github.com/zzenonn/framesync/internal/domain"
	apperrors "github.com/zzenonn/framesync/internal/errors"
)

// Slideshow picks which locally stored image to show next.
type Slideshow struct {
	assets AssetRepository
	intn   func(n int) int
}

// NewSlideshow creates a new Slideshow instance
func NewSlideshow(assets AssetRepository) *Slideshow {
	return &Slideshow{
		assets: assets,
		intn:   rand.Intn,
	}
}

// Next returns the path of a randomly picked asset from a fresh scan of local
// storage, avoiding the previously shown path unless fewer than two assets
// are available. Returns ErrNoAssets when storage is empty.
func (s *Slideshow) Next(avoid string) (string, error) {
	var records []domain.AssetRecord
	for rec := range s.assets.Scan(false) {
		records = append(records, rec)
	}
	if len(records) == 0 {
		return "", apperrors.ErrNoAssets
	}

	path := ""
	for path == "" || (avoid != "" && len(records) > 1 && path == avoid) {
		rec := records[s.intn(len(records))]
		path = s.assets.Path(rec.ID, rec.Hash)
	}

	return path, nil
}
