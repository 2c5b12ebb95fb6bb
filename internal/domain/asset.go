package domain

import (
	"fmt"

	apperrors "github.com/zzenonn/framesync/internal/errors"
)

// assetIDGroups are the hex run lengths of a v4 UUID shaped id.
var assetIDGroups = [5]int{8, 4, 4, 4, 12}

// AssetID identifies one image in the catalog.
type AssetID string

// ContentHash is the lowercase hex MD5 of an asset's image bytes.
type ContentHash string

// AssetRecord pairs an asset id with the hash of the content stored for it.
type AssetRecord struct {
	ID   AssetID     `json:"id"`
	Hash ContentHash `json:"hash"`
}

// Manifest maps asset ids to the content hash currently served for them. The
// same shape describes a scan of local storage.
type Manifest map[AssetID]ContentHash

// SyncPlan lists the changes that reconcile local storage with a remote
// manifest. Deletes are applied before downloads.
type SyncPlan struct {
	Delete   []AssetRecord
	Download []AssetRecord
}

// ParseAssetID validates the structural shape of an asset id: lowercase v4
// UUID hex groups with each separating dash optional. The raw string is kept
// as is so storage paths round trip exactly.
func ParseAssetID(s string) (AssetID, error) {
	if !isAssetID(s) {
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidAssetID, s)
	}
	return AssetID(s), nil
}

// isAssetID walks the five hex groups, consuming at most one dash between
// adjacent groups. Group 3 must carry the version nibble and group 4 the
// variant nibble.
func isAssetID(s string) bool {
	rest := s
	for i, size := range assetIDGroups {
		if i > 0 && len(rest) > 0 && rest[0] == '-' {
			rest = rest[1:]
		}
		if len(rest) < size || !isLowerHex(rest[:size]) {
			return false
		}
		switch i {
		case 2:
			if rest[0] != '4' {
				return false
			}
		case 3:
			if rest[0] != '8' && rest[0] != '9' && rest[0] != 'a' && rest[0] != 'b' {
				return false
			}
		}
		rest = rest[size:]
	}
	return rest == ""
}

// ParseContentHash validates the structural shape of a content hash.
func ParseContentHash(s string) (ContentHash, error) {
	if len(s) != 32 || !isLowerHex(s) {
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidContentHash, s)
	}
	return ContentHash(s), nil
}

func isLowerHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
