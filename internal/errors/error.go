package errors

import (
	"errors"
	"fmt"
)

var (
	ErrSpaceExhausted     = errors.New("unable to free enough disk space")
	ErrNotConnected       = errors.New("network connection could not be established")
	ErrNoAssets           = errors.New("no assets available in local storage")
	ErrInvalidAssetID     = errors.New("invalid asset id")
	ErrInvalidContentHash = errors.New("invalid content hash")
)

// FetchingResourceError generates a formatted error for failed fetching of any resource by its type.
func FetchingResourceError(resource string) error {
	return fmt.Errorf("failed to fetch %s by id", resource)
}

func ConfigNotSetError(config string) error {
	return fmt.Errorf("The %s environment variable must be set", config)
}
