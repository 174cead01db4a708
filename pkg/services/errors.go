package services

import (
	"errors"
	"fmt"
)

// ErrFolderNotFound is returned when a save names a folder that is not in the catalog
var ErrFolderNotFound = errors.New("folder not found")

// ErrInvalidImageSource is returned when a save payload does not carry a data-URI image
var ErrInvalidImageSource = errors.New("image source is not a base64 image data-URI")

// ErrMissingFileName is returned when a save payload has no file name to upload under
var ErrMissingFileName = errors.New("image file name is empty")

// ErrImageNotFound is returned when an image id is not in the catalog
var ErrImageNotFound = errors.New("image not found")

// RemoteFetchError reports a failed catalog read. The previously installed
// catalog, if any, stays in place.
type RemoteFetchError struct {
	Op  string
	Err error
}

func (e *RemoteFetchError) Error() string {
	return fmt.Sprintf("fetch catalog: %s: %v", e.Op, e.Err)
}

func (e *RemoteFetchError) Unwrap() error { return e.Err }

// SaveFailedError reports a save that did not complete. The modal stays open
// so the user can retry; a partially uploaded file is overwritten on retry.
type SaveFailedError struct {
	Step string
	Err  error
}

func (e *SaveFailedError) Error() string {
	return fmt.Sprintf("save image: %s: %v", e.Step, e.Err)
}

func (e *SaveFailedError) Unwrap() error { return e.Err }

// IsValidationError reports whether err is a local save validation failure
// raised before any network effect.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrFolderNotFound) ||
		errors.Is(err, ErrInvalidImageSource) ||
		errors.Is(err, ErrMissingFileName)
}
