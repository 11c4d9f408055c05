package files

import "errors"

// Validation failures are field-specific; everything else deliberately
// conflates causes (absence vs. denied visibility) to avoid existence
// disclosure.
var (
	// ErrMissingName is returned when the entity name is empty.
	ErrMissingName = errors.New("files: missing name")
	// ErrMissingType is returned when the type is absent or not one of
	// folder, file, image.
	ErrMissingType = errors.New("files: missing type")
	// ErrMissingData is returned when a non-folder upload has no payload
	// or the payload is not valid base64.
	ErrMissingData = errors.New("files: missing data")
	// ErrParentNotFound is returned when the parent id references no entity.
	ErrParentNotFound = errors.New("files: parent not found")
	// ErrParentNotFolder is returned when the parent entity is not a folder.
	ErrParentNotFolder = errors.New("files: parent is not a folder")
	// ErrNotFound covers both absent entities and denied visibility.
	ErrNotFound = errors.New("files: not found")
	// ErrNotAFile is returned when content is requested on a folder.
	ErrNotAFile = errors.New("files: a folder doesn't have content")
	// ErrInvalidSize is returned for an unsupported thumbnail size.
	ErrInvalidSize = errors.New("files: invalid size")
)
