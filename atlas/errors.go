package atlas

import (
	"errors"
	"fmt"
)

// Sentinel errors for the atlas package.
var (
	// ErrEmptyDescriptor is returned when the metrics document is empty.
	ErrEmptyDescriptor = errors.New("atlas: empty descriptor")

	// ErrMissingCommonBlock is returned when a descriptor lacks the
	// common block (scaleW/scaleH), without which UV rects cannot be
	// computed.
	ErrMissingCommonBlock = errors.New("atlas: descriptor missing common block")
)

// NotLoadedError is returned when an atlas is referenced by a name
// that has not completed loading. The caller must await Load first.
type NotLoadedError struct {
	Name string
}

func (e *NotLoadedError) Error() string {
	return fmt.Sprintf("atlas: %q is not loaded", e.Name)
}

// LoadError wraps an I/O, decode or parse failure while loading an
// atlas pair. It is returned from Load once per failed attempt; there
// is no automatic retry.
type LoadError struct {
	Name string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("atlas: load %q: %v", e.Name, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
