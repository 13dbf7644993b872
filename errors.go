package msdftext

import "errors"

// Sentinel errors for the msdftext package.
var (
	// ErrNoAtlas is returned when a Text is constructed without a valid
	// atlas reference (neither a loaded font name nor an Atlas object).
	ErrNoAtlas = errors.New("msdftext: no atlas reference in options")

	// ErrNilCache is returned when a Text is constructed by font name
	// without a cache to resolve it against.
	ErrNilCache = errors.New("msdftext: font name given but cache is nil")
)
