package confloader

import (
	"errors"

	"github.com/knadh/koanf/maps"
)

// ErrReadBytesNotSupported is returned when ReadBytes is called on
// the map provider; koanf falls back to Read for map-backed sources.
var ErrReadBytesNotSupported = errors.New("confloader: ReadBytes not supported by map provider")

// mapProvider adapts a flat, dot-delimited key map ("server.port") to
// koanf's provider interface.
type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, ErrReadBytesNotSupported
}

func (m mapProvider) Read() (map[string]any, error) {
	// Unflatten so dotted keys merge into the nested config tree the
	// same way file and env keys do.
	return maps.Unflatten(m, "."), nil
}
