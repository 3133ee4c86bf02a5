// Package assets loads, deduplicates and lifecycle-scopes external
// resources under a root directory. Entries are keyed by their
// store-relative path, typed at first load, and either retained across
// context transitions or swept automatically when the active context
// changes. A file watcher reloads entries in place when their backing
// file is modified.
package assets

import (
	"reflect"
)

// Loader loads and releases resources of one Go type. The requested
// result type selects the loader, so the supported set is closed at
// registry construction and an unsupported type is a normal failure
// rather than a silent fallthrough.
type Loader interface {
	Load(path string) (any, error)
	Release(value any)
}

// Registry maps result types to their loaders.
type Registry struct {
	loaders map[reflect.Type]Loader
}

// NewRegistry creates an empty loader registry.
func NewRegistry() *Registry {
	return &Registry{loaders: make(map[reflect.Type]Loader)}
}

// RegisterLoader registers the loader that produces values of type T.
// Registering the same type twice is a programmer error.
func RegisterLoader[T any](r *Registry, loader Loader) {
	typ := reflect.TypeFor[T]()
	if _, exists := r.loaders[typ]; exists {
		panic("assets: loader for " + typ.String() + " already registered")
	}
	r.loaders[typ] = loader
}

func (r *Registry) loaderFor(typ reflect.Type) Loader {
	return r.loaders[typ]
}
