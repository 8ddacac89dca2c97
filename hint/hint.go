// Package hint resolves element types of list parameters from
// "@param Type[] $name" documentation tags.
package hint

import (
	"reflect"
	"regexp"
	"strings"
	"sync"
)

var paramTag = regexp.MustCompile(`@param\s+(\\?[a-zA-Z][a-zA-Z0-9_.\\]*)((?:\[\])+)\s+\$([_a-zA-Z][_a-zA-Z0-9]*)`)

// ArrayElementTypeName returns the element type named by the first
// "@param Type[] $param" tag in doc. Scalar tags are ignored.
func ArrayElementTypeName(doc, param string) (string, bool) {
	if doc == "" || param == "" {
		return "", false
	}
	for _, m := range paramTag.FindAllStringSubmatch(doc, -1) {
		if m[3] == param {
			return m[1], true
		}
	}
	return "", false
}

// Registry maps type names used in doc tags to Go types.
type Registry struct {
	mu    sync.RWMutex
	types map[string]reflect.Type
}

func NewRegistry() *Registry {
	return &Registry{types: map[string]reflect.Type{}}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry { return defaultRegistry }

// Register stores t under name. Registering the same name twice replaces the
// previous type.
func (r *Registry) Register(name string, t reflect.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[normalize(name)] = t
}

// Register adds T to r under its bare name, its package qualified name and
// any extra names.
func Register[T any](r *Registry, names ...string) {
	t := reflect.TypeFor[T]()
	base := t
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	if base.Name() != "" {
		r.Register(base.Name(), t)
		r.Register(base.String(), t)
		if base.PkgPath() != "" {
			r.Register(base.PkgPath()+"."+base.Name(), t)
		}
	}
	for _, name := range names {
		r.Register(name, t)
	}
}

// Lookup finds the type registered for name. Namespace separators ("\" or
// ".") are tolerated; when the qualified name is unknown the last segment is
// tried.
func (r *Registry) Lookup(name string) (reflect.Type, bool) {
	name = normalize(name)
	if name == "" {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.types[name]; ok {
		return t, true
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		t, ok := r.types[name[i+1:]]
		return t, ok
	}
	return nil, false
}

func normalize(name string) string {
	name = strings.TrimPrefix(strings.TrimSpace(name), `\`)
	return strings.ReplaceAll(name, `\`, ".")
}

// Resolver resolves list element types from documentation.
type Resolver struct {
	registry *Registry
}

// NewResolver returns a resolver backed by registry, or by Default when
// registry is nil.
func NewResolver(registry *Registry) *Resolver {
	if registry == nil {
		registry = Default()
	}
	return &Resolver{registry: registry}
}

// ResolveArrayElementType returns the registered type named by the doc tag of
// param.
func (r *Resolver) ResolveArrayElementType(doc, param string) (reflect.Type, bool) {
	name, ok := ArrayElementTypeName(doc, param)
	if !ok {
		return nil, false
	}
	return r.registry.Lookup(name)
}
