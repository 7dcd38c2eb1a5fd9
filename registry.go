package tagwire

import (
	"context"
	"fmt"
	"sync"
)

// codecKey combines schema, protocol and decode limits for codec cache
// lookup.
type codecKey struct {
	schema      *Schema
	contentType string
	maxDepth    int
	maxLength   int
}

// The type registry and the codec cache are the package's only mutable
// globals. Both are guarded by registryMu.
var (
	types      = make(map[string]*Schema)
	codecs     = make(map[codecKey]*StructCodec)
	registryMu sync.RWMutex
)

// Register binds a globally unique type name (e.g. "example.com/pkg/Struct")
// to s. Registering the same name again with a schema of equal fingerprint
// is a no-op; a different schema fails with ErrSchemaConflict.
func Register(name string, s *Schema) error {
	if s == nil {
		return errNilSchema(name)
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if existing, ok := types[name]; ok {
		if existing == s || existing.Fingerprint() == s.Fingerprint() {
			return nil
		}
		return newSchemaError(ErrSchemaConflict, s.name, "", 0, fmt.Errorf("type %q already registered", name))
	}
	types[name] = s
	emitTypeRegistered(context.Background(), name, s.name)
	return nil
}

// MustRegister is like Register but panics on error.
func MustRegister(name string, s *Schema) {
	if err := Register(name, s); err != nil {
		panic(err)
	}
}

// Lookup returns the schema registered under name.
func Lookup(name string) (*Schema, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	s, ok := types[name]
	return s, ok
}

// DecodeNamed decodes data as the type registered under name.
func DecodeNamed(name string, data []byte, opts ...Option) (*Record, error) {
	s, ok := Lookup(name)
	if !ok {
		return nil, newSchemaError(ErrUnknownType, "", name, 0, nil)
	}
	return Use(s, opts...).Decode(data)
}

// Use returns a cached codec for s or builds a new one.
// Codecs are cached by schema, protocol content type and decode limits.
func Use(s *Schema, opts ...Option) *StructCodec {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	key := codecKey{
		schema:      s,
		contentType: cfg.protocol.ContentType(),
		maxDepth:    cfg.maxDepth,
		maxLength:   cfg.maxLength,
	}

	// Fast path: read-lock cache check
	registryMu.RLock()
	if cached, ok := codecs[key]; ok {
		registryMu.RUnlock()
		return cached
	}
	registryMu.RUnlock()

	// Slow path: build and cache with write-lock
	registryMu.Lock()
	defer registryMu.Unlock()

	// Double-check pattern
	if cached, ok := codecs[key]; ok {
		return cached
	}

	c := NewCodec(s, opts...)
	codecs[key] = c
	return c
}

// Reset clears the type registry and the codec cache.
// This is primarily useful for test isolation.
func Reset() {
	registryMu.Lock()
	defer registryMu.Unlock()
	types = make(map[string]*Schema)
	codecs = make(map[codecKey]*StructCodec)
}

func errNilSchema(name string) error {
	return newSchemaError(ErrInvalidSchema, "", name, 0, fmt.Errorf("nil schema"))
}
