package tagwire

import (
	"iter"
)

// MapEntry is one key/value pair of a map-typed slot.
// Maps are ordered slices so that encoding stays deterministic.
type MapEntry struct {
	Key   any
	Value any
}

// Record is an immutable value of a schema: one slot per descriptor,
// each either absent or holding a value of the declared type.
//
// Go representations per kind: bool, int8, int16, int32, int64, float64
// (double), float32 (float), string, []byte (binary), *Record (struct),
// []any (list, set) and []MapEntry (map).
//
// Records are created by Builder.Build or by decoding and are safe to
// share between goroutines.
type Record struct {
	schema *Schema
	slots  []any // nil means absent
}

// Schema returns the schema the record was built against.
func (r *Record) Schema() *Schema {
	return r.schema
}

// Get returns the value stored under name.
// The second result is false when the slot is absent or name is unknown.
func (r *Record) Get(name string) (any, bool) {
	i, ok := r.schema.byName[name]
	if !ok || r.slots[i] == nil {
		return nil, false
	}
	return cloneValue(r.slots[i]), true
}

// GetTag is like Get but addresses the slot by tag.
func (r *Record) GetTag(tag int16) (any, bool) {
	i, ok := r.schema.index(tag)
	if !ok || r.slots[i] == nil {
		return nil, false
	}
	return cloneValue(r.slots[i]), true
}

// Has reports whether the slot named name is present.
func (r *Record) Has(name string) bool {
	i, ok := r.schema.byName[name]
	return ok && r.slots[i] != nil
}

// IsEmpty reports whether every slot is absent.
func (r *Record) IsEmpty() bool {
	for _, v := range r.slots {
		if v != nil {
			return false
		}
	}
	return true
}

// All iterates the present slots in ascending tag order.
func (r *Record) All() iter.Seq2[FieldDescriptor, any] {
	return func(yield func(FieldDescriptor, any) bool) {
		for i, v := range r.slots {
			if v == nil {
				continue
			}
			if !yield(r.schema.fields[i], cloneValue(v)) {
				return
			}
		}
	}
}

// ToBuilder returns a new builder staged with a copy of r's slots.
func (r *Record) ToBuilder() *Builder {
	b := NewBuilder(r.schema)
	for i, v := range r.slots {
		b.slots[i] = cloneValue(v)
	}
	return b
}

// Validate reports the first Required slot that is absent, descending
// into present nested structs. The codec itself never calls Validate;
// absent required fields are legal on the wire.
func (r *Record) Validate() error {
	return r.validate("")
}

func (r *Record) validate(prefix string) error {
	for i, fd := range r.schema.fields {
		v := r.slots[i]
		if v == nil {
			if fd.Requiredness == Required {
				return newSchemaError(ErrMissingRequired, r.schema.name, prefix+fd.Name, fd.Tag, nil)
			}
			continue
		}
		if nested, ok := v.(*Record); ok && nested != nil {
			if err := nested.validate(prefix + fd.Name + "."); err != nil {
				return err
			}
		}
	}
	return nil
}

// Value returns the slot named name as T.
// It reports false when the slot is absent or holds a different type.
func Value[T any](r *Record, name string) (T, bool) {
	var zero T
	v, ok := r.Get(name)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// Builder stages slot assignments for a new Record.
// A builder is consumed by Build and cannot be reused.
type Builder struct {
	schema   *Schema
	slots    []any
	err      error
	consumed bool
}

// NewBuilder returns an empty builder for s.
func NewBuilder(s *Schema) *Builder {
	return &Builder{
		schema: s,
		slots:  make([]any, len(s.fields)),
	}
}

// Set stages v under name. A nil v clears the slot.
// Errors are deferred to Build so calls can be chained.
func (b *Builder) Set(name string, v any) *Builder {
	if b.err != nil {
		return b
	}
	i, ok := b.schema.byName[name]
	if !ok {
		b.err = newSchemaError(ErrUnknownField, b.schema.name, name, 0, nil)
		return b
	}
	return b.stage(i, v)
}

// SetTag is like Set but addresses the slot by tag.
func (b *Builder) SetTag(tag int16, v any) *Builder {
	if b.err != nil {
		return b
	}
	i, ok := b.schema.index(tag)
	if !ok {
		b.err = newSchemaError(ErrUnknownField, b.schema.name, "", tag, nil)
		return b
	}
	return b.stage(i, v)
}

// Clear marks the slot named name absent.
func (b *Builder) Clear(name string) *Builder {
	return b.Set(name, nil)
}

func (b *Builder) stage(i int, v any) *Builder {
	if b.consumed {
		b.err = ErrBuilderConsumed
		return b
	}
	if v == nil {
		b.slots[i] = nil
		return b
	}
	fd := b.schema.fields[i]
	if err := conform(fd.Type, v, fd.Name); err != nil {
		b.err = err
		return b
	}
	b.slots[i] = cloneValue(v)
	return b
}

// Build returns the staged record. The builder cannot be used afterwards.
func (b *Builder) Build() (*Record, error) {
	if b.consumed {
		return nil, ErrBuilderConsumed
	}
	b.consumed = true
	if b.err != nil {
		return nil, b.err
	}
	r := &Record{schema: b.schema, slots: b.slots}
	b.slots = nil
	return r, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Record {
	r, err := b.Build()
	if err != nil {
		panic(err)
	}
	return r
}

// conform checks that v is the Go representation of t.
func conform(t Type, v any, path string) error {
	ok := true
	switch t.Kind {
	case KindBool:
		_, ok = v.(bool)
	case KindByte:
		_, ok = v.(int8)
	case KindI16:
		_, ok = v.(int16)
	case KindI32:
		_, ok = v.(int32)
	case KindI64:
		_, ok = v.(int64)
	case KindDouble:
		_, ok = v.(float64)
	case KindFloat:
		_, ok = v.(float32)
	case KindString:
		if t.Binary {
			_, ok = v.([]byte)
		} else {
			_, ok = v.(string)
		}
	case KindStruct:
		rec, isRec := v.(*Record)
		ok = isRec && rec != nil && rec.schema == t.Schema
	case KindList, KindSet:
		items, isList := v.([]any)
		if !isList {
			return newContractError(path, t, v)
		}
		for _, item := range items {
			if err := conform(*t.Elem, item, path+"[]"); err != nil {
				return err
			}
		}
	case KindMap:
		entries, isMap := v.([]MapEntry)
		if !isMap {
			return newContractError(path, t, v)
		}
		for _, e := range entries {
			if err := conform(*t.Key, e.Key, path+"{key}"); err != nil {
				return err
			}
			if err := conform(*t.Elem, e.Value, path+"{value}"); err != nil {
				return err
			}
		}
	default:
		ok = false
	}
	if !ok {
		return newContractError(path, t, v)
	}
	return nil
}

// cloneValue copies the mutable parts of a slot value.
// Nested records are immutable and shared.
func cloneValue(v any) any {
	switch x := v.(type) {
	case []byte:
		return append([]byte{}, x...)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = cloneValue(item)
		}
		return out
	case []MapEntry:
		out := make([]MapEntry, len(x))
		for i, e := range x {
			out[i] = MapEntry{Key: cloneValue(e.Key), Value: cloneValue(e.Value)}
		}
		return out
	default:
		return v
	}
}
