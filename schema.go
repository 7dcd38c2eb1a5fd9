package tagwire

import (
	"encoding/binary"
	"fmt"
	"hash"
	"sort"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// FieldDescriptor declares one field of a schema.
type FieldDescriptor struct {
	Tag          int16
	Name         string
	Type         Type
	Requiredness Requiredness
}

// Field is shorthand for building a FieldDescriptor.
func Field(tag int16, name string, t Type, req Requiredness) FieldDescriptor {
	return FieldDescriptor{Tag: tag, Name: name, Type: t, Requiredness: req}
}

// Schema is the immutable tag table of one struct type.
// It is safe for concurrent use.
type Schema struct {
	name   string
	fields []FieldDescriptor // ascending by tag
	byTag  map[int16]int
	byName map[string]int

	defaultOnce   sync.Once
	defaultRecord *Record

	fingerprintOnce sync.Once
	fingerprint     [blake2b.Size256]byte
}

// NewSchema builds a schema from its descriptors. Descriptors may be given
// in any order; they are stored ascending by tag.
func NewSchema(name string, fields ...FieldDescriptor) (*Schema, error) {
	s := &Schema{
		name:   name,
		fields: make([]FieldDescriptor, len(fields)),
		byTag:  make(map[int16]int, len(fields)),
		byName: make(map[string]int, len(fields)),
	}
	copy(s.fields, fields)
	sort.SliceStable(s.fields, func(i, j int) bool { return s.fields[i].Tag < s.fields[j].Tag })

	for i, fd := range s.fields {
		if fd.Tag <= 0 {
			return nil, newSchemaError(ErrInvalidSchema, name, fd.Name, fd.Tag, fmt.Errorf("tag must be positive"))
		}
		if fd.Name == "" {
			return nil, newSchemaError(ErrInvalidSchema, name, "", fd.Tag, fmt.Errorf("empty field name"))
		}
		if err := fd.Type.validate(); err != nil {
			return nil, newSchemaError(ErrInvalidSchema, name, fd.Name, fd.Tag, err)
		}
		if _, dup := s.byTag[fd.Tag]; dup {
			return nil, newSchemaError(ErrDuplicateField, name, fd.Name, fd.Tag, nil)
		}
		if _, dup := s.byName[fd.Name]; dup {
			return nil, newSchemaError(ErrDuplicateField, name, fd.Name, 0, nil)
		}
		s.byTag[fd.Tag] = i
		s.byName[fd.Name] = i
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error.
// Intended for package-level schema variables.
func MustSchema(name string, fields ...FieldDescriptor) *Schema {
	s, err := NewSchema(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the struct name the schema was declared with.
func (s *Schema) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// Len returns the number of declared fields.
func (s *Schema) Len() int {
	return len(s.fields)
}

// Describe returns the descriptor for tag.
func (s *Schema) Describe(tag int16) (FieldDescriptor, error) {
	i, ok := s.byTag[tag]
	if !ok {
		return FieldDescriptor{}, newSchemaError(ErrUnknownField, s.name, "", tag, nil)
	}
	return s.fields[i], nil
}

// DescribeByName returns the descriptor for name.
func (s *Schema) DescribeByName(name string) (FieldDescriptor, error) {
	i, ok := s.byName[name]
	if !ok {
		return FieldDescriptor{}, newSchemaError(ErrUnknownField, s.name, name, 0, nil)
	}
	return s.fields[i], nil
}

// Fields returns the descriptors in ascending tag order.
// The returned slice is a copy and may be modified by the caller.
func (s *Schema) Fields() []FieldDescriptor {
	out := make([]FieldDescriptor, len(s.fields))
	copy(out, s.fields)
	return out
}

// Default returns the shared all-absent record of this schema.
// It is built on first use and never mutated.
func (s *Schema) Default() *Record {
	s.defaultOnce.Do(func() {
		s.defaultRecord = &Record{schema: s, slots: make([]any, len(s.fields))}
	})
	return s.defaultRecord
}

// Fingerprint returns a BLAKE2b-256 digest of the descriptor set.
// Two schemas with the same name, tags, names, types and requiredness
// have the same fingerprint.
func (s *Schema) Fingerprint() [blake2b.Size256]byte {
	s.fingerprintOnce.Do(func() {
		h, err := blake2b.New256(nil)
		if err != nil {
			panic(err) // only fails for oversized keys
		}
		s.writeFingerprint(h)
		copy(s.fingerprint[:], h.Sum(nil))
	})
	return s.fingerprint
}

func (s *Schema) writeFingerprint(h hash.Hash) {
	writeFingerprintString(h, s.name)
	for _, fd := range s.fields {
		var tag [2]byte
		binary.BigEndian.PutUint16(tag[:], uint16(fd.Tag))
		h.Write(tag[:])
		writeFingerprintString(h, fd.Name)
		h.Write([]byte{byte(fd.Requiredness)})
		writeFingerprintType(h, fd.Type)
	}
}

func writeFingerprintType(h hash.Hash, t Type) {
	flag := byte(0)
	if t.Binary {
		flag = 1
	}
	h.Write([]byte{byte(t.Kind), flag})
	switch t.Kind {
	case KindStruct:
		sum := t.Schema.Fingerprint()
		h.Write(sum[:])
	case KindList, KindSet:
		writeFingerprintType(h, *t.Elem)
	case KindMap:
		writeFingerprintType(h, *t.Key)
		writeFingerprintType(h, *t.Elem)
	}
}

func writeFingerprintString(h hash.Hash, v string) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(v)))
	h.Write(n[:])
	h.Write([]byte(v))
}

// index returns the slot index of tag.
func (s *Schema) index(tag int16) (int, bool) {
	i, ok := s.byTag[tag]
	return i, ok
}
