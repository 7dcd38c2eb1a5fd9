package tagwire

import (
	"fmt"
)

// decoder reads one struct payload against a schema.
type decoder struct {
	r         Reader
	maxDepth  int
	maxLength int
	skipped   int // fields consumed without staging, all levels
}

// readStruct runs the struct state machine:
// AwaitStructBegin, then ReadFieldHeader until FieldStop, dispatching known
// fields and skipping the rest, then AwaitStructEnd.
func (d *decoder) readStruct(s *Schema, depth int) (*Record, error) {
	if depth > d.maxDepth {
		return nil, newDecodeError(ErrLimitExceeded, d.r.Offset(), fmt.Errorf("struct nesting deeper than %d", d.maxDepth))
	}
	if err := d.r.ReadStructBegin(); err != nil {
		return nil, err
	}
	slots := make([]any, len(s.fields))
	for {
		kind, id, err := d.r.ReadFieldBegin()
		if err != nil {
			return nil, err
		}
		if kind == KindStop {
			break
		}
		i, known := s.index(id)
		if known && s.fields[i].Type.Kind == kind {
			v, ok, err := d.readValue(s.fields[i].Type, depth)
			if err != nil {
				return nil, err
			}
			if ok {
				slots[i] = v
			} else {
				d.skipped++
			}
		} else {
			if err := skipValue(d.r, kind, d.maxDepth-depth+1); err != nil {
				return nil, err
			}
			d.skipped++
		}
		if err := d.r.ReadFieldEnd(); err != nil {
			return nil, err
		}
	}
	if err := d.r.ReadStructEnd(); err != nil {
		return nil, err
	}
	return &Record{schema: s, slots: slots}, nil
}

// readValue decodes one value of t. The header kind has already been
// matched against t.Kind. ok is false when a container's element kinds
// disagree with t; the value is then consumed but must not be staged.
func (d *decoder) readValue(t Type, depth int) (v any, ok bool, err error) {
	switch t.Kind {
	case KindBool:
		v, err = d.r.ReadBool()
	case KindByte:
		v, err = d.r.ReadI8()
	case KindI16:
		v, err = d.r.ReadI16()
	case KindI32:
		v, err = d.r.ReadI32()
	case KindI64:
		v, err = d.r.ReadI64()
	case KindDouble:
		v, err = d.r.ReadDouble()
	case KindFloat:
		v, err = d.r.ReadFloat()
	case KindString:
		start := d.r.Offset()
		if t.Binary {
			var b []byte
			b, err = d.r.ReadBinary()
			if err == nil && len(b) > d.maxLength {
				err = d.lengthError(start, len(b))
			}
			v = b
		} else {
			var s string
			s, err = d.r.ReadString()
			if err == nil && len(s) > d.maxLength {
				err = d.lengthError(start, len(s))
			}
			v = s
		}
	case KindStruct:
		v, err = d.readStruct(t.Schema, depth+1)
	case KindList, KindSet:
		return d.readList(t, depth+1)
	case KindMap:
		return d.readMap(t, depth+1)
	default:
		return nil, false, newDecodeError(ErrUnsupportedEncoding, d.r.Offset(), fmt.Errorf("type id %d", int8(t.Kind)))
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (d *decoder) readList(t Type, depth int) (any, bool, error) {
	if depth > d.maxDepth {
		return nil, false, newDecodeError(ErrLimitExceeded, d.r.Offset(), fmt.Errorf("container nesting deeper than %d", d.maxDepth))
	}
	start := d.r.Offset()
	var (
		elem TypeKind
		size int
		err  error
	)
	if t.Kind == KindSet {
		elem, size, err = d.r.ReadSetBegin()
	} else {
		elem, size, err = d.r.ReadListBegin()
	}
	if err != nil {
		return nil, false, err
	}
	if size > d.maxLength {
		return nil, false, d.lengthError(start, size)
	}

	ok := size == 0 || elem == t.Elem.Kind
	items := make([]any, 0, size)
	for i := 0; i < size; i++ {
		if !ok {
			if err := skipValue(d.r, elem, d.maxDepth-depth+1); err != nil {
				return nil, false, err
			}
			continue
		}
		item, itemOK, err := d.readValue(*t.Elem, depth)
		if err != nil {
			return nil, false, err
		}
		ok = itemOK
		items = append(items, item)
	}

	if t.Kind == KindSet {
		err = d.r.ReadSetEnd()
	} else {
		err = d.r.ReadListEnd()
	}
	if err != nil || !ok {
		return nil, false, err
	}
	return items, true, nil
}

func (d *decoder) readMap(t Type, depth int) (any, bool, error) {
	if depth > d.maxDepth {
		return nil, false, newDecodeError(ErrLimitExceeded, d.r.Offset(), fmt.Errorf("container nesting deeper than %d", d.maxDepth))
	}
	start := d.r.Offset()
	key, value, size, err := d.r.ReadMapBegin()
	if err != nil {
		return nil, false, err
	}
	if size > d.maxLength {
		return nil, false, d.lengthError(start, size)
	}

	ok := size == 0 || (key == t.Key.Kind && value == t.Elem.Kind)
	entries := make([]MapEntry, 0, size)
	for i := 0; i < size; i++ {
		if !ok {
			if err := skipValue(d.r, key, d.maxDepth-depth+1); err != nil {
				return nil, false, err
			}
			if err := skipValue(d.r, value, d.maxDepth-depth+1); err != nil {
				return nil, false, err
			}
			continue
		}
		k, keyOK, err := d.readValue(*t.Key, depth)
		if err != nil {
			return nil, false, err
		}
		if !keyOK {
			ok = false
			if err := skipValue(d.r, value, d.maxDepth-depth+1); err != nil {
				return nil, false, err
			}
			continue
		}
		v, valueOK, err := d.readValue(*t.Elem, depth)
		if err != nil {
			return nil, false, err
		}
		ok = valueOK
		entries = append(entries, MapEntry{Key: k, Value: v})
	}

	if err := d.r.ReadMapEnd(); err != nil || !ok {
		return nil, false, err
	}
	return entries, true, nil
}

func (d *decoder) lengthError(offset, n int) error {
	return newDecodeError(ErrLimitExceeded, offset, fmt.Errorf("length %d exceeds %d", n, d.maxLength))
}
