package tagwire

import (
	"context"
	"encoding/base64"
	"math"
	"sort"
	"time"
)

// ToMap returns a name-keyed view of r suitable for document formats.
//
// Absent slots are omitted. Binary values stay []byte, nested structs become
// nested maps, lists and sets become []any and maps become []any of
// [key, value] pairs so that non-string keys survive.
func ToMap(r *Record) map[string]any {
	m := make(map[string]any, len(r.slots))
	for i, fd := range r.schema.fields {
		if v := r.slots[i]; v != nil {
			m[fd.Name] = toDocument(fd.Type, v)
		}
	}
	return m
}

func toDocument(t Type, v any) any {
	switch t.Kind {
	case KindString:
		if b, ok := v.([]byte); ok {
			return append([]byte{}, b...)
		}
		return v
	case KindStruct:
		return ToMap(v.(*Record))
	case KindList, KindSet:
		items := v.([]any)
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = toDocument(*t.Elem, item)
		}
		return out
	case KindMap:
		entries := v.([]MapEntry)
		out := make([]any, len(entries))
		for i, e := range entries {
			out[i] = []any{toDocument(*t.Key, e.Key), toDocument(*t.Elem, e.Value)}
		}
		return out
	default:
		return v
	}
}

// FromMap builds a record of s from a name-keyed document.
//
// Unknown names are skipped, as are values that cannot be coerced to the
// declared type (wrong shape, out-of-range number, bad base64). This is
// the document counterpart of the decoder's skip rule.
func FromMap(s *Schema, m map[string]any) (*Record, error) {
	return FromMapContext(context.Background(), "", s, m)
}

// FromMapContext is FromMap with a context and the document content type
// used when emitting SignalDocumentSkipped.
func FromMapContext(ctx context.Context, contentType string, s *Schema, m map[string]any) (*Record, error) {
	doc := &documentReader{ctx: ctx, contentType: contentType}
	return doc.record(s, m, "")
}

type documentReader struct {
	ctx         context.Context
	contentType string
	skipped     int
}

func (d *documentReader) record(s *Schema, m map[string]any, prefix string) (*Record, error) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	b := NewBuilder(s)
	for _, name := range names {
		i, ok := s.byName[name]
		if !ok {
			d.skip(s, prefix+name)
			continue
		}
		fd := s.fields[i]
		v, ok := d.coerce(fd.Type, m[name], prefix+name+".")
		if !ok {
			d.skip(s, prefix+name)
			continue
		}
		b.stage(i, v)
	}
	return b.Build()
}

func (d *documentReader) skip(s *Schema, field string) {
	d.skipped++
	emitDocumentSkipped(d.ctx, d.contentType, s.name, field)
}

// coerce converts a decoded document value to the Go representation of t.
func (d *documentReader) coerce(t Type, v any, prefix string) (any, bool) {
	if v == nil {
		return nil, false
	}
	switch t.Kind {
	case KindBool:
		b, ok := v.(bool)
		return b, ok
	case KindByte:
		n, ok := toInt64(v)
		if !ok || n < math.MinInt8 || n > math.MaxInt8 {
			return nil, false
		}
		return int8(n), true
	case KindI16:
		n, ok := toInt64(v)
		if !ok || n < math.MinInt16 || n > math.MaxInt16 {
			return nil, false
		}
		return int16(n), true
	case KindI32:
		n, ok := toInt64(v)
		if !ok || n < math.MinInt32 || n > math.MaxInt32 {
			return nil, false
		}
		return int32(n), true
	case KindI64:
		n, ok := toInt64(v)
		if !ok {
			return nil, false
		}
		return n, true
	case KindDouble:
		f, ok := toFloat64(v)
		if !ok {
			return nil, false
		}
		return f, true
	case KindFloat:
		f, ok := toFloat64(v)
		if !ok || (math.IsInf(float64(float32(f)), 0) && !math.IsInf(f, 0)) {
			return nil, false
		}
		return float32(f), true
	case KindString:
		if t.Binary {
			return toBinary(v)
		}
		switch x := v.(type) {
		case string:
			return x, true
		case []byte:
			return string(x), true
		}
		return nil, false
	case KindStruct:
		m, ok := toStringMap(v)
		if !ok {
			return nil, false
		}
		r, err := d.record(t.Schema, m, prefix)
		if err != nil {
			return nil, false
		}
		return r, true
	case KindList, KindSet:
		items, ok := v.([]any)
		if !ok {
			return nil, false
		}
		out := make([]any, 0, len(items))
		for _, item := range items {
			c, ok := d.coerce(*t.Elem, item, prefix)
			if !ok {
				return nil, false
			}
			out = append(out, c)
		}
		return out, true
	case KindMap:
		return d.coerceMap(t, v, prefix)
	}
	return nil, false
}

// coerceMap accepts [key, value] pairs, or a plain object when the key
// type is string.
func (d *documentReader) coerceMap(t Type, v any, prefix string) (any, bool) {
	if obj, ok := toStringMap(v); ok && t.Key.Kind == KindString && !t.Key.Binary {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]MapEntry, 0, len(keys))
		for _, k := range keys {
			val, ok := d.coerce(*t.Elem, obj[k], prefix)
			if !ok {
				return nil, false
			}
			out = append(out, MapEntry{Key: k, Value: val})
		}
		return out, true
	}

	pairs, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]MapEntry, 0, len(pairs))
	for _, p := range pairs {
		pair, ok := p.([]any)
		if !ok || len(pair) != 2 {
			return nil, false
		}
		key, ok := d.coerce(*t.Key, pair[0], prefix)
		if !ok {
			return nil, false
		}
		val, ok := d.coerce(*t.Elem, pair[1], prefix)
		if !ok {
			return nil, false
		}
		out = append(out, MapEntry{Key: key, Value: val})
	}
	return out, true
}

// int64er and float64er match json.Number without importing a JSON package.
type int64er interface{ Int64() (int64, error) }
type float64er interface{ Float64() (float64, error) }

func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return uintToInt64(uint64(x))
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return uintToInt64(x)
	case float32:
		return floatToInt64(float64(x))
	case float64:
		return floatToInt64(x)
	case int64er:
		if n, err := x.Int64(); err == nil {
			return n, true
		}
		if f, ok := v.(float64er); ok {
			if g, err := f.Float64(); err == nil {
				return floatToInt64(g)
			}
		}
	}
	return 0, false
}

func uintToInt64(n uint64) (int64, bool) {
	if n > math.MaxInt64 {
		return 0, false
	}
	return int64(n), true
}

// floatToInt64 accepts only integral values that fit exactly.
func floatToInt64(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func toFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case float64er:
		f, err := x.Float64()
		return f, err == nil
	}
	if n, ok := toInt64(v); ok {
		return float64(n), true
	}
	return 0, false
}

// toBinary accepts raw bytes or standard base64 text.
func toBinary(v any) (any, bool) {
	switch x := v.(type) {
	case []byte:
		return append([]byte{}, x...), true
	case string:
		b, err := base64.StdEncoding.DecodeString(x)
		if err != nil {
			return nil, false
		}
		return b, true
	}
	return nil, false
}

func toStringMap(v any) (map[string]any, bool) {
	switch x := v.(type) {
	case map[string]any:
		return x, true
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			s, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[s] = val
		}
		return out, true
	}
	return nil, false
}

// DocumentFormat is a name-keyed serialization such as JSON or YAML.
type DocumentFormat struct {
	ContentType string
	Marshal     func(doc map[string]any) ([]byte, error)
	Unmarshal   func(data []byte) (map[string]any, error)
}

// DocumentCodec binds a DocumentFormat to a schema.
type DocumentCodec struct {
	schema *Schema
	format DocumentFormat
}

var _ Codec = (*DocumentCodec)(nil)

// NewDocumentCodec returns a codec that maps records of s through format.
func NewDocumentCodec(s *Schema, format DocumentFormat) *DocumentCodec {
	emitCodecCreated(context.Background(), format.ContentType, s.name)
	return &DocumentCodec{schema: s, format: format}
}

// ContentType returns the format's MIME type.
func (c *DocumentCodec) ContentType() string {
	return c.format.ContentType
}

// Schema returns the schema the codec is bound to.
func (c *DocumentCodec) Schema() *Schema {
	return c.schema
}

// Marshal encodes a *Record of the codec's schema.
func (c *DocumentCodec) Marshal(v any) ([]byte, error) {
	return c.MarshalContext(context.Background(), v)
}

// MarshalContext is Marshal with a context for signal emission.
func (c *DocumentCodec) MarshalContext(ctx context.Context, v any) (data []byte, err error) {
	start := time.Now()
	emitEncodeStart(ctx, c.format.ContentType, c.schema.name)
	fields := 0
	defer func() {
		emitEncodeComplete(ctx, c.format.ContentType, c.schema.name, len(data), fields, time.Since(start), err)
	}()

	r, ok := v.(*Record)
	if !ok || r == nil || r.schema != c.schema {
		return nil, newContractError(c.schema.name, StructOf(c.schema), v)
	}
	doc := ToMap(r)
	fields = len(doc)
	return c.format.Marshal(doc)
}

// Unmarshal decodes data into v, which must be a **Record.
func (c *DocumentCodec) Unmarshal(data []byte, v any) error {
	return c.UnmarshalContext(context.Background(), data, v)
}

// UnmarshalContext is Unmarshal with a context for signal emission.
func (c *DocumentCodec) UnmarshalContext(ctx context.Context, data []byte, v any) (err error) {
	start := time.Now()
	emitDecodeStart(ctx, c.format.ContentType, c.schema.name)
	doc := &documentReader{ctx: ctx, contentType: c.format.ContentType}
	defer func() {
		emitDecodeComplete(ctx, c.format.ContentType, c.schema.name, len(data), doc.skipped, time.Since(start), err)
	}()

	dst, ok := v.(**Record)
	if !ok || dst == nil {
		return newContractError(c.schema.name, StructOf(c.schema), v)
	}
	m, err := c.format.Unmarshal(data)
	if err != nil {
		return err
	}
	r, err := doc.record(c.schema, m, "")
	if err != nil {
		return err
	}
	*dst = r
	return nil
}
