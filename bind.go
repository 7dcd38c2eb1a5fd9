package tagwire

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/zoobzio/sentinel"
)

const bindTag = "tagwire"

func init() {
	sentinel.Tag(bindTag)
}

// Binding maps a tagged Go struct type onto a derived schema.
//
// Fields opt in with a struct tag:
//
//	type User struct {
//		ID    int64   `tagwire:"1,required"`
//		Name  *string `tagwire:"2,optional,name=display_name"`
//		Tags  []string `tagwire:"3,set"`
//	}
//
// The first element is the field tag. Options are optional, required,
// omitempty (zero values are absent), set (slices become sets) and
// name=<wire name>. Nil pointers, slices and maps are absent.
type Binding[T any] struct {
	plan *bindPlan
}

// Bind derives the schema of T. Plans are built once per type and cached.
func Bind[T any]() (*Binding[T], error) {
	rt := reflect.TypeFor[T]()
	if rt.Kind() != reflect.Struct {
		return nil, newSchemaError(ErrInvalidSchema, rt.String(), "", 0, fmt.Errorf("bind requires a struct type"))
	}

	plansMu.Lock()
	defer plansMu.Unlock()
	if p, ok := plans[rt]; ok {
		return &Binding[T]{plan: p}, nil
	}
	p, err := buildPlan(rt, sentinel.Scan[T](), map[reflect.Type]bool{})
	if err != nil {
		return nil, err
	}
	return &Binding[T]{plan: p}, nil
}

// MustBind is like Bind but panics on error.
func MustBind[T any]() *Binding[T] {
	b, err := Bind[T]()
	if err != nil {
		panic(err)
	}
	return b
}

// Schema returns the derived schema.
func (b *Binding[T]) Schema() *Schema {
	return b.plan.schema
}

// ToRecord converts v into a record of the derived schema.
func (b *Binding[T]) ToRecord(v *T) (*Record, error) {
	if v == nil {
		return nil, newContractError(b.plan.schema.name, StructOf(b.plan.schema), v)
	}
	return b.plan.toRecord(reflect.ValueOf(v).Elem(), "")
}

// FromRecord populates a new T from r, which must be of the derived schema.
func (b *Binding[T]) FromRecord(r *Record) (T, error) {
	var out T
	if r == nil || r.schema != b.plan.schema {
		return out, newContractError(b.plan.schema.name, StructOf(b.plan.schema), r)
	}
	b.plan.fromRecord(r, reflect.ValueOf(&out).Elem())
	return out, nil
}

// Marshal encodes v with the cached codec for the derived schema.
func (b *Binding[T]) Marshal(v *T, opts ...Option) ([]byte, error) {
	r, err := b.ToRecord(v)
	if err != nil {
		return nil, err
	}
	return Use(b.plan.schema, opts...).Encode(r)
}

// Unmarshal decodes data into a new T.
func (b *Binding[T]) Unmarshal(data []byte, opts ...Option) (T, error) {
	r, err := Use(b.plan.schema, opts...).Decode(data)
	if err != nil {
		var zero T
		return zero, err
	}
	return b.FromRecord(r)
}

var (
	plans   = make(map[reflect.Type]*bindPlan)
	plansMu sync.Mutex
)

// bindPlan is the cached mapping of one struct type.
type bindPlan struct {
	schema *Schema
	fields []bindField
}

type bindField struct {
	index     []int
	slot      int
	name      string
	omitEmpty bool
	codec     valueCodec
}

// valueCodec converts between a Go value and its record representation.
// enc returns nil for an absent value.
type valueCodec struct {
	typ Type
	enc func(rv reflect.Value, path string) (any, error)
	dec func(v any, rv reflect.Value)
}

// buildPlan must be called with plansMu held.
func buildPlan(rt reflect.Type, meta sentinel.Metadata, building map[reflect.Type]bool) (*bindPlan, error) {
	if building[rt] {
		return nil, newSchemaError(ErrInvalidSchema, rt.Name(), "", 0, fmt.Errorf("recursive type %s", rt))
	}
	building[rt] = true
	defer delete(building, rt)

	name := meta.TypeName
	if name == "" {
		name = rt.Name()
	}

	var (
		descriptors []FieldDescriptor
		fields      []bindField
	)
	for _, fm := range meta.Fields {
		raw, ok := fm.Tags[bindTag]
		if !ok || raw == "" || raw == "-" {
			continue
		}
		opts, err := parseBindTag(raw)
		if err != nil {
			return nil, newSchemaError(ErrInvalidSchema, name, fm.Name, 0, err)
		}
		wireName := opts.name
		if wireName == "" {
			wireName = fm.Name
		}
		vc, err := codecFor(fm.ReflectType, opts.set, building)
		if err != nil {
			return nil, newSchemaError(ErrInvalidSchema, name, wireName, opts.tag, err)
		}
		descriptors = append(descriptors, Field(opts.tag, wireName, vc.typ, opts.req))
		fields = append(fields, bindField{
			index:     fm.Index,
			name:      wireName,
			omitEmpty: opts.omitEmpty,
			codec:     vc,
		})
	}

	s, err := NewSchema(name, descriptors...)
	if err != nil {
		return nil, err
	}
	for i := range fields {
		fields[i].slot = s.byName[fields[i].name]
	}
	p := &bindPlan{schema: s, fields: fields}
	plans[rt] = p
	return p, nil
}

func (p *bindPlan) toRecord(rv reflect.Value, prefix string) (*Record, error) {
	slots := make([]any, len(p.schema.fields))
	for _, f := range p.fields {
		fv := rv.FieldByIndex(f.index)
		if f.omitEmpty && fv.IsZero() {
			continue
		}
		v, err := f.codec.enc(fv, prefix+f.name)
		if err != nil {
			return nil, err
		}
		slots[f.slot] = v
	}
	return &Record{schema: p.schema, slots: slots}, nil
}

func (p *bindPlan) fromRecord(r *Record, rv reflect.Value) {
	for _, f := range p.fields {
		if v := r.slots[f.slot]; v != nil {
			f.codec.dec(v, rv.FieldByIndex(f.index))
		}
	}
}

type bindOptions struct {
	tag       int16
	name      string
	req       Requiredness
	omitEmpty bool
	set       bool
}

func parseBindTag(raw string) (bindOptions, error) {
	parts := strings.Split(raw, ",")
	tag, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 16)
	if err != nil {
		return bindOptions{}, fmt.Errorf("invalid tag %q", parts[0])
	}
	opts := bindOptions{tag: int16(tag)}
	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		switch {
		case part == "optional":
			opts.req = Optional
		case part == "required":
			opts.req = Required
		case part == "omitempty":
			opts.omitEmpty = true
		case part == "set":
			opts.set = true
		case strings.HasPrefix(part, "name="):
			opts.name = strings.TrimPrefix(part, "name=")
		default:
			return bindOptions{}, fmt.Errorf("unknown option %q", part)
		}
	}
	return opts, nil
}

// codecFor builds the converter for a Go type. set only applies to the
// outermost slice of a field.
func codecFor(rt reflect.Type, set bool, building map[reflect.Type]bool) (valueCodec, error) {
	switch rt.Kind() {
	case reflect.Bool:
		return valueCodec{
			typ: Bool(),
			enc: func(rv reflect.Value, _ string) (any, error) { return rv.Bool(), nil },
			dec: func(v any, rv reflect.Value) { rv.SetBool(v.(bool)) },
		}, nil
	case reflect.Int8:
		return valueCodec{
			typ: Byte(),
			enc: func(rv reflect.Value, _ string) (any, error) { return int8(rv.Int()), nil },
			dec: func(v any, rv reflect.Value) { rv.SetInt(int64(v.(int8))) },
		}, nil
	case reflect.Int16:
		return valueCodec{
			typ: I16(),
			enc: func(rv reflect.Value, _ string) (any, error) { return int16(rv.Int()), nil },
			dec: func(v any, rv reflect.Value) { rv.SetInt(int64(v.(int16))) },
		}, nil
	case reflect.Int32:
		return valueCodec{
			typ: I32(),
			enc: func(rv reflect.Value, _ string) (any, error) { return int32(rv.Int()), nil },
			dec: func(v any, rv reflect.Value) { rv.SetInt(int64(v.(int32))) },
		}, nil
	case reflect.Int64:
		return valueCodec{
			typ: I64(),
			enc: func(rv reflect.Value, _ string) (any, error) { return rv.Int(), nil },
			dec: func(v any, rv reflect.Value) { rv.SetInt(v.(int64)) },
		}, nil
	case reflect.Float32:
		return valueCodec{
			typ: Float(),
			enc: func(rv reflect.Value, _ string) (any, error) { return float32(rv.Float()), nil },
			dec: func(v any, rv reflect.Value) { rv.SetFloat(float64(v.(float32))) },
		}, nil
	case reflect.Float64:
		return valueCodec{
			typ: Double(),
			enc: func(rv reflect.Value, _ string) (any, error) { return rv.Float(), nil },
			dec: func(v any, rv reflect.Value) { rv.SetFloat(v.(float64)) },
		}, nil
	case reflect.String:
		return valueCodec{
			typ: String(),
			enc: func(rv reflect.Value, _ string) (any, error) { return rv.String(), nil },
			dec: func(v any, rv reflect.Value) { rv.SetString(v.(string)) },
		}, nil
	case reflect.Slice:
		if rt.Elem().Kind() == reflect.Uint8 {
			return valueCodec{
				typ: Binary(),
				enc: func(rv reflect.Value, _ string) (any, error) {
					if rv.IsNil() {
						return nil, nil
					}
					return append([]byte{}, rv.Bytes()...), nil
				},
				dec: func(v any, rv reflect.Value) { rv.SetBytes(append([]byte{}, v.([]byte)...)) },
			}, nil
		}
		return sliceCodec(rt, set, building)
	case reflect.Map:
		return mapCodec(rt, building)
	case reflect.Pointer:
		if rt.Elem().Kind() == reflect.Pointer {
			return valueCodec{}, fmt.Errorf("unsupported type %s", rt)
		}
		elem, err := codecFor(rt.Elem(), set, building)
		if err != nil {
			return valueCodec{}, err
		}
		return valueCodec{
			typ: elem.typ,
			enc: func(rv reflect.Value, path string) (any, error) {
				if rv.IsNil() {
					return nil, nil
				}
				return elem.enc(rv.Elem(), path)
			},
			dec: func(v any, rv reflect.Value) {
				p := reflect.New(rt.Elem())
				elem.dec(v, p.Elem())
				rv.Set(p)
			},
		}, nil
	case reflect.Struct:
		nested, ok := plans[rt]
		if !ok {
			var err error
			if nested, err = buildPlan(rt, scanNestedType(rt), building); err != nil {
				return valueCodec{}, err
			}
		}
		return valueCodec{
			typ: StructOf(nested.schema),
			enc: func(rv reflect.Value, path string) (any, error) { return nested.toRecord(rv, path+".") },
			dec: func(v any, rv reflect.Value) { nested.fromRecord(v.(*Record), rv) },
		}, nil
	}
	return valueCodec{}, fmt.Errorf("unsupported type %s", rt)
}

func sliceCodec(rt reflect.Type, set bool, building map[reflect.Type]bool) (valueCodec, error) {
	elem, err := codecFor(rt.Elem(), false, building)
	if err != nil {
		return valueCodec{}, err
	}
	t := ListOf(elem.typ)
	if set {
		t = SetOf(elem.typ)
	}
	return valueCodec{
		typ: t,
		enc: func(rv reflect.Value, path string) (any, error) {
			if rv.IsNil() {
				return nil, nil
			}
			items := make([]any, rv.Len())
			for i := range items {
				v, err := elem.enc(rv.Index(i), path+"[]")
				if err != nil {
					return nil, err
				}
				if v == nil {
					return nil, newContractError(path+"[]", elem.typ, nil)
				}
				items[i] = v
			}
			return items, nil
		},
		dec: func(v any, rv reflect.Value) {
			items := v.([]any)
			out := reflect.MakeSlice(rt, len(items), len(items))
			for i, item := range items {
				elem.dec(item, out.Index(i))
			}
			rv.Set(out)
		},
	}, nil
}

func mapCodec(rt reflect.Type, building map[reflect.Type]bool) (valueCodec, error) {
	switch rt.Key().Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Float32, reflect.Float64:
	default:
		return valueCodec{}, fmt.Errorf("unsupported map key type %s", rt.Key())
	}
	key, err := codecFor(rt.Key(), false, building)
	if err != nil {
		return valueCodec{}, err
	}
	value, err := codecFor(rt.Elem(), false, building)
	if err != nil {
		return valueCodec{}, err
	}
	return valueCodec{
		typ: MapOf(key.typ, value.typ),
		enc: func(rv reflect.Value, path string) (any, error) {
			if rv.IsNil() {
				return nil, nil
			}
			entries := make([]MapEntry, 0, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				k, err := key.enc(iter.Key(), path+"{key}")
				if err != nil {
					return nil, err
				}
				if k == nil {
					return nil, newContractError(path+"{key}", key.typ, nil)
				}
				v, err := value.enc(iter.Value(), path+"{value}")
				if err != nil {
					return nil, err
				}
				if v == nil {
					return nil, newContractError(path+"{value}", value.typ, nil)
				}
				entries = append(entries, MapEntry{Key: k, Value: v})
			}
			slices.SortFunc(entries, func(a, b MapEntry) int { return compareScalar(a.Key, b.Key) })
			return entries, nil
		},
		dec: func(v any, rv reflect.Value) {
			entries := v.([]MapEntry)
			out := reflect.MakeMapWithSize(rt, len(entries))
			for _, e := range entries {
				k := reflect.New(rt.Key()).Elem()
				key.dec(e.Key, k)
				val := reflect.New(rt.Elem()).Elem()
				value.dec(e.Value, val)
				out.SetMapIndex(k, val)
			}
			rv.Set(out)
		},
	}, nil
}

// compareScalar orders map keys so bound maps encode deterministically.
func compareScalar(a, b any) int {
	switch x := a.(type) {
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case int8:
		return cmp.Compare(x, b.(int8))
	case int16:
		return cmp.Compare(x, b.(int16))
	case int32:
		return cmp.Compare(x, b.(int32))
	case int64:
		return cmp.Compare(x, b.(int64))
	case float32:
		return cmp.Compare(x, b.(float32))
	case float64:
		return cmp.Compare(x, b.(float64))
	case string:
		return cmp.Compare(x, b.(string))
	}
	return 0
}

// scanNestedType returns sentinel metadata for a nested struct type,
// scanning it directly when sentinel has not seen it yet.
func scanNestedType(rt reflect.Type) sentinel.Metadata {
	if spec, ok := sentinel.Lookup(rt.String()); ok {
		return spec
	}

	spec := sentinel.Metadata{
		TypeName:    rt.Name(),
		PackageName: rt.PkgPath(),
		Fields:      make([]sentinel.FieldMetadata, 0, rt.NumField()),
	}
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		tags := make(map[string]string)
		if v, ok := sf.Tag.Lookup(bindTag); ok {
			tags[bindTag] = v
		}
		spec.Fields = append(spec.Fields, sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Tags:        tags,
		})
	}
	return spec
}
