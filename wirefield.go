package tagwire

// WireField is one top-level field of a payload read without a schema.
// Raw holds the encoded value exactly as it appeared on the wire, except
// for bools, whose value the compact protocol folds into the field header;
// their Raw is a single 0 or 1 byte.
type WireField struct {
	Kind TypeKind
	Tag  int16
	Raw  []byte
}

// SplitFields reads the top-level struct of data and returns its fields
// in wire order. Values are skipped, not decoded, so any well-formed
// payload can be split whatever schema produced it.
func SplitFields(p Protocol, data []byte) ([]WireField, error) {
	r := p.NewReader(data)
	if err := r.ReadStructBegin(); err != nil {
		return nil, err
	}
	var fields []WireField
	for {
		kind, id, err := r.ReadFieldBegin()
		if err != nil {
			return nil, err
		}
		if kind == KindStop {
			break
		}
		f := WireField{Kind: kind, Tag: id}
		if kind == KindBool {
			v, err := r.ReadBool()
			if err != nil {
				return nil, err
			}
			f.Raw = []byte{0}
			if v {
				f.Raw[0] = 1
			}
		} else {
			start := r.Offset()
			if err := skipValue(r, kind, DefaultMaxDepth); err != nil {
				return nil, err
			}
			f.Raw = append([]byte{}, data[start:r.Offset()]...)
		}
		if err := r.ReadFieldEnd(); err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	if err := r.ReadStructEnd(); err != nil {
		return nil, err
	}
	return fields, nil
}

// JoinFields encodes fields as one struct in the given order.
// Raw values must have been produced by the same protocol.
func JoinFields(p Protocol, fields []WireField) []byte {
	w := p.NewWriter()
	w.WriteStructBegin("")
	for _, f := range fields {
		w.WriteFieldBegin("", f.Kind, f.Tag)
		if f.Kind == KindBool {
			w.WriteBool(len(f.Raw) > 0 && f.Raw[0] != 0)
		} else {
			w.WriteRaw(f.Raw)
		}
		w.WriteFieldEnd()
	}
	w.WriteFieldStop()
	w.WriteStructEnd()
	return w.Bytes()
}
