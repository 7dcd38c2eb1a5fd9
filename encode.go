package tagwire

// encoder walks a record in ascending tag order and emits it to w.
type encoder struct {
	w Writer
}

// writeStruct emits StructBegin, one field per present slot, FieldStop, StructEnd.
// Absent slots are omitted whatever their requiredness.
func (e *encoder) writeStruct(r *Record, path string) (int, error) {
	s := r.schema
	written := 0
	e.w.WriteStructBegin(s.name)
	for i, fd := range s.fields {
		v := r.slots[i]
		if v == nil {
			continue
		}
		e.w.WriteFieldBegin(fd.Name, fd.Type.Kind, fd.Tag)
		if err := e.writeValue(fd.Type, v, path+fd.Name); err != nil {
			return written, err
		}
		e.w.WriteFieldEnd()
		written++
	}
	e.w.WriteFieldStop()
	e.w.WriteStructEnd()
	return written, nil
}

// writeValue emits v per t. A value whose Go type disagrees with t is a
// ContractError; the partially written buffer must then be discarded.
func (e *encoder) writeValue(t Type, v any, path string) error {
	switch t.Kind {
	case KindBool:
		x, ok := v.(bool)
		if !ok {
			return newContractError(path, t, v)
		}
		e.w.WriteBool(x)
	case KindByte:
		x, ok := v.(int8)
		if !ok {
			return newContractError(path, t, v)
		}
		e.w.WriteI8(x)
	case KindI16:
		x, ok := v.(int16)
		if !ok {
			return newContractError(path, t, v)
		}
		e.w.WriteI16(x)
	case KindI32:
		x, ok := v.(int32)
		if !ok {
			return newContractError(path, t, v)
		}
		e.w.WriteI32(x)
	case KindI64:
		x, ok := v.(int64)
		if !ok {
			return newContractError(path, t, v)
		}
		e.w.WriteI64(x)
	case KindDouble:
		x, ok := v.(float64)
		if !ok {
			return newContractError(path, t, v)
		}
		e.w.WriteDouble(x)
	case KindFloat:
		x, ok := v.(float32)
		if !ok {
			return newContractError(path, t, v)
		}
		e.w.WriteFloat(x)
	case KindString:
		if t.Binary {
			x, ok := v.([]byte)
			if !ok {
				return newContractError(path, t, v)
			}
			e.w.WriteBinary(x)
			return nil
		}
		x, ok := v.(string)
		if !ok {
			return newContractError(path, t, v)
		}
		e.w.WriteString(x)
	case KindStruct:
		x, ok := v.(*Record)
		if !ok || x == nil || x.schema != t.Schema {
			return newContractError(path, t, v)
		}
		if _, err := e.writeStruct(x, path+"."); err != nil {
			return err
		}
	case KindList, KindSet:
		items, ok := v.([]any)
		if !ok {
			return newContractError(path, t, v)
		}
		if t.Kind == KindSet {
			e.w.WriteSetBegin(t.Elem.Kind, len(items))
		} else {
			e.w.WriteListBegin(t.Elem.Kind, len(items))
		}
		for _, item := range items {
			if err := e.writeValue(*t.Elem, item, path+"[]"); err != nil {
				return err
			}
		}
		if t.Kind == KindSet {
			e.w.WriteSetEnd()
		} else {
			e.w.WriteListEnd()
		}
	case KindMap:
		entries, ok := v.([]MapEntry)
		if !ok {
			return newContractError(path, t, v)
		}
		e.w.WriteMapBegin(t.Key.Kind, t.Elem.Kind, len(entries))
		for _, entry := range entries {
			if err := e.writeValue(*t.Key, entry.Key, path+"{key}"); err != nil {
				return err
			}
			if err := e.writeValue(*t.Elem, entry.Value, path+"{value}"); err != nil {
				return err
			}
		}
		e.w.WriteMapEnd()
	default:
		return newContractError(path, t, v)
	}
	return nil
}
