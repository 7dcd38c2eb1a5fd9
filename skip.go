package tagwire

import (
	"fmt"
)

// skipValue consumes one value of kind, descending at most depth levels.
func skipValue(r Reader, kind TypeKind, depth int) error {
	if depth <= 0 {
		return newDecodeError(ErrLimitExceeded, r.Offset(), fmt.Errorf("nesting deeper than allowed"))
	}
	var err error
	switch kind {
	case KindBool:
		_, err = r.ReadBool()
	case KindByte:
		_, err = r.ReadI8()
	case KindI16:
		_, err = r.ReadI16()
	case KindI32:
		_, err = r.ReadI32()
	case KindI64:
		_, err = r.ReadI64()
	case KindDouble:
		_, err = r.ReadDouble()
	case KindFloat:
		_, err = r.ReadFloat()
	case KindString:
		_, err = r.ReadBinary()
	case KindStruct:
		err = skipStruct(r, depth)
	case KindList, KindSet:
		err = skipList(r, kind, depth)
	case KindMap:
		err = skipMap(r, depth)
	default:
		err = newDecodeError(ErrUnsupportedEncoding, r.Offset(), fmt.Errorf("cannot skip type id %d", int8(kind)))
	}
	return err
}

func skipStruct(r Reader, depth int) error {
	if err := r.ReadStructBegin(); err != nil {
		return err
	}
	for {
		kind, _, err := r.ReadFieldBegin()
		if err != nil {
			return err
		}
		if kind == KindStop {
			break
		}
		if err := skipValue(r, kind, depth-1); err != nil {
			return err
		}
		if err := r.ReadFieldEnd(); err != nil {
			return err
		}
	}
	return r.ReadStructEnd()
}

func skipList(r Reader, kind TypeKind, depth int) error {
	var (
		elem TypeKind
		size int
		err  error
	)
	if kind == KindSet {
		elem, size, err = r.ReadSetBegin()
	} else {
		elem, size, err = r.ReadListBegin()
	}
	if err != nil {
		return err
	}
	for i := 0; i < size; i++ {
		if err := skipValue(r, elem, depth-1); err != nil {
			return err
		}
	}
	if kind == KindSet {
		return r.ReadSetEnd()
	}
	return r.ReadListEnd()
}

func skipMap(r Reader, depth int) error {
	key, value, size, err := r.ReadMapBegin()
	if err != nil {
		return err
	}
	for i := 0; i < size; i++ {
		if err := skipValue(r, key, depth-1); err != nil {
			return err
		}
		if err := skipValue(r, value, depth-1); err != nil {
			return err
		}
	}
	return r.ReadMapEnd()
}

// Copy re-encodes one value of kind from src into dst without a schema.
// It follows the same rules as skipping, so anything the decoder can skip
// can be transcoded.
func Copy(dst Writer, src Reader, kind TypeKind, maxDepth int) error {
	if maxDepth <= 0 {
		return newDecodeError(ErrLimitExceeded, src.Offset(), fmt.Errorf("nesting deeper than allowed"))
	}
	switch kind {
	case KindBool:
		v, err := src.ReadBool()
		if err != nil {
			return err
		}
		dst.WriteBool(v)
	case KindByte:
		v, err := src.ReadI8()
		if err != nil {
			return err
		}
		dst.WriteI8(v)
	case KindI16:
		v, err := src.ReadI16()
		if err != nil {
			return err
		}
		dst.WriteI16(v)
	case KindI32:
		v, err := src.ReadI32()
		if err != nil {
			return err
		}
		dst.WriteI32(v)
	case KindI64:
		v, err := src.ReadI64()
		if err != nil {
			return err
		}
		dst.WriteI64(v)
	case KindDouble:
		v, err := src.ReadDouble()
		if err != nil {
			return err
		}
		dst.WriteDouble(v)
	case KindFloat:
		v, err := src.ReadFloat()
		if err != nil {
			return err
		}
		dst.WriteFloat(v)
	case KindString:
		v, err := src.ReadBinary()
		if err != nil {
			return err
		}
		dst.WriteBinary(v)
	case KindStruct:
		return copyStruct(dst, src, maxDepth)
	case KindList, KindSet:
		return copyList(dst, src, kind, maxDepth)
	case KindMap:
		return copyMap(dst, src, maxDepth)
	default:
		return newDecodeError(ErrUnsupportedEncoding, src.Offset(), fmt.Errorf("cannot copy type id %d", int8(kind)))
	}
	return nil
}

func copyStruct(dst Writer, src Reader, depth int) error {
	if err := src.ReadStructBegin(); err != nil {
		return err
	}
	dst.WriteStructBegin("")
	for {
		kind, id, err := src.ReadFieldBegin()
		if err != nil {
			return err
		}
		if kind == KindStop {
			break
		}
		dst.WriteFieldBegin("", kind, id)
		if err := Copy(dst, src, kind, depth-1); err != nil {
			return err
		}
		if err := src.ReadFieldEnd(); err != nil {
			return err
		}
		dst.WriteFieldEnd()
	}
	dst.WriteFieldStop()
	if err := src.ReadStructEnd(); err != nil {
		return err
	}
	dst.WriteStructEnd()
	return nil
}

func copyList(dst Writer, src Reader, kind TypeKind, depth int) error {
	var (
		elem TypeKind
		size int
		err  error
	)
	if kind == KindSet {
		elem, size, err = src.ReadSetBegin()
	} else {
		elem, size, err = src.ReadListBegin()
	}
	if err != nil {
		return err
	}
	if kind == KindSet {
		dst.WriteSetBegin(elem, size)
	} else {
		dst.WriteListBegin(elem, size)
	}
	for i := 0; i < size; i++ {
		if err := Copy(dst, src, elem, depth-1); err != nil {
			return err
		}
	}
	if kind == KindSet {
		dst.WriteSetEnd()
		return src.ReadSetEnd()
	}
	dst.WriteListEnd()
	return src.ReadListEnd()
}

func copyMap(dst Writer, src Reader, depth int) error {
	key, value, size, err := src.ReadMapBegin()
	if err != nil {
		return err
	}
	dst.WriteMapBegin(key, value, size)
	for i := 0; i < size; i++ {
		if err := Copy(dst, src, key, depth-1); err != nil {
			return err
		}
		if err := Copy(dst, src, value, depth-1); err != nil {
			return err
		}
	}
	dst.WriteMapEnd()
	return src.ReadMapEnd()
}

// Transcode converts one struct payload between protocols without a schema.
func Transcode(from, to Protocol, data []byte) ([]byte, error) {
	src := from.NewReader(data)
	dst := to.NewWriter()
	if err := Copy(dst, src, KindStruct, DefaultMaxDepth); err != nil {
		return nil, err
	}
	return dst.Bytes(), nil
}
