package tagwire

import (
	"encoding/binary"
	"math"
)

const (
	binaryProtocolName = "binary"
	binaryContentType  = "application/vnd.apache.thrift.binary"
)

// binaryProtocol is the fixed-width big-endian encoding.
//
// Field header: kind(1) id(2). Strings and binaries: length(4) bytes.
// List and set header: elem(1) size(4). Map header: key(1) value(1) size(4).
// Struct begin and end write nothing; a struct ends with a 0x00 stop byte.
type binaryProtocol struct{}

var _ Protocol = binaryProtocol{}

// BinaryProtocol returns the Thrift binary protocol.
func BinaryProtocol() Protocol {
	return binaryProtocol{}
}

func (binaryProtocol) Name() string        { return binaryProtocolName }
func (binaryProtocol) ContentType() string { return binaryContentType }

func (binaryProtocol) NewWriter() Writer {
	return &binaryWriter{}
}

func (binaryProtocol) NewReader(data []byte) Reader {
	return &binaryReader{input: input{data: data}}
}

type binaryWriter struct {
	buf []byte
}

func (w *binaryWriter) WriteStructBegin(string) {}
func (w *binaryWriter) WriteStructEnd()         {}

func (w *binaryWriter) WriteFieldBegin(_ string, kind TypeKind, id int16) {
	w.buf = append(w.buf, byte(kind))
	w.buf = binary.BigEndian.AppendUint16(w.buf, uint16(id))
}

func (w *binaryWriter) WriteFieldEnd() {}

func (w *binaryWriter) WriteFieldStop() {
	w.buf = append(w.buf, byte(KindStop))
}

func (w *binaryWriter) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

func (w *binaryWriter) WriteI8(v int8) {
	w.buf = append(w.buf, byte(v))
}

func (w *binaryWriter) WriteI16(v int16) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, uint16(v))
}

func (w *binaryWriter) WriteI32(v int32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(v))
}

func (w *binaryWriter) WriteI64(v int64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, uint64(v))
}

func (w *binaryWriter) WriteDouble(v float64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, math.Float64bits(v))
}

func (w *binaryWriter) WriteFloat(v float32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, math.Float32bits(v))
}

func (w *binaryWriter) WriteString(v string) {
	w.WriteI32(int32(len(v)))
	w.buf = append(w.buf, v...)
}

func (w *binaryWriter) WriteBinary(v []byte) {
	w.WriteI32(int32(len(v)))
	w.buf = append(w.buf, v...)
}

func (w *binaryWriter) WriteListBegin(elem TypeKind, size int) {
	w.buf = append(w.buf, byte(elem))
	w.WriteI32(int32(size))
}

func (w *binaryWriter) WriteListEnd() {}

func (w *binaryWriter) WriteSetBegin(elem TypeKind, size int) {
	w.WriteListBegin(elem, size)
}

func (w *binaryWriter) WriteSetEnd() {}

func (w *binaryWriter) WriteMapBegin(key, value TypeKind, size int) {
	w.buf = append(w.buf, byte(key), byte(value))
	w.WriteI32(int32(size))
}

func (w *binaryWriter) WriteMapEnd() {}

func (w *binaryWriter) WriteRaw(p []byte) {
	w.buf = append(w.buf, p...)
}

func (w *binaryWriter) Bytes() []byte {
	return w.buf
}

type binaryReader struct {
	input
}

func (r *binaryReader) ReadStructBegin() error { return nil }
func (r *binaryReader) ReadStructEnd() error   { return nil }

func (r *binaryReader) ReadFieldBegin() (TypeKind, int16, error) {
	b, err := r.readByte()
	if err != nil {
		return KindStop, 0, err
	}
	kind := TypeKind(b)
	if kind == KindStop {
		return KindStop, 0, nil
	}
	id, err := r.ReadI16()
	if err != nil {
		return KindStop, 0, err
	}
	return kind, id, nil
}

func (r *binaryReader) ReadFieldEnd() error { return nil }

func (r *binaryReader) ReadBool() (bool, error) {
	b, err := r.readByte()
	return b != 0, err
}

func (r *binaryReader) ReadI8() (int8, error) {
	b, err := r.readByte()
	return int8(b), err
}

func (r *binaryReader) ReadI16() (int16, error) {
	p, err := r.next(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(p)), nil
}

func (r *binaryReader) ReadI32() (int32, error) {
	p, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(p)), nil
}

func (r *binaryReader) ReadI64() (int64, error) {
	p, err := r.next(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(p)), nil
}

func (r *binaryReader) ReadDouble() (float64, error) {
	p, err := r.next(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(p)), nil
}

func (r *binaryReader) ReadFloat() (float32, error) {
	p, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(p)), nil
}

func (r *binaryReader) ReadString() (string, error) {
	n, err := r.ReadI32()
	if err != nil {
		return "", err
	}
	p, err := r.next(int(n))
	if err != nil {
		return "", err
	}
	return string(p), nil
}

func (r *binaryReader) ReadBinary() ([]byte, error) {
	n, err := r.ReadI32()
	if err != nil {
		return nil, err
	}
	return r.copyBytes(int(n))
}

func (r *binaryReader) ReadListBegin() (TypeKind, int, error) {
	b, err := r.readByte()
	if err != nil {
		return KindStop, 0, err
	}
	n, err := r.ReadI32()
	if err != nil {
		return KindStop, 0, err
	}
	if err := r.checkCount(int(n), 1); err != nil {
		return KindStop, 0, err
	}
	return TypeKind(b), int(n), nil
}

func (r *binaryReader) ReadListEnd() error { return nil }

func (r *binaryReader) ReadSetBegin() (TypeKind, int, error) {
	return r.ReadListBegin()
}

func (r *binaryReader) ReadSetEnd() error { return nil }

func (r *binaryReader) ReadMapBegin() (TypeKind, TypeKind, int, error) {
	p, err := r.next(2)
	if err != nil {
		return KindStop, KindStop, 0, err
	}
	n, err := r.ReadI32()
	if err != nil {
		return KindStop, KindStop, 0, err
	}
	if err := r.checkCount(int(n), 2); err != nil {
		return KindStop, KindStop, 0, err
	}
	return TypeKind(p[0]), TypeKind(p[1]), int(n), nil
}

func (r *binaryReader) ReadMapEnd() error { return nil }

func (r *binaryReader) Skip(kind TypeKind) error {
	return skipValue(r, kind, DefaultMaxDepth)
}
