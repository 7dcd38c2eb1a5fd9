package tagwire

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	compactProtocolName = "compact"
	compactContentType  = "application/vnd.apache.thrift.compact"
)

// Compact type ids as they appear in field and container headers.
const (
	compactStop      byte = 0
	compactBoolTrue  byte = 1
	compactBoolFalse byte = 2
	compactByte      byte = 3
	compactI16       byte = 4
	compactI32       byte = 5
	compactI64       byte = 6
	compactDouble    byte = 7
	compactBinary    byte = 8
	compactList      byte = 9
	compactSet       byte = 10
	compactMap       byte = 11
	compactStruct    byte = 12
	compactFloat     byte = 13
)

var kindToCompact = map[TypeKind]byte{
	KindStop:   compactStop,
	KindBool:   compactBoolTrue,
	KindByte:   compactByte,
	KindI16:    compactI16,
	KindI32:    compactI32,
	KindI64:    compactI64,
	KindDouble: compactDouble,
	KindString: compactBinary,
	KindList:   compactList,
	KindSet:    compactSet,
	KindMap:    compactMap,
	KindStruct: compactStruct,
	KindFloat:  compactFloat,
}

func compactToKind(ct byte) (TypeKind, bool) {
	switch ct {
	case compactStop:
		return KindStop, true
	case compactBoolTrue, compactBoolFalse:
		return KindBool, true
	case compactByte:
		return KindByte, true
	case compactI16:
		return KindI16, true
	case compactI32:
		return KindI32, true
	case compactI64:
		return KindI64, true
	case compactDouble:
		return KindDouble, true
	case compactBinary:
		return KindString, true
	case compactList:
		return KindList, true
	case compactSet:
		return KindSet, true
	case compactMap:
		return KindMap, true
	case compactStruct:
		return KindStruct, true
	case compactFloat:
		return KindFloat, true
	}
	return KindStop, false
}

// compactProtocol is the variable-length encoding.
//
// Integers are zigzag varints, field ids are deltas from the previous
// field of the same struct, bool field values live in the header type
// nibble, and doubles and floats are little-endian.
type compactProtocol struct{}

var _ Protocol = compactProtocol{}

// CompactProtocol returns the Thrift compact protocol.
func CompactProtocol() Protocol {
	return compactProtocol{}
}

func (compactProtocol) Name() string        { return compactProtocolName }
func (compactProtocol) ContentType() string { return compactContentType }

func (compactProtocol) NewWriter() Writer {
	return &compactWriter{}
}

func (compactProtocol) NewReader(data []byte) Reader {
	return &compactReader{input: input{data: data}}
}

type compactWriter struct {
	buf     []byte
	lastID  int16
	stack   []int16
	boolID  int16
	boolSet bool
}

func (w *compactWriter) WriteStructBegin(string) {
	w.stack = append(w.stack, w.lastID)
	w.lastID = 0
}

func (w *compactWriter) WriteStructEnd() {
	if n := len(w.stack); n > 0 {
		w.lastID = w.stack[n-1]
		w.stack = w.stack[:n-1]
	}
}

func (w *compactWriter) WriteFieldBegin(_ string, kind TypeKind, id int16) {
	if kind == KindBool {
		// The header is written by WriteBool, which knows the value.
		w.boolID = id
		w.boolSet = true
		return
	}
	w.writeFieldHeader(kindToCompact[kind], id)
}

func (w *compactWriter) writeFieldHeader(ct byte, id int16) {
	if id > w.lastID && id-w.lastID <= 15 {
		w.buf = append(w.buf, byte(id-w.lastID)<<4|ct)
	} else {
		w.buf = append(w.buf, ct)
		w.WriteI16(id)
	}
	w.lastID = id
}

func (w *compactWriter) WriteFieldEnd() {}

func (w *compactWriter) WriteFieldStop() {
	w.buf = append(w.buf, compactStop)
}

func (w *compactWriter) WriteBool(v bool) {
	ct := compactBoolFalse
	if v {
		ct = compactBoolTrue
	}
	if w.boolSet {
		w.boolSet = false
		w.writeFieldHeader(ct, w.boolID)
		return
	}
	w.buf = append(w.buf, ct)
}

func (w *compactWriter) WriteI8(v int8) {
	w.buf = append(w.buf, byte(v))
}

func (w *compactWriter) WriteI16(v int16) {
	w.buf = binary.AppendUvarint(w.buf, uint64(zigzag32(int32(v))))
}

func (w *compactWriter) WriteI32(v int32) {
	w.buf = binary.AppendUvarint(w.buf, uint64(zigzag32(v)))
}

func (w *compactWriter) WriteI64(v int64) {
	w.buf = binary.AppendUvarint(w.buf, zigzag64(v))
}

func (w *compactWriter) WriteDouble(v float64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, math.Float64bits(v))
}

func (w *compactWriter) WriteFloat(v float32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, math.Float32bits(v))
}

func (w *compactWriter) WriteString(v string) {
	w.buf = binary.AppendUvarint(w.buf, uint64(len(v)))
	w.buf = append(w.buf, v...)
}

func (w *compactWriter) WriteBinary(v []byte) {
	w.buf = binary.AppendUvarint(w.buf, uint64(len(v)))
	w.buf = append(w.buf, v...)
}

func (w *compactWriter) WriteListBegin(elem TypeKind, size int) {
	ct := kindToCompact[elem]
	if size <= 14 {
		w.buf = append(w.buf, byte(size)<<4|ct)
		return
	}
	w.buf = append(w.buf, 0xf0|ct)
	w.buf = binary.AppendUvarint(w.buf, uint64(size))
}

func (w *compactWriter) WriteListEnd() {}

func (w *compactWriter) WriteSetBegin(elem TypeKind, size int) {
	w.WriteListBegin(elem, size)
}

func (w *compactWriter) WriteSetEnd() {}

func (w *compactWriter) WriteMapBegin(key, value TypeKind, size int) {
	if size == 0 {
		w.buf = append(w.buf, 0)
		return
	}
	w.buf = binary.AppendUvarint(w.buf, uint64(size))
	w.buf = append(w.buf, kindToCompact[key]<<4|kindToCompact[value])
}

func (w *compactWriter) WriteMapEnd() {}

func (w *compactWriter) WriteRaw(p []byte) {
	w.buf = append(w.buf, p...)
}

func (w *compactWriter) Bytes() []byte {
	return w.buf
}

type compactReader struct {
	input
	lastID    int16
	stack     []int16
	boolValue bool
	boolSet   bool
}

func (r *compactReader) ReadStructBegin() error {
	r.stack = append(r.stack, r.lastID)
	r.lastID = 0
	return nil
}

func (r *compactReader) ReadStructEnd() error {
	if n := len(r.stack); n > 0 {
		r.lastID = r.stack[n-1]
		r.stack = r.stack[:n-1]
	}
	return nil
}

func (r *compactReader) ReadFieldBegin() (TypeKind, int16, error) {
	start := r.off
	b, err := r.readByte()
	if err != nil {
		return KindStop, 0, err
	}
	ct := b & 0x0f
	if ct == compactStop {
		return KindStop, 0, nil
	}
	kind, ok := compactToKind(ct)
	if !ok {
		return KindStop, 0, newDecodeError(ErrUnsupportedEncoding, start, fmt.Errorf("compact type %d", ct))
	}
	var id int16
	if delta := int16(b >> 4); delta != 0 {
		id = r.lastID + delta
	} else {
		if id, err = r.ReadI16(); err != nil {
			return KindStop, 0, err
		}
	}
	if kind == KindBool {
		r.boolValue = ct == compactBoolTrue
		r.boolSet = true
	}
	r.lastID = id
	return kind, id, nil
}

func (r *compactReader) ReadFieldEnd() error { return nil }

func (r *compactReader) ReadBool() (bool, error) {
	if r.boolSet {
		r.boolSet = false
		return r.boolValue, nil
	}
	b, err := r.readByte()
	return b == compactBoolTrue, err
}

func (r *compactReader) ReadI8() (int8, error) {
	b, err := r.readByte()
	return int8(b), err
}

func (r *compactReader) ReadI16() (int16, error) {
	v, err := r.readVarint(3)
	return int16(unzigzag32(uint32(v))), err
}

func (r *compactReader) ReadI32() (int32, error) {
	v, err := r.readVarint(5)
	return unzigzag32(uint32(v)), err
}

func (r *compactReader) ReadI64() (int64, error) {
	v, err := r.readVarint(binary.MaxVarintLen64)
	return unzigzag64(v), err
}

func (r *compactReader) ReadDouble() (float64, error) {
	p, err := r.next(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(p)), nil
}

func (r *compactReader) ReadFloat() (float32, error) {
	p, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(p)), nil
}

func (r *compactReader) ReadString() (string, error) {
	n, err := r.readSize()
	if err != nil {
		return "", err
	}
	p, err := r.next(n)
	if err != nil {
		return "", err
	}
	return string(p), nil
}

func (r *compactReader) ReadBinary() ([]byte, error) {
	n, err := r.readSize()
	if err != nil {
		return nil, err
	}
	return r.copyBytes(n)
}

func (r *compactReader) ReadListBegin() (TypeKind, int, error) {
	start := r.off
	b, err := r.readByte()
	if err != nil {
		return KindStop, 0, err
	}
	size := int(b >> 4)
	if size == 15 {
		if size, err = r.readSize(); err != nil {
			return KindStop, 0, err
		}
	}
	elem, ok := compactToKind(b & 0x0f)
	if !ok {
		return KindStop, 0, newDecodeError(ErrUnsupportedEncoding, start, fmt.Errorf("compact element type %d", b&0x0f))
	}
	if err := r.checkCount(size, 1); err != nil {
		return KindStop, 0, err
	}
	return elem, size, nil
}

func (r *compactReader) ReadListEnd() error { return nil }

func (r *compactReader) ReadSetBegin() (TypeKind, int, error) {
	return r.ReadListBegin()
}

func (r *compactReader) ReadSetEnd() error { return nil }

func (r *compactReader) ReadMapBegin() (TypeKind, TypeKind, int, error) {
	size, err := r.readSize()
	if err != nil || size == 0 {
		return KindStop, KindStop, 0, err
	}
	start := r.off
	kv, err := r.readByte()
	if err != nil {
		return KindStop, KindStop, 0, err
	}
	key, okKey := compactToKind(kv >> 4)
	value, okValue := compactToKind(kv & 0x0f)
	if !okKey || !okValue {
		return KindStop, KindStop, 0, newDecodeError(ErrUnsupportedEncoding, start, fmt.Errorf("compact map types %#x", kv))
	}
	if err := r.checkCount(size, 2); err != nil {
		return KindStop, KindStop, 0, err
	}
	return key, value, size, nil
}

func (r *compactReader) ReadMapEnd() error { return nil }

func (r *compactReader) Skip(kind TypeKind) error {
	return skipValue(r, kind, DefaultMaxDepth)
}

// readVarint reads an unsigned LEB128 value of at most maxLen bytes.
func (r *compactReader) readVarint(maxLen int) (uint64, error) {
	start := r.off
	var v uint64
	for i := 0; i < maxLen; i++ {
		b, err := r.readByte()
		if err != nil {
			return 0, err
		}
		v |= uint64(b&0x7f) << (7 * uint(i))
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, newDecodeError(ErrUnsupportedEncoding, start, fmt.Errorf("varint longer than %d bytes", maxLen))
}

// readSize reads a non-negative varint length.
func (r *compactReader) readSize() (int, error) {
	start := r.off
	v, err := r.readVarint(5)
	if err != nil {
		return 0, err
	}
	if v > math.MaxInt32 {
		return 0, newDecodeError(ErrUnsupportedEncoding, start, fmt.Errorf("size %d out of range", v))
	}
	return int(v), nil
}

func zigzag32(n int32) uint32 {
	return uint32((n << 1) ^ (n >> 31))
}

func unzigzag32(n uint32) int32 {
	return int32(n>>1) ^ -int32(n&1)
}

func zigzag64(n int64) uint64 {
	return uint64((n << 1) ^ (n >> 63))
}

func unzigzag64(n uint64) int64 {
	return int64(n>>1) ^ -int64(n&1)
}
