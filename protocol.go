package tagwire

// Writer emits the ordered-tag stream of one payload.
// Writers buffer in memory and cannot fail; type checking happens
// before values reach them.
type Writer interface {
	WriteStructBegin(name string)
	WriteStructEnd()
	WriteFieldBegin(name string, kind TypeKind, id int16)
	WriteFieldEnd()
	WriteFieldStop()

	WriteBool(v bool)
	WriteI8(v int8)
	WriteI16(v int16)
	WriteI32(v int32)
	WriteI64(v int64)
	WriteDouble(v float64)
	WriteFloat(v float32)
	WriteString(v string)
	WriteBinary(v []byte)

	WriteListBegin(elem TypeKind, size int)
	WriteListEnd()
	WriteSetBegin(elem TypeKind, size int)
	WriteSetEnd()
	WriteMapBegin(key, value TypeKind, size int)
	WriteMapEnd()

	// WriteRaw appends bytes that are already encoded in this protocol.
	WriteRaw(p []byte)

	// Bytes returns the encoded payload.
	Bytes() []byte
}

// Reader consumes the ordered-tag stream of one payload.
// Every method fails with a *DecodeError when the input is truncated
// or malformed.
type Reader interface {
	ReadStructBegin() error
	ReadStructEnd() error
	// ReadFieldBegin returns KindStop once the struct's fields are exhausted.
	ReadFieldBegin() (kind TypeKind, id int16, err error)
	ReadFieldEnd() error

	ReadBool() (bool, error)
	ReadI8() (int8, error)
	ReadI16() (int16, error)
	ReadI32() (int32, error)
	ReadI64() (int64, error)
	ReadDouble() (float64, error)
	ReadFloat() (float32, error)
	ReadString() (string, error)
	ReadBinary() ([]byte, error)

	ReadListBegin() (elem TypeKind, size int, err error)
	ReadListEnd() error
	ReadSetBegin() (elem TypeKind, size int, err error)
	ReadSetEnd() error
	ReadMapBegin() (key, value TypeKind, size int, err error)
	ReadMapEnd() error

	// Skip consumes one value of kind without materialising it.
	Skip(kind TypeKind) error

	// Offset is the number of bytes consumed so far.
	Offset() int
	// Remaining is the number of unread bytes.
	Remaining() int
}

// Protocol creates readers and writers for one wire encoding.
type Protocol interface {
	// Name is a short identifier such as "binary".
	Name() string
	// ContentType returns the MIME type of payloads in this encoding.
	ContentType() string
	NewWriter() Writer
	NewReader(data []byte) Reader
}

// ProtocolByName returns the built-in protocol with the given name.
func ProtocolByName(name string) (Protocol, bool) {
	switch name {
	case binaryProtocolName:
		return BinaryProtocol(), true
	case compactProtocolName:
		return CompactProtocol(), true
	default:
		return nil, false
	}
}
