package tagwire

import (
	"context"
	"fmt"
	"time"
)

// Codec provides content-type aware marshaling.
type Codec interface {
	// ContentType returns the MIME type for this codec (e.g., "application/json").
	ContentType() string

	// Marshal encodes v into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error
}

// StructCodec encodes and decodes records of one schema over one protocol.
// It is stateless between calls and safe for concurrent use.
type StructCodec struct {
	schema *Schema
	cfg    config
}

var _ Codec = (*StructCodec)(nil)

// NewCodec returns a codec for s. The default protocol is BinaryProtocol.
// A codec built on a nil schema fails every call with ErrInvalidSchema.
func NewCodec(s *Schema, opts ...Option) *StructCodec {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	c := &StructCodec{schema: s, cfg: cfg}
	emitCodecCreated(context.Background(), cfg.protocol.ContentType(), s.Name())
	return c
}

// Schema returns the schema the codec is bound to.
func (c *StructCodec) Schema() *Schema {
	return c.schema
}

// Protocol returns the wire protocol in use.
func (c *StructCodec) Protocol() Protocol {
	return c.cfg.protocol
}

// ContentType returns the MIME type of the protocol in use.
func (c *StructCodec) ContentType() string {
	return c.cfg.protocol.ContentType()
}

// Encode serializes r. Equal records always produce identical bytes.
func (c *StructCodec) Encode(r *Record) ([]byte, error) {
	return c.EncodeContext(context.Background(), r)
}

// EncodeContext is Encode with a context for signal emission.
func (c *StructCodec) EncodeContext(ctx context.Context, r *Record) ([]byte, error) {
	start := time.Now()
	emitEncodeStart(ctx, c.ContentType(), c.schema.Name())

	var (
		retErr  error
		retData []byte
		fields  int
	)
	defer func() {
		emitEncodeComplete(ctx, c.ContentType(), c.schema.Name(), len(retData), fields, time.Since(start), retErr)
	}()

	if c.schema == nil {
		retErr = errNilSchema("")
		return nil, retErr
	}
	if r == nil {
		retErr = newContractError(c.schema.Name(), StructOf(c.schema), r)
		return nil, retErr
	}
	if r.schema != c.schema {
		retErr = newContractError(c.schema.Name(), StructOf(c.schema), r)
		return nil, retErr
	}

	e := &encoder{w: c.cfg.protocol.NewWriter()}
	n, err := e.writeStruct(r, "")
	if err != nil {
		retErr = fmt.Errorf("encode %s: %w", c.schema.Name(), err)
		return nil, retErr
	}
	fields = n
	retData = e.w.Bytes()
	return retData, nil
}

// Decode parses one struct payload. Unknown fields and fields whose wire
// kind disagrees with the schema are skipped. Bytes after the struct's
// end marker are ignored; framing belongs to the transport.
func (c *StructCodec) Decode(data []byte) (*Record, error) {
	return c.DecodeContext(context.Background(), data)
}

// DecodeContext is Decode with a context for signal emission.
func (c *StructCodec) DecodeContext(ctx context.Context, data []byte) (*Record, error) {
	start := time.Now()
	emitDecodeStart(ctx, c.ContentType(), c.schema.Name())

	d := &decoder{
		r:         c.cfg.protocol.NewReader(data),
		maxDepth:  c.cfg.maxDepth,
		maxLength: c.cfg.maxLength,
	}

	var retErr error
	defer func() {
		emitDecodeComplete(ctx, c.ContentType(), c.schema.Name(), len(data), d.skipped, time.Since(start), retErr)
	}()

	if c.schema == nil {
		retErr = errNilSchema("")
		return nil, retErr
	}

	r, err := d.readStruct(c.schema, 1)
	if err != nil {
		retErr = fmt.Errorf("decode %s: %w", c.schema.Name(), err)
		return nil, retErr
	}
	return r, nil
}

// Marshal implements Codec. v must be a *Record of the codec's schema.
func (c *StructCodec) Marshal(v any) ([]byte, error) {
	r, ok := v.(*Record)
	if !ok {
		return nil, newContractError(c.schema.Name(), StructOf(c.schema), v)
	}
	return c.Encode(r)
}

// Unmarshal implements Codec. v must be a **Record.
func (c *StructCodec) Unmarshal(data []byte, v any) error {
	dst, ok := v.(**Record)
	if !ok || dst == nil {
		return newContractError(c.schema.Name(), StructOf(c.schema), v)
	}
	r, err := c.Decode(data)
	if err != nil {
		return err
	}
	*dst = r
	return nil
}
