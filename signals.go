package tagwire

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for codec events.
var (
	SignalCodecCreated    = capitan.NewSignal("tagwire.codec.created", "Struct codec instantiated")
	SignalEncodeStart     = capitan.NewSignal("tagwire.encode.start", "Encode operation beginning")
	SignalEncodeComplete  = capitan.NewSignal("tagwire.encode.complete", "Encode operation finished")
	SignalDecodeStart     = capitan.NewSignal("tagwire.decode.start", "Decode operation beginning")
	SignalDecodeComplete  = capitan.NewSignal("tagwire.decode.complete", "Decode operation finished")
	SignalTypeRegistered  = capitan.NewSignal("tagwire.registry.registered", "Schema bound to a universal name")
	SignalDocumentSkipped = capitan.NewSignal("tagwire.document.skipped", "Document entry ignored while decoding")
)

// Keys for typed event data.
var (
	KeyContentType  = capitan.NewStringKey("content_type")
	KeySchema       = capitan.NewStringKey("schema")
	KeyTypeName     = capitan.NewStringKey("type_name")
	KeyField        = capitan.NewStringKey("field")
	KeySize         = capitan.NewIntKey("size")
	KeyFieldCount   = capitan.NewIntKey("field_count")
	KeySkippedCount = capitan.NewIntKey("skipped_count")
	KeyDuration     = capitan.NewDurationKey("duration")
	KeyError        = capitan.NewErrorKey("error")
)

// emitCodecCreated emits an event when a struct codec is created.
func emitCodecCreated(ctx context.Context, contentType, schema string) {
	capitan.Emit(ctx, SignalCodecCreated,
		KeyContentType.Field(contentType),
		KeySchema.Field(schema),
	)
}

// emitEncodeStart emits an event when encode begins.
func emitEncodeStart(ctx context.Context, contentType, schema string) {
	capitan.Emit(ctx, SignalEncodeStart,
		KeyContentType.Field(contentType),
		KeySchema.Field(schema),
	)
}

// emitEncodeComplete emits an event when encode finishes.
func emitEncodeComplete(ctx context.Context, contentType, schema string, size, fields int, duration time.Duration, err error) {
	fieldList := []capitan.Field{
		KeyContentType.Field(contentType),
		KeySchema.Field(schema),
		KeySize.Field(size),
		KeyFieldCount.Field(fields),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fieldList = append(fieldList, KeyError.Field(err))
		capitan.Error(ctx, SignalEncodeComplete, fieldList...)
	} else {
		capitan.Emit(ctx, SignalEncodeComplete, fieldList...)
	}
}

// emitDecodeStart emits an event when decode begins.
func emitDecodeStart(ctx context.Context, contentType, schema string) {
	capitan.Emit(ctx, SignalDecodeStart,
		KeyContentType.Field(contentType),
		KeySchema.Field(schema),
	)
}

// emitDecodeComplete emits an event when decode finishes.
// skipped counts fields consumed without being staged.
func emitDecodeComplete(ctx context.Context, contentType, schema string, size, skipped int, duration time.Duration, err error) {
	fieldList := []capitan.Field{
		KeyContentType.Field(contentType),
		KeySchema.Field(schema),
		KeySize.Field(size),
		KeySkippedCount.Field(skipped),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fieldList = append(fieldList, KeyError.Field(err))
		capitan.Error(ctx, SignalDecodeComplete, fieldList...)
	} else {
		capitan.Emit(ctx, SignalDecodeComplete, fieldList...)
	}
}

// emitTypeRegistered emits an event when a schema is registered.
func emitTypeRegistered(ctx context.Context, typeName, schema string) {
	capitan.Emit(ctx, SignalTypeRegistered,
		KeyTypeName.Field(typeName),
		KeySchema.Field(schema),
	)
}

// emitDocumentSkipped emits an event when a document entry is ignored.
func emitDocumentSkipped(ctx context.Context, contentType, schema, field string) {
	capitan.Emit(ctx, SignalDocumentSkipped,
		KeyContentType.Field(contentType),
		KeySchema.Field(schema),
		KeyField.Field(field),
	)
}
