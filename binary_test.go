package tagwire_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/zoobzio/tagwire"
	tagwiretest "github.com/zoobzio/tagwire/testing"
)

func TestBinary_Bytes(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
		want   []byte
	}{
		{
			name:   "empty",
			values: map[string]any{},
			want:   []byte{0x00},
		},
		{
			name:   "string only",
			values: map[string]any{"data1": "x"},
			want:   []byte{0x0B, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01, 0x78, 0x00},
		},
		{
			name:   "i32 only",
			values: map[string]any{"data2": int32(1)},
			want:   []byte{0x08, 0x00, 0x02, 0x00, 0x00, 0x00, 0x01, 0x00},
		},
		{
			name:   "both",
			values: map[string]any{"data1": "x", "data2": int32(-1)},
			want: []byte{
				0x0B, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01, 0x78,
				0x08, 0x00, 0x02, 0xFF, 0xFF, 0xFF, 0xFF,
				0x00,
			},
		},
	}

	c := tagwire.NewCodec(tagwiretest.DataEnsure)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Encode(tagwiretest.MustRecord(t, tagwiretest.DataEnsure, tt.values))
			if err != nil {
				t.Fatalf("Encode() error: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Encode() = % X, want % X", got, tt.want)
			}
		})
	}
}

func TestBinary_Containers(t *testing.T) {
	s := tagwire.MustSchema("Containers",
		tagwire.Field(1, "l", tagwire.ListOf(tagwire.Byte()), tagwire.Optional),
		tagwire.Field(2, "m", tagwire.MapOf(tagwire.Byte(), tagwire.Bool()), tagwire.Optional),
	)
	r := tagwiretest.MustRecord(t, s, map[string]any{
		"l": []any{int8(1), int8(-1)},
		"m": []tagwire.MapEntry{{Key: int8(2), Value: true}},
	})

	want := []byte{
		0x0F, 0x00, 0x01, 0x03, 0x00, 0x00, 0x00, 0x02, 0x01, 0xFF,
		0x0D, 0x00, 0x02, 0x03, 0x02, 0x00, 0x00, 0x00, 0x01, 0x02, 0x01,
		0x00,
	}
	got, err := tagwire.NewCodec(s).Encode(r)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Encode() = % X, want % X", got, want)
	}
}

func TestBinary_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{
			name: "unknown type id",
			data: []byte{0x01, 0x00, 0x05, 0x00},
			want: tagwire.ErrUnsupportedEncoding,
		},
		{
			name: "negative string length",
			data: []byte{0x0B, 0x00, 0x01, 0xFF, 0xFF, 0xFF, 0xFF},
			want: tagwire.ErrUnsupportedEncoding,
		},
		{
			name: "negative list size on skipped field",
			data: []byte{0x0F, 0x00, 0x07, 0x08, 0xFF, 0xFF, 0xFF, 0xFE, 0x00},
			want: tagwire.ErrUnsupportedEncoding,
		},
		{
			name: "list size beyond input",
			data: []byte{0x0F, 0x00, 0x07, 0x08, 0x7F, 0xFF, 0xFF, 0xFF, 0x00},
			want: tagwire.ErrTruncated,
		},
		{
			name: "string length beyond input",
			data: []byte{0x0B, 0x00, 0x01, 0x00, 0x00, 0x00, 0x05, 0x78},
			want: tagwire.ErrTruncated,
		},
		{
			name: "missing stop",
			data: []byte{0x08, 0x00, 0x02, 0x00, 0x00, 0x00, 0x01},
			want: tagwire.ErrTruncated,
		},
	}

	c := tagwire.NewCodec(tagwiretest.DataEnsure)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := c.Decode(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
			if r != nil {
				t.Error("Decode() should not return a partial record")
			}
		})
	}
}

func TestBinary_DecodeErrorOffset(t *testing.T) {
	_, err := tagwire.NewCodec(tagwiretest.DataEnsure).Decode([]byte{0x0B, 0x00, 0x01, 0x00, 0x00, 0x00, 0x05, 0x78})

	var decodeErr *tagwire.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Decode() error should be *DecodeError, got %T", err)
	}
	if decodeErr.Offset != 7 {
		t.Errorf("DecodeError.Offset = %d, want 7", decodeErr.Offset)
	}
}

func TestBinary_LenientBool(t *testing.T) {
	s := tagwire.MustSchema("Flag", tagwire.Field(1, "on", tagwire.Bool(), tagwire.Optional))

	r, err := tagwire.NewCodec(s).Decode([]byte{0x02, 0x00, 0x01, 0x05, 0x00})
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if v, _ := tagwire.Value[bool](r, "on"); !v {
		t.Error("non-zero bool byte should decode as true")
	}
}
