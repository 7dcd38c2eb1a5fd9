package yaml

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/zoobzio/tagwire"
	tagwiretest "github.com/zoobzio/tagwire/testing"
)

func TestContentType(t *testing.T) {
	c := New(tagwiretest.DataEnsure)
	if c.ContentType() != "application/yaml" {
		t.Errorf("ContentType() = %q, want %q", c.ContentType(), "application/yaml")
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	c := New(tagwiretest.KitchenSink)
	orig := tagwiretest.FullKitchenSink(t)

	data, err := c.Marshal(orig)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var got *tagwire.Record
	if err := c.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if !reflect.DeepEqual(got, orig) {
		t.Errorf("round-trip mismatch:\n got %v\nwant %v", tagwire.ToMap(got), tagwire.ToMap(orig))
	}
}

func TestMarshalUnmarshal_FloatLimits(t *testing.T) {
	c := New(tagwiretest.KitchenSink)
	tests := []struct {
		name string
		in   float32
	}{
		{name: "max", in: math.MaxFloat32},
		{name: "min", in: -math.MaxFloat32},
		{name: "smallest", in: math.SmallestNonzeroFloat32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := tagwiretest.MustRecord(t, tagwiretest.KitchenSink, map[string]any{"approx": tt.in})
			data, err := c.Marshal(orig)
			if err != nil {
				t.Fatalf("Marshal() error: %v", err)
			}

			var got *tagwire.Record
			if err := c.Unmarshal(data, &got); err != nil {
				t.Fatalf("Unmarshal() error: %v", err)
			}
			v, ok := tagwire.Value[float32](got, "approx")
			if !ok {
				t.Fatalf("approx dropped from %s", data)
			}
			if v != tt.in {
				t.Errorf("approx = %v, want %v", v, tt.in)
			}
		})
	}
}

func TestMarshalBinaryAsBase64(t *testing.T) {
	c := New(tagwiretest.KitchenSink)
	r := tagwiretest.MustRecord(t, tagwiretest.KitchenSink, map[string]any{"blob": []byte{0x00, 0xff, 0x10}})

	data, err := c.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "blob: AP8Q" {
		t.Errorf("Marshal() = %q, want %q", got, "blob: AP8Q")
	}
}

func TestUnmarshalSkipsUnknown(t *testing.T) {
	c := New(tagwiretest.DataEnsure)

	doc := "data1: x\ndata2: 7\nextra:\n  - 1\n  - 2\n"
	var got *tagwire.Record
	if err := c.Unmarshal([]byte(doc), &got); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	want := tagwiretest.MustRecord(t, tagwiretest.DataEnsure, map[string]any{"data1": "x", "data2": int32(7)})
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Unmarshal() = %v, want %v", tagwire.ToMap(got), tagwire.ToMap(want))
	}
}

func TestUnmarshalInvalid(t *testing.T) {
	c := New(tagwiretest.DataEnsure)

	var got *tagwire.Record
	if err := c.Unmarshal([]byte("data1: [unclosed"), &got); err == nil {
		t.Error("Unmarshal() should fail on malformed YAML")
	}
}
