package tagwire_test

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/zoobzio/tagwire"
	tagwiretest "github.com/zoobzio/tagwire/testing"
)

func TestSplitJoin_Identity(t *testing.T) {
	for _, p := range tagwiretest.Protocols() {
		data, err := tagwire.NewCodec(tagwiretest.KitchenSink, tagwire.WithProtocol(p)).Encode(tagwiretest.FullKitchenSink(t))
		if err != nil {
			t.Fatalf("Encode() error: %v", err)
		}
		fields, err := tagwire.SplitFields(p, data)
		if err != nil {
			t.Fatalf("%s: SplitFields() error: %v", p.Name(), err)
		}
		if got := tagwire.JoinFields(p, fields); !bytes.Equal(got, data) {
			t.Errorf("%s: JoinFields(SplitFields(x)) = % X\nwant % X", p.Name(), got, data)
		}
	}
}

func TestSplitFields_Bool(t *testing.T) {
	r := tagwiretest.MustRecord(t, tagwiretest.KitchenSink, map[string]any{"flag": true})
	for _, p := range tagwiretest.Protocols() {
		data, _ := tagwire.NewCodec(tagwiretest.KitchenSink, tagwire.WithProtocol(p)).Encode(r)
		fields, err := tagwire.SplitFields(p, data)
		if err != nil {
			t.Fatalf("%s: SplitFields() error: %v", p.Name(), err)
		}
		want := []tagwire.WireField{{Kind: tagwire.KindBool, Tag: 1, Raw: []byte{1}}}
		if !reflect.DeepEqual(fields, want) {
			t.Errorf("%s: SplitFields() = %+v, want %+v", p.Name(), fields, want)
		}
	}
}

func TestJoinFields_Filtered(t *testing.T) {
	for _, p := range tagwiretest.Protocols() {
		newer := tagwiretest.MustRecord(t, dataEnsureV2, map[string]any{
			"data1": "a",
			"data2": int32(-4),
			"data4": false,
			"data9": tagwiretest.FullKitchenSink(t),
		})
		data, err := tagwire.NewCodec(dataEnsureV2, tagwire.WithProtocol(p)).Encode(newer)
		if err != nil {
			t.Fatalf("Encode() error: %v", err)
		}
		fields, err := tagwire.SplitFields(p, data)
		if err != nil {
			t.Fatalf("SplitFields() error: %v", err)
		}

		var kept []tagwire.WireField
		for _, f := range fields {
			if _, err := tagwiretest.DataEnsure.Describe(f.Tag); err == nil {
				kept = append(kept, f)
			}
		}
		older := tagwiretest.MustRecord(t, tagwiretest.DataEnsure, map[string]any{"data1": "a", "data2": int32(-4)})
		want, _ := tagwire.NewCodec(tagwiretest.DataEnsure, tagwire.WithProtocol(p)).Encode(older)

		if got := tagwire.JoinFields(p, kept); !bytes.Equal(got, want) {
			t.Errorf("%s: filtered payload = % X, want % X", p.Name(), got, want)
		}
	}
}

func TestSplitFields_Empty(t *testing.T) {
	for _, p := range tagwiretest.Protocols() {
		fields, err := tagwire.SplitFields(p, []byte{0x00})
		if err != nil {
			t.Fatalf("%s: SplitFields() error: %v", p.Name(), err)
		}
		if len(fields) != 0 {
			t.Errorf("%s: got %d fields, want 0", p.Name(), len(fields))
		}
		if got := tagwire.JoinFields(p, nil); !bytes.Equal(got, []byte{0x00}) {
			t.Errorf("%s: JoinFields(nil) = % X, want 00", p.Name(), got)
		}
	}
}
