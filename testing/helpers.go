// Package testing provides fixture schemas and helpers for tagwire tests.
package testing

import (
	"testing"

	"github.com/zoobzio/tagwire"
)

// DataEnsureName is the universal name tests register DataEnsure under.
const DataEnsureName = "test.dev/fixtures/MyDataEnsureStruct"

// DataEnsure is a struct with two optional fields:
//
//	1: optional string data1
//	2: optional i32 data2
var DataEnsure = tagwire.MustSchema("MyDataEnsureStruct",
	tagwire.Field(1, "data1", tagwire.String(), tagwire.Optional),
	tagwire.Field(2, "data2", tagwire.I32(), tagwire.Optional),
)

// Point is a small struct used for nesting.
var Point = tagwire.MustSchema("Point",
	tagwire.Field(1, "x", tagwire.I32(), tagwire.Unqualified),
	tagwire.Field(2, "y", tagwire.I32(), tagwire.Unqualified),
)

// KitchenSink declares a field of every kind, including nested containers.
var KitchenSink = tagwire.MustSchema("KitchenSink",
	tagwire.Field(1, "flag", tagwire.Bool(), tagwire.Optional),
	tagwire.Field(2, "small", tagwire.Byte(), tagwire.Optional),
	tagwire.Field(3, "short", tagwire.I16(), tagwire.Optional),
	tagwire.Field(4, "count", tagwire.I32(), tagwire.Optional),
	tagwire.Field(5, "big", tagwire.I64(), tagwire.Optional),
	tagwire.Field(6, "ratio", tagwire.Double(), tagwire.Optional),
	tagwire.Field(7, "approx", tagwire.Float(), tagwire.Optional),
	tagwire.Field(8, "label", tagwire.String(), tagwire.Optional),
	tagwire.Field(9, "blob", tagwire.Binary(), tagwire.Optional),
	tagwire.Field(10, "origin", tagwire.StructOf(Point), tagwire.Optional),
	tagwire.Field(11, "names", tagwire.ListOf(tagwire.String()), tagwire.Optional),
	tagwire.Field(12, "ids", tagwire.SetOf(tagwire.I64()), tagwire.Optional),
	tagwire.Field(13, "scores", tagwire.MapOf(tagwire.String(), tagwire.I32()), tagwire.Optional),
	tagwire.Field(14, "path", tagwire.ListOf(tagwire.StructOf(Point)), tagwire.Optional),
	tagwire.Field(15, "grid", tagwire.MapOf(tagwire.I16(), tagwire.ListOf(tagwire.Double())), tagwire.Optional),
	tagwire.Field(16, "must", tagwire.String(), tagwire.Required),
)

// Protocols returns the built-in protocols for table-driven tests.
func Protocols() []tagwire.Protocol {
	return []tagwire.Protocol{tagwire.BinaryProtocol(), tagwire.CompactProtocol()}
}

// MustRecord builds a record of s from name/value pairs or fails the test.
func MustRecord(tb testing.TB, s *tagwire.Schema, values map[string]any) *tagwire.Record {
	tb.Helper()
	b := tagwire.NewBuilder(s)
	for name, v := range values {
		b.Set(name, v)
	}
	r, err := b.Build()
	if err != nil {
		tb.Fatalf("build %s: %v", s.Name(), err)
	}
	return r
}

// NewPoint builds a Point record.
func NewPoint(tb testing.TB, x, y int32) *tagwire.Record {
	tb.Helper()
	return MustRecord(tb, Point, map[string]any{"x": x, "y": y})
}

// FullKitchenSink returns a KitchenSink record with every slot present.
func FullKitchenSink(tb testing.TB) *tagwire.Record {
	tb.Helper()
	return MustRecord(tb, KitchenSink, map[string]any{
		"flag":   true,
		"small":  int8(-7),
		"short":  int16(-300),
		"count":  int32(70000),
		"big":    int64(-1) << 40,
		"ratio":  3.25,
		"approx": float32(0.5),
		"label":  "héllo",
		"blob":   []byte{0x00, 0xff, 0x10},
		"origin": NewPoint(tb, 1, -2),
		"names":  []any{"a", "", "c"},
		"ids":    []any{int64(9), int64(1), int64(5)},
		"scores": []tagwire.MapEntry{
			{Key: "x", Value: int32(1)},
			{Key: "a", Value: int32(-2)},
		},
		"path": []any{NewPoint(tb, 0, 0), NewPoint(tb, 3, 4)},
		"grid": []tagwire.MapEntry{
			{Key: int16(2), Value: []any{1.5, -0.25}},
			{Key: int16(-1), Value: []any{}},
		},
		"must": "present",
	})
}
