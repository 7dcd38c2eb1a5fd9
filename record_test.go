package tagwire_test

import (
	"errors"
	"testing"

	"github.com/zoobzio/tagwire"
	tagwiretest "github.com/zoobzio/tagwire/testing"
)

func TestBuilder_SetGet(t *testing.T) {
	r, err := tagwire.NewBuilder(tagwiretest.DataEnsure).
		Set("data1", "hello").
		SetTag(2, int32(42)).
		Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if v, ok := r.Get("data1"); !ok || v != "hello" {
		t.Errorf("Get(data1) = %v, %v; want hello, true", v, ok)
	}
	if v, ok := r.GetTag(2); !ok || v != int32(42) {
		t.Errorf("GetTag(2) = %v, %v; want 42, true", v, ok)
	}
	if _, ok := r.Get("missing"); ok {
		t.Error("Get(missing) should report false")
	}
	if r.IsEmpty() {
		t.Error("IsEmpty() = true for a populated record")
	}
}

func TestBuilder_Clear(t *testing.T) {
	r := tagwire.NewBuilder(tagwiretest.DataEnsure).
		Set("data1", "hello").
		Set("data2", int32(1)).
		Clear("data1").
		Set("data2", nil).
		MustBuild()

	if !r.IsEmpty() {
		t.Error("cleared slots should be absent")
	}
}

func TestBuilder_Errors(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*tagwire.Record, error)
		want  error
	}{
		{
			name: "unknown name",
			build: func() (*tagwire.Record, error) {
				return tagwire.NewBuilder(tagwiretest.DataEnsure).Set("data3", "x").Build()
			},
			want: tagwire.ErrUnknownField,
		},
		{
			name: "unknown tag",
			build: func() (*tagwire.Record, error) {
				return tagwire.NewBuilder(tagwiretest.DataEnsure).SetTag(9, "x").Build()
			},
			want: tagwire.ErrUnknownField,
		},
		{
			name: "untyped int for i32",
			build: func() (*tagwire.Record, error) {
				return tagwire.NewBuilder(tagwiretest.DataEnsure).Set("data2", 42).Build()
			},
			want: tagwire.ErrContractViolation,
		},
		{
			name: "bytes for string",
			build: func() (*tagwire.Record, error) {
				return tagwire.NewBuilder(tagwiretest.DataEnsure).Set("data1", []byte("x")).Build()
			},
			want: tagwire.ErrContractViolation,
		},
		{
			name: "list element",
			build: func() (*tagwire.Record, error) {
				return tagwire.NewBuilder(tagwiretest.KitchenSink).Set("names", []any{"a", 1}).Build()
			},
			want: tagwire.ErrContractViolation,
		},
		{
			name: "map value",
			build: func() (*tagwire.Record, error) {
				return tagwire.NewBuilder(tagwiretest.KitchenSink).
					Set("scores", []tagwire.MapEntry{{Key: "a", Value: int64(1)}}).
					Build()
			},
			want: tagwire.ErrContractViolation,
		},
		{
			name: "record of another schema",
			build: func() (*tagwire.Record, error) {
				return tagwire.NewBuilder(tagwiretest.KitchenSink).
					Set("origin", tagwiretest.DataEnsure.Default()).
					Build()
			},
			want: tagwire.ErrContractViolation,
		},
		{
			name: "first error wins",
			build: func() (*tagwire.Record, error) {
				return tagwire.NewBuilder(tagwiretest.DataEnsure).
					Set("nope", "x").
					Set("data2", "also wrong").
					Build()
			},
			want: tagwire.ErrUnknownField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := tt.build()
			if !errors.Is(err, tt.want) {
				t.Errorf("Build() error = %v, want %v", err, tt.want)
			}
			if r != nil {
				t.Error("Build() should not return a record on error")
			}
		})
	}
}

func TestBuilder_ContractErrorPath(t *testing.T) {
	_, err := tagwire.NewBuilder(tagwiretest.KitchenSink).
		Set("grid", []tagwire.MapEntry{{Key: int16(1), Value: []any{1.0, float32(2)}}}).
		Build()

	var contractErr *tagwire.ContractError
	if !errors.As(err, &contractErr) {
		t.Fatalf("Build() error should be *ContractError, got %T", err)
	}
	if contractErr.Field != "grid{value}[]" {
		t.Errorf("ContractError.Field = %q, want %q", contractErr.Field, "grid{value}[]")
	}
	if contractErr.Want.Kind != tagwire.KindDouble {
		t.Errorf("ContractError.Want = %s, want double", contractErr.Want)
	}
}

func TestBuilder_Consumed(t *testing.T) {
	b := tagwire.NewBuilder(tagwiretest.DataEnsure).Set("data1", "x")
	if _, err := b.Build(); err != nil {
		t.Fatalf("first Build() error: %v", err)
	}

	if _, err := b.Build(); !errors.Is(err, tagwire.ErrBuilderConsumed) {
		t.Errorf("second Build() error = %v, want ErrBuilderConsumed", err)
	}
}

func TestMustBuild_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustBuild() should panic on error")
		}
	}()
	tagwire.NewBuilder(tagwiretest.DataEnsure).Set("data2", "x").MustBuild()
}

func TestRecord_Immutable(t *testing.T) {
	blob := []byte{1, 2, 3}
	names := []any{"a", "b"}
	r := tagwiretest.MustRecord(t, tagwiretest.KitchenSink, map[string]any{
		"blob":  blob,
		"names": names,
	})

	// Caller-owned inputs are copied on Set.
	blob[0] = 9
	names[0] = "z"

	got, _ := tagwire.Value[[]byte](r, "blob")
	if got[0] != 1 {
		t.Errorf("record blob changed with caller slice: %v", got)
	}

	// Values handed out are copies too.
	got[1] = 9
	again, _ := tagwire.Value[[]byte](r, "blob")
	if again[1] != 2 {
		t.Errorf("record blob changed through Get result: %v", again)
	}

	list, _ := tagwire.Value[[]any](r, "names")
	if list[0] != "a" {
		t.Errorf("record names changed with caller slice: %v", list)
	}
}

func TestRecord_ToBuilder(t *testing.T) {
	orig := tagwiretest.MustRecord(t, tagwiretest.DataEnsure, map[string]any{"data1": "a", "data2": int32(1)})

	changed, err := orig.ToBuilder().Set("data1", "b").Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if v, _ := tagwire.Value[string](orig, "data1"); v != "a" {
		t.Errorf("original data1 = %q, want %q", v, "a")
	}
	if v, _ := tagwire.Value[string](changed, "data1"); v != "b" {
		t.Errorf("changed data1 = %q, want %q", v, "b")
	}
	if v, _ := tagwire.Value[int32](changed, "data2"); v != 1 {
		t.Errorf("changed data2 = %d, want 1", v)
	}
}

func TestRecord_All(t *testing.T) {
	r := tagwire.NewBuilder(tagwiretest.KitchenSink).
		Set("must", "m").
		Set("count", int32(4)).
		Set("flag", false).
		MustBuild()

	var tags []int16
	for fd, v := range r.All() {
		tags = append(tags, fd.Tag)
		if v == nil {
			t.Errorf("All() yielded nil for %s", fd.Name)
		}
	}
	if len(tags) != 3 || tags[0] != 1 || tags[1] != 4 || tags[2] != 16 {
		t.Errorf("All() tags = %v, want [1 4 16]", tags)
	}

	// Early break stops iteration.
	n := 0
	for range r.All() {
		n++
		break
	}
	if n != 1 {
		t.Errorf("All() iterated %d times after break, want 1", n)
	}
}

func TestValue(t *testing.T) {
	r := tagwiretest.MustRecord(t, tagwiretest.DataEnsure, map[string]any{"data2": int32(7)})

	if v, ok := tagwire.Value[int32](r, "data2"); !ok || v != 7 {
		t.Errorf("Value[int32](data2) = %d, %v; want 7, true", v, ok)
	}
	if _, ok := tagwire.Value[int64](r, "data2"); ok {
		t.Error("Value[int64] should fail for an i32 slot")
	}
	if _, ok := tagwire.Value[string](r, "data1"); ok {
		t.Error("Value should fail for an absent slot")
	}
}

func TestRecord_Validate(t *testing.T) {
	inner := tagwire.MustSchema("Inner",
		tagwire.Field(1, "id", tagwire.I64(), tagwire.Required),
	)
	outer := tagwire.MustSchema("Outer",
		tagwire.Field(1, "name", tagwire.String(), tagwire.Required),
		tagwire.Field(2, "inner", tagwire.StructOf(inner), tagwire.Optional),
	)

	tests := []struct {
		name   string
		values map[string]any
		field  string
	}{
		{
			name:   "all present",
			values: map[string]any{"name": "n", "inner": tagwiretest.MustRecord(t, inner, map[string]any{"id": int64(1)})},
		},
		{
			name:   "optional nested absent",
			values: map[string]any{"name": "n"},
		},
		{
			name:   "top-level required absent",
			values: map[string]any{},
			field:  "name",
		},
		{
			name:   "nested required absent",
			values: map[string]any{"name": "n", "inner": inner.Default()},
			field:  "inner.id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tagwiretest.MustRecord(t, outer, tt.values).Validate()
			if tt.field == "" {
				if err != nil {
					t.Errorf("Validate() error: %v", err)
				}
				return
			}
			if !errors.Is(err, tagwire.ErrMissingRequired) {
				t.Fatalf("Validate() error = %v, want ErrMissingRequired", err)
			}
			var schemaErr *tagwire.SchemaError
			if errors.As(err, &schemaErr) && schemaErr.Field != tt.field {
				t.Errorf("SchemaError.Field = %q, want %q", schemaErr.Field, tt.field)
			}
		})
	}
}
