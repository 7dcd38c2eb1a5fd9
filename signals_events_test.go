package tagwire_test

import (
	"context"
	"errors"
	"testing"

	"github.com/zoobzio/capitan"
	capitantesting "github.com/zoobzio/capitan/testing"

	"github.com/zoobzio/tagwire"
	tagwiretest "github.com/zoobzio/tagwire/testing"
)

// auditReader and auditWriter share a name. The writer widens the nested
// struct, changes the tags element kind and adds two trailing fields.
var (
	auditReader = tagwire.MustSchema("AuditEntry",
		tagwire.Field(1, "id", tagwire.I64(), tagwire.Unqualified),
		tagwire.Field(2, "tags", tagwire.ListOf(tagwire.String()), tagwire.Optional),
		tagwire.Field(3, "origin", tagwire.StructOf(tagwiretest.Point), tagwire.Optional),
	)
	auditPoint = tagwire.MustSchema("Point",
		tagwire.Field(1, "x", tagwire.I32(), tagwire.Unqualified),
		tagwire.Field(2, "y", tagwire.I32(), tagwire.Unqualified),
		tagwire.Field(3, "z", tagwire.I32(), tagwire.Unqualified),
	)
	auditWriter = tagwire.MustSchema("AuditEntry",
		tagwire.Field(1, "id", tagwire.I64(), tagwire.Unqualified),
		tagwire.Field(2, "tags", tagwire.ListOf(tagwire.I32()), tagwire.Optional),
		tagwire.Field(3, "origin", tagwire.StructOf(auditPoint), tagwire.Optional),
		tagwire.Field(5, "note", tagwire.String(), tagwire.Optional),
		tagwire.Field(8, "extra", tagwire.Bool(), tagwire.Optional),
	)
)

// capture hooks signal until the returned func is called, then returns the
// events that carried schema.
func capture(signal capitan.Signal, schema string) func() []capitantesting.CapturedEvent {
	c := capitantesting.NewEventCapture()
	l := capitan.Hook(signal, c.Handler())
	return func() []capitantesting.CapturedEvent {
		l.Close()
		var out []capitantesting.CapturedEvent
		for _, e := range c.Events() {
			if tagwire.KeySchema.ExtractFromFields(e.Fields) == schema {
				out = append(out, e)
			}
		}
		return out
	}
}

func TestSignals_EncodeDecodeComplete(t *testing.T) {
	for _, p := range tagwiretest.Protocols() {
		t.Run(p.Name(), func(t *testing.T) {
			newer := tagwiretest.MustRecord(t, auditWriter, map[string]any{
				"id":     int64(7),
				"tags":   []any{int32(1), int32(2)},
				"origin": tagwiretest.MustRecord(t, auditPoint, map[string]any{"x": int32(1), "y": int32(2), "z": int32(3)}),
				"note":   "n",
				"extra":  true,
			})

			encoded := capture(tagwire.SignalEncodeComplete, "AuditEntry")
			data, err := tagwire.NewCodec(auditWriter, tagwire.WithProtocol(p)).Encode(newer)
			if err != nil {
				t.Fatalf("Encode() error: %v", err)
			}
			events := encoded()
			if len(events) != 1 {
				t.Fatalf("got %d encode events, want 1", len(events))
			}
			if got := tagwire.KeyFieldCount.ExtractFromFields(events[0].Fields); got != 5 {
				t.Errorf("field_count = %d, want 5", got)
			}
			if got := tagwire.KeySize.ExtractFromFields(events[0].Fields); got != len(data) {
				t.Errorf("size = %d, want %d", got, len(data))
			}
			if got := tagwire.KeyContentType.ExtractFromFields(events[0].Fields); got != p.ContentType() {
				t.Errorf("content_type = %q, want %q", got, p.ContentType())
			}

			decoded := capture(tagwire.SignalDecodeComplete, "AuditEntry")
			got, err := tagwire.NewCodec(auditReader, tagwire.WithProtocol(p)).Decode(data)
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			events = decoded()
			if len(events) != 1 {
				t.Fatalf("got %d decode events, want 1", len(events))
			}
			// tags, origin.z, note and extra.
			if n := tagwire.KeySkippedCount.ExtractFromFields(events[0].Fields); n != 4 {
				t.Errorf("skipped_count = %d, want 4", n)
			}
			if n := tagwire.KeySize.ExtractFromFields(events[0].Fields); n != len(data) {
				t.Errorf("size = %d, want %d", n, len(data))
			}
			if events[0].Severity != capitan.SeverityInfo {
				t.Errorf("severity = %s, want %s", events[0].Severity, capitan.SeverityInfo)
			}
			if got.Has("tags") || !got.Has("origin") {
				t.Errorf("Decode() = %v, want origin without tags", tagwire.ToMap(got))
			}
		})
	}
}

func TestSignals_DecodeError(t *testing.T) {
	decoded := capture(tagwire.SignalDecodeComplete, "AuditEntry")
	_, decodeErr := tagwire.NewCodec(auditReader).Decode([]byte{0x0A, 0x00})
	events := decoded()

	if decodeErr == nil {
		t.Fatal("Decode() of a truncated payload should fail")
	}
	if len(events) != 1 {
		t.Fatalf("got %d decode events, want 1", len(events))
	}
	if events[0].Severity != capitan.SeverityError {
		t.Errorf("severity = %s, want %s", events[0].Severity, capitan.SeverityError)
	}
	if err := tagwire.KeyError.ExtractFromFields(events[0].Fields); !errors.Is(err, tagwire.ErrTruncated) {
		t.Errorf("error field = %v, want ErrTruncated", err)
	}
	if n := tagwire.KeySize.ExtractFromFields(events[0].Fields); n != 2 {
		t.Errorf("size = %d, want 2", n)
	}
}

func TestSignals_DocumentSkipped(t *testing.T) {
	skipped := capture(tagwire.SignalDocumentSkipped, "AuditEntry")
	r, err := tagwire.FromMapContext(context.Background(), "application/x-test", auditReader, map[string]any{
		"id":     int64(1),
		"nope":   1,
		"tags":   []any{"a", 2},
		"origin": map[string]any{"x": 1, "z": 3},
	})
	events := skipped()
	if err != nil {
		t.Fatalf("FromMapContext() error: %v", err)
	}
	if r.Has("tags") {
		t.Error("tags with a bad element should be skipped")
	}

	// origin.z is reported against the nested schema.
	var fields []string
	for _, e := range events {
		fields = append(fields, tagwire.KeyField.ExtractFromFields(e.Fields))
		if ct := tagwire.KeyContentType.ExtractFromFields(e.Fields); ct != "application/x-test" {
			t.Errorf("content_type = %q, want application/x-test", ct)
		}
	}
	want := []string{"nope", "tags"}
	if len(fields) != len(want) {
		t.Fatalf("skipped fields = %v, want %v", fields, want)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Errorf("skipped fields = %v, want %v", fields, want)
			break
		}
	}
}
