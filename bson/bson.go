// Package bson provides a schema-bound BSON codec for tagwire records.
package bson

import (
	"sort"

	"github.com/zoobzio/tagwire"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContentType is the MIME type of BSON documents.
const ContentType = "application/bson"

// New returns a BSON codec for records of s.
func New(s *tagwire.Schema) tagwire.Codec {
	return tagwire.NewDocumentCodec(s, tagwire.DocumentFormat{
		ContentType: ContentType,
		Marshal:     marshal,
		Unmarshal:   unmarshal,
	})
}

func marshal(doc map[string]any) ([]byte, error) {
	return bson.Marshal(toD(doc))
}

func unmarshal(data []byte) (map[string]any, error) {
	var d bson.D
	if err := bson.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	doc, _ := normalize(d).(map[string]any)
	return doc, nil
}

// toD orders document keys so equal records produce identical bytes.
func toD(m map[string]any) bson.D {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	d := make(bson.D, 0, len(keys))
	for _, k := range keys {
		d = append(d, bson.E{Key: k, Value: toBSON(m[k])})
	}
	return d
}

func toBSON(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return toD(x)
	case []any:
		out := make(bson.A, len(x))
		for i, item := range x {
			out[i] = toBSON(item)
		}
		return out
	default:
		return v
	}
}

// normalize turns driver types back into plain maps, slices and bytes.
func normalize(v any) any {
	switch x := v.(type) {
	case bson.D:
		out := make(map[string]any, len(x))
		for _, e := range x {
			out[e.Key] = normalize(e.Value)
		}
		return out
	case bson.M:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = normalize(val)
		}
		return out
	case bson.A:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = normalize(item)
		}
		return out
	case primitive.Binary:
		return x.Data
	default:
		return v
	}
}
