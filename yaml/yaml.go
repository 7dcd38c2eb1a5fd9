// Package yaml provides a schema-bound YAML codec for tagwire records.
package yaml

import (
	"encoding/base64"

	"github.com/zoobzio/tagwire"
	"gopkg.in/yaml.v3"
)

// ContentType is the MIME type of YAML documents.
const ContentType = "application/yaml"

// New returns a YAML codec for records of s.
func New(s *tagwire.Schema) tagwire.Codec {
	return tagwire.NewDocumentCodec(s, tagwire.DocumentFormat{
		ContentType: ContentType,
		Marshal:     marshal,
		Unmarshal:   unmarshal,
	})
}

func marshal(doc map[string]any) ([]byte, error) {
	return yaml.Marshal(encodeBinary(doc))
}

func unmarshal(data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// encodeBinary replaces byte slices with base64 text.
// yaml.v3 would otherwise emit them as integer sequences.
func encodeBinary(v any) any {
	switch x := v.(type) {
	case []byte:
		return base64.StdEncoding.EncodeToString(x)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = encodeBinary(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = encodeBinary(val)
		}
		return out
	default:
		return v
	}
}
