// Package json provides a schema-bound JSON codec for tagwire records.
//
// Binary fields travel as standard base64 strings and map fields as arrays
// of [key, value] pairs. Numbers are decoded without loss of int64 precision.
package json

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/zoobzio/tagwire"
)

// ContentType is the MIME type of JSON documents.
const ContentType = "application/json"

var api = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	UseNumber:              true,
	ValidateJsonRawMessage: true,
}.Froze()

// New returns a JSON codec for records of s.
func New(s *tagwire.Schema) tagwire.Codec {
	return tagwire.NewDocumentCodec(s, tagwire.DocumentFormat{
		ContentType: ContentType,
		Marshal:     marshal,
		Unmarshal:   unmarshal,
	})
}

func marshal(doc map[string]any) ([]byte, error) {
	return api.Marshal(doc)
}

func unmarshal(data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := api.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
