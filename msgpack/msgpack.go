// Package msgpack provides a schema-bound MessagePack codec for tagwire records.
package msgpack

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zoobzio/tagwire"
)

// ContentType is the MIME type of MessagePack documents.
const ContentType = "application/msgpack"

// New returns a MessagePack codec for records of s.
func New(s *tagwire.Schema) tagwire.Codec {
	return tagwire.NewDocumentCodec(s, tagwire.DocumentFormat{
		ContentType: ContentType,
		Marshal:     marshal,
		Unmarshal:   unmarshal,
	})
}

func marshal(doc map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func unmarshal(data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := msgpack.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
