// Package tagwire provides schema-driven encoding of tagged binary structs.
//
// A struct type is described once by a Schema: a table of fields, each with
// a numeric tag, a name, a declared Type and a requiredness. Records are
// immutable values of a schema, built through a Builder or produced by
// decoding. A StructCodec writes records in ascending tag order and reads
// them back, skipping fields it does not know so that old readers accept
// payloads from newer writers.
//
// # Wire Model
//
// A payload is StructBegin, then one (kind, tag, value) triple per present
// field, then FieldStop and StructEnd. Kinds use the Thrift type ids, and
// two protocols are built in:
//
//   - BinaryProtocol - fixed-width big-endian (application/vnd.apache.thrift.binary)
//   - CompactProtocol - zigzag varints and field-id deltas (application/vnd.apache.thrift.compact)
//
// # Basic Usage
//
//	var User = tagwire.MustSchema("User",
//	    tagwire.Field(1, "id", tagwire.I64(), tagwire.Required),
//	    tagwire.Field(2, "name", tagwire.String(), tagwire.Optional),
//	)
//
//	r, _ := tagwire.NewBuilder(User).
//	    Set("id", int64(7)).
//	    Set("name", "ada").
//	    Build()
//
//	c := tagwire.NewCodec(User, tagwire.WithProtocol(tagwire.CompactProtocol()))
//	data, _ := c.Encode(r)
//	back, _ := c.Decode(data)
//
// # Value Representation
//
// Slots hold bool, int8, int16, int32, int64, float64 (double), float32
// (float), string, []byte (binary), *Record (struct), []any (list and set)
// and []MapEntry (map). The Builder rejects anything else with a
// ContractError.
//
// # Compatibility
//
// Decoding never fails because of an unknown tag or a kind that disagrees
// with the schema; such fields are skipped and left absent. Requiredness is
// not enforced by the codec. Call Record.Validate where it matters.
//
// # Registry
//
// Schemas may be bound to globally unique names with Register and decoded
// by name with DecodeNamed. Use returns a cached codec per schema and
// protocol.
//
// # Struct Binding
//
// Bind derives a schema from Go struct tags:
//
//	type User struct {
//	    ID   int64   `tagwire:"1,required,name=id"`
//	    Name *string `tagwire:"2,optional,name=name"`
//	}
//
//	b, _ := tagwire.Bind[User]()
//	data, _ := b.Marshal(&User{ID: 7})
//
// # Codec Providers
//
// Name-keyed document codecs are available as subpackages:
//
//   - json - JSON encoding (application/json)
//   - yaml - YAML encoding (application/yaml)
//   - msgpack - MessagePack encoding (application/msgpack)
//   - bson - BSON encoding (application/bson)
//
// # Observability
//
// Codecs emit capitan signals for creation, encode, decode, registration
// and skipped document entries.
package tagwire
