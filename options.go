package tagwire

const (
	// DefaultMaxDepth bounds struct and container nesting while decoding.
	DefaultMaxDepth = 64

	// DefaultMaxLength bounds decoded string lengths and container sizes.
	DefaultMaxLength = 16 << 20
)

// config holds codec settings. Immutable once the codec is built.
type config struct {
	protocol  Protocol
	maxDepth  int
	maxLength int
}

func defaultConfig() config {
	return config{
		protocol:  BinaryProtocol(),
		maxDepth:  DefaultMaxDepth,
		maxLength: DefaultMaxLength,
	}
}

// Option configures a StructCodec.
type Option func(*config)

// WithProtocol selects the wire encoding. The default is BinaryProtocol.
func WithProtocol(p Protocol) Option {
	return func(c *config) {
		if p != nil {
			c.protocol = p
		}
	}
}

// WithMaxDepth bounds nesting of structs and containers while decoding.
// Non-positive values are ignored.
func WithMaxDepth(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// WithMaxLength bounds decoded string and binary lengths and container
// element counts. Non-positive values are ignored.
func WithMaxLength(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxLength = n
		}
	}
}
