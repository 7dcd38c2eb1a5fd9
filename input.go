package tagwire

import (
	"fmt"
)

// input is a bounds-checked cursor over a payload.
type input struct {
	data []byte
	off  int
}

func (in *input) Offset() int {
	return in.off
}

func (in *input) Remaining() int {
	return len(in.data) - in.off
}

// next returns the next n bytes without copying.
func (in *input) next(n int) ([]byte, error) {
	if n < 0 {
		return nil, newDecodeError(ErrUnsupportedEncoding, in.off, fmt.Errorf("negative length %d", n))
	}
	if in.Remaining() < n {
		return nil, newDecodeError(ErrTruncated, in.off, fmt.Errorf("need %d bytes, have %d", n, in.Remaining()))
	}
	p := in.data[in.off : in.off+n]
	in.off += n
	return p, nil
}

func (in *input) readByte() (byte, error) {
	if in.off >= len(in.data) {
		return 0, newDecodeError(ErrTruncated, in.off, nil)
	}
	b := in.data[in.off]
	in.off++
	return b, nil
}

// copyBytes reads n bytes into a new slice the caller owns.
func (in *input) copyBytes(n int) ([]byte, error) {
	p, err := in.next(n)
	if err != nil {
		return nil, err
	}
	return append(make([]byte, 0, n), p...), nil
}

// checkCount rejects container sizes that cannot fit in the unread input.
// Every element occupies at least minSize bytes.
func (in *input) checkCount(size, minSize int) error {
	if size < 0 {
		return newDecodeError(ErrUnsupportedEncoding, in.off, fmt.Errorf("negative size %d", size))
	}
	if size > 0 && size > in.Remaining()/minSize {
		return newDecodeError(ErrTruncated, in.off, fmt.Errorf("%d elements cannot fit in %d bytes", size, in.Remaining()))
	}
	return nil
}
