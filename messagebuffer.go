package sockets

// MessageBuffer is an ordered byte sequence with typed append and
// all-or-nothing typed extraction. Integral values are encoded in network
// byte order; extraction consumes bytes from the front.
type MessageBuffer struct {
	data []byte
}

// NewMessageBuffer creates a MessageBuffer holding the given bytes. The
// buffer takes ownership of the slice.
func NewMessageBuffer(data []byte) *MessageBuffer {
	return &MessageBuffer{data: data}
}

// Len returns the number of buffered bytes.
func (b *MessageBuffer) Len() int {
	return len(b.data)
}

// Bytes returns the buffered bytes without copying. The slice is only valid
// until the next mutation of the buffer.
func (b *MessageBuffer) Bytes() []byte {
	return b.data
}

// AppendBytes copies p to the tail of the buffer, preserving order.
func (b *MessageBuffer) AppendBytes(p []byte) {
	b.data = append(b.data, p...)
}

// AppendValue encodes a fixed-width integer or bool in network byte order
// and appends its bytes. Values of other types are rejected.
func (b *MessageBuffer) AppendValue(v any) error {
	data, err := appendValue(b.data, v)
	if err != nil {
		return err
	}
	b.data = data

	return nil
}

// Append encodes value in network byte order and appends its bytes.
func Append[T Integral](b *MessageBuffer, value T) {
	size := sizeOfIntegral[T]()
	for shift := 8 * (size - 1); shift >= 0; shift -= 8 {
		b.data = append(b.data, byte(uint64(value)>>shift))
	}
}

// TryExtract removes the first sizeof(T) bytes and decodes them from network
// byte order. If fewer bytes are present, the buffer is left unchanged and
// ok is false.
func TryExtract[T Integral](b *MessageBuffer) (value T, ok bool) {
	size := sizeOfIntegral[T]()
	if len(b.data) < size {
		return value, false
	}

	var accumulated uint64
	for _, octet := range b.data[:size] {
		accumulated = accumulated<<8 | uint64(octet)
	}
	b.data = b.data[size:]

	return T(accumulated), true
}

// TryExtractInto decodes one value per destination pointer, in argument
// order, consuming bytes from the front. If the buffer holds fewer bytes
// than the destinations require in total, nothing is consumed and the result
// is false. Destinations must be pointers to fixed-width integers or bools;
// anything else panics.
func (b *MessageBuffer) TryExtractInto(dsts ...any) bool {
	total := 0
	for _, dst := range dsts {
		size, err := sizeOfTarget(dst)
		if err != nil {
			panic(err)
		}
		total += size
	}

	if len(b.data) < total {
		return false
	}

	for _, dst := range dsts {
		size, _ := sizeOfTarget(dst)
		_ = decodeValue(b.data, dst)
		b.data = b.data[size:]
	}

	return true
}

// ReadValue is the stream-style extractor: it decodes a single value into the
// destination pointer, consuming its bytes. Unlike TryExtractInto it reports
// ErrFraming when fewer bytes are present than the value occupies. Callers
// should prefer the all-or-nothing API.
func (b *MessageBuffer) ReadValue(dst any) error {
	size, err := sizeOfTarget(dst)
	if err != nil {
		return err
	}

	if len(b.data) < size {
		return ErrFraming
	}

	if err := decodeValue(b.data, dst); err != nil {
		return err
	}
	b.data = b.data[size:]

	return nil
}
