package sockets

import (
	"encoding/binary"
	"fmt"
	"math/bits"
	"unsafe"
)

// Integral constrains the value types the codec understands: fixed-width
// integers of 1, 2, 4 or 8 bytes. Network order is big-endian.
type Integral interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

var hostIsBigEndian = binary.NativeEndian.Uint16([]byte{0x01, 0x02}) == 0x0102

// ToNetwork converts a fixed-width integral from host to network byte order.
// On big-endian hosts this is the identity.
func ToNetwork[T Integral](value T) T {
	if hostIsBigEndian {
		return value
	}
	return swapBytes(value)
}

// FromNetwork converts a fixed-width integral from network to host byte
// order. On big-endian hosts this is the identity.
func FromNetwork[T Integral](value T) T {
	return ToNetwork(value)
}

func swapBytes[T Integral](value T) T {
	switch unsafe.Sizeof(value) {
	case 1:
		return value
	case 2:
		return T(bits.ReverseBytes16(uint16(value)))
	case 4:
		return T(bits.ReverseBytes32(uint32(value)))
	default:
		return T(bits.ReverseBytes64(uint64(value)))
	}
}

func sizeOfIntegral[T Integral]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// sizeOfTarget reports the wire size of the value *dst points at. Booleans
// travel as a single byte.
func sizeOfTarget(dst any) (int, error) {
	switch dst.(type) {
	case *bool, *int8, *uint8:
		return 1, nil
	case *int16, *uint16:
		return 2, nil
	case *int32, *uint32:
		return 4, nil
	case *int64, *uint64:
		return 8, nil
	default:
		return 0, fmt.Errorf("unsupported target type %T: use a pointer to a fixed-width integer or bool", dst)
	}
}

// appendValue encodes v in network byte order and appends it to dst.
func appendValue(dst []byte, v any) ([]byte, error) {
	switch value := v.(type) {
	case bool:
		if value {
			return append(dst, 1), nil
		}
		return append(dst, 0), nil
	case int8:
		return append(dst, byte(value)), nil
	case uint8:
		return append(dst, value), nil
	case int16:
		return binary.BigEndian.AppendUint16(dst, uint16(value)), nil
	case uint16:
		return binary.BigEndian.AppendUint16(dst, value), nil
	case int32:
		return binary.BigEndian.AppendUint32(dst, uint32(value)), nil
	case uint32:
		return binary.BigEndian.AppendUint32(dst, value), nil
	case int64:
		return binary.BigEndian.AppendUint64(dst, uint64(value)), nil
	case uint64:
		return binary.BigEndian.AppendUint64(dst, value), nil
	default:
		return dst, fmt.Errorf("unsupported value type %T: use a fixed-width integer or bool", v)
	}
}

// decodeValue decodes a network-byte-order value from the front of src into
// the target *dst points at. src must hold at least the value's wire size.
func decodeValue(src []byte, dst any) error {
	switch target := dst.(type) {
	case *bool:
		*target = src[0] != 0
	case *int8:
		*target = int8(src[0])
	case *uint8:
		*target = src[0]
	case *int16:
		*target = int16(binary.BigEndian.Uint16(src))
	case *uint16:
		*target = binary.BigEndian.Uint16(src)
	case *int32:
		*target = int32(binary.BigEndian.Uint32(src))
	case *uint32:
		*target = binary.BigEndian.Uint32(src)
	case *int64:
		*target = int64(binary.BigEndian.Uint64(src))
	case *uint64:
		*target = binary.BigEndian.Uint64(src)
	default:
		return fmt.Errorf("unsupported target type %T: use a pointer to a fixed-width integer or bool", dst)
	}

	return nil
}
