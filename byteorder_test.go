package sockets

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToNetworkRoundTrip(t *testing.T) {
	t.Parallel()

	require.Equal(t, uint8(0xAB), FromNetwork(ToNetwork(uint8(0xAB))))
	require.Equal(t, uint16(0xBEEF), FromNetwork(ToNetwork(uint16(0xBEEF))))
	require.Equal(t, uint32(0xDEADBEEF), FromNetwork(ToNetwork(uint32(0xDEADBEEF))))
	require.Equal(t, uint64(0x0102030405060708), FromNetwork(ToNetwork(uint64(0x0102030405060708))))
	require.Equal(t, int16(-2), FromNetwork(ToNetwork(int16(-2))))
	require.Equal(t, int64(-123456789), FromNetwork(ToNetwork(int64(-123456789))))
}

func TestToNetworkProducesBigEndianLayout(t *testing.T) {
	t.Parallel()

	// The native-order bytes of a converted value must equal the
	// big-endian encoding of the input.
	buf := make([]byte, 4)
	binary.NativeEndian.PutUint32(buf, ToNetwork(uint32(0x01020304)))
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, buf)

	buf = make([]byte, 2)
	binary.NativeEndian.PutUint16(buf, ToNetwork(uint16(0xCAFE)))
	require.Equal(t, []byte{0xCA, 0xFE}, buf)
}

func TestSingleByteValuesUnchanged(t *testing.T) {
	t.Parallel()

	require.Equal(t, uint8(0x7F), ToNetwork(uint8(0x7F)))
	require.Equal(t, int8(-1), ToNetwork(int8(-1)))
}

func TestAppendValueEncodings(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		value any
		want  []byte
	}{
		{"bool true", true, []byte{1}},
		{"bool false", false, []byte{0}},
		{"uint8", uint8(0x41), []byte{0x41}},
		{"int8", int8(-1), []byte{0xFF}},
		{"uint16", uint16(0x0102), []byte{0x01, 0x02}},
		{"int16", int16(13), []byte{0x00, 0x0D}},
		{"uint32", uint32(0xDEADBEEF), []byte{0xDE, 0xAD, 0xBE, 0xEF}},
		{"int32", int32(-1), []byte{0xFF, 0xFF, 0xFF, 0xFF}},
		{"uint64", uint64(1), []byte{0, 0, 0, 0, 0, 0, 0, 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := appendValue(nil, tc.value)
			require.NoError(t, err)
			require.Equal(t, tc.want, out)
		})
	}

	_, err := appendValue(nil, "text")
	require.Error(t, err)

	_, err = appendValue(nil, 42)
	require.Error(t, err, "plain int has no fixed width")
}

func TestDecodeValueMatchesAppendValue(t *testing.T) {
	t.Parallel()

	encoded, err := appendValue(nil, uint32(0xCAFEBABE))
	require.NoError(t, err)

	var decoded uint32
	require.NoError(t, decodeValue(encoded, &decoded))
	require.Equal(t, uint32(0xCAFEBABE), decoded)

	encoded, err = appendValue(nil, true)
	require.NoError(t, err)

	var flag bool
	require.NoError(t, decodeValue(encoded, &flag))
	require.True(t, flag)
}
