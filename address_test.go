package sockets

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddressInfoString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "127.0.0.1:8080", AddressInfo{
		Family: FamilyIPv4,
		Host:   "127.0.0.1",
		Port:   8080,
	}.String())

	require.Equal(t, "[::1]:9000", AddressInfo{
		Family: FamilyIPv6,
		Host:   "::1",
		Port:   9000,
	}.String())

	require.Equal(t, "<unspecified address family>", AddressInfo{}.String())
}

func TestAddressFamilyNetwork(t *testing.T) {
	t.Parallel()

	require.Equal(t, "tcp", FamilyUnspecified.network())
	require.Equal(t, "tcp4", FamilyIPv4.network())
	require.Equal(t, "tcp6", FamilyIPv6.network())
}

func TestAddressInfoFromAddr(t *testing.T) {
	t.Parallel()

	info := addressInfoFromAddr(&net.TCPAddr{IP: net.ParseIP("192.168.1.10"), Port: 1234})
	require.Equal(t, FamilyIPv4, info.Family)
	require.Equal(t, "192.168.1.10", info.Host)
	require.Equal(t, uint16(1234), info.Port)

	info = addressInfoFromAddr(&net.TCPAddr{IP: net.ParseIP("2001:db8::1"), Port: 80})
	require.Equal(t, FamilyIPv6, info.Family)
	require.Equal(t, "2001:db8::1", info.Host)
}
