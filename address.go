package sockets

import (
	"fmt"
	"net"
)

// AddressFamily selects the IP protocol family of an endpoint. Unspecified
// lets the resolver pick.
type AddressFamily uint8

const (
	FamilyUnspecified AddressFamily = iota
	FamilyIPv4
	FamilyIPv6
)

func (f AddressFamily) String() string {
	switch f {
	case FamilyIPv4:
		return "ipv4"
	case FamilyIPv6:
		return "ipv6"
	default:
		return "unspecified"
	}
}

// network maps the family onto the network argument of net.Dial and
// net.Listen.
func (f AddressFamily) network() string {
	switch f {
	case FamilyIPv4:
		return "tcp4"
	case FamilyIPv6:
		return "tcp6"
	default:
		return "tcp"
	}
}

// AddressInfo describes one end of a connection, populated from the OS after
// bind, accept or connect.
type AddressInfo struct {
	Family AddressFamily
	Host   string
	Port   uint16
}

// String renders the address the way it would be typed: "host:port" for
// IPv4, "[host]:port" for IPv6.
func (a AddressInfo) String() string {
	switch a.Family {
	case FamilyIPv4:
		return fmt.Sprintf("%s:%d", a.Host, a.Port)
	case FamilyIPv6:
		return fmt.Sprintf("[%s]:%d", a.Host, a.Port)
	default:
		return "<unspecified address family>"
	}
}

// addressInfoFromAddr queries the resolved family, host and port out of a
// TCP address.
func addressInfoFromAddr(addr net.Addr) AddressInfo {
	tcpAddr, ok := addr.(*net.TCPAddr)
	if !ok {
		return AddressInfo{}
	}

	info := AddressInfo{
		Host: tcpAddr.IP.String(),
		Port: uint16(tcpAddr.Port),
	}

	switch {
	case tcpAddr.IP.To4() != nil:
		info.Family = FamilyIPv4
	case len(tcpAddr.IP) == net.IPv6len:
		info.Family = FamilyIPv6
	}

	return info
}
