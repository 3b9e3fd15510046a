package request

import (
	"net"
	"net/netip"
	"strconv"
)

// Addr is a resolved endpoint of a request connection.
type Addr struct {
	Network string
	IP      netip.Addr
	Port    uint16
	// Raw is the address as reported by the connection, kept for
	// non-IP transports such as unix sockets and pipes.
	Raw string
}

// AddrFrom converts a net.Addr into an Addr. A nil input yields nil.
func AddrFrom(a net.Addr) *Addr {
	if a == nil {
		return nil
	}
	out := &Addr{Network: a.Network(), Raw: a.String()}
	switch v := a.(type) {
	case *net.TCPAddr:
		ap := v.AddrPort()
		out.IP, out.Port = ap.Addr().Unmap(), ap.Port()
	case *net.UDPAddr:
		ap := v.AddrPort()
		out.IP, out.Port = ap.Addr().Unmap(), ap.Port()
	default:
		if ap, err := netip.ParseAddrPort(out.Raw); err == nil {
			out.IP, out.Port = ap.Addr().Unmap(), ap.Port()
		}
	}
	return out
}

// Clone returns an independent copy.
func (a *Addr) Clone() *Addr {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

// IsIP reports whether the address resolved to an IP endpoint.
func (a *Addr) IsIP() bool {
	return a != nil && a.IP.IsValid()
}

func (a *Addr) String() string {
	if a == nil {
		return ""
	}
	if a.IP.IsValid() {
		return net.JoinHostPort(a.IP.String(), strconv.Itoa(int(a.Port)))
	}
	return a.Raw
}
