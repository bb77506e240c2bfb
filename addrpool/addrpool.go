// Package addrpool allocates the RTP/RTCP port pairs a session hands to
// its payloader, and resolves the local interface a negotiated host
// address should bind to. Interface selection follows gortsplib's
// pkg/multicast.InterfaceForSource, requiring only that the interface be
// up rather than multicast-capable; port allocation is the
// simple free/allocated range the spec names at interface level only
// ("the address-pool free/allocated lists are protected by their own
// mutex").
package addrpool

import (
	"fmt"
	"net"
	"sync"

	"golang.org/x/net/ipv4"
)

// Pool allocates even-numbered RTP port / odd-numbered RTCP port pairs
// from [Low, High], guarded by its own mutex (spec.md §5).
type Pool struct {
	Low, High int

	mu        sync.Mutex
	allocated map[int]bool
}

// Pair is an allocated RTP/RTCP port pair.
type Pair struct {
	RTPPort, RTCPPort int
}

// Allocate reserves the next free even/odd port pair in [Low, High].
func (p *Pool) Allocate() (Pair, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.allocated == nil {
		p.allocated = map[int]bool{}
	}

	low := p.Low
	if low%2 != 0 {
		low++
	}
	for port := low; port+1 <= p.High; port += 2 {
		if !p.allocated[port] && !p.allocated[port+1] {
			p.allocated[port] = true
			p.allocated[port+1] = true
			return Pair{RTPPort: port, RTCPPort: port + 1}, nil
		}
	}
	return Pair{}, fmt.Errorf("addrpool: no free port pair in [%d, %d]", p.Low, p.High)
}

// Release returns a previously allocated pair to the free list.
func (p *Pool) Release(pair Pair) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.allocated, pair.RTPPort)
	delete(p.allocated, pair.RTCPPort)
}

// InterfaceForSource returns the first interface that is up and has an
// address whose network contains ip, the way a sink's unicast
// client_rtp_ports still needs a concrete local interface to bind the RTP
// socket to. The interface's multicast flag is not checked.
func InterfaceForSource(ip net.IP) (*net.Interface, error) {
	if ip.Equal(net.ParseIP("127.0.0.1")) {
		return nil, fmt.Errorf("addrpool: 127.0.0.1 cannot be used as a stream source, use the LAN address")
	}

	intfs, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, intf := range intfs {
		if intf.Flags&net.FlagUp == 0 {
			continue
		}

		addrs, err := intf.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			_, ipnet, err := net.ParseCIDR(addr.String())
			if err == nil && ipnet.Contains(ip) {
				return &intf, nil
			}
		}
	}

	return nil, fmt.Errorf("addrpool: no interface can reach %v", ip)
}

// JoinMulticast joins conn to group on intf, the way a WFD sink that
// advertises a multicast route (wfd_route) is served instead of unicast.
// Most sessions never call this: client_rtp_ports ordinarily negotiates a
// unicast pair, and this exists for the route/multicast corner spec.md §6
// names but does not detail.
func JoinMulticast(conn *net.UDPConn, group net.IP, intf *net.Interface) error {
	pc := ipv4.NewPacketConn(conn)
	return pc.JoinGroup(intf, &net.UDPAddr{IP: group})
}
