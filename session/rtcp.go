package session

import (
	"net"
	"time"

	"github.com/pion/rtcp"

	"github.com/go-wfd/wfdsource/addrpool"
)

// rtcpListener owns the UDP socket the source receives the sink's RTCP
// receiver reports on: its local port pair comes from addrpool.Pool, the
// same free/allocated range a real deployment binds its RTP/RTCP sockets
// from (spec.md §1, §2 "address pooling for multicast/unicast port
// allocation"). Mirrors gortsplib's serverUDPListener read-loop shape.
type rtcpListener struct {
	conn *net.UDPConn
	pool *addrpool.Pool
	pair addrpool.Pair

	onReceiverReport func(*rtcp.ReceiverReport, time.Duration)

	done chan struct{}
}

// startRTCPListener allocates a port pair from pool and binds the RTCP
// half to a UDP socket on hostAddress. Returns (nil, nil) if pool is nil,
// since not every deployment wires an address pool (e.g. tests).
func startRTCPListener(pool *addrpool.Pool, hostAddress string, onReceiverReport func(*rtcp.ReceiverReport, time.Duration)) (*rtcpListener, error) {
	if pool == nil {
		return nil, nil
	}

	pair, err := pool.Allocate()
	if err != nil {
		return nil, err
	}

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP(hostAddress), Port: pair.RTCPPort})
	if err != nil {
		pool.Release(pair)
		return nil, err
	}

	l := &rtcpListener{
		conn:             conn,
		pool:             pool,
		pair:             pair,
		onReceiverReport: onReceiverReport,
		done:             make(chan struct{}),
	}
	go l.run()
	return l, nil
}

func (l *rtcpListener) run() {
	defer close(l.done)

	buf := make([]byte, 1500)
	for {
		n, _, err := l.conn.ReadFrom(buf)
		if err != nil {
			return
		}

		pkts, err := rtcp.Unmarshal(buf[:n])
		if err != nil {
			continue
		}
		for _, pkt := range pkts {
			if rr, ok := pkt.(*rtcp.ReceiverReport); ok && l.onReceiverReport != nil {
				l.onReceiverReport(rr, 0)
			}
		}
	}
}

// close shuts down the socket and returns the port pair to the pool.
func (l *rtcpListener) close() {
	l.conn.Close() //nolint:errcheck
	<-l.done
	l.pool.Release(l.pair)
}
