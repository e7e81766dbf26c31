package transport

import (
	"crypto/tls"
	"net"
	"time"
)

// NewNetTransport wraps a net.Conn. TLS streams are flagged as unusable
// after a timed-out read: aborting a read mid-record leaves the TLS
// session out of sync, so the connection has to be torn down instead of
// retried.
func NewNetTransport(conn net.Conn) *NetTransport {
	_, isTLS := conn.(*tls.Conn)
	return &NetTransport{conn: conn, brokenAfterTimeout: isTLS}
}

// NetTransport implements Transport over a net.Conn.
type NetTransport struct {
	conn               net.Conn
	brokenAfterTimeout bool
}

var _ Transport = (*NetTransport)(nil)

func (t *NetTransport) Read(p []byte) (n int, err error) {
	return t.conn.Read(p)
}

func (t *NetTransport) SetReadDeadline(d time.Time) error {
	return t.conn.SetReadDeadline(d)
}

func (t *NetTransport) BrokenAfterTimeout() bool {
	return t.brokenAfterTimeout
}

func (t *NetTransport) Close() error {
	return t.conn.Close()
}

// RemoteAddr returns the remote network address, same as net.Conn#RemoteAddr.
func (t *NetTransport) RemoteAddr() net.Addr {
	return t.conn.RemoteAddr()
}

// LocalAddr returns the local network address, same as net.Conn#LocalAddr.
func (t *NetTransport) LocalAddr() net.Addr {
	return t.conn.LocalAddr()
}
