package connectivity

import (
	"context"
	"net"
	"time"
)

// HostLink adapts an operating system's network stack to the Link interface
// for agents that don't drive a radio themselves. Bring-up is a no-op, a join
// attempt is a bounded TCP dial of the catalog host, and a successful dial
// counts as an association for a short while so every cycle doesn't re-dial.
type HostLink struct {
	addr     string
	dial     func(ctx context.Context, network, addr string) (net.Conn, error)
	probeTTL time.Duration
	lastOK   time.Time
}

// NewHostLink creates a HostLink that probes the given host:port address.
func NewHostLink(addr string) *HostLink {
	var dialer net.Dialer
	return &HostLink{
		addr:     addr,
		dial:     dialer.DialContext,
		probeTTL: 30 * time.Second,
	}
}

func (l *HostLink) BringUp(ctx context.Context) error {
	return nil
}

// Join dials the catalog host once. The credentials are unused; the OS owns
// whatever network association is in place.
func (l *HostLink) Join(ctx context.Context, ssid string, password string) error {
	conn, err := l.dial(ctx, "tcp", l.addr)
	if err != nil {
		return err
	}
	conn.Close()

	l.lastOK = time.Now()
	return nil
}

func (l *HostLink) Connected() bool {
	return !l.lastOK.IsZero() && time.Since(l.lastOK) < l.probeTTL
}
