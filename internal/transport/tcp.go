package transport

import (
	"augmentloop/internal/global"
	"augmentloop/internal/logctx"
	"augmentloop/pkg/wire"
	"context"
	"errors"
	"fmt"
	"net"
	"runtime/debug"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
)

// TCPTransport is the default Transport: length-prefixed wire.Frame messages
// over plain TCP, with an optional AEAD layer (see aead.go) applied per
// connection when a pre-shared key is configured.
type TCPTransport struct {
	psk      []byte
	mu       sync.Mutex
	listener net.Listener
}

func NewTCP(psk []byte) (t *TCPTransport) {
	t = &TCPTransport{psk: psk}
	return
}

// ReuseTCPPort binds addr with SO_REUSEADDR/SO_REUSEPORT set, allowing a
// replacement process to bind the same port while the old one drains.
func ReuseTCPPort(addr string) (listener net.Listener, err error) {
	cfg := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var ctrlErr error
			c.Control(func(fd uintptr) {
				ctrlErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
				if ctrlErr != nil {
					return
				}
				ctrlErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
			})
			return ctrlErr
		},
	}

	listener, err = cfg.Listen(context.Background(), "tcp", addr)
	if err != nil {
		err = fmt.Errorf("failed to listen on reused tcp port: %w", err)
		return
	}
	return
}

// BindPortRange tries each port in [low, hi] in turn, returning the first
// one that binds. Used when the configured listen port is already taken by
// a process mid-restart.
func BindPortRange(host string, low, hi int) (listener net.Listener, err error) {
	for port := low; port <= hi; port++ {
		listener, err = ReuseTCPPort(fmt.Sprintf("%s:%d", host, port))
		if err == nil {
			return
		}
	}
	err = fmt.Errorf("no free port in range [%d, %d] on %s: %w", low, hi, host, err)
	return
}

func (t *TCPTransport) Listen(ctx context.Context, addr string) (conns <-chan Connection, err error) {
	listener, err := ReuseTCPPort(addr)
	if err != nil {
		return
	}

	t.mu.Lock()
	t.listener = listener
	t.mu.Unlock()

	out := make(chan Connection)
	go t.acceptLoop(ctx, listener, out)
	conns = out
	return
}

func (t *TCPTransport) acceptLoop(ctx context.Context, listener net.Listener, out chan<- Connection) {
	defer close(out)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return
			}
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "accept failed: %v\n", err)
			continue
		}

		func() {
			defer func() {
				if r := recover(); r != nil {
					logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
						"panic accepting connection: %v\n%s", r, debug.Stack())
				}
			}()

			wrapped := wrapConn(conn, t.psk)
			select {
			case out <- wrapped:
			case <-ctx.Done():
				conn.Close()
			}
		}()
	}
}

// ListenRange binds the first free port in [low, hi] on host and accepts
// connections on it exactly like Listen, additionally reporting the bound
// address so it can be handed to a discovery registrar.
func (t *TCPTransport) ListenRange(ctx context.Context, host string, low, hi int) (conns <-chan Connection, boundAddr string, err error) {
	listener, err := BindPortRange(host, low, hi)
	if err != nil {
		return
	}

	t.mu.Lock()
	t.listener = listener
	t.mu.Unlock()

	boundAddr = listener.Addr().String()
	out := make(chan Connection)
	go t.acceptLoop(ctx, listener, out)
	conns = out
	return
}

func (t *TCPTransport) Dial(ctx context.Context, address string) (c Connection, err error) {
	dialer := net.Dialer{Timeout: global.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		err = fmt.Errorf("dial %s: %w", address, err)
		return
	}
	c = wrapConn(conn, t.psk)
	return
}

func (t *TCPTransport) Close() (err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.listener != nil {
		err = t.listener.Close()
	}
	return
}

// tcpConn adapts a net.Conn into the Connection interface, applying the
// frame codec (and optional AEAD layer) on every Send/Recv.
type tcpConn struct {
	conn net.Conn
	psk  []byte
	addr string
}

func wrapConn(conn net.Conn, psk []byte) (c *tcpConn) {
	c = &tcpConn{conn: conn, psk: psk, addr: conn.RemoteAddr().String()}
	return
}

func (c *tcpConn) Address() (addr string) {
	addr = c.addr
	return
}

func (c *tcpConn) Send(frame wire.Frame) (err error) {
	if len(c.psk) > 0 {
		frame, err = encryptFrame(frame, c.psk)
		if err != nil {
			return
		}
	}
	err = wire.WriteFrame(c.conn, frame)
	return
}

func (c *tcpConn) Recv(ctx context.Context) (frame wire.Frame, err error) {
	type result struct {
		frame wire.Frame
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		f, e := wire.ReadFrame(c.conn)
		ch <- result{f, e}
	}()

	select {
	case <-ctx.Done():
		c.conn.Close()
		err = ctx.Err()
		return
	case r := <-ch:
		frame, err = r.frame, r.err
	}
	if err != nil {
		return
	}

	if len(c.psk) > 0 {
		frame, err = decryptFrame(frame, c.psk)
	}
	return
}

func (c *tcpConn) Close() (err error) {
	err = c.conn.Close()
	return
}
