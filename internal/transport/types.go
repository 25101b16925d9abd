// Transport is the external collaborator boundary between the dispatch loop
// and augmentor instances. The loop never touches net.Conn directly so
// tests can swap in an in-memory Transport.
package transport

import (
	"augmentloop/pkg/wire"
	"context"
)

// Connection is one open channel to a single augmentor instance, addressed
// by the peer address the transport reports for it (the TCP transport uses
// the socket's remote address).
type Connection interface {
	Address() string
	Send(frame wire.Frame) error
	Recv(ctx context.Context) (wire.Frame, error)
	Close() error
}

// Transport accepts inbound augmentor connections and can dial out new ones.
// Accepted connections arrive on the channel returned by Listen; the loop
// thread reads a CONFIG frame off each to learn the peer's identity before
// admitting it into the registry.
type Transport interface {
	Listen(ctx context.Context, addr string) (<-chan Connection, error)
	// ListenRange tries each port in [low, hi] on host in turn and binds the
	// first free one, returning the address actually bound so it can be
	// announced to service discovery.
	ListenRange(ctx context.Context, host string, low, hi int) (conns <-chan Connection, boundAddr string, err error)
	Dial(ctx context.Context, address string) (Connection, error)
	Close() error
}
