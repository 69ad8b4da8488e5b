package server

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Phase identifies where a connection is in its lifetime.
type Phase int32

const (
	PhaseAccepted Phase = iota
	PhaseReading
	PhaseDispatching
	PhaseWriting
	PhaseClosed
)

// String returns a human-readable name for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseAccepted:
		return "accepted"
	case PhaseReading:
		return "reading"
	case PhaseDispatching:
		return "dispatching"
	case PhaseWriting:
		return "writing"
	case PhaseClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// conn is one accepted TCP stream. It is owned by its handler goroutine;
// only the phase and teardown are touched from elsewhere (shutdown).
type conn struct {
	id      uuid.UUID
	netConn net.Conn
	phase   atomic.Int32

	// teardown runs exactly once no matter which path closes the
	// connection: success, parse failure, read error, or write failure.
	teardown sync.Once
}

func newConn(nc net.Conn) *conn {
	return &conn{id: uuid.New(), netConn: nc}
}

func (c *conn) setPhase(p Phase) {
	c.phase.Store(int32(p))
}

func (c *conn) currentPhase() Phase {
	return Phase(c.phase.Load())
}

// close tears the connection down: marks it Closed, closes the socket, and
// removes it from the server's registry. Safe to call from any path.
func (c *conn) close(s *Server) {
	c.teardown.Do(func() {
		c.setPhase(PhaseClosed)
		_ = c.netConn.Close()
		s.removeConn(c)
	})
}

// registry is the shared collection of in-flight connections. Mutations
// come from the acceptance goroutine and every connection goroutine, so
// they are mutex-serialized.
type registry struct {
	mu    sync.Mutex
	conns map[uuid.UUID]*conn
}

func newRegistry() *registry {
	return &registry{conns: make(map[uuid.UUID]*conn)}
}

func (r *registry) add(c *conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c.id] = c
}

func (r *registry) remove(c *conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, c.id)
}

func (r *registry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// all returns a snapshot of the registered connections.
func (r *registry) all() []*conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*conn, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	return out
}
