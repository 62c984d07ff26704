package busproto

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// HandlerFunc answers an inbound Call. Returning an error sends back
// a Kind == KindError reply with ErrorName "org.orchfleet.Error" and
// ErrorMessage set from the error (via errorReply, below).
type HandlerFunc func(msg Message) (body any, err error)

// Peer is one end of a framed, bidirectional connection: either the
// orchestrator's view of a connected node, or a client's view of the
// orchestrator's bus. It owns exactly two goroutines (read pump, write
// pump) and is otherwise lock-free except for the small pending-call
// and vtable maps, which are accessed from arbitrary caller goroutines
// concurrently with the read pump.
type Peer struct {
	id   string
	conn net.Conn

	out    chan Message
	closed chan struct{}
	once   sync.Once

	serial atomic.Uint64

	mu       sync.Mutex
	pending  map[uint64]chan Message
	vtable   map[string]HandlerFunc        // key: path+"\x00"+iface+"\x00"+member
	sigTable map[string]func(Message)      // key: path+"\x00"+iface+"\x00"+member

	closeErr error
}

// NewPeer wraps conn and starts its read/write pumps. Inbound Calls
// are answered by handlers registered via Handle; a Call with no
// matching handler gets an ErrUnknownMethod error reply.
func NewPeer(conn net.Conn) *Peer {
	p := &Peer{
		id:      uuid.NewString(),
		conn:    conn,
		out:     make(chan Message, 64),
		closed:  make(chan struct{}),
		pending:  make(map[uint64]chan Message),
		vtable:   make(map[string]HandlerFunc),
		sigTable: make(map[string]func(Message)),
	}
	go p.writePump()
	go p.readPump()
	return p
}

// ID is a unique identifier for this connection, independent of any
// name later assigned via Register.
func (p *Peer) ID() string { return p.id }

// Closed returns a channel that is closed once the underlying
// connection has gone away, for any reason.
func (p *Peer) Closed() <-chan struct{} { return p.closed }

// Handle registers fn to answer inbound calls addressed to
// path/iface/member.
func (p *Peer) Handle(path, iface, member string, fn HandlerFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.vtable[vtableKey(path, iface, member)] = fn
}

func vtableKey(path, iface, member string) string {
	return path + "\x00" + iface + "\x00" + member
}

// OnSignal registers fn to receive inbound signals addressed to
// path/iface/member. Unlike Handle, no reply is ever sent back.
func (p *Peer) OnSignal(path, iface, member string, fn func(Message)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sigTable[vtableKey(path, iface, member)] = fn
}

// Emit sends a one-way signal; there is no reply to wait for.
func (p *Peer) Emit(path, iface, member string, body any) error {
	raw, err := encodeBody(body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoMemory, err)
	}
	return p.send(Message{
		Kind:   KindSignal,
		Path:   path,
		Iface:  iface,
		Member: member,
		Body:   raw,
	})
}

// Call sends a method call and blocks until a reply arrives or
// timeout elapses.
func (p *Peer) Call(path, iface, member string, body any, timeout time.Duration) (Message, error) {
	replyCh := make(chan Message, 1)
	serial, err := p.dispatchCall(path, iface, member, body, replyCh)
	if err != nil {
		return Message{}, err
	}

	select {
	case reply := <-replyCh:
		return reply, nil
	case <-time.After(timeout):
		p.forgetPending(serial)
		return Message{}, ErrTimeout
	case <-p.closed:
		p.forgetPending(serial)
		return Message{}, ErrClosed
	}
}

// CallAsync sends a method call and invokes cb from a dedicated
// goroutine once a reply arrives, the timeout elapses, or the
// connection closes. cb is always called exactly once. Callers that
// must serialize cb's effects with other orchestrator state (as
// spec.md §5 requires) should have cb post a closure onto their own
// run-loop channel rather than mutating shared state directly.
func (p *Peer) CallAsync(path, iface, member string, body any, timeout time.Duration, cb func(Message, error)) {
	replyCh := make(chan Message, 1)
	serial, err := p.dispatchCall(path, iface, member, body, replyCh)
	if err != nil {
		go cb(Message{}, err)
		return
	}

	go func() {
		select {
		case reply := <-replyCh:
			cb(reply, nil)
		case <-time.After(timeout):
			p.forgetPending(serial)
			cb(Message{}, ErrTimeout)
		case <-p.closed:
			p.forgetPending(serial)
			cb(Message{}, ErrClosed)
		}
	}()
}

func (p *Peer) dispatchCall(path, iface, member string, body any, replyCh chan Message) (uint64, error) {
	raw, err := encodeBody(body)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoMemory, err)
	}

	serial := p.serial.Add(1)

	p.mu.Lock()
	p.pending[serial] = replyCh
	p.mu.Unlock()

	msg := Message{
		Kind:   KindCall,
		Serial: serial,
		Path:   path,
		Iface:  iface,
		Member: member,
		Body:   raw,
	}
	if err := p.send(msg); err != nil {
		p.forgetPending(serial)
		return 0, err
	}
	return serial, nil
}

// ReplyTo sends a successful reply to the call identified by serial.
// Paired with a HandlerFunc returning ErrAsyncReply, letting a caller
// choose exactly when and from which goroutine the reply is enqueued
// on this peer's out channel, rather than leaving that to
// dispatchInbound immediately after the handler returns.
func (p *Peer) ReplyTo(serial uint64, body any) error {
	raw, err := encodeBody(body)
	if err != nil {
		return p.ReplyError(serial, fmt.Errorf("%w: %v", ErrNoMemory, err))
	}
	return p.send(Message{Kind: KindReply, ReplyTo: serial, Body: raw})
}

// ReplyError sends an error reply to the call identified by serial.
func (p *Peer) ReplyError(serial uint64, err error) error {
	return p.send(errorReply(serial, err))
}

func (p *Peer) forgetPending(serial uint64) {
	p.mu.Lock()
	delete(p.pending, serial)
	p.mu.Unlock()
}

func (p *Peer) send(msg Message) error {
	select {
	case p.out <- msg:
		return nil
	case <-p.closed:
		return ErrClosed
	}
}

func (p *Peer) writePump() {
	fw := newFrameWriter(p.conn)
	for {
		select {
		case msg := <-p.out:
			if err := fw.Write(msg); err != nil {
				p.shutdown(err)
				return
			}
		case <-p.closed:
			return
		}
	}
}

func (p *Peer) readPump() {
	fr := newFrameReader(p.conn)
	for {
		msg, err := fr.Next()
		if err != nil {
			p.shutdown(err)
			return
		}
		p.dispatchInbound(msg)
	}
}

func (p *Peer) dispatchInbound(msg Message) {
	switch msg.Kind {
	case KindReply, KindError:
		p.mu.Lock()
		ch, ok := p.pending[msg.ReplyTo]
		delete(p.pending, msg.ReplyTo)
		p.mu.Unlock()
		if ok {
			ch <- msg
		}
	case KindCall:
		p.mu.Lock()
		fn, ok := p.vtable[vtableKey(msg.Path, msg.Iface, msg.Member)]
		p.mu.Unlock()

		var reply Message
		if !ok {
			reply = errorReply(msg.Serial, ErrUnknownMethod)
		} else {
			body, err := fn(msg)
			if err == ErrAsyncReply {
				return
			}
			if err != nil {
				reply = errorReply(msg.Serial, err)
			} else {
				raw, encErr := encodeBody(body)
				if encErr != nil {
					reply = errorReply(msg.Serial, ErrNoMemory)
				} else {
					reply = Message{Kind: KindReply, ReplyTo: msg.Serial, Body: raw}
				}
			}
		}
		_ = p.send(reply)
	case KindSignal:
		p.mu.Lock()
		fn, ok := p.sigTable[vtableKey(msg.Path, msg.Iface, msg.Member)]
		p.mu.Unlock()
		if ok {
			fn(msg)
		}
		// Unmatched signals are dropped silently, like an unhandled
		// D-Bus signal with no matching match rule.
	}
}

func errorReply(replyTo uint64, err error) Message {
	return Message{
		Kind:         KindError,
		ReplyTo:      replyTo,
		ErrorName:    "org.orchfleet.Error",
		ErrorMessage: err.Error(),
	}
}

// Close tears down the connection and wakes every pending Call/CallAsync.
func (p *Peer) Close() error {
	return p.shutdown(ErrClosed)
}

func (p *Peer) shutdown(cause error) error {
	p.once.Do(func() {
		p.closeErr = cause
		close(p.closed)
		p.conn.Close()
	})
	return nil
}
