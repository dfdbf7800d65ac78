package vm

import (
	"sync"

	"github.com/rhoc-lang/rhoc/values"
)

// Mailbox is an actor's FIFO inbox (spec.md §4.5.4 "Lightweight actors"):
// a mutex/condvar queue the owning actor's RECEIVE blocks on, and every
// other VM's send() call enqueues into. Every enqueued item is a Message paired
// with a Future (spec.md §4.5.4 "send"/"reply"), grounded on the
// original's rho_mailbox_push/rho_mailbox_pop (types/actor.c): the kill
// sentinel (sent by VM.Shutdown) carries no Message at all and is
// reported to Receive via the stop return rather than handed to user code.
type Mailbox struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	queue    []mailMsg
	closed   bool
}

type mailMsg struct {
	msg  *Message
	kill bool
}

func NewMailbox() *Mailbox {
	m := &Mailbox{}
	m.notEmpty = sync.NewCond(&m.mu)
	return m
}

// Send enqueues v as a new Message and returns the Future that will resolve
// when the receiving actor calls that Message's reply() (spec.md §4.5.4).
func (m *Mailbox) Send(v values.Value) values.Value {
	msg := newMessage(v)
	m.mu.Lock()
	if !m.closed {
		m.queue = append(m.queue, mailMsg{msg: msg})
		m.notEmpty.Signal()
	}
	m.mu.Unlock()
	return wrapFuture(msg.future)
}

// Kill enqueues the shutdown sentinel (spec.md §5 "Cancellation & shutdown").
func (m *Mailbox) Kill() {
	m.mu.Lock()
	m.queue = append(m.queue, mailMsg{kill: true})
	m.closed = true
	m.notEmpty.Signal()
	m.mu.Unlock()
}

// Receive blocks until a message (or the kill sentinel) is available, and
// wraps a regular message as the Message Value RECEIVE pushes (spec.md
// §4.5.4: ".contents()"/".reply(x)").
func (m *Mailbox) Receive() (v values.Value, stop bool) {
	m.mu.Lock()
	for len(m.queue) == 0 {
		m.notEmpty.Wait()
	}
	queued := m.queue[0]
	m.queue = m.queue[1:]
	m.mu.Unlock()
	if queued.kill {
		return values.Value{}, true
	}
	return wrapMessage(queued.msg), false
}
