package vm

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rhoc-lang/rhoc/values"
)

// Actor is a lightweight, thread-per-actor concurrency unit (spec.md
// §4.5.4): its own VM and persistent frame, fed by a Mailbox, running on a
// dedicated goroutine. join() blocks the caller until the body returns.
// ID is assigned once at spawn time and exposed as the handle's `id`
// attribute — actors have no other stable name, since they are anonymous
// closures.
type Actor struct {
	ID     uuid.UUID
	vm     *VM
	box    *Mailbox
	done   chan struct{}
	result values.Value
	once   sync.Once
}

var actorObjClass = &values.Class{Name: "ActorHandle"}

func init() {
	actorObjClass.AttrGet = func(self values.Value, name string) values.Value {
		a := self.Obj.Native.(*Actor)
		switch name {
		case "id":
			return values.NewString(a.ID.String())
		case "send":
			// send() enqueues a Message and returns its Future without
			// blocking (spec.md §4.5.4); the sender awaits the reply, if
			// it wants one, via the returned Future's get().
			return nativeMethod(self, func(args []values.Value) values.Value {
				if len(args) != 1 {
					return values.Throw(values.TypeExceptionClass, "send() takes exactly one argument")
				}
				return a.box.Send(args[0])
			})
		case "join":
			return nativeMethod(self, func(args []values.Value) values.Value {
				<-a.done
				return a.result.Retain()
			})
		}
		if r, ok := values.AttrGetDefault(self, name); ok {
			return r
		}
		return values.Throw(values.AttributeExceptionClass, "no such attribute: "+name)
	}
}

// nativeMethod wraps a Go closure as a callable bound-method Value, the
// same shape GetAttr's default method lookup produces for user classes
// (values/class.go's BoundMethod), so CALL's dispatch treats it uniformly.
func nativeMethod(self values.Value, fn func(args []values.Value) values.Value) values.Value {
	class := &values.Class{Name: "NativeMethod"}
	class.Call = func(_ values.Value, pos []values.Value, _ map[string]values.Value) values.Value {
		return fn(pos)
	}
	o := values.NewStaticObject(class)
	return values.FromObject(o)
}

// spawnActor implements MAKE_ACTOR's Call slot (spec.md §4.5.4): start a
// fresh VM with its own persistent frame wired to a Mailbox, bind the call
// arguments into it, and run the body on a dedicated goroutine. The
// returned Value is an actor handle carrying send()/join().
func (vm *VM) spawnActor(callee values.Value, pos []values.Value, named map[string]values.Value) values.Value {
	fo := callee.Obj.Native.(*FuncObj)

	child := New(vm.Importer)
	child.Output = vm.Output
	child.Profiler = vm.Profiler

	frame := child.acquireFrame(fo.Code)
	if err := bindArgs(frame, fo, pos, named); err != nil {
		child.releaseFrame(frame)
		return values.FromExc(err)
	}
	for i := range fo.Code.Symbols.Frees {
		if i < len(fo.Frees) {
			frame.freeVal(i, fo.Frees[i])
		}
	}
	box := NewMailbox()
	frame.Mailbox = box

	a := &Actor{ID: uuid.New(), vm: child, box: box, done: make(chan struct{})}
	vm.actors = append(vm.actors, a)

	child.frames = append(child.frames, frame)
	go func() {
		result := child.runFrame(frame)
		child.frames = child.frames[:len(child.frames)-1]
		child.releaseFrame(frame)
		a.result = result
		close(a.done)
	}()

	o := values.NewObject(actorObjClass, 0)
	o.Native = a
	return values.FromObject(o)
}

// Shutdown sends every spawned actor its kill sentinel and waits for each
// to return (spec.md §5 "Cancellation & shutdown").
func (vm *VM) Shutdown() {
	for _, a := range vm.actors {
		a.once.Do(func() { a.box.Kill() })
	}
	for _, a := range vm.actors {
		<-a.done
	}
}

// Future is the handle `actor.send(v)` returns (spec.md §4.5.4): a
// single-assignment cell the sender's `get()` blocks on until the
// receiving actor calls the paired Message's reply(), grounded on the
// original's rho_future_make/future_get (types/actor.c).
type Future struct {
	mu    sync.Mutex
	cond  *sync.Cond
	value values.Value
	ready bool
}

func newFuture() *Future {
	f := &Future{}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// resolve sets the future's value exactly once; a second call is a no-op,
// since reply() itself already guards against a double reply by clearing
// the Message's future pointer on first use.
func (f *Future) resolve(v values.Value) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ready {
		return
	}
	f.value = v.Retain()
	f.ready = true
	f.cond.Broadcast()
}

// get blocks until the future is resolved and returns a retained copy of
// its value (spec.md §4.5.4 "Ordering": the sender observes the reply
// exactly once it exists, however many times get() is called).
func (f *Future) get() values.Value {
	f.mu.Lock()
	for !f.ready {
		f.cond.Wait()
	}
	v := f.value
	f.mu.Unlock()
	return v.Retain()
}

var futureClass = &values.Class{Name: "Future"}

func init() {
	futureClass.Del = func(o *values.Object) {
		f := o.Native.(*Future)
		if f.ready {
			f.value.Release()
		}
	}
	futureClass.AttrGet = func(self values.Value, name string) values.Value {
		f := self.Obj.Native.(*Future)
		if name == "get" {
			return nativeMethod(self, func(args []values.Value) values.Value {
				if len(args) != 0 {
					return values.Throw(values.TypeExceptionClass, "get() takes no arguments")
				}
				return f.get()
			})
		}
		if r, ok := values.AttrGetDefault(self, name); ok {
			return r
		}
		return values.Throw(values.AttributeExceptionClass, "no such attribute: "+name)
	}
}

func wrapFuture(f *Future) values.Value {
	o := values.NewObject(futureClass, 0)
	o.Native = f
	return values.FromObject(o)
}

// Message is what RECEIVE pushes into the body of an actor (spec.md
// §4.5.4): the sent value plus the Future that .reply(x) resolves exactly
// once, grounded on the original's rho_message_make/message_reply
// (types/actor.c). future is cleared to nil the instant a reply claims it,
// so a concurrent second reply() observes nil and raises ActorException —
// the same "cannot reply to the same message twice" the original returns.
type Message struct {
	mu       sync.Mutex
	contents values.Value
	future   *Future
}

func newMessage(v values.Value) *Message {
	return &Message{contents: v.Retain(), future: newFuture()}
}

var messageClass = &values.Class{Name: "Message"}

func init() {
	messageClass.Del = func(o *values.Object) {
		o.Native.(*Message).contents.Release()
	}
	messageClass.AttrGet = func(self values.Value, name string) values.Value {
		m := self.Obj.Native.(*Message)
		switch name {
		case "contents":
			return nativeMethod(self, func(args []values.Value) values.Value {
				if len(args) != 0 {
					return values.Throw(values.TypeExceptionClass, "contents() takes no arguments")
				}
				return m.contents.Retain()
			})
		case "reply":
			return nativeMethod(self, func(args []values.Value) values.Value {
				if len(args) != 1 {
					return values.Throw(values.TypeExceptionClass, "reply() takes exactly one argument")
				}
				m.mu.Lock()
				future := m.future
				m.future = nil
				m.mu.Unlock()
				if future == nil {
					return values.Throw(values.ActorExceptionClass, "cannot reply to the same message twice")
				}
				future.resolve(args[0])
				return values.Null()
			})
		}
		if r, ok := values.AttrGetDefault(self, name); ok {
			return r
		}
		return values.Throw(values.AttributeExceptionClass, "no such attribute: "+name)
	}
}

func wrapMessage(m *Message) values.Value {
	o := values.NewObject(messageClass, 0)
	o.Native = m
	return values.FromObject(o)
}
