package vm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhoc-lang/rhoc/codeobj"
	"github.com/rhoc-lang/rhoc/opcodes"
	"github.com/rhoc-lang/rhoc/values"
)

// TestActor_SendReturnsFutureResolvedByReply spawns an actor whose body
// receives a Message, doubles its contents, and replies with the result
// (spec.md §4.5.4 "send"/"reply"). send() must return a Future immediately
// rather than blocking, and that Future's get() must observe the value the
// actor's reply() call resolved it to — §8 scenario 6 (`send 21`, await
// future -> `42`).
func TestActor_SendReturnsFutureResolvedByReply(t *testing.T) {
	body := codeobj.NewCodeObject("actor-body")
	const (
		msgLocal     = 0
		doubledLocal = 1
	)
	body.Symbols.AddLocal("msg")
	body.Symbols.AddLocal("doubled")
	contentsAttr := uint16(body.Symbols.AddAttr("contents"))
	replyAttr := uint16(body.Symbols.AddAttr("reply"))
	two := body.Consts.InternInt(2)

	body.Bytecode = []byte{
		byte(opcodes.RECEIVE),
		byte(opcodes.STORE), msgLocal, 0,
		byte(opcodes.LOAD), msgLocal, 0,
		byte(opcodes.LOAD_ATTR), byte(contentsAttr), byte(contentsAttr >> 8),
		byte(opcodes.CALL), 0, 0,
		byte(opcodes.LOAD_CONST), byte(two), byte(two >> 8),
		byte(opcodes.MUL),
		byte(opcodes.STORE), doubledLocal, 0,
		byte(opcodes.LOAD), doubledLocal, 0,
		byte(opcodes.LOAD), msgLocal, 0,
		byte(opcodes.LOAD_ATTR), byte(replyAttr), byte(replyAttr >> 8),
		byte(opcodes.CALL), 1, 0,
		byte(opcodes.RETURN),
	}
	body.StackDepth = 3

	machine := New(nil)
	fo := &FuncObj{Kind: KindActor, Code: body}
	o := values.NewObject(machine.funcClass, 0)
	o.Native = fo
	callee := values.FromObject(o)

	handle := machine.spawnActor(callee, nil, nil)
	require.Equal(t, values.TagObject, handle.Tag)

	send := actorObjClass.AttrGet(handle, "send")
	future := send.Obj.Class.Call(send, []values.Value{values.Int(21)}, nil)
	require.Equal(t, values.TagObject, future.Tag, "send() must return a Future, not null")

	get := futureClass.AttrGet(future, "get")
	done := make(chan values.Value, 1)
	go func() { done <- get.Obj.Class.Call(get, nil, nil) }()

	select {
	case result := <-done:
		require.Equal(t, values.TagInt, result.Tag)
		assert.Equal(t, int64(42), result.I)
	case <-time.After(2 * time.Second):
		t.Fatal("future.get() did not complete")
	}

	join := actorObjClass.AttrGet(handle, "join")
	joinDone := make(chan values.Value, 1)
	go func() { joinDone <- join.Obj.Class.Call(join, nil, nil) }()
	select {
	case <-joinDone:
	case <-time.After(2 * time.Second):
		t.Fatal("actor join() did not complete")
	}
}

// TestMessage_ContentsAndDoubleReplyRaisesActorException exercises the
// Message protocol directly (spec.md §4.5.4, testable property #8: a
// future is resolved at most once). The first reply() succeeds and
// resolves the future; the second must raise ActorException rather than
// silently overwrite or block.
func TestMessage_ContentsAndDoubleReplyRaisesActorException(t *testing.T) {
	msg := newMessage(values.Int(5))
	msgVal := wrapMessage(msg)

	contents := messageClass.AttrGet(msgVal, "contents")
	cv := contents.Obj.Class.Call(contents, nil, nil)
	require.Equal(t, values.TagInt, cv.Tag)
	assert.Equal(t, int64(5), cv.I)

	future := wrapFuture(msg.future)

	reply := messageClass.AttrGet(msgVal, "reply")
	first := reply.Obj.Class.Call(reply, []values.Value{values.Int(10)}, nil)
	assert.Equal(t, values.TagNull, first.Tag)

	second := reply.Obj.Class.Call(reply, []values.Value{values.Int(20)}, nil)
	require.Equal(t, values.TagExc, second.Tag)
	assert.Equal(t, values.ActorExceptionClass, second.Obj.Class)

	get := futureClass.AttrGet(future, "get")
	resolved := get.Obj.Class.Call(get, nil, nil)
	require.Equal(t, values.TagInt, resolved.Tag)
	assert.Equal(t, int64(10), resolved.I, "future must resolve to the first reply's value only")
}
