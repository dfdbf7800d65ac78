package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValue_Nonzero(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"null", Null(), false},
		{"empty", Empty(), false},
		{"false", Bool(false), false},
		{"true", Bool(true), true},
		{"zero int", Int(0), false},
		{"nonzero int", Int(7), true},
		{"zero float", Float(0), false},
		{"nonzero float", Float(0.5), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.Nonzero())
		})
	}
}

func TestValue_String(t *testing.T) {
	assert.Equal(t, "null", Null().String())
	assert.Equal(t, "true", Bool(true).String())
	assert.Equal(t, "42", Int(42).String())
	assert.Equal(t, "3.5", Float(3.5).String())
}

func TestObject_RefcountLifecycle(t *testing.T) {
	released := false
	class := &Class{Name: "Probe", Del: func(o *Object) { released = true }}
	o := NewObject(class, 0)
	assert.EqualValues(t, 1, o.Refcount())

	v := FromObject(o)
	assert.EqualValues(t, 2, o.Refcount())

	v.Release()
	assert.EqualValues(t, 1, o.Refcount())
	assert.False(t, released)

	o.Release()
	assert.True(t, released, "destructor should fire once refcount reaches zero")
}

func TestObject_StaticNeverReleases(t *testing.T) {
	class := &Class{Name: "Static", Del: func(o *Object) { t.Fatal("destructor must not run on a static object") }}
	o := NewStaticObject(class)
	for i := 0; i < 5; i++ {
		o.Release()
	}
	assert.EqualValues(t, InfiniteRefcount, o.Refcount())
}
