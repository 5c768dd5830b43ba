package scene

import (
	"fmt"
	"strconv"
)

// ValueKind discriminates the property value variants.
type ValueKind uint8

var valueKindNames = []string{
	"Bool",
	"Int",
	"Float",
	"String",
	"Vector3",
	"Reference",
}

const (
	KindBool ValueKind = iota
	KindInt
	KindFloat
	KindString
	KindVector3
	KindReference
)

func (k ValueKind) String() string {
	if int(k) < len(valueKindNames) {
		return valueKindNames[k]
	}
	return fmt.Sprintf("ValueKind(%d)", uint8(k))
}

// Value is a typed property value. Implementations are small value types;
// equality is structural.
type Value interface {
	Kind() ValueKind
	Equal(other Value) bool
	String() string
}

type Bool bool

func (v Bool) Kind() ValueKind { return KindBool }

func (v Bool) Equal(other Value) bool {
	o, ok := other.(Bool)
	return ok && v == o
}

func (v Bool) String() string { return strconv.FormatBool(bool(v)) }

type Int int64

func (v Int) Kind() ValueKind { return KindInt }

func (v Int) Equal(other Value) bool {
	o, ok := other.(Int)
	return ok && v == o
}

func (v Int) String() string { return strconv.FormatInt(int64(v), 10) }

type Float float64

func (v Float) Kind() ValueKind { return KindFloat }

func (v Float) Equal(other Value) bool {
	o, ok := other.(Float)
	return ok && v == o
}

func (v Float) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }

type String string

func (v String) Kind() ValueKind { return KindString }

func (v String) Equal(other Value) bool {
	o, ok := other.(String)
	return ok && v == o
}

func (v String) String() string { return string(v) }

// Vector3 is the geometric composite variant.
type Vector3 struct {
	X, Y, Z float64
}

func (v Vector3) Kind() ValueKind { return KindVector3 }

func (v Vector3) Equal(other Value) bool {
	o, ok := other.(Vector3)
	return ok && v == o
}

func (v Vector3) String() string {
	return fmt.Sprintf("%g, %g, %g", v.X, v.Y, v.Z)
}

// Reference holds another instance's identity, or RefNone for nil.
type Reference struct {
	Target Ref
}

func (v Reference) Kind() ValueKind { return KindReference }

func (v Reference) Equal(other Value) bool {
	o, ok := other.(Reference)
	return ok && v.Target == o.Target
}

func (v Reference) String() string { return v.Target.String() }

// ValuesEqual reports whether two values are equal, treating two nils as
// equal and nil vs non-nil as different.
func ValuesEqual(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}
