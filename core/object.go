package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Object is any PDF value.
type Object interface {
	Kind() Kind
	String() string
}

// Kind identifies the variant of an Object.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindReal
	KindString
	KindName
	KindArray
	KindDict
	KindStream
	KindRef
)

var kindNames = [...]string{
	KindNull:   "null",
	KindBool:   "boolean",
	KindInt:    "integer",
	KindReal:   "real",
	KindString: "string",
	KindName:   "name",
	KindArray:  "array",
	KindDict:   "dictionary",
	KindStream: "stream",
	KindRef:    "reference",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// KindOf returns the kind of o, treating a nil Object as null.
func KindOf(o Object) Kind {
	if o == nil {
		return KindNull
	}
	return o.Kind()
}

type Null struct{}

func (Null) Kind() Kind     { return KindNull }
func (Null) String() string { return "null" }

type Bool bool

func (Bool) Kind() Kind       { return KindBool }
func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

type Int int64

func (Int) Kind() Kind       { return KindInt }
func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

type Real float64

func (Real) Kind() Kind       { return KindReal }
func (r Real) String() string { return strconv.FormatFloat(float64(r), 'f', -1, 64) }

// String is the raw byte content of a PDF string.
type String []byte

func (String) Kind() Kind { return KindString }
func (s String) String() string {
	return "(" + strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`).Replace(string(s)) + ")"
}

// Name is a PDF name without the leading slash.
type Name string

func (Name) Kind() Kind       { return KindName }
func (n Name) String() string { return "/" + string(n) }

type Array []Object

func (Array) Kind() Kind { return KindArray }
func (a Array) String() string {
	parts := make([]string, len(a))
	for i, o := range a {
		parts[i] = stringOf(o)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

type Dict map[string]Object

func (Dict) Kind() Kind { return KindDict }

// String renders the dictionary with sorted keys so output is stable.
func (d Dict) String() string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString("<<")
	for _, k := range keys {
		fmt.Fprintf(&b, " /%s %s", k, stringOf(d[k]))
	}
	b.WriteString(" >>")
	return b.String()
}

// Get returns the value stored under key, or nil.
func (d Dict) Get(key string) Object {
	if d == nil {
		return nil
	}
	return d[key]
}

func (d Dict) Name(key string) (Name, bool) {
	n, ok := d.Get(key).(Name)
	return n, ok
}

func (d Dict) Int(key string) (Int, bool) {
	i, ok := d.Get(key).(Int)
	return i, ok
}

func (d Dict) Dict(key string) (Dict, bool) {
	v, ok := d.Get(key).(Dict)
	return v, ok
}

func (d Dict) Array(key string) (Array, bool) {
	a, ok := d.Get(key).(Array)
	return a, ok
}

func (d Dict) Ref(key string) (IndirectRef, bool) {
	r, ok := d.Get(key).(IndirectRef)
	return r, ok
}

// Stream is a dictionary followed by a block of (possibly encoded) bytes.
type Stream struct {
	Dict Dict
	Data []byte
}

func (*Stream) Kind() Kind { return KindStream }
func (s *Stream) String() string {
	return fmt.Sprintf("%s stream(%d bytes)", s.Dict, len(s.Data))
}

// IndirectRef identifies an object by number and generation.
type IndirectRef struct {
	Number     int
	Generation int
}

func (IndirectRef) Kind() Kind { return KindRef }
func (r IndirectRef) String() string {
	return fmt.Sprintf("%d %d R", r.Number, r.Generation)
}

// IndirectObject is the body of an "n g obj ... endobj" definition.
type IndirectObject struct {
	Ref    IndirectRef
	Object Object
}

func stringOf(o Object) string {
	if o == nil {
		return "null"
	}
	return o.String()
}
