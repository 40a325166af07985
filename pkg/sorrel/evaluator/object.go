package evaluator

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/iancoleman/orderedmap"
	"github.com/shopspring/decimal"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/ast"
	serrors "github.com/sorrel-lang/sorrel/pkg/sorrel/errors"
)

// ObjectType represents the type of objects in the language
type ObjectType string

const (
	INTEGER_OBJ   = "INTEGER"
	BIGINT_OBJ    = "BIGINT"
	FLOAT_OBJ     = "FLOAT"
	DECIMAL_OBJ   = "DECIMAL"
	BOOLEAN_OBJ   = "BOOLEAN"
	STRING_OBJ    = "STRING"
	BYTES_OBJ     = "BYTES"
	NULL_OBJ      = "NULL"
	ARRAY_OBJ     = "ARRAY"
	DICT_OBJ      = "DICT"
	STRUCT_OBJ    = "STRUCT"
	TYPE_OBJ      = "TYPE"
	FUNCTION_OBJ  = "FUNCTION"
	BUILTIN_OBJ   = "BUILTIN"
	METHOD_OBJ    = "BOUND_METHOD"
	EXCEPTION_OBJ = "EXCEPTION"

	// Internal control-flow sentinels; never visible to user code
	RETURN_OBJ   = "RETURN_VALUE"
	BREAK_OBJ    = "BREAK"
	CONTINUE_OBJ = "CONTINUE"
)

// Object represents all values in the language. Primitive variants
// (numbers, booleans, text, nil) are immutable, so copying the interface
// value gives copy semantics. Aggregate variants (Array, Dict, Struct)
// are always handled through their pointer: every binding aliases the
// same underlying object and mutation through any binding is visible
// through all of them.
type Object interface {
	Type() ObjectType
	Inspect() string
}

// Integer is a fixed-width signed integer
type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }

// BigInt is an arbitrary-precision integer
type BigInt struct {
	Value *big.Int
}

func (b *BigInt) Type() ObjectType { return BIGINT_OBJ }
func (b *BigInt) Inspect() string  { return b.Value.String() + "n" }

// Float is a double-precision floating point number
type Float struct {
	Value float64
}

func (f *Float) Type() ObjectType { return FLOAT_OBJ }
func (f *Float) Inspect() string  { return strconv.FormatFloat(f.Value, 'g', -1, 64) }

// Decimal is an arbitrary-precision decimal number
type Decimal struct {
	Value decimal.Decimal
}

func (d *Decimal) Type() ObjectType { return DECIMAL_OBJ }
func (d *Decimal) Inspect() string  { return d.Value.String() + "d" }

// Boolean is true or false; only the TRUE and FALSE singletons exist
type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }

// String is immutable UTF-8 text
type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

// Bytes is a raw byte sequence
type Bytes struct {
	Value []byte
}

func (b *Bytes) Type() ObjectType { return BYTES_OBJ }
func (b *Bytes) Inspect() string  { return fmt.Sprintf("b%q", string(b.Value)) }

// Null is the absent-value marker; NULL is its only instance
type Null struct{}

func (n *Null) Type() ObjectType { return NULL_OBJ }
func (n *Null) Inspect() string  { return "nil" }

// Global singletons
var (
	NULL  = &Null{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

// Array is an ordered mutable sequence with shared-reference semantics
type Array struct {
	Elements []Object
}

func (a *Array) Type() ObjectType { return ARRAY_OBJ }
func (a *Array) Inspect() string {
	elems := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		elems[i] = inspectQuoted(e)
	}
	return "[" + strings.Join(elems, ", ") + "]"
}

// Dict is an insertion-ordered mutable mapping with shared-reference
// semantics. Keys are strings; values are Objects.
type Dict struct {
	Pairs *orderedmap.OrderedMap
}

// NewDict creates an empty Dict
func NewDict() *Dict {
	return &Dict{Pairs: orderedmap.New()}
}

// Get returns the value bound to key
func (d *Dict) Get(key string) (Object, bool) {
	v, ok := d.Pairs.Get(key)
	if !ok {
		return nil, false
	}
	return v.(Object), true
}

// Set binds key to value, preserving first-insertion order
func (d *Dict) Set(key string, value Object) {
	d.Pairs.Set(key, value)
}

// Delete removes key
func (d *Dict) Delete(key string) {
	d.Pairs.Delete(key)
}

// Keys returns keys in insertion order
func (d *Dict) Keys() []string {
	return d.Pairs.Keys()
}

// Len returns the number of entries
func (d *Dict) Len() int {
	return len(d.Pairs.Keys())
}

func (d *Dict) Type() ObjectType { return DICT_OBJ }
func (d *Dict) Inspect() string {
	keys := d.Keys()
	pairs := make([]string, len(keys))
	for i, k := range keys {
		v, _ := d.Get(k)
		pairs[i] = k + ": " + inspectQuoted(v)
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}

// FieldSpec is one declared field of a struct type, with its default
// already evaluated (defaults evaluate once, at type-declaration time)
type FieldSpec struct {
	Name       string
	Annotation string
	Optional   bool
	Default    Object // nil = no default
	HasDefault bool
}

// StructType is a user-defined aggregate type descriptor
type StructType struct {
	Name    string
	Fields  []*FieldSpec
	Methods map[string]*Function
}

func (st *StructType) Type() ObjectType { return TYPE_OBJ }
func (st *StructType) Inspect() string  { return "type " + st.Name }

// FieldByName returns the field spec for name
func (st *StructType) FieldByName(name string) *FieldSpec {
	for _, f := range st.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// StructInstance is one instance of a user-defined aggregate type, with
// shared-reference semantics
type StructInstance struct {
	TypeDesc *StructType
	Fields   *orderedmap.OrderedMap
}

func (si *StructInstance) Type() ObjectType { return STRUCT_OBJ }
func (si *StructInstance) Inspect() string {
	keys := si.Fields.Keys()
	pairs := make([]string, len(keys))
	for i, k := range keys {
		v, _ := si.Fields.Get(k)
		pairs[i] = k + ": " + inspectQuoted(v.(Object))
	}
	return si.TypeDesc.Name + "(" + strings.Join(pairs, ", ") + ")"
}

// GetField returns a field value
func (si *StructInstance) GetField(name string) (Object, bool) {
	v, ok := si.Fields.Get(name)
	if !ok {
		return nil, false
	}
	return v.(Object), true
}

// SetField mutates a field in place; visible through every binding to
// this instance
func (si *StructInstance) SetField(name string, value Object) {
	si.Fields.Set(name, value)
}

// Function is a user-defined function or closure. Env is the defining
// scope, captured by reference; nil only for detached test fixtures.
type Function struct {
	Name   string // "" for lambdas
	Params []*ast.Parameter
	Body   *ast.BlockStatement
	Env    *Environment
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.String()
	}
	name := f.Name
	if name == "" {
		name = "<lambda>"
	}
	return fmt.Sprintf("fun %s(%s)", name, strings.Join(params, ", "))
}

// BuiltinFunction is the signature of a native capability
type BuiltinFunction func(args []Object, env *Environment) Object

// Builtin wraps a host-provided callable. The invocation layer treats it
// like a user function for calling-convention purposes.
type Builtin struct {
	Name string
	Fn   BuiltinFunction
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "builtin " + b.Name }

// BoundMethod pairs a method with its receiver; calling it binds the
// receiver as the implicit leading argument
type BoundMethod struct {
	Receiver Object
	Fn       *Function
}

func (bm *BoundMethod) Type() ObjectType { return METHOD_OBJ }
func (bm *BoundMethod) Inspect() string {
	return fmt.Sprintf("method %s", bm.Fn.Name)
}

// Exception is a runtime fault or a user-raised exception object. While
// raised is set it propagates up through every active frame; catching
// clears it and hands the object to the handler for inspection.
type Exception struct {
	Kind    serrors.Kind
	Message string
	Stack   []string // innermost first, frozen at raise time
	Cause   *Exception
	Line    int
	Column  int

	raised bool
}

func (e *Exception) Type() ObjectType { return EXCEPTION_OBJ }

// Raised reports whether the exception is in flight. Hosts use it to
// tell a propagating fault from an exception held as a plain value.
func (e *Exception) Raised() bool { return e.raised }
func (e *Exception) Inspect() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// ToSorrelError converts the exception for the host embedding boundary
func (e *Exception) ToSorrelError() *serrors.SorrelError {
	return &serrors.SorrelError{
		Kind:    e.Kind,
		Message: e.Message,
		Line:    e.Line,
		Column:  e.Column,
		Stack:   append([]string(nil), e.Stack...),
	}
}

// ReturnValue wraps a value travelling up from a return statement
type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_OBJ }
func (rv *ReturnValue) Inspect() string  { return rv.Value.Inspect() }

// BreakSignal and ContinueSignal are loop control sentinels
type BreakSignal struct{}

func (b *BreakSignal) Type() ObjectType { return BREAK_OBJ }
func (b *BreakSignal) Inspect() string  { return "break" }

type ContinueSignal struct{}

func (c *ContinueSignal) Type() ObjectType { return CONTINUE_OBJ }
func (c *ContinueSignal) Inspect() string  { return "continue" }

var (
	BREAK    = &BreakSignal{}
	CONTINUE = &ContinueSignal{}
)

// inspectQuoted renders nested strings with quotes so collections print
// unambiguously
func inspectQuoted(obj Object) string {
	if obj == nil {
		return "nil"
	}
	if s, ok := obj.(*String); ok {
		return strconv.Quote(s.Value)
	}
	return obj.Inspect()
}

// nativeBoolToBoolean maps a Go bool onto the singletons
func nativeBoolToBoolean(input bool) *Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

// deepCopy clones aggregate values recursively; primitives are immutable
// and returned as-is. Used for per-instance copies of field defaults so
// a mutable default never leaks shared state across instances.
func deepCopy(obj Object) Object {
	switch obj := obj.(type) {
	case *Array:
		elems := make([]Object, len(obj.Elements))
		for i, e := range obj.Elements {
			elems[i] = deepCopy(e)
		}
		return &Array{Elements: elems}
	case *Dict:
		clone := NewDict()
		for _, k := range obj.Keys() {
			v, _ := obj.Get(k)
			clone.Set(k, deepCopy(v))
		}
		return clone
	case *StructInstance:
		fields := orderedmap.New()
		for _, k := range obj.Fields.Keys() {
			v, _ := obj.Fields.Get(k)
			fields.Set(k, deepCopy(v.(Object)))
		}
		return &StructInstance{TypeDesc: obj.TypeDesc, Fields: fields}
	default:
		return obj
	}
}
