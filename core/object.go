package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Object represents a PDF object
type Object interface {
	Type() ObjectType
	String() string
}

// ObjectType represents the type of PDF object
type ObjectType int

const (
	ObjNull ObjectType = iota
	ObjBool
	ObjInt
	ObjReal
	ObjString
	ObjName
	ObjArray
	ObjDict
	ObjStream
	ObjIndirect
)

var objectTypeNames = [...]string{"Null", "Bool", "Int", "Real", "String", "Name", "Array", "Dict", "Stream", "IndirectRef"}

// String returns the string representation of the object type
func (t ObjectType) String() string {
	if t < 0 || int(t) >= len(objectTypeNames) {
		return "Unknown"
	}
	return objectTypeNames[t]
}

// Null represents a PDF null object
type Null struct{}

func (Null) Type() ObjectType { return ObjNull }
func (Null) String() string   { return "null" }

// Bool represents a PDF boolean
type Bool bool

func (b Bool) Type() ObjectType { return ObjBool }
func (b Bool) String() string   { return strconv.FormatBool(bool(b)) }

// Int represents a PDF integer
type Int int64

func (i Int) Type() ObjectType { return ObjInt }
func (i Int) String() string   { return strconv.FormatInt(int64(i), 10) }

// Real represents a PDF real number
type Real float64

func (r Real) Type() ObjectType { return ObjReal }
func (r Real) String() string   { return strconv.FormatFloat(float64(r), 'f', -1, 64) }

// String holds the raw bytes of a literal or hexadecimal PDF string
type String string

func (s String) Type() ObjectType { return ObjString }
func (s String) String() string   { return string(s) }

// Name represents a PDF name without its leading slash
type Name string

func (n Name) Type() ObjectType { return ObjName }
func (n Name) String() string   { return "/" + string(n) }

// Array represents a PDF array
type Array []Object

func (a Array) Type() ObjectType { return ObjArray }
func (a Array) String() string {
	parts := make([]string, len(a))
	for i, obj := range a {
		parts[i] = obj.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Floats converts a numeric array. ok is false if any element is not a number.
func (a Array) Floats() ([]float64, bool) {
	out := make([]float64, len(a))
	for i, obj := range a {
		f, ok := Float(obj)
		if !ok {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

// Dict represents a PDF dictionary
type Dict map[string]Object

func (d Dict) Type() ObjectType { return ObjDict }
func (d Dict) String() string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	sb.WriteString("<<")
	for _, k := range keys {
		fmt.Fprintf(&sb, "/%s %s ", k, d[k].String())
	}
	sb.WriteString(">>")
	return sb.String()
}

// Get retrieves a value from the dictionary
func (d Dict) Get(key string) Object {
	return d[key]
}

// GetName retrieves a name value
func (d Dict) GetName(key string) (Name, bool) {
	n, ok := d[key].(Name)
	return n, ok
}

// GetInt retrieves an integer value
func (d Dict) GetInt(key string) (Int, bool) {
	i, ok := d[key].(Int)
	return i, ok
}

// GetFloat retrieves an integer or real value as float64
func (d Dict) GetFloat(key string) (float64, bool) {
	return Float(d[key])
}

// GetDict retrieves a direct dictionary value
func (d Dict) GetDict(key string) (Dict, bool) {
	dict, ok := d[key].(Dict)
	return dict, ok
}

// GetArray retrieves a direct array value
func (d Dict) GetArray(key string) (Array, bool) {
	arr, ok := d[key].(Array)
	return arr, ok
}

// Has checks if a key exists in the dictionary
func (d Dict) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// Stream represents a PDF stream object
type Stream struct {
	Dict Dict
	Data []byte
}

func (s *Stream) Type() ObjectType { return ObjStream }
func (s *Stream) String() string {
	return fmt.Sprintf("stream %s (%d bytes)", s.Dict.String(), len(s.Data))
}

// IndirectRef represents an indirect object reference
type IndirectRef struct {
	Number     int
	Generation int
}

func (r IndirectRef) Type() ObjectType { return ObjIndirect }
func (r IndirectRef) String() string {
	return fmt.Sprintf("%d %d R", r.Number, r.Generation)
}

// IndirectObject represents an indirect object with its reference
type IndirectObject struct {
	Ref    IndirectRef
	Object Object
}

// Float converts an Int or Real to float64
func Float(obj Object) (float64, bool) {
	switch v := obj.(type) {
	case Int:
		return float64(v), true
	case Real:
		return float64(v), true
	}
	return 0, false
}

// Resolver resolves indirect references to the objects they point to
type Resolver interface {
	ResolveReference(ref IndirectRef) (Object, error)
}

// Resolve follows obj if it is an indirect reference. Chains of references
// are followed up to a fixed depth to survive reference cycles.
func Resolve(r Resolver, obj Object) (Object, error) {
	for depth := 0; depth < 32; depth++ {
		ref, ok := obj.(IndirectRef)
		if !ok {
			return obj, nil
		}
		if r == nil {
			return nil, fmt.Errorf("unresolved reference %s", ref)
		}
		next, err := r.ResolveReference(ref)
		if err != nil {
			return nil, err
		}
		obj = next
	}
	return nil, fmt.Errorf("reference chain too deep")
}

// ResolveDict resolves obj and asserts it is a dictionary. A nil or null
// object yields a nil dictionary without error.
func ResolveDict(r Resolver, obj Object) (Dict, error) {
	if obj == nil {
		return nil, nil
	}
	resolved, err := Resolve(r, obj)
	if err != nil {
		return nil, err
	}
	switch v := resolved.(type) {
	case Dict:
		return v, nil
	case *Stream:
		return v.Dict, nil
	case Null:
		return nil, nil
	}
	return nil, fmt.Errorf("expected dictionary, got %s", resolved.Type())
}
