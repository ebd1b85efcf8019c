package vips

// ArgType ABI-level type of a call argument
type ArgType int

// ArgType enum
const (
	ArgNull ArgType = iota
	ArgInt
	ArgDouble
	ArgString
	ArgPointer
	ArgOutImage
	ArgBytes
)

var argTypeNames = []string{"null", "int", "double", "string", "pointer", "out-image", "bytes"}

func (t ArgType) String() string {
	return nickOf(argTypeNames, int(t))
}

// Arg is one tagged word of a native call.
// Only the field matching Type is meaningful.
type Arg struct {
	Type   ArgType
	Int    int
	Double float64
	Str    string
	Ptr    Handle
	Bytes  []byte
	Out    *Handle
}

// Terminator is the NULL that ends every variadic tail
var Terminator = Arg{Type: ArgNull}

// Int C int argument
func Int(v int) Arg {
	return Arg{Type: ArgInt, Int: v}
}

// Double C double argument
func Double(v float64) Arg {
	return Arg{Type: ArgDouble, Double: v}
}

// String C string argument, copied for the duration of the call
func String(v string) Arg {
	return Arg{Type: ArgString, Str: v}
}

// Pointer borrowed object handle argument
func Pointer(h Handle) Arg {
	return Arg{Type: ArgPointer, Ptr: h}
}

// OutImage VipsImage** argument, out receives the created image
func OutImage(out *Handle) Arg {
	return Arg{Type: ArgOutImage, Out: out}
}

// Bytes buffer argument, copied for the duration of the call
func Bytes(b []byte) Arg {
	return Arg{Type: ArgBytes, Bytes: b}
}

// Pair is one name/value option of a call tail
type Pair struct {
	Name  string
	Value Arg
}

// CallTail the option pairs of a variadic call followed by the terminator
type CallTail []Arg

// Pairs returns the name/value pairs preceding the terminator
func (t CallTail) Pairs() []Pair {
	var pairs []Pair
	for i := 0; i+1 < len(t); i += 2 {
		if t[i].Type == ArgNull {
			break
		}
		pairs = append(pairs, Pair{Name: t[i].Str, Value: t[i+1]})
	}
	return pairs
}

// Terminated reports whether the tail holds exactly one terminator, in last position
func (t CallTail) Terminated() bool {
	if len(t) == 0 || t[len(t)-1].Type != ArgNull {
		return false
	}
	for _, a := range t[:len(t)-1] {
		if a.Type == ArgNull {
			return false
		}
	}
	return true
}

// Varargs accumulates the optional name/value tail of a variadic libvips call
type Varargs struct {
	args []Arg
}

// NewVarargs creates an empty Varargs
func NewVarargs() *Varargs {
	return &Varargs{}
}

// Add appends name and the encoded value, skipped when the value is unset
func (v *Varargs) Add(name string, value Optional) *Varargs {
	if value == nil || !value.IsSet() {
		return v
	}
	v.args = append(v.args, String(name), value.Arg())
	return v
}

// Build returns a fresh copy of the pairs followed by exactly one Terminator
func (v *Varargs) Build() CallTail {
	tail := make(CallTail, 0, len(v.args)+1)
	tail = append(tail, v.args...)
	return append(tail, Terminator)
}
