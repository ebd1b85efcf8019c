package vips

// Optional is an option value that is passed to libvips only when set
type Optional interface {
	IsSet() bool
	Arg() Arg
}

// Parameter optional value holder
type Parameter struct {
	value interface{}
	isSet bool
}

// IsSet returns true if a value was assigned
func (p *Parameter) IsSet() bool {
	return p.isSet
}

// Unset clears the value so it is left to the libvips default
func (p *Parameter) Unset() {
	p.value = nil
	p.isSet = false
}

func (p *Parameter) set(v interface{}) {
	p.value = v
	p.isSet = true
}

// BoolParameter optional bool, passed as 0 or 1
type BoolParameter struct {
	Parameter
}

// Set assigns the value
func (p *BoolParameter) Set(v bool) {
	p.set(v)
}

// Get returns the value, false if unset
func (p *BoolParameter) Get() bool {
	v, _ := p.value.(bool)
	return v
}

// Arg encodes the value as int
func (p *BoolParameter) Arg() Arg {
	return Int(boolToInt(p.Get()))
}

// IntParameter optional int
type IntParameter struct {
	Parameter
}

// Set assigns the value
func (p *IntParameter) Set(v int) {
	p.set(v)
}

// Get returns the value, 0 if unset
func (p *IntParameter) Get() int {
	v, _ := p.value.(int)
	return v
}

// Arg encodes the value as int
func (p *IntParameter) Arg() Arg {
	return Int(p.Get())
}

// DoubleParameter optional float64, passed as C double
type DoubleParameter struct {
	Parameter
}

// Set assigns the value
func (p *DoubleParameter) Set(v float64) {
	p.set(v)
}

// Get returns the value, 0 if unset
func (p *DoubleParameter) Get() float64 {
	v, _ := p.value.(float64)
	return v
}

// Arg encodes the value as double
func (p *DoubleParameter) Arg() Arg {
	return Double(p.Get())
}

// StringParameter optional string
type StringParameter struct {
	Parameter
}

// Set assigns the value
func (p *StringParameter) Set(v string) {
	p.set(v)
}

// Get returns the value, empty if unset
func (p *StringParameter) Get() string {
	v, _ := p.value.(string)
	return v
}

// Arg encodes the value as C string
func (p *StringParameter) Arg() Arg {
	return String(p.Get())
}

// EnumParameter optional enum, passed as its ordinal
type EnumParameter[E Enum] struct {
	Parameter
}

// Set assigns the value
func (p *EnumParameter[E]) Set(v E) {
	p.set(v)
}

// Get returns the value, the zero ordinal if unset
func (p *EnumParameter[E]) Get() E {
	v, _ := p.value.(E)
	return v
}

// Arg encodes the value as int ordinal
func (p *EnumParameter[E]) Arg() Arg {
	return Int(Ordinal(p.Get()))
}
