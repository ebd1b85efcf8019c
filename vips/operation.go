package vips

import (
	"fmt"
	"sync"
)

// State operation lifecycle state
type State int

// State enum
const (
	StateConfiguring State = iota
	StateValidated
	StateExecuting
	StateSucceeded
	StateFailed
)

var stateNames = []string{"configuring", "validated", "executing", "succeeded", "failed"}

func (s State) String() string {
	return nickOf(stateNames, int(s))
}

// operation is the state machine shared by every operation builder
type operation struct {
	entry   string
	tempDir string

	lock  sync.Mutex
	state State
}

// State returns the current lifecycle state
func (o *operation) State() State {
	o.lock.Lock()
	defer o.lock.Unlock()
	return o.state
}

// Entry returns the libvips entry point the operation invokes
func (o *operation) Entry() string {
	return o.entry
}

func (o *operation) transition(from, to State) bool {
	o.lock.Lock()
	defer o.lock.Unlock()
	if o.state != from {
		return false
	}
	o.state = to
	return true
}

func (o *operation) fail() {
	o.lock.Lock()
	o.state = StateFailed
	o.lock.Unlock()
}

// run drives Configuring -> Validated -> Executing -> Succeeded or Failed.
// Validation happens before any native or filesystem side effect.
func (o *operation) run(in *Image, validate func() error, execute func(lib Library, h Handle) error) error {
	if !o.transition(StateConfiguring, StateValidated) {
		return ErrExecuted
	}
	if in == nil {
		o.fail()
		return &ConfigError{Op: o.entry, Field: "in", Reason: "image required"}
	}
	if err := validate(); err != nil {
		o.fail()
		return err
	}
	o.transition(StateValidated, StateExecuting)
	if err := in.use(execute); err != nil {
		o.fail()
		return err
	}
	o.transition(StateExecuting, StateSucceeded)
	return nil
}

// save runs a save-family entry point (in, filename, ...) into a fresh output artifact.
// The artifact is removed before a failure is returned.
func (o *operation) save(in *Image, validate func() error, output func() (*File, error), tail func() CallTail) (*File, error) {
	var file *File
	err := o.run(in, validate, func(lib Library, h Handle) error {
		out, err := output()
		if err != nil {
			return err
		}
		code := lib.Call(o.entry, []Arg{Pointer(h), String(out.Path())}, tail())
		if code != 0 {
			callErr := handleCallError(lib, o.entry, code)
			if err := out.Remove(); err != nil {
				log("vips", LogLevelWarning, fmt.Sprintf("remove %s: %v", out.Path(), err))
			}
			return callErr
		}
		file = out
		return nil
	})
	return file, err
}

// convert runs an image-to-image entry point (in, &out, fixed..., ...).
// The output is owned by the caller.
func (o *operation) convert(in *Image, validate func() error, fixed func() []Arg, tail func() CallTail) (*Image, error) {
	var img *Image
	err := o.run(in, validate, func(lib Library, h Handle) error {
		var out Handle
		args := append([]Arg{Pointer(h), OutImage(&out)}, fixed()...)
		code := lib.Call(o.entry, args, tail())
		if code != 0 {
			if out != 0 {
				lib.Unref(out)
			}
			return handleCallError(lib, o.entry, code)
		}
		img = newImage(lib, out)
		return nil
	})
	return img, err
}

func checkRange(op, field string, p *IntParameter, min, max int) error {
	if p.IsSet() {
		if v := p.Get(); v < min || v > max {
			return &ConfigError{Op: op, Field: field, Reason: fmt.Sprintf("%d not in [%d, %d]", v, min, max)}
		}
	}
	return nil
}

func checkDoubleRange(op, field string, p *DoubleParameter, min, max float64) error {
	if p.IsSet() {
		if v := p.Get(); v < min || v > max {
			return &ConfigError{Op: op, Field: field, Reason: fmt.Sprintf("%g not in [%g, %g]", v, min, max)}
		}
	}
	return nil
}

func checkOneOf(op, field string, p *IntParameter, allowed ...int) error {
	if !p.IsSet() {
		return nil
	}
	v := p.Get()
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return &ConfigError{Op: op, Field: field, Reason: fmt.Sprintf("%d not one of %v", v, allowed)}
}

func checkEnum[E Enum](op, field string, p *EnumParameter[E]) error {
	if p.IsSet() {
		if _, err := FromOrdinal[E](Ordinal(p.Get())); err != nil {
			return &ConfigError{Op: op, Field: field, Reason: err.Error()}
		}
	}
	return nil
}

// checkTileSize requires a positive multiple of 128 when set
func checkTileSize(op, field string, p *IntParameter) error {
	if p.IsSet() {
		if v := p.Get(); v <= 0 || v%128 != 0 {
			return &ConfigError{Op: op, Field: field, Reason: fmt.Sprintf("%d is not a positive multiple of 128", v)}
		}
	}
	return nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
