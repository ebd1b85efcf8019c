package vips

// Rotate turns an image by a fixed multiple of 90 degrees
type Rotate struct {
	operation
	in    *Image
	angle Angle
}

// NewRotate creates a Rotate of in by angle
func NewRotate(in *Image, angle Angle) *Rotate {
	return &Rotate{operation: operation{entry: EntryRot}, in: in, angle: angle}
}

// Angle sets the rotation
func (r *Rotate) Angle(angle Angle) *Rotate {
	r.angle = angle
	return r
}

func (r *Rotate) fixed(angle Angle) []Arg {
	return []Arg{Int(Ordinal(angle))}
}

// Tail returns the option tail, always empty apart from the terminator
func (r *Rotate) Tail() CallTail {
	return NewVarargs().Build()
}

// Execute validates and rotates. The caller owns the returned Image.
func (r *Rotate) Execute() (*Image, error) {
	angle := r.angle
	return r.convert(r.in, func() error {
		if _, err := FromOrdinal[Angle](Ordinal(angle)); err != nil {
			return &ConfigError{Op: EntryRot, Field: "angle", Reason: err.Error()}
		}
		return nil
	}, func() []Arg {
		return r.fixed(angle)
	}, r.Tail)
}
