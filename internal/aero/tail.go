package aero

import "fmt"

// Tail is a conical transition. A boattail has BottomRadius < TopRadius and a
// negative normal-force slope.
type Tail struct {
	TopRadius    float64
	BottomRadius float64
	Length       float64
	Position     float64 // top edge
	Dir          float64
}

func NewTail(top, bottom, length, position, dir float64) (*Tail, error) {
	if top <= 0 || bottom <= 0 || length <= 0 {
		return nil, fmt.Errorf("%w: tail (%g, %g, %g)", ErrInvalidSize, top, bottom, length)
	}
	return &Tail{TopRadius: top, BottomRadius: bottom, Length: length, Position: position, Dir: dir}, nil
}

func (t *Tail) Name() string { return "tail" }

// Slope is the radius change per unit length going aft.
func (t *Tail) Slope() float64 {
	return (t.BottomRadius - t.TopRadius) / t.Length
}

func (t *Tail) CNalpha(mach, refRadius float64) float64 {
	top := t.TopRadius / refRadius
	bottom := t.BottomRadius / refRadius
	return 2 * (bottom*bottom - top*top)
}

func (t *Tail) CP() float64 {
	if t.TopRadius == t.BottomRadius {
		return t.Position - t.Dir*t.Length/2
	}
	r := t.TopRadius / t.BottomRadius
	x := t.Length / 3 * (1 + (1-r)/(1-r*r))
	return t.Position - t.Dir*x
}
