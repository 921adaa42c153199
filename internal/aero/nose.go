package aero

import (
	"fmt"
	"strings"
)

// CP location from the tip as a fraction of the nose length.
var noseCP = map[string]float64{
	"von karman":  0.500,
	"lvhaack":     0.437,
	"ogive":       0.466,
	"conical":     2.0 / 3.0,
	"parabolic":   0.500,
	"elliptical":  0.333,
	"powerseries": 0.500,
}

func NoseKinds() []string {
	return []string{"von karman", "lvhaack", "ogive", "conical", "parabolic", "elliptical", "powerseries"}
}

type NoseCone struct {
	Length   float64
	Kind     string
	Position float64 // tip
	Dir      float64

	cpFraction float64
}

func NewNoseCone(length float64, kind string, position, dir float64) (*NoseCone, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: nose length %g", ErrInvalidSize, length)
	}
	k := strings.ToLower(strings.TrimSpace(kind))
	frac, ok := noseCP[k]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNose, kind)
	}
	return &NoseCone{Length: length, Kind: k, Position: position, Dir: dir, cpFraction: frac}, nil
}

func (n *NoseCone) Name() string { return "nose cone" }

func (n *NoseCone) CNalpha(mach, refRadius float64) float64 { return 2 }

func (n *NoseCone) CP() float64 {
	return n.Position - n.Dir*n.cpFraction*n.Length
}
