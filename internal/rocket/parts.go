package rocket

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidTrigger = errors.New("rocket: invalid parachute trigger")

type RailButtons struct {
	Upper           float64
	Lower           float64
	AngularPosition float64 // degrees
}

// Distance between the buttons.
func (b *RailButtons) Distance() float64 {
	d := b.Upper - b.Lower
	if d < 0 {
		return -d
	}
	return d
}

// TriggerFunc decides deployment from the sampled (noisy) pressure, the
// height above ground derived from it and the true vertical velocity.
type TriggerFunc func(pressure, height, vz float64) bool

const (
	TriggerApogee   = "apogee"
	TriggerAltitude = "altitude"
	TriggerCustom   = "custom"
)

type Trigger struct {
	Kind     string
	Altitude float64
	Func     TriggerFunc
}

func Apogee() Trigger { return Trigger{Kind: TriggerApogee} }

// Altitude fires while descending below h metres above ground.
func Altitude(h float64) Trigger { return Trigger{Kind: TriggerAltitude, Altitude: h} }

func Custom(fn TriggerFunc) Trigger { return Trigger{Kind: TriggerCustom, Func: fn} }

// ParseTrigger accepts "apogee" or a height in metres.
func ParseTrigger(s string) (Trigger, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, TriggerApogee) {
		return Apogee(), nil
	}
	h, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Trigger{}, fmt.Errorf("%w: %q", ErrInvalidTrigger, s)
	}
	return Altitude(h), nil
}

func (tr Trigger) Fire(pressure, height, vz float64) bool {
	switch tr.Kind {
	case TriggerApogee:
		return vz < 0
	case TriggerAltitude:
		return vz < 0 && height < tr.Altitude
	case TriggerCustom:
		return tr.Func != nil && tr.Func(pressure, height, vz)
	}
	return false
}

func (tr Trigger) String() string {
	switch tr.Kind {
	case TriggerAltitude:
		return fmt.Sprintf("%.0f m AGL", tr.Altitude)
	case "":
		return "none"
	}
	return tr.Kind
}

// Noise is an AR(1) pressure noise model in Pa.
type Noise struct {
	Mean        float64
	Std         float64
	Correlation float64
}

type Parachute struct {
	Name         string
	CdS          float64
	Trigger      Trigger
	SamplingRate float64
	Lag          float64
	Noise        Noise
}

func (r *Rocket) AddParachute(name string, cdS float64, trigger Trigger, samplingRate, lag float64, noise Noise) (*Parachute, error) {
	switch {
	case name == "":
		return nil, fmt.Errorf("%w: parachute needs a name", ErrInvalidTrigger)
	case cdS <= 0:
		return nil, fmt.Errorf("%w: %s cd_s %g", ErrInvalidTrigger, name, cdS)
	case samplingRate <= 0:
		return nil, fmt.Errorf("%w: %s sampling rate %g", ErrInvalidTrigger, name, samplingRate)
	case lag < 0:
		return nil, fmt.Errorf("%w: %s lag %g", ErrInvalidTrigger, name, lag)
	case noise.Correlation < 0 || noise.Correlation >= 1:
		return nil, fmt.Errorf("%w: %s noise correlation %g not in [0, 1)", ErrInvalidTrigger, name, noise.Correlation)
	case trigger.Kind == "" || (trigger.Kind == TriggerCustom && trigger.Func == nil):
		return nil, fmt.Errorf("%w: %s has no trigger", ErrInvalidTrigger, name)
	}
	p := &Parachute{
		Name:         name,
		CdS:          cdS,
		Trigger:      trigger,
		SamplingRate: samplingRate,
		Lag:          lag,
		Noise:        noise,
	}
	r.Parachutes = append(r.Parachutes, p)
	return p, nil
}
