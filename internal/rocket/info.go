package rocket

type SurfaceInfo struct {
	Name    string
	CNalpha float64
	CP      float64
}

type Info struct {
	Radius                   float64
	ReferenceArea            float64
	Length                   float64
	Orientation              string
	Mass                     float64
	DryMass                  float64
	TotalMass                float64
	Inertia                  [3]float64
	InertiaAtLiftoff         [3]float64
	CenterOfMassWithoutMotor float64
	MotorPosition            float64
	NozzlePosition           float64
	CenterOfMass             float64
	CenterOfMassBurnout      float64
	CenterOfPressure         float64
	CNalpha                  float64
	StaticMarginInitial      float64
	StaticMarginFinal        float64
	StaticMarginMin          float64
	StaticMarginMax          float64
	Surfaces                 []SurfaceInfo
	RailButtons              *RailButtons
	Parachutes               []*Parachute
	PowerOffDragMax          float64
	PowerOnDragMax           float64
}

// Info collects the rocket's data for reporting. It requires a motor.
func (r *Rocket) Info() (Info, error) {
	if err := r.Validate(); err != nil {
		return Info{}, err
	}
	burnout := r.Motor.BurnOutTime()
	i0 := r.InertiaTensor(0)

	info := Info{
		Radius:                   r.Radius,
		ReferenceArea:            r.ReferenceArea(),
		Length:                   r.Length(),
		Orientation:              r.Orientation,
		Mass:                     r.Mass,
		DryMass:                  r.DryMass(),
		TotalMass:                r.TotalMass(0),
		Inertia:                  r.Inertia,
		InertiaAtLiftoff:         [3]float64{i0.At(0, 0), i0.At(1, 1), i0.At(2, 2)},
		CenterOfMassWithoutMotor: r.CenterOfMassWithoutMotor,
		MotorPosition:            r.MotorPosition,
		NozzlePosition:           r.NozzlePosition(),
		CenterOfMass:             r.CenterOfMass(0),
		CenterOfMassBurnout:      r.CenterOfMass(burnout),
		CenterOfPressure:         r.CenterOfPressure(0),
		CNalpha:                  r.CNalpha(0),
		StaticMarginInitial:      r.StaticMargin(0),
		StaticMarginFinal:        r.StaticMargin(burnout),
		RailButtons:              r.RailButtons,
		Parachutes:               r.Parachutes,
	}
	_, info.PowerOffDragMax = r.PowerOffDrag.Max()
	_, info.PowerOnDragMax = r.PowerOnDrag.Max()

	_, margins := r.StaticMarginCurve(50)
	info.StaticMarginMin, info.StaticMarginMax = margins[0], margins[0]
	for _, m := range margins {
		info.StaticMarginMin = min(info.StaticMarginMin, m)
		info.StaticMarginMax = max(info.StaticMarginMax, m)
	}

	for _, s := range r.surfaces {
		info.Surfaces = append(info.Surfaces, SurfaceInfo{Name: s.Name(), CNalpha: s.CNalpha(0, r.Radius), CP: s.CP()})
	}
	return info, nil
}
