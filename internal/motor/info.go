package motor

type Info struct {
	Name                 string
	Maker                string
	Source               string
	NozzleRadius         float64
	ThroatRadius         float64
	NozzleExpansionRatio float64
	GrainNumber          int
	GrainDensity         float64
	GrainOuterRadius     float64
	GrainInnerRadius     float64
	GrainHeight          float64
	GrainVolume          float64
	GrainMass            float64
	DryMass              float64
	PropellantMass       float64
	TotalMass            float64
	BurnStart            float64
	BurnOut              float64
	TotalImpulse         float64
	AverageThrust        float64
	MaxThrust            float64
	MaxThrustTime        float64
	ExhaustVelocity      float64
	SpecificImpulse      float64
	FinalInnerRadius     float64
	FinalHeight          float64
}

func (m *SolidMotor) Info() Info {
	cfg := m.cfg
	maxF, maxT := m.MaxThrust()
	rEnd, hEnd := m.GrainGeometry(m.burnOut)
	info := Info{
		NozzleRadius:         cfg.NozzleRadius,
		ThroatRadius:         cfg.ThroatRadius,
		NozzleExpansionRatio: m.NozzleExpansionRatio(),
		GrainNumber:          cfg.GrainNumber,
		GrainDensity:         cfg.GrainDensity,
		GrainOuterRadius:     cfg.GrainOuterRadius,
		GrainInnerRadius:     cfg.GrainInitialInnerRadius,
		GrainHeight:          cfg.GrainInitialHeight,
		GrainVolume:          m.propMass / float64(cfg.GrainNumber) / cfg.GrainDensity,
		GrainMass:            m.propMass / float64(cfg.GrainNumber),
		DryMass:              cfg.DryMass,
		PropellantMass:       m.propMass,
		TotalMass:            m.TotalMass(m.burnStart),
		BurnStart:            m.burnStart,
		BurnOut:              m.burnOut,
		TotalImpulse:         m.totalImpulse,
		AverageThrust:        m.AverageThrust(),
		MaxThrust:            maxF,
		MaxThrustTime:        maxT,
		ExhaustVelocity:      m.ve,
		SpecificImpulse:      m.SpecificImpulse(),
		FinalInnerRadius:     rEnd,
		FinalHeight:          hEnd,
	}
	if cfg.Thrust != nil {
		info.Name = cfg.Thrust.Name
		info.Maker = cfg.Thrust.Maker
		info.Source = cfg.Thrust.Source
	}
	return info
}
