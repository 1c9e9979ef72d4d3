package meshcut

// Phase names the stages a cut goes through, in order.
type Phase int

const (
	PhaseSplit Phase = iota
	PhaseCollapse
	PhaseResolve
	PhaseExtract
	PhaseFill
)

func (p Phase) String() string {
	switch p {
	case PhaseSplit:
		return "split"
	case PhaseCollapse:
		return "collapse"
	case PhaseResolve:
		return "resolve"
	case PhaseExtract:
		return "extract"
	case PhaseFill:
		return "fill"
	}
	return "unknown"
}

// ProgressFunc is polled before each phase. Returning false abandons the
// operation; mutations from earlier phases stay in the mesh.
type ProgressFunc func(phase Phase) bool

func (c *PlaneCut) checkpoint(phase Phase) error {
	if c.Progress != nil && !c.Progress(phase) {
		c.log().Infof("cut cancelled before %s", phase)
		return ErrCancelled
	}
	return nil
}
