package profile

// SCurve is the jerk-limited profile shape. It is selectable so callers can
// store the choice, but has no generator yet.
type SCurve struct{}

func NewSCurve() *SCurve { return &SCurve{} }

func (g *SCurve) Name() string { return "s_curve" }

func (g *SCurve) Generate(distance float64, p Params) (*Profile, error) {
	return nil, ErrNotImplemented
}
