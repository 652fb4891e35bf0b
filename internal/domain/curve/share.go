package curve

import "strings"

// ShareKind selects the market-share trajectory shape.
type ShareKind int

// Market-share shapes.
const (
	ShareAverage ShareKind = iota
	ShareLinear
)

func (k ShareKind) String() string {
	switch k {
	case ShareAverage:
		return "average"
	case ShareLinear:
		return "linear"
	}
	return "unknown"
}

// ParseShareKind maps a configuration name to a ShareKind.
func ParseShareKind(name string) (ShareKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "average":
		return ShareAverage, nil
	case "linear":
		return ShareLinear, nil
	}
	return 0, invalid("unknown market share shape %q", name)
}

// ShareCurve is the fraction of rewarded activity routed through the market.
type ShareCurve struct {
	kind    ShareKind
	initial float64
	final   float64
}

// FlatShare repeats average, or initial when no average was given.
func FlatShare(average *float64, initial float64) ShareCurve {
	v := initial
	if average != nil {
		v = *average
	}
	return ShareCurve{kind: ShareAverage, initial: v, final: v}
}

// LinearShare interpolates from initial to final.
func LinearShare(initial, final float64) ShareCurve {
	return ShareCurve{kind: ShareLinear, initial: initial, final: final}
}

// Kind reports the curve's shape.
func (c ShareCurve) Kind() ShareKind { return c.kind }

// Build returns the trajectory for days 0..n-1.
func (c ShareCurve) Build(n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	if c.kind == ShareAverage || n == 1 {
		return repeat(c.initial, n)
	}
	out := make([]float64, n)
	for d := range out {
		out[d] = lerp(c.initial, c.final, progress(d, n))
	}
	return out
}
