package curve

import (
	"math"
	"strings"
)

// ValueKind selects the value-locked trajectory shape.
type ValueKind int

// Value-locked shapes.
const (
	ValueAverage ValueKind = iota
	ValueLinear
	ValueExponential
	ValueLogistic
	ValueUpThenDown
	ValueDownThenUp
	ValueFrontLoaded
	ValueBackLoaded
)

var valueKindNames = map[ValueKind]string{
	ValueAverage:     "average",
	ValueLinear:      "linear",
	ValueExponential: "exp",
	ValueLogistic:    "logistic",
	ValueUpThenDown:  "up_then_down",
	ValueDownThenUp:  "down_then_up",
	ValueFrontLoaded: "front_loaded",
	ValueBackLoaded:  "back_loaded",
}

func (k ValueKind) String() string {
	if name, ok := valueKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseValueKind maps a configuration name to a ValueKind.
func ParseValueKind(name string) (ValueKind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range valueKindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, invalid("unknown tvl shape %q", name)
}

// ValueCurve is a validated value-locked trajectory shape.
type ValueCurve struct {
	kind    ValueKind
	initial float64
	final   float64
	average float64
}

// FlatValue repeats average on every day.
func FlatValue(average float64) ValueCurve {
	return ValueCurve{kind: ValueAverage, initial: average, final: average, average: average}
}

// NewValueCurve builds a shaped trajectory from initial to final. Use
// FlatValue for the average shape.
func NewValueCurve(kind ValueKind, initial, final float64) (ValueCurve, error) {
	switch kind {
	case ValueAverage:
		return ValueCurve{}, invalid("average tvl shape needs an average value")
	case ValueExponential:
		if initial <= 0 || final <= 0 {
			return ValueCurve{}, invalid("exp tvl shape needs positive endpoints, got %v and %v", initial, final)
		}
	case ValueLinear, ValueLogistic, ValueUpThenDown, ValueDownThenUp, ValueFrontLoaded, ValueBackLoaded:
	default:
		return ValueCurve{}, invalid("unknown tvl shape %d", int(kind))
	}
	return ValueCurve{kind: kind, initial: initial, final: final}, nil
}

// Kind reports the curve's shape.
func (c ValueCurve) Kind() ValueKind { return c.kind }

// Build returns the trajectory for days 0..n-1.
func (c ValueCurve) Build(n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	if c.kind == ValueAverage {
		return repeat(c.average, n)
	}
	if n == 1 {
		return repeat(c.initial, n)
	}
	out := make([]float64, n)
	for d := range out {
		out[d] = c.at(progress(d, n))
	}
	return out
}

func (c ValueCurve) at(x float64) float64 {
	lo, hi := c.initial, c.final
	switch c.kind {
	case ValueLinear:
		return lerp(lo, hi, x)
	case ValueExponential:
		return lo * math.Exp(math.Log(hi/lo)*x)
	case ValueLogistic:
		return lo + (hi-lo)/(1+math.Exp(-logisticSteepness*(x-0.5)))
	case ValueUpThenDown:
		if x <= 0.5 {
			return lerp(lo, hi, x/0.5)
		}
		return lerp(hi, (lo+hi)/2, (x-0.5)/0.5)
	case ValueDownThenUp:
		trough := math.Min(lo, hi) * troughFactor
		if x <= 0.5 {
			return lerp(lo, trough, x/0.5)
		}
		return lerp(trough, hi, (x-0.5)/0.5)
	case ValueFrontLoaded:
		return lo + (hi-lo)*(1-math.Pow(x, frontLoadedPower))
	case ValueBackLoaded:
		return lo + (hi-lo)*math.Pow(x, backLoadedPower)
	}
	return c.average
}
