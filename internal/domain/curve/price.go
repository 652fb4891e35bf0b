package curve

import (
	"math"
	"strings"
)

// Decay is how a YT price falls towards zero.
type Decay int

// Price decay shapes.
const (
	LinearToZero Decay = iota
	ExpToZero
	StepwiseLinear
)

func (d Decay) String() string {
	switch d {
	case LinearToZero:
		return "linear_to_zero"
	case ExpToZero:
		return "exp_to_zero"
	case StepwiseLinear:
		return "stepwise_linear"
	}
	return "unknown"
}

// ParseDecay maps a configuration name to a Decay.
func ParseDecay(name string) (Decay, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "linear_to_zero":
		return LinearToZero, nil
	case "exp_to_zero":
		return ExpToZero, nil
	case "stepwise_linear":
		return StepwiseLinear, nil
	}
	return 0, invalid("unknown price decay %q", name)
}

// PreCampaign is the price behaviour while a points campaign is running.
type PreCampaign int

// Pre-campaign shapes.
const (
	PreFlat PreCampaign = iota
	PreSlowLinear
	PreSlowExp
)

// preCampaignDrop is the total fraction lost over the campaign by the slow shapes.
const preCampaignDrop = 0.1

func (p PreCampaign) String() string {
	switch p {
	case PreFlat:
		return "flat"
	case PreSlowLinear:
		return "slow_linear"
	case PreSlowExp:
		return "slow_exp"
	}
	return "unknown"
}

// ParsePreCampaign maps a configuration name to a PreCampaign.
func ParsePreCampaign(name string) (PreCampaign, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "flat":
		return PreFlat, nil
	case "slow_linear":
		return PreSlowLinear, nil
	case "slow_exp":
		return PreSlowExp, nil
	}
	return 0, invalid("unknown pre-campaign shape %q", name)
}

// Campaign switches the price policy at EndDay. The price is discounted by
// PostDiscount on that day and then decays with Post.
type Campaign struct {
	EndDay       int
	Pre          PreCampaign
	Post         Decay
	PostDiscount float64
}

// PriceOption tunes a PriceCurve.
type PriceOption func(*PriceCurve)

// WithEpsilon sets the floor exp_to_zero decays towards.
func WithEpsilon(eps float64) PriceOption {
	return func(c *PriceCurve) {
		if eps > 0 {
			c.epsilon = eps
		}
	}
}

// WithStepDays sets the stepwise_linear step width.
func WithStepDays(days int) PriceOption {
	return func(c *PriceCurve) {
		c.stepDays = days
	}
}

// WithCampaign enables the two-phase policy.
func WithCampaign(campaign Campaign) PriceOption {
	return func(c *PriceCurve) {
		c.campaign = &campaign
	}
}

// PriceCurve is a validated YT price trajectory.
type PriceCurve struct {
	initial  float64
	decay    Decay
	epsilon  float64
	stepDays int
	campaign *Campaign
}

// NewPriceCurve validates the decay parameters. With a campaign the decay is
// ignored in favour of the campaign's post-phase shape.
func NewPriceCurve(initial float64, decay Decay, opts ...PriceOption) (PriceCurve, error) {
	c := PriceCurve{
		initial:  initial,
		decay:    decay,
		epsilon:  DefaultEpsilon,
		stepDays: DefaultStepDays,
	}
	for _, opt := range opts {
		opt(&c)
	}

	if c.stepDays <= 0 {
		return PriceCurve{}, invalid("step days must be positive, got %d", c.stepDays)
	}

	shape := c.decay
	start := c.initial
	if c.campaign != nil {
		if c.campaign.PostDiscount < 0 || c.campaign.PostDiscount > 1 {
			return PriceCurve{}, invalid("post discount must be within [0,1], got %v", c.campaign.PostDiscount)
		}
		switch c.campaign.Pre {
		case PreFlat, PreSlowLinear, PreSlowExp:
		default:
			return PriceCurve{}, invalid("unknown pre-campaign shape %d", int(c.campaign.Pre))
		}
		shape = c.campaign.Post
		start = c.initial * (1 - c.campaign.PostDiscount)
	}

	switch shape {
	case LinearToZero, StepwiseLinear:
	case ExpToZero:
		if start <= 0 {
			return PriceCurve{}, invalid("exp_to_zero needs a positive start price, got %v", start)
		}
	default:
		return PriceCurve{}, invalid("unknown price decay %d", int(shape))
	}
	return c, nil
}

// Initial returns the day-zero price.
func (c PriceCurve) Initial() float64 { return c.initial }

// Campaign returns the campaign policy, if any.
func (c PriceCurve) Campaign() (Campaign, bool) {
	if c.campaign == nil {
		return Campaign{}, false
	}
	return *c.campaign, true
}

// Build returns the price for days 0..n-1.
func (c PriceCurve) Build(n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	out := make([]float64, n)
	if c.campaign == nil {
		c.decayInto(out, 0, n-1, c.initial, c.decay)
		return out
	}

	last := n - 1
	ce := clamp(c.campaign.EndDay, 0, last)
	for d := 0; d <= ce; d++ {
		out[d] = c.preAt(d, ce)
	}
	postStart := out[ce] * (1 - c.campaign.PostDiscount)
	c.decayInto(out, ce, last, postStart, c.campaign.Post)
	return out
}

// PostStart returns the discounted price the post-campaign phase starts from
// over an n-day horizon. It is the initial price when there is no campaign.
func (c PriceCurve) PostStart(n int) float64 {
	if c.campaign == nil || n <= 0 {
		return c.initial
	}
	ce := clamp(c.campaign.EndDay, 0, n-1)
	return c.preAt(ce, ce) * (1 - c.campaign.PostDiscount)
}

// preAt is the pre-campaign price on day d of a campaign ending on ce.
func (c PriceCurve) preAt(d, ce int) float64 {
	x := float64(d) / float64(max(ce, 1))
	switch c.campaign.Pre {
	case PreSlowLinear:
		return c.initial * (1 - preCampaignDrop*x)
	case PreSlowExp:
		return c.initial * math.Exp(math.Log(1-preCampaignDrop)*x)
	}
	return c.initial
}

// decayInto fills out[first..last] decaying from start.
func (c PriceCurve) decayInto(out []float64, first, last int, start float64, decay Decay) {
	span := max(last-first, 1)
	switch decay {
	case LinearToZero:
		for d := first; d <= last; d++ {
			out[d] = start * (1 - float64(d-first)/float64(span))
		}
	case ExpToZero:
		b := math.Log(c.epsilon / start)
		for d := first; d <= last; d++ {
			out[d] = start * math.Exp(b*float64(d-first)/float64(span))
		}
	case StepwiseLinear:
		steps := max(1, ceilDiv(span, c.stepDays))
		for d := first; d <= last; d++ {
			idx := clamp((d-first)/c.stepDays, 0, steps-1)
			out[d] = start * (1 - float64(idx)/float64(steps))
		}
	}
}
