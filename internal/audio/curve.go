package audio

import (
	"math/rand"
	"time"
)

// Volume floor and ceiling for generated curves. The floor keeps every stem
// faintly audible no matter how hard volatility pulls it down.
const (
	minCurveVolume = 0.1
	maxCurveVolume = 1.0
)

// curve sampling: at least this many points, or one per minute of output,
// whichever is larger.
const minCurvePoints = 10

// Rand is the source of randomness for curve generation. Injectable so tests
// can assert bounds and counts deterministically.
type Rand interface {
	Float64() float64
}

// CurvePoint is one time-stamped sample of an automation curve.
type CurvePoint struct {
	Time  float64
	Value float64
}

// Curve is an ordered sequence of samples with strictly increasing times
// spanning [0, duration].
type Curve []CurvePoint

// CurveGenerator produces volume and pan automation curves. Each stem gets
// its own generator so stems drift out of phase with each other.
type CurveGenerator struct {
	rnd Rand
}

func NewCurveGenerator(rnd Rand) *CurveGenerator {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &CurveGenerator{rnd: rnd}
}

func samplePoints(duration float64) int {
	n := int(duration / 60)
	if n < minCurvePoints {
		n = minCurvePoints
	}
	return n
}

// VolumeCurve samples a wandering gain curve around base. Each sample is
// base plus uniform(-0.5,0.5) scaled by volatility, clamped to [0.1, 1.0].
func (g *CurveGenerator) VolumeCurve(duration, base, volatility float64) Curve {
	n := samplePoints(duration)
	step := duration / float64(n-1)

	curve := make(Curve, n)
	for i := 0; i < n; i++ {
		v := base + (g.rnd.Float64()-0.5)*volatility
		if v < minCurveVolume {
			v = minCurveVolume
		}
		if v > maxCurveVolume {
			v = maxCurveVolume
		}
		t := float64(i) * step
		if i == n-1 {
			t = duration
		}
		curve[i] = CurvePoint{Time: t, Value: v}
	}
	return curve
}

// PanCurve samples a stereo position curve. Each sample is uniform(-1,1)
// scaled by spatialDrift, so drift 0 pins every stem to center.
func (g *CurveGenerator) PanCurve(duration, spatialDrift float64) Curve {
	n := samplePoints(duration)
	step := duration / float64(n-1)

	curve := make(Curve, n)
	for i := 0; i < n; i++ {
		t := float64(i) * step
		if i == n-1 {
			t = duration
		}
		curve[i] = CurvePoint{
			Time:  t,
			Value: (g.rnd.Float64()*2 - 1) * spatialDrift,
		}
	}
	return curve
}

// Mean returns the average sample value of the curve.
func (c Curve) Mean() float64 {
	if len(c) == 0 {
		return 0
	}
	var sum float64
	for _, p := range c {
		sum += p.Value
	}
	return sum / float64(len(c))
}
