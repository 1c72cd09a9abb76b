package curve

import (
	"math"
)

// Segment scores metric values up to UpTo as Base + (UpTo - x) / Run * Rise
type Segment struct {
	UpTo float64
	Base float64
	Rise float64
	Run  float64
}

// Tail scores values beyond the last segment as max(0, Base - (x - From) / Run * Rise)
type Tail struct {
	From float64
	Base float64
	Rise float64
	Run  float64
}

// Curve is a piecewise-linear decay from a distance-like metric to a [0,100] score.
// Segments must be ordered by UpTo; the first segment whose UpTo >= x wins.
type Curve struct {
	Segments []Segment
	Tail     Tail
}

// Eval returns the score for metric x, clamped to [0,100]
func (c Curve) Eval(x float64) float64 {
	for _, seg := range c.Segments {
		if x <= seg.UpTo {
			return clamp(seg.Base + (seg.UpTo-x)/seg.Run*seg.Rise)
		}
	}
	return clamp(math.Max(0, c.Tail.Base-(x-c.Tail.From)/c.Tail.Run*c.Tail.Rise))
}

func clamp(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}

// LocationCurve maps km from a disaster epicenter to a location score
var LocationCurve = Curve{
	Segments: []Segment{
		{UpTo: 5, Base: 80, Rise: 4, Run: 1},
		{UpTo: 20, Base: 50, Rise: 2, Run: 1},
		{UpTo: 50, Base: 20, Rise: 0.6, Run: 1},
	},
	Tail: Tail{From: 50, Base: 20, Rise: 0.2, Run: 1},
}

// TimeCurve maps days between incident and disaster start to a time score
var TimeCurve = Curve{
	Segments: []Segment{
		{UpTo: 3, Base: 90, Rise: 3.33, Run: 1},
		{UpTo: 7, Base: 70, Rise: 5, Run: 1},
		{UpTo: 14, Base: 40, Rise: 4.29, Run: 1},
		{UpTo: 30, Base: 10, Rise: 1.88, Run: 1},
	},
	Tail: Tail{From: 30, Base: 10, Rise: 0.2, Run: 1},
}

// ProximityCurve maps km between last-seen and found points to a proximity score
var ProximityCurve = Curve{
	Segments: []Segment{
		{UpTo: 10, Base: 90, Rise: 1, Run: 1},
		{UpTo: 50, Base: 60, Rise: 30, Run: 40},
		{UpTo: 100, Base: 30, Rise: 30, Run: 50},
		{UpTo: 200, Base: 10, Rise: 20, Run: 100},
	},
	Tail: Tail{From: 200, Base: 10, Rise: 1, Run: 100},
}

// Location scores distance to an epicenter in km
func Location(km float64) float64 {
	return LocationCurve.Eval(km)
}

// Time scores a day difference
func Time(days int) float64 {
	return TimeCurve.Eval(float64(days))
}

// Proximity scores distance between two sightings in km
func Proximity(km float64) float64 {
	return ProximityCurve.Eval(km)
}
