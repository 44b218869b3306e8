package persona

import "math"

// NormalizeWeights scales weights to sum to 1. NaN, infinite and negative
// values are treated as zero; a zero-sum input falls back to uniform.
func NormalizeWeights(ws []float64) []float64 {
	out := make([]float64, len(ws))
	sum := 0.0
	for i, v := range ws {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			continue
		}
		out[i] = v
		sum += v
	}
	if sum <= 0 {
		if len(out) == 0 {
			return out
		}
		u := 1.0 / float64(len(out))
		for i := range out {
			out[i] = u
		}
		return out
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// CurveWeights expands a curve config to k positive rank weights. A table
// curve repeats its last weight when k exceeds the table; a power curve
// uses 1/rank^alpha; nil or unknown curves are uniform.
func CurveWeights(c *Curve, k int) []float64 {
	if k <= 0 {
		return nil
	}
	uniform := func() []float64 {
		ws := make([]float64, k)
		for i := range ws {
			ws[i] = 1
		}
		return ws
	}
	if c == nil {
		return uniform()
	}
	switch c.Type {
	case "table":
		if len(c.Weights) == 0 {
			return uniform()
		}
		ws := make([]float64, k)
		for i := 0; i < k; i++ {
			if i < len(c.Weights) {
				ws[i] = c.Weights[i]
			} else {
				ws[i] = c.Weights[len(c.Weights)-1]
			}
		}
		return ws
	case "power":
		alpha := c.Alpha
		if alpha == 0 {
			return uniform()
		}
		ws := make([]float64, k)
		for i := 0; i < k; i++ {
			ws[i] = 1.0 / math.Pow(float64(i+1), alpha)
		}
		return ws
	default:
		return uniform()
	}
}
