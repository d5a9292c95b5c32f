package ucm

import "math"

var log2Pi = math.Log(2 * math.Pi)

// filterOutput holds the one-step-ahead quantities of the Kalman filter.
// a[t], p[t] are the predicted level mean and variance before observing t;
// a[n], p[n] describe the first out-of-sample step.
type filterOutput struct {
	a, p   []float64
	f, v   []float64
	loglik float64
}

// runFilter filters z = y - x'beta through the local level model. The first
// observation is absorbed by the diffuse prior and excluded from the likelihood.
func runFilter(z []float64, sigma2Irregular, sigma2Level float64) filterOutput {
	n := len(z)
	out := filterOutput{
		a: make([]float64, n+1),
		p: make([]float64, n+1),
		f: make([]float64, n),
		v: make([]float64, n),
	}

	out.a[0] = 0
	out.p[0] = math.Inf(1)
	out.f[0] = math.Inf(1)
	out.v[0] = z[0]

	// Exact diffuse step: the filtered level after t=0 equals z[0] with variance sigma2Irregular
	out.a[1] = z[0]
	out.p[1] = sigma2Irregular + sigma2Level

	for t := 1; t < n; t++ {
		f := out.p[t] + sigma2Irregular
		v := z[t] - out.a[t]
		out.f[t] = f
		out.v[t] = v
		out.loglik += -0.5 * (log2Pi + math.Log(f) + v*v/f)

		k := out.p[t] / f
		out.a[t+1] = out.a[t] + k*v
		out.p[t+1] = out.p[t]*(1-k) + sigma2Level
	}

	return out
}
