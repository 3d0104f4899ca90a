package integrator

import (
	"math"

	"github.com/pkg/errors"
)

// Dormand-Prince 5(4) tableau.
const (
	c2 = 1. / 5
	c3 = 3. / 10
	c4 = 4. / 5
	c5 = 8. / 9

	b21 = 1. / 5
	b31 = 3. / 40
	b32 = 9. / 40
	b41 = 44. / 45
	b42 = -56. / 15
	b43 = 32. / 9
	b51 = 19372. / 6561
	b52 = -25360. / 2187
	b53 = 64448. / 6561
	b54 = -212. / 729
	b61 = 9017. / 3168
	b62 = -355. / 33
	b63 = 46732. / 5247
	b64 = 49. / 176
	b65 = -5103. / 18656

	w1 = 35. / 384
	w3 = 500. / 1113
	w4 = 125. / 192
	w5 = -2187. / 6784
	w6 = 11. / 84

	e1 = 71. / 57600
	e3 = -71. / 16695
	e4 = 71. / 1920
	e5 = -17253. / 339200
	e6 = 22. / 525
	e7 = -1. / 40
)

var (
	// ErrMaxSteps is returned when the step budget is exhausted before
	// reaching the end of the propagation span.
	ErrMaxSteps = errors.New("step budget exhausted")
	// ErrStepUnderflow is returned when the error control shrinks the step
	// below the resolution of the time variable.
	ErrStepUnderflow = errors.New("step size underflow")
	// ErrDiverged is returned when an accepted state is no longer finite.
	ErrDiverged = errors.New("state diverged")
)

// RK45 is an adaptive Dormand-Prince 5(4) propagator with an embedded
// fourth-order error estimate. The zero value is not usable, call NewRK45.
type RK45 struct {
	RelTol   float64
	AbsTol   float64
	MinScale float64
	MaxScale float64
	Safety   float64
	MaxSteps int
}

// NewRK45 returns a propagator with the usual defaults.
func NewRK45() *RK45 {
	return &RK45{
		RelTol:   1e-3,
		AbsTol:   1e-6,
		MinScale: 0.2,
		MaxScale: 10,
		Safety:   0.9,
		MaxSteps: 1 << 20,
	}
}

// Solve propagates y' = f(t, y) from t0 to tf starting at y0 and returns all
// accepted samples. Any error from f aborts the propagation unchanged.
func (rk *RK45) Solve(f Func, t0, tf float64, y0 []float64) (Solution, error) {
	n := len(y0)
	y := make([]float64, n)
	copy(y, y0)

	sol := Solution{Times: []float64{t0}, States: [][]float64{append([]float64(nil), y0...)}}

	k1 := make([]float64, n)
	k2 := make([]float64, n)
	k3 := make([]float64, n)
	k4 := make([]float64, n)
	k5 := make([]float64, n)
	k6 := make([]float64, n)
	k7 := make([]float64, n)
	tmp := make([]float64, n)
	yNext := make([]float64, n)

	if err := f(t0, y, k1); err != nil {
		return sol, err
	}

	t := t0
	h := rk.initialStep(f, t0, tf, y, k1)
	for step := 0; ; step++ {
		if step >= rk.MaxSteps {
			return sol, errors.Wrapf(ErrMaxSteps, "t=%g of [%g, %g]", t, t0, tf)
		}
		final := false
		if t+h >= tf {
			h = tf - t
			final = true
		}

		for i := 0; i < n; i++ {
			tmp[i] = y[i] + h*b21*k1[i]
		}
		if err := f(t+c2*h, tmp, k2); err != nil {
			return sol, err
		}
		for i := 0; i < n; i++ {
			tmp[i] = y[i] + h*(b31*k1[i]+b32*k2[i])
		}
		if err := f(t+c3*h, tmp, k3); err != nil {
			return sol, err
		}
		for i := 0; i < n; i++ {
			tmp[i] = y[i] + h*(b41*k1[i]+b42*k2[i]+b43*k3[i])
		}
		if err := f(t+c4*h, tmp, k4); err != nil {
			return sol, err
		}
		for i := 0; i < n; i++ {
			tmp[i] = y[i] + h*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
		}
		if err := f(t+c5*h, tmp, k5); err != nil {
			return sol, err
		}
		for i := 0; i < n; i++ {
			tmp[i] = y[i] + h*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
		}
		if err := f(t+h, tmp, k6); err != nil {
			return sol, err
		}
		for i := 0; i < n; i++ {
			yNext[i] = y[i] + h*(w1*k1[i]+w3*k3[i]+w4*k4[i]+w5*k5[i]+w6*k6[i])
		}
		if err := f(t+h, yNext, k7); err != nil {
			return sol, err
		}

		errNorm := 0.0
		for i := 0; i < n; i++ {
			est := h * (e1*k1[i] + e3*k3[i] + e4*k4[i] + e5*k5[i] + e6*k6[i] + e7*k7[i])
			scale := rk.AbsTol + rk.RelTol*math.Max(math.Abs(y[i]), math.Abs(yNext[i]))
			errNorm += (est / scale) * (est / scale)
		}
		errNorm = math.Sqrt(errNorm / float64(n))

		if math.IsNaN(errNorm) {
			h *= rk.MinScale
			if t+h == t {
				return sol, errors.Wrapf(ErrStepUnderflow, "t=%g", t)
			}
			continue
		}

		if errNorm <= 1 {
			if final {
				t = tf
			} else {
				t += h
			}
			copy(y, yNext)
			copy(k1, k7) // first same as last
			for i := 0; i < n; i++ {
				if !isFinite(y[i]) {
					return sol, errors.Wrapf(ErrDiverged, "t=%g", t)
				}
			}
			sol.Times = append(sol.Times, t)
			sol.States = append(sol.States, append([]float64(nil), y...))
			if final {
				return sol, nil
			}
		}

		scale := rk.MaxScale
		if errNorm > 0 {
			scale = rk.Safety * math.Pow(errNorm, -0.2)
			if scale < rk.MinScale {
				scale = rk.MinScale
			} else if scale > rk.MaxScale {
				scale = rk.MaxScale
			}
		}
		h *= scale
		if t+h == t {
			return sol, errors.Wrapf(ErrStepUnderflow, "t=%g", t)
		}
	}
}

// initialStep estimates a starting step from the scale of the state and its
// derivative at t0.
func (rk *RK45) initialStep(f Func, t0, tf float64, y, dydt []float64) float64 {
	d0, d1 := 0.0, 0.0
	for i := range y {
		scale := rk.AbsTol + rk.RelTol*math.Abs(y[i])
		d0 += (y[i] / scale) * (y[i] / scale)
		d1 += (dydt[i] / scale) * (dydt[i] / scale)
	}
	d0 = math.Sqrt(d0 / float64(len(y)))
	d1 = math.Sqrt(d1 / float64(len(y)))
	h := (tf - t0) / 100
	if d0 >= 1e-5 && d1 >= 1e-5 {
		h = math.Min(h, 0.01*d0/d1)
	}
	if h <= 0 {
		h = 1e-6
	}
	return h
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
