package symalg

import "math"

// simpsonIntervals is the number of subintervals used for definite integrals.
const simpsonIntervals = 1000

// simpson integrates f over [a, b] with the composite Simpson rule. n is
// rounded up to an even count.
func simpson(f func(float64) (float64, error), a, b float64, n int) (float64, error) {
	if a == b {
		return 0, nil
	}
	if n%2 == 1 {
		n++
	}
	h := (b - a) / float64(n)
	fa, err := f(a)
	if err != nil {
		return 0, err
	}
	fb, err := f(b)
	if err != nil {
		return 0, err
	}
	sum := fa + fb
	for i := 1; i < n; i++ {
		v, err := f(a + float64(i)*h)
		if err != nil {
			return 0, err
		}
		if i%2 == 1 {
			sum += 4 * v
		} else {
			sum += 2 * v
		}
	}
	r := sum * h / 3
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, undefinedValue("integral does not converge")
	}
	return r, nil
}
