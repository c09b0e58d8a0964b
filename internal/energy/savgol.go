package energy

// Savitzky-Golay smoothing with a fixed window of 5 and polynomial order 2,
// the parameters the smoothed_usage column has always used. The weights are
// the rows of the least-squares projection matrix for a quadratic fit over
// five equally spaced samples; interior points use the symmetric centre
// stencil, the two points at each boundary are evaluated from the quadratic
// fitted to the nearest full window.

var savgolWeights = [5][5]float64{
	{31.0 / 35, 9.0 / 35, -3.0 / 35, -5.0 / 35, 3.0 / 35},
	{9.0 / 35, 13.0 / 35, 12.0 / 35, 6.0 / 35, -5.0 / 35},
	{-3.0 / 35, 12.0 / 35, 17.0 / 35, 12.0 / 35, -3.0 / 35},
	{-5.0 / 35, 6.0 / 35, 12.0 / 35, 13.0 / 35, 9.0 / 35},
	{3.0 / 35, -5.0 / 35, -3.0 / 35, 9.0 / 35, 31.0 / 35},
}

const savgolWindow = 5

// savgolSmooth returns the smoothed series. Series shorter than the window
// are returned unchanged: there is nothing meaningful to fit.
func savgolSmooth(xs []float64) []float64 {
	n := len(xs)
	out := make([]float64, n)
	if n < savgolWindow {
		copy(out, xs)
		return out
	}

	apply := func(window []float64, row int) float64 {
		var sum float64
		for k := 0; k < savgolWindow; k++ {
			sum += savgolWeights[row][k] * window[k]
		}
		return sum
	}

	// Leading edge: evaluate the quadratic fitted to the first window.
	out[0] = apply(xs[:savgolWindow], 0)
	out[1] = apply(xs[:savgolWindow], 1)

	// Interior points use the centre stencil.
	for i := 2; i < n-2; i++ {
		out[i] = apply(xs[i-2:i+3], 2)
	}

	// Trailing edge mirrors the leading edge.
	out[n-2] = apply(xs[n-savgolWindow:], 3)
	out[n-1] = apply(xs[n-savgolWindow:], 4)

	return out
}
