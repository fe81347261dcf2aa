package lime

import (
	"errors"
	"math"
)

// weightedRidge fits y ~ X[:, cols] with sample weights w and an L2 penalty
// on the coefficients (the intercept is not penalized). It returns one
// coefficient per selected column plus the intercept.
func weightedRidge(x [][]float64, y, w []float64, cols []int, lambda float64) ([]float64, float64, error) {
	n := len(x)
	m := len(cols)
	if n == 0 || m == 0 {
		return nil, 0, errors.New("empty design matrix")
	}
	if len(y) != n || len(w) != n {
		return nil, 0, errors.New("label/weight length mismatch")
	}

	var sw float64
	for _, wi := range w {
		sw += wi
	}
	if sw <= 0 {
		return nil, 0, errors.New("non-positive total sample weight")
	}

	xbar := make([]float64, m)
	var ybar float64
	for i := range x {
		for j, c := range cols {
			xbar[j] += w[i] * x[i][c]
		}
		ybar += w[i] * y[i]
	}
	for j := range xbar {
		xbar[j] /= sw
	}
	ybar /= sw

	// Centered normal equations: (X'WX + lambda*I) beta = X'Wy.
	a := make([][]float64, m)
	for j := range a {
		a[j] = make([]float64, m)
	}
	b := make([]float64, m)
	for i := range x {
		dy := y[i] - ybar
		for j, cj := range cols {
			dj := x[i][cj] - xbar[j]
			wd := w[i] * dj
			b[j] += wd * dy
			for k := j; k < m; k++ {
				a[j][k] += wd * (x[i][cols[k]] - xbar[k])
			}
		}
	}
	for j := 0; j < m; j++ {
		for k := 0; k < j; k++ {
			a[j][k] = a[k][j]
		}
		a[j][j] += lambda
	}

	beta, err := solveLinearSystem(a, b)
	if err != nil {
		return nil, 0, err
	}
	intercept := ybar
	for j := range beta {
		intercept -= beta[j] * xbar[j]
	}
	return beta, intercept, nil
}

// solveLinearSystem solves a*x = b by Gaussian elimination with partial
// pivoting. a and b are clobbered.
func solveLinearSystem(a [][]float64, b []float64) ([]float64, error) {
	n := len(a)
	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, errors.New("singular system")
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]
		for row := col + 1; row < n; row++ {
			factor := a[row][col] / a[col][col]
			if factor == 0 {
				continue
			}
			for k := col; k < n; k++ {
				a[row][k] -= factor * a[col][k]
			}
			b[row] -= factor * b[col]
		}
	}
	x := make([]float64, n)
	for row := n - 1; row >= 0; row-- {
		sum := b[row]
		for k := row + 1; k < n; k++ {
			sum -= a[row][k] * x[k]
		}
		x[row] = sum / a[row][row]
	}
	return x, nil
}
