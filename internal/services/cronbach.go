package services

// CronbachAlpha measures the internal consistency of the dimension scores.
// matrix is shaped [respondents][dimensions]; ragged rows, fewer than two
// columns or zero total variance yield 0. Population variance is used
// throughout, so perfectly correlated columns give exactly 1.
func CronbachAlpha(matrix [][]float64) float64 {
	n := len(matrix)
	if n == 0 {
		return 0
	}
	k := len(matrix[0])
	if k < 2 {
		return 0
	}
	columns := make([][]float64, k)
	totals := make([]float64, n)
	for i, row := range matrix {
		if len(row) != k {
			return 0
		}
		for j, v := range row {
			columns[j] = append(columns[j], v)
			totals[i] += v
		}
	}
	var sumItemVars float64
	for _, col := range columns {
		sumItemVars += populationVariance(col)
	}
	totalVar := populationVariance(totals)
	if totalVar == 0 {
		return 0
	}
	kf := float64(k)
	alpha := (kf / (kf - 1)) * (1 - sumItemVars/totalVar)
	if alpha < 0 {
		return 0
	}
	if alpha > 1 {
		return 1
	}
	return alpha
}

func populationVariance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	var sum float64
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return sum / float64(len(xs))
}
