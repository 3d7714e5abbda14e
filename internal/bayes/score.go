package bayes

import "sort"

// Result pairs a class with its score.
type Result struct {
	Class string  `json:"class" msgpack:"class"`
	Score float32 `json:"score" msgpack:"score"`
}

// Scores returns, for every class c, sum_f fv[f]*PTC[f][c] + PC[c].
//
// The pass is dense and feature-major, accumulating in float32 in the same
// order as the reference implementation so that results match bit for bit.
// Features beyond len(fv) count as zero.
func (d *Data) Scores(fv []uint32) []float32 {
	n := len(d.PC)
	pdc := make([]float32, n)
	rows := min(len(fv), len(d.PTC))
	for i := 0; i < rows; i++ {
		v := float32(fv[i])
		row := d.PTC[i]
		for j := 0; j < n; j++ {
			// explicit conversion rounds the product and keeps it from being fused
			pdc[j] += float32(v * row[j])
		}
	}
	for j := 0; j < n; j++ {
		pdc[j] += d.PC[j]
	}
	return pdc
}

// Pick returns the class with the highest score. Ties keep the leftmost class.
// It reports false only when there are no classes.
func Pick(classes []string, scores []float32) (Result, bool) {
	n := min(len(classes), len(scores))
	if n == 0 {
		return Result{}, false
	}
	best := 0
	for i := 1; i < n; i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return Result{Class: classes[best], Score: scores[best]}, true
}

// SortResults pairs classes with scores and orders them by descending score.
// The sort is stable; incomparable values (NaN) compare as equal.
func SortResults(classes []string, scores []float32) []Result {
	n := min(len(classes), len(scores))
	out := make([]Result, n)
	for i := 0; i < n; i++ {
		out[i] = Result{Class: classes[i], Score: scores[i]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}
