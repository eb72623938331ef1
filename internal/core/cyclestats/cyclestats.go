// Package cyclestats provides the small statistical toolkit used by the
// prediction engine
//
// Quartiles use nearest-rank indexing floor((n-1)*q/100) on the sorted
// sample. The IQR filter keeps values within [Q1 - 1.5*IQR, Q3 + 1.5*IQR].
// The recency-weighted mean weights samples 1..k, oldest least
package cyclestats

import (
	"math"
	"sort"
)

// Stats summarizes a numeric sample with nearest-rank quartiles
// computed on the unfiltered sorted sample
type Stats struct {
	Count int `json:"count"`
	P25   int `json:"p25"`
	P50   int `json:"p50"`
	P75   int `json:"p75"`
}

// Quartiles computes Stats over sample; the input is not mutated
// a zero-length sample yields a zero Stats
func Quartiles(sample []int) Stats {
	n := len(sample)
	if n == 0 {
		return Stats{}
	}
	sorted := append([]int(nil), sample...)
	sort.Ints(sorted)
	return Stats{
		Count: n,
		P25:   sorted[nearestRank(n, 25)],
		P50:   sorted[nearestRank(n, 50)],
		P75:   sorted[nearestRank(n, 75)],
	}
}

func nearestRank(n, q int) int {
	return (n - 1) * q / 100
}

// FilterIQR returns the values of sample within the 1.5*IQR fences
// samples of fewer than 2 values are returned unchanged
func FilterIQR(sample []int) []int {
	n := len(sample)
	if n < 2 {
		return append([]int(nil), sample...)
	}
	sorted := append([]int(nil), sample...)
	sort.Ints(sorted)
	q1 := float64(sorted[nearestRank(n, 25)])
	q3 := float64(sorted[nearestRank(n, 75)])
	iqr := q3 - q1
	lo := q1 - 1.5*iqr
	hi := q3 + 1.5*iqr

	kept := make([]int, 0, n)
	for _, v := range sample {
		f := float64(v)
		if f >= lo && f <= hi {
			kept = append(kept, v)
		}
	}
	return kept
}

// WeightedRecentMean averages sample with linearly increasing integer
// weights so the most recent value counts the most
// returns 0 on an empty sample
func WeightedRecentMean(sample []int) int {
	if len(sample) == 0 {
		return 0
	}
	var sum, wsum int
	for i, v := range sample {
		w := i + 1
		sum += v * w
		wsum += w
	}
	return int(math.Round(float64(sum) / float64(wsum)))
}

// MeanStdDev returns the mean and population standard deviation of sample
// both are 0 on an empty sample
func MeanStdDev(sample []int) (mean, stddev float64) {
	n := len(sample)
	if n == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range sample {
		sum += float64(v)
	}
	mean = sum / float64(n)

	var sq float64
	for _, v := range sample {
		d := float64(v) - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(n))
}
