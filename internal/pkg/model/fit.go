package model

import "github.com/pkg/errors"

//Fit builds an artifact from labelled samples: knn keeps the samples, centroid keeps per class means
func Fit(kind string, k int, samples [][]float32, classes []int) (*Artifact, error) {
	if len(samples) != len(classes) {
		return nil, errors.Errorf("Got %d samples, %d classes", len(samples), len(classes))
	}
	res := &Artifact{Kind: kind, K: k, Vectors: samples, Classes: classes}
	if len(samples) > 0 {
		res.Features = len(samples[0])
	}
	if kind == KindCentroid {
		res.Vectors, res.Classes = centroids(samples, classes)
		res.K = 0
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}
	return res, nil
}

func centroids(samples [][]float32, classes []int) ([][]float32, []int) {
	sums := map[int][]float64{}
	counts := map[int]int{}
	var order []int
	for i, s := range samples {
		c := classes[i]
		sum, f := sums[c]
		if !f {
			sum = make([]float64, len(s))
			sums[c] = sum
			order = append(order, c)
		}
		for j := range s {
			if j < len(sum) {
				sum[j] += float64(s[j])
			}
		}
		counts[c]++
	}
	vectors := make([][]float32, len(order))
	for i, c := range order {
		v := make([]float32, len(sums[c]))
		for j, s := range sums[c] {
			v[j] = float32(s / float64(counts[c]))
		}
		vectors[i] = v
	}
	return vectors, order
}
