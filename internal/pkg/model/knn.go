package model

import (
	"context"
	"sort"
)

type knn struct {
	features int
	k        int
	vectors  [][]float32
	classes  []int
}

func newKNN(a *Artifact) *knn {
	k := a.K
	if k > len(a.Vectors) {
		k = len(a.Vectors)
	}
	return &knn{features: a.Features, k: k, vectors: a.Vectors, classes: a.Classes}
}

type neighbour struct {
	dist  float64
	class int
}

//Predict votes among k nearest samples, a tie goes to the class with the nearest sample
func (m *knn) Predict(ctx context.Context, features []float32) (int, error) {
	if err := CheckLen(features, m.features); err != nil {
		return 0, err
	}
	nb := make([]neighbour, len(m.vectors))
	for i, v := range m.vectors {
		nb[i] = neighbour{dist: distance(v, features), class: m.classes[i]}
	}
	sort.SliceStable(nb, func(i, j int) bool { return nb[i].dist < nb[j].dist })

	votes := make(map[int]int)
	best, bestVotes := nb[0].class, 0
	for _, n := range nb[:m.k] {
		votes[n.class]++
	}
	// nb is sorted, so the first class reaching the max count is the nearest one
	for _, n := range nb[:m.k] {
		if votes[n.class] > bestVotes {
			best, bestVotes = n.class, votes[n.class]
		}
	}
	return best, nil
}

func distance(a, b []float32) float64 {
	var res float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		res += d * d
	}
	return res
}
