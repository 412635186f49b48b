package model

import "context"

type centroid struct {
	features  int
	centroids [][]float32
	classes   []int
}

func newCentroid(a *Artifact) *centroid {
	return &centroid{features: a.Features, centroids: a.Vectors, classes: a.Classes}
}

func (m *centroid) Predict(ctx context.Context, features []float32) (int, error) {
	if err := CheckLen(features, m.features); err != nil {
		return 0, err
	}
	best := 0
	bestDist := distance(m.centroids[0], features)
	for i := 1; i < len(m.centroids); i++ {
		if d := distance(m.centroids[i], features); d < bestDist {
			best, bestDist = i, d
		}
	}
	return m.classes[best], nil
}
