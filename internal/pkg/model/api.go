package model

import (
	"context"

	"github.com/pkg/errors"
)

//Predictor returns the class index for one feature vector.
//Implementations are immutable after load and safe for concurrent use
type Predictor interface {
	Predict(ctx context.Context, features []float32) (int, error)
}

//ErrWrongInput indicates feature vector with unexpected length
var ErrWrongInput = errors.New("Wrong input")

//CheckLen returns ErrWrongInput if features length differs from expected
func CheckLen(features []float32, expected int) error {
	if len(features) != expected {
		return errors.Wrapf(ErrWrongInput, "expected %d values, got %d", expected, len(features))
	}
	return nil
}

//ArgMax returns index of the maximum value, -1 for empty input
func ArgMax(in []float32) int {
	if len(in) == 0 {
		return -1
	}
	r := 0
	m := in[0]
	for i := 1; i < len(in); i++ {
		if m < in[i] {
			m = in[i]
			r = i
		}
	}
	return r
}
