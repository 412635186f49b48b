package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

//Predictor is a mock
type Predictor struct {
	mock.Mock
}

//Predict is a mocked Predict function
func (m *Predictor) Predict(ctx context.Context, features []float32) (int, error) {
	args := m.Mock.Called(features)
	return args.Int(0), args.Error(1)
}

//NewPredictor returns mock answering class for any input
func NewPredictor(class int) *Predictor {
	res := &Predictor{}
	res.On("Predict", mock.Anything).Return(class, nil)
	return res
}
