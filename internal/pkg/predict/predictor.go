package predict

import (
	"context"

	"github.com/pkg/errors"

	"github.com/setusign/signgo/internal/pkg/features"
)

//ErrNoLandmarks indicates request without landmarks field
var ErrNoLandmarks = errors.New("No landmarks provided")

//ErrDecode indicates unparsable request
var ErrDecode = errors.New("Cannot decode input")

type clientError struct {
	err error
}

func (e *clientError) Error() string { return e.err.Error() }
func (e *clientError) Cause() error  { return e.err }

func isClientError(err error) bool {
	_, ok := err.(*clientError)
	return ok
}

func (d *ServiceData) predict(ctx context.Context, in *Input) (*Output, error) {
	if in.Landmarks == nil && d.RequireLandmarks {
		return nil, &clientError{err: ErrNoLandmarks}
	}
	f := features.Normalize(in.Landmarks, d.FeatureCount)
	c, err := d.Predictor.Predict(ctx, f)
	if err != nil {
		return nil, err
	}
	if d.Labels != nil {
		return &Output{Prediction: d.Labels.Symbol(c)}, nil
	}
	return &Output{Prediction: c}, nil
}
