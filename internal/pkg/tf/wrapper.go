package tf

import (
	"context"
	"sort"
	"strings"
	"time"

	tf_framework "github.com/airenas/go-tf-serving-protogen/tensorflow/core/framework"
	tf_serving "github.com/airenas/go-tf-serving-protogen/tensorflow_serving/apis"
	"github.com/cenkalti/backoff"
	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/setusign/signgo/internal/pkg/cmdapp"
	"github.com/setusign/signgo/internal/pkg/model"
)

// Settings of the served model
type Settings struct {
	Name      string
	Signature string
	Input     string
	Output    string
	Features  int
}

// Wrapper calls TF serving grpc service. One connection is shared by all calls
type Wrapper struct {
	settings  Settings
	conn      *grpc.ClientConn
	predictor tf_serving.PredictionServiceClient
	status    tf_serving.ModelServiceClient
}

// NewWrapper creates Wrapper
func NewWrapper(url string, s Settings) (*Wrapper, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("No tf.url provided")
	}
	if strings.TrimSpace(s.Name) == "" {
		return nil, errors.New("No model name provided")
	}
	if strings.TrimSpace(s.Input) == "" {
		return nil, errors.New("No model input name provided")
	}
	conn, err := grpc.Dial(url, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot connect to the grpc server %s", url)
	}
	return &Wrapper{settings: s, conn: conn,
		predictor: tf_serving.NewPredictionServiceClient(conn),
		status:    tf_serving.NewModelServiceClient(conn)}, nil
}

// Close releases the connection
func (w *Wrapper) Close() error {
	if w.conn == nil {
		return nil
	}
	return w.conn.Close()
}

// Healthy return nil or error is TF model is not accesible
func (w *Wrapper) Healthy() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	st, err := w.status.GetModelStatus(ctx, &tf_serving.GetModelStatusRequest{ModelSpec: w.modelSpec()})
	if err != nil {
		return err
	}
	for _, s := range st.ModelVersionStatus {
		if s.State == tf_serving.ModelVersionStatus_AVAILABLE {
			return nil
		}
	}
	return errors.New("Model is not available")
}

// WaitAvailable retries Healthy with exponential backoff until the model is available or timeout passes
func (w *Wrapper) WaitAvailable(ctx context.Context, timeout time.Duration) error {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     backoff.DefaultInitialInterval,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
		Multiplier:          backoff.DefaultMultiplier,
		MaxInterval:         backoff.DefaultMaxInterval,
		MaxElapsedTime:      timeout,
		Clock:               backoff.SystemClock,
	}
	b.Reset()
	op := func() error {
		err := w.Healthy()
		if err != nil {
			cmdapp.Log.Warnf("TF model '%s' not available: %v", w.settings.Name, err)
		}
		return err
	}
	return errors.Wrapf(backoff.Retry(op, backoff.WithContext(b, ctx)), "TF model '%s' not available", w.settings.Name)
}

// Predict sends one sample and returns arg-max over the class scores
func (w *Wrapper) Predict(ctx context.Context, features []float32) (int, error) {
	if w.settings.Features > 0 {
		if err := model.CheckLen(features, w.settings.Features); err != nil {
			return 0, err
		}
	}
	r := &tf_serving.PredictRequest{
		ModelSpec: w.modelSpec(),
		Inputs:    map[string]*tf_framework.TensorProto{w.settings.Input: newInput(features)},
	}
	resp, err := w.predictor.Predict(ctx, r)
	if err != nil {
		return 0, errors.Wrap(err, "Cannot invoke tf server")
	}
	out, err := w.selectOutput(resp.GetOutputs())
	if err != nil {
		return 0, err
	}
	scores := out.GetFloatVal()
	if d := out.GetTensorShape().GetDim(); len(d) > 0 {
		n := int(d[len(d)-1].Size)
		if n > 0 && n < len(scores) {
			scores = scores[:n]
		}
	}
	if len(scores) == 0 {
		return 0, errors.New("No scores in tf result")
	}
	return model.ArgMax(scores), nil
}

func (w *Wrapper) selectOutput(out map[string]*tf_framework.TensorProto) (*tf_framework.TensorProto, error) {
	if w.settings.Output != "" {
		res, f := out[w.settings.Output]
		if !f {
			return nil, errors.Errorf("No output '%s' in tf result", w.settings.Output)
		}
		return res, nil
	}
	if len(out) == 0 {
		return nil, errors.New("No result")
	}
	keys := make([]string, 0, len(out))
	for k := range out {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return out[keys[0]], nil
}

func (w *Wrapper) modelSpec() *tf_serving.ModelSpec {
	return &tf_serving.ModelSpec{Name: w.settings.Name, SignatureName: w.settings.Signature}
}

func newInput(data []float32) *tf_framework.TensorProto {
	return &tf_framework.TensorProto{
		Dtype: tf_framework.DataType_DT_FLOAT,
		TensorShape: &tf_framework.TensorShapeProto{
			Dim: []*tf_framework.TensorShapeProto_Dim{
				{Size: 1},
				{Size: int64(len(data))},
			},
		},
		FloatVal: data,
	}
}
