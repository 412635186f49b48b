package batch

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/heptiolabs/healthcheck"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setusign/signgo/internal/pkg/dataset"
	"github.com/setusign/signgo/internal/pkg/labels"
	"github.com/setusign/signgo/internal/pkg/predict"
	"github.com/setusign/signgo/internal/pkg/test/mocks"
)

func newServer(t *testing.T, class int, withLabels bool) *httptest.Server {
	t.Helper()
	data, err := predict.NewServiceData("batch_test")
	require.Nil(t, err)
	data.Health = healthcheck.NewHandler()
	data.Predictor = mocks.NewPredictor(class)
	data.RequireLandmarks = true
	if withLabels {
		data.Labels = labels.Default()
		data.FeatureCount = 42
	}
	return httptest.NewServer(predict.NewRouter(data))
}

func TestNewClient_Fails(t *testing.T) {
	_, err := NewClient("", 0)
	assert.NotNil(t, err)
	_, err = NewClient("localhost", 0)
	assert.NotNil(t, err)
}

func TestClient_Predict(t *testing.T) {
	s := newServer(t, 7, true)
	defer s.Close()
	cl, err := NewClient(s.URL, 0)
	require.Nil(t, err)

	pr, err := cl.Predict(context.Background(), []float32{0.1, 0.2})
	require.Nil(t, err)
	assert.Equal(t, "H", pr)
}

func TestClient_PredictIndex(t *testing.T) {
	s := newServer(t, 7, false)
	defer s.Close()
	cl, err := NewClient(s.URL, 0)
	require.Nil(t, err)

	pr, err := cl.Predict(context.Background(), []float32{0.1, 0.2})
	require.Nil(t, err)
	assert.Equal(t, 7.0, pr)
}

func TestClient_PredictBadRequest(t *testing.T) {
	s := newServer(t, 7, true)
	defer s.Close()
	cl, err := NewClient(s.URL, 0)
	require.Nil(t, err)

	_, err = cl.Predict(context.Background(), nil)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "No landmarks provided")
}

func newStatusServer(codes []int, body string, calls *int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		i := int(atomic.AddInt32(calls, 1)) - 1
		code := codes[len(codes)-1]
		if i < len(codes) {
			code = codes[i]
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		if code == http.StatusOK {
			w.Write([]byte(`{"prediction":"H"}`))
			return
		}
		w.Write([]byte(body))
	}))
}

func newFastClient(t *testing.T, url string, retries int) *Client {
	t.Helper()
	cl, err := NewClient(url, retries)
	require.Nil(t, err)
	cl.httpclient.RetryWaitMin = time.Millisecond
	cl.httpclient.RetryWaitMax = 5 * time.Millisecond
	return cl
}

func TestClient_PredictInferenceError(t *testing.T) {
	var calls int32
	s := newStatusServer([]int{http.StatusInternalServerError},
		`{"error":"expected 63 values, got 42: Wrong input"}`, &calls)
	defer s.Close()
	cl := newFastClient(t, s.URL, 3)

	_, err := cl.Predict(context.Background(), []float32{0.1})

	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "expected 63 values, got 42: Wrong input")
	assert.Contains(t, err.Error(), "Code: 500")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_PredictRetriesUnavailable(t *testing.T) {
	var calls int32
	s := newStatusServer([]int{http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusOK}, "", &calls)
	defer s.Close()
	cl := newFastClient(t, s.URL, 3)

	pr, err := cl.Predict(context.Background(), []float32{0.1})

	require.Nil(t, err)
	assert.Equal(t, "H", pr)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_PredictUnavailableKeepsBody(t *testing.T) {
	var calls int32
	s := newStatusServer([]int{http.StatusServiceUnavailable}, `{"error":"busy"}`, &calls)
	defer s.Close()
	cl := newFastClient(t, s.URL, 1)

	_, err := cl.Predict(context.Background(), []float32{0.1})

	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "busy")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestRetryPolicy(t *testing.T) {
	ctx := context.Background()
	for code, exp := range map[int]bool{200: false, 400: false, 500: false, 429: true, 502: true, 503: true, 504: true} {
		r, err := retryPolicy(ctx, &http.Response{StatusCode: code}, nil)
		assert.Nil(t, err)
		assert.Equal(t, exp, r, "%d", code)
	}
	r, _ := retryPolicy(ctx, nil, errors.New("connection refused"))
	assert.True(t, r)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	r, err := retryPolicy(cctx, nil, errors.New("connection refused"))
	assert.False(t, r)
	assert.NotNil(t, err)
}

type fakePredictor struct {
	res []interface{}
	i   int
}

func (f *fakePredictor) Predict(ctx context.Context, landmarks []float32) (interface{}, error) {
	r := f.res[f.i]
	f.i++
	if err, ok := r.(error); ok {
		return nil, err
	}
	return r, nil
}

func TestProcess(t *testing.T) {
	p := &fakePredictor{res: []interface{}{"A", "C", errors.New("olia")}}
	samples := []dataset.Sample{{Class: 0}, {Class: 1}, {Class: 2}}
	var b bytes.Buffer

	st, err := process(context.Background(), p, samples, labels.Default(), &b)

	require.Nil(t, err)
	assert.Equal(t, 3, st.total)
	assert.Equal(t, 1, st.failed)
	assert.Equal(t, 2, st.labelled)
	assert.Equal(t, 1, st.correct)
	assert.InDelta(t, 0.5, st.accuracy(), 1e-9)
	assert.Equal(t, "1\t\"A\"\t\"A\"\n2\t\"C\"\t\"B\"\n3\t!\tolia\n", b.String())
}

func TestProcess_Unlabelled(t *testing.T) {
	p := &fakePredictor{res: []interface{}{5.0}}
	var b bytes.Buffer

	st, err := process(context.Background(), p, []dataset.Sample{{Class: dataset.NoClass}}, labels.Default(), &b)

	require.Nil(t, err)
	assert.Equal(t, 0, st.labelled)
	assert.Equal(t, 0.0, st.accuracy())
	assert.Equal(t, "1\t\"5\"\n", b.String())
}

func TestMatches(t *testing.T) {
	assert.True(t, matches("B", 1, "B"))
	assert.False(t, matches("?", 1, "B"))
	assert.True(t, matches(1.0, 1, "B"))
	assert.False(t, matches(2.0, 1, "B"))
	assert.False(t, matches(nil, 1, "B"))
}
