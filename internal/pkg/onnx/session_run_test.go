package onnx

import (
	"context"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setusign/signgo/internal/pkg/model"
)

// shiftRunner scores the class at the index of the largest input value
type shiftRunner struct {
	in, out []float32
	busy    int32
	overlap bool
	err     error
	mu      sync.Mutex
}

func (r *shiftRunner) Run() error {
	r.mu.Lock()
	r.busy++
	if r.busy > 1 {
		r.overlap = true
	}
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.busy--
		r.mu.Unlock()
	}()
	if r.err != nil {
		return r.err
	}
	for i := range r.out {
		r.out[i] = 0
	}
	r.out[model.ArgMax(r.in)%len(r.out)] = 1
	return nil
}

func newTestSession(features, classes int) (*Session, *shiftRunner) {
	r := &shiftRunner{in: make([]float32, features), out: make([]float32, classes)}
	return &Session{features: features, run: r, input: r.in, output: r.out}, r
}

func TestPredict(t *testing.T) {
	s, _ := newTestSession(4, 4)
	c, err := s.Predict(context.Background(), []float32{0, 0, 3, 1})
	require.Nil(t, err)
	assert.Equal(t, 2, c)
}

func TestPredict_WrongLen(t *testing.T) {
	s, _ := newTestSession(4, 4)
	_, err := s.Predict(context.Background(), []float32{0, 1})
	require.NotNil(t, err)
	assert.True(t, errors.Is(err, model.ErrWrongInput))
}

func TestPredict_Fails(t *testing.T) {
	s, r := newTestSession(4, 4)
	r.err = errors.New("olia")
	_, err := s.Predict(context.Background(), []float32{0, 0, 3, 1})
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "olia")
}

func TestPredict_Concurrent(t *testing.T) {
	s, r := newTestSession(8, 8)
	var wg sync.WaitGroup
	errs := make([]error, 40)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := make([]float32, 8)
			in[i%8] = 1
			c, err := s.Predict(context.Background(), in)
			if err == nil && c != i%8 {
				err = errors.Errorf("got %d, expected %d", c, i%8)
			}
			errs[i] = err
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		assert.Nil(t, err)
	}
	assert.False(t, r.overlap)
}

// needs ONNXRUNTIME_LIB and ONNX_TEST_MODEL (a model with input "input" (1, n) and output "output" (1, m))
func TestNewSession_Runtime(t *testing.T) {
	lib, mf := os.Getenv("ONNXRUNTIME_LIB"), os.Getenv("ONNX_TEST_MODEL")
	if lib == "" || mf == "" {
		t.Skip("ONNXRUNTIME_LIB or ONNX_TEST_MODEL not set")
	}
	in, out := shapeEnv(t, "ONNX_TEST_INPUT", 42), shapeEnv(t, "ONNX_TEST_OUTPUT", 38)
	s, err := NewSession(mf, Settings{Library: lib, Input: "input", Output: "output",
		InputShape: []int64{1, in}, OutputShape: []int64{1, out}})
	require.Nil(t, err)
	defer s.Close()

	c, err := s.Predict(context.Background(), make([]float32, in))
	require.Nil(t, err)
	assert.True(t, c >= 0 && c < int(out))
	_, err = s.Predict(context.Background(), make([]float32, in+1))
	assert.NotNil(t, err)
}

func shapeEnv(t *testing.T, name string, def int64) int64 {
	t.Helper()
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	res, err := strconv.ParseInt(v, 10, 64)
	require.Nil(t, err)
	return res
}
