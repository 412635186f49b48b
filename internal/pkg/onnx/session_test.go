package onnx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatchOfOne(t *testing.T) {
	n, err := batchOfOne([]int64{1, 63})
	assert.Nil(t, err)
	assert.Equal(t, 63, n)
	n, err = batchOfOne([]int64{1, 21, 3})
	assert.Nil(t, err)
	assert.Equal(t, 63, n)
}

func TestBatchOfOne_Fails(t *testing.T) {
	for _, s := range [][]int64{nil, {1}, {2, 63}, {1, 0}, {1, -1}} {
		_, err := batchOfOne(s)
		assert.NotNil(t, err, "%v", s)
	}
}

func TestValidate(t *testing.T) {
	n, err := validate(Settings{Input: "in", Output: "out", InputShape: []int64{1, 42}, OutputShape: []int64{1, 38}})
	assert.Nil(t, err)
	assert.Equal(t, 42, n)
	_, err = validate(Settings{Output: "out", InputShape: []int64{1, 42}, OutputShape: []int64{1, 38}})
	assert.NotNil(t, err)
	_, err = validate(Settings{Input: "in", Output: "out", InputShape: []int64{1, 42}})
	assert.NotNil(t, err)
}

func TestNewSession_FailsOnSettings(t *testing.T) {
	_, err := NewSession("model.onnx", Settings{})
	assert.NotNil(t, err)
}
