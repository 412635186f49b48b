package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func seq(n int) []float32 {
	res := make([]float32, n)
	for i := range res {
		res[i] = float32(i + 1)
	}
	return res
}

func TestNormalize_Pads(t *testing.T) {
	for _, l := range []int{0, 1, 10, 41} {
		in := seq(l)
		res := Normalize(in, LandmarkCount)
		assert.Equal(t, LandmarkCount, len(res))
		assert.Equal(t, in, res[:l])
		for _, v := range res[l:] {
			assert.Equal(t, float32(0), v)
		}
	}
}

func TestNormalize_Truncates(t *testing.T) {
	for _, l := range []int{43, 63, 100} {
		in := seq(l)
		res := Normalize(in, LandmarkCount)
		assert.Equal(t, in[:LandmarkCount], res)
	}
}

func TestNormalize_Identity(t *testing.T) {
	in := seq(LandmarkCount)
	assert.Equal(t, in, Normalize(in, LandmarkCount))
}

func TestNormalize_NoSharedMemory(t *testing.T) {
	in := seq(LandmarkCount)
	res := Normalize(in, LandmarkCount)
	res[0] = 100
	assert.Equal(t, float32(1), in[0])
}

func TestNormalize_Disabled(t *testing.T) {
	in := seq(5)
	assert.Equal(t, in, Normalize(in, 0))
	assert.Equal(t, []float32{}, Normalize(nil, 0))
}

func TestNormalize_Nil(t *testing.T) {
	assert.Equal(t, make([]float32, 3), Normalize(nil, 3))
}
