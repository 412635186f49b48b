package features

//LandmarkCount is the feature vector length of the classical landmark model: 21 hand points x (x, y)
const LandmarkCount = 42

//Normalize coerces in to the expected length.
//Shorter input is padded with zeros at the end, longer input is truncated to the first expected values.
//The result never shares memory with in. expected <= 0 disables normalization and returns a copy.
func Normalize(in []float32, expected int) []float32 {
	l := expected
	if l <= 0 {
		l = len(in)
	}
	res := make([]float32, l)
	copy(res, in)
	return res
}
