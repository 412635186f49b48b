package predict

//Input is the prediction request
type Input struct {
	Landmarks []float32 `json:"landmarks"`
}

//Output is the prediction response. Prediction is a label symbol or a raw class index
type Output struct {
	Prediction interface{} `json:"prediction"`
}

//ErrorOutput is returned on failure
type ErrorOutput struct {
	Error string `json:"error"`
}

//Status is the acknowledgement returned by the status endpoint as {Key: Message}
type Status struct {
	Key     string
	Message string
}
