package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"

	"github.com/setusign/signgo/internal/pkg/cmdapp"
	"github.com/setusign/signgo/internal/pkg/predict"
	"github.com/setusign/signgo/internal/pkg/utils"
)

//Client posts landmarks to the prediction service
type Client struct {
	httpclient *retryablehttp.Client
	url        string
}

//NewClient creates a prediction client for the service at url
func NewClient(url string, retries int) (*Client, error) {
	u, err := utils.ValidateURL(url, "service url")
	if err != nil {
		return nil, err
	}
	res := Client{url: utils.URLJoin(u, "predict")}
	cmdapp.Log.Infof("Prediction URL: %s", utils.URLToLog(res.url))
	res.httpclient = retryablehttp.NewClient()
	res.httpclient.RetryMax = retries
	res.httpclient.Logger = nil
	res.httpclient.CheckRetry = retryPolicy
	// the last response is returned as is, so the service error reaches ValidateResponse
	res.httpclient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return &res, nil
}

// retryPolicy retries connection failures and temporary server states only.
// A failed inference answers 500 with the same error for the same input
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil || resp == nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	switch resp.StatusCode {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true, nil
	}
	return false, nil
}

//Predict returns the raw prediction value: a symbol or a class index
func (c *Client) Predict(ctx context.Context, landmarks []float32) (interface{}, error) {
	b, err := json.Marshal(predict.Input{Landmarks: landmarks})
	if err != nil {
		return nil, errors.Wrap(err, "Can't encode request")
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(b))
	if err != nil {
		return nil, errors.Wrap(err, "Can't create request")
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpclient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err = utils.ValidateResponse(resp); err != nil {
		return nil, errors.Wrap(err, "Can't predict")
	}
	var out predict.Output
	if err = json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Wrap(err, "Can't decode response")
	}
	cmdapp.Log.Debugf("Prediction: %v", out.Prediction)
	return out.Prediction, nil
}
