package predict

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/setusign/signgo/internal/pkg/metrics"
)

const (
	errClient    = "client"
	errInference = "inference"
)

type serviceMetric struct {
	responseDur *prometheus.HistogramVec
	predictions *prometheus.CounterVec
	errors      *prometheus.CounterVec
}

//NewServiceData creates service data with registered metrics
func NewServiceData(namespace string) (*ServiceData, error) {
	res := &ServiceData{}
	if err := initMetrics(&res.metrics, namespace); err != nil {
		return nil, err
	}
	return res, nil
}

func initMetrics(m *serviceMetric, namespace string) error {
	m.responseDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_durations_seconds",
			Help:      "Request latency distributions.",
		}, nil)
	if err := metrics.Register(m.responseDur); err != nil {
		return err
	}
	m.predictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Returned predictions",
		}, []string{"prediction"})
	if err := metrics.Register(m.predictions); err != nil {
		return err
	}
	m.errors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Failed requests by kind",
		}, []string{"kind"})
	return metrics.Register(m.errors)
}

func (m *serviceMetric) observe(o *Output) {
	m.predictions.WithLabelValues(fmt.Sprint(o.Prediction)).Inc()
}
