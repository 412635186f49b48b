package metrics

import "github.com/prometheus/client_golang/prometheus"

//Register tries to register or reregister metric to prometheus default registry.
//A collector with the same descriptor from a previous instance is replaced
func Register(m prometheus.Collector) error {
	err := prometheus.Register(m)
	if err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			prometheus.Unregister(are.ExistingCollector)
		} else {
			prometheus.Unregister(m)
		}
		err = prometheus.Register(m)
	}
	return err
}
