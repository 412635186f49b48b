package predict

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/facebookgo/grace/gracehttp"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/heptiolabs/healthcheck"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/setusign/signgo/internal/pkg/cmdapp"
	"github.com/setusign/signgo/internal/pkg/labels"
	"github.com/setusign/signgo/internal/pkg/model"
)

const maxBodySize = 1 << 20

// ServiceData keeps data required for service work
type ServiceData struct {
	Predictor model.Predictor
	// FeatureCount is the length input is padded or truncated to, 0 leaves input as is
	FeatureCount int
	// Labels maps class index to symbol, nil returns raw index
	Labels           *labels.Table
	RequireLandmarks bool
	Status           Status
	Origins          []string

	Port    int
	Health  healthcheck.Handler
	metrics serviceMetric
}

//StartWebServer starts the HTTP service and listens for the requests
func StartWebServer(data *ServiceData) error {
	cmdapp.Log.Infof("Starting HTTP service at %d", data.Port)
	portStr := strconv.Itoa(data.Port)
	srv := http.Server{
		Addr:              ":" + portStr,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		Handler:           NewHandler(data),
	}

	w := cmdapp.Log.Writer()
	defer w.Close()
	gracehttp.SetLogger(log.New(w, "", 0))

	if err := gracehttp.Serve(&srv); err != nil {
		return errors.Wrap(err, "Can't start HTTP listener at port "+portStr)
	}
	return nil
}

//NewHandler wraps the router with CORS handling
func NewHandler(data *ServiceData) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   data.Origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: !anyOrigin(data.Origins),
	})
	return c.Handler(NewRouter(data))
}

func anyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

//NewRouter creates the router for HTTP service
func NewRouter(data *ServiceData) *mux.Router {
	router := mux.NewRouter()
	router.Use(requestIDMiddleware)
	ph := promhttp.InstrumentHandlerDuration(data.metrics.responseDur, &predictHandler{data: data})
	router.Methods("POST").Path("/predict").Handler(ph)
	router.Methods("POST").Path("/predict/").Handler(ph)
	router.Methods("GET").Path("/ws").Handler(&wsHandler{data: data})
	sh := &statusHandler{data: data}
	router.Methods("GET").Path("/").Handler(sh)
	router.Methods("GET").Path("/status").Handler(sh)
	router.Methods("GET").Path("/metrics").Handler(promhttp.Handler())
	if data.Health != nil {
		router.Methods("GET").Path("/live").HandlerFunc(data.Health.LiveEndpoint)
		router.Methods("GET").Path("/ready").HandlerFunc(data.Health.ReadyEndpoint)
	}
	return router
}

type predictHandler struct {
	data *ServiceData
}

func (h *predictHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l := logFor(r)
	l.Debugf("Request from %s", r.RemoteAddr)

	var input Input
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&input)
	if err != nil {
		l.Error(errors.Wrap(err, "Cannot decode input"))
		h.data.metrics.errors.WithLabelValues(errClient).Inc()
		writeError(w, ErrDecode.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.data.predict(r.Context(), &input)
	if err != nil {
		code, kind := http.StatusInternalServerError, errInference
		if isClientError(err) {
			code, kind = http.StatusBadRequest, errClient
		}
		l.Error(err)
		h.data.metrics.errors.WithLabelValues(kind).Inc()
		writeError(w, err.Error(), code)
		return
	}
	h.data.metrics.observe(res)
	l.Debugf("Prediction: %v", res.Prediction)
	writeJSON(w, res, http.StatusOK)
}

type statusHandler struct {
	data *ServiceData
}

func (h *statusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{h.data.Status.Key: h.data.Status.Message}, http.StatusOK)
}

func writeError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, &ErrorOutput{Error: msg}, code)
}

func writeJSON(w http.ResponseWriter, v interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		cmdapp.Log.Error(errors.Wrap(err, "Can not write result"))
	}
}

type ctxKey int

const requestIDKey ctxKey = 0

//RequestIDHeader is the header echoing request id
const RequestIDHeader = "X-Request-ID"

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func logFor(r *http.Request) *logrus.Entry {
	id, _ := r.Context().Value(requestIDKey).(string)
	return cmdapp.Log.WithField("request", id)
}
