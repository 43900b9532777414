package relay

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/facebookgo/grace/gracehttp"
	"github.com/gorilla/mux"
	"github.com/heptiolabs/healthcheck"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bitbucket.org/edsplore/callqa/internal/pkg/cmdapp"
	"bitbucket.org/edsplore/callqa/internal/pkg/metrics"
	"bitbucket.org/edsplore/callqa/internal/pkg/transcriber/api"
)

// Transcriber invokes the speech to text provider
type Transcriber interface {
	Transcribe(audioURL string) (*api.Transcript, error)
}

type serviceMetric struct {
	transcribeResponseDur prometheus.ObserverVec
}

// ServiceData keeps data required for service work
type ServiceData struct {
	Transcriber Transcriber

	Port    int
	health  healthcheck.Handler
	metrics serviceMetric
}

// StartWebServer starts the HTTP service and listens for transcribe requests
func StartWebServer(data *ServiceData) error {
	cmdapp.Log.Infof("Starting HTTP service at %d", data.Port)
	r := NewRouter(data)

	portStr := strconv.Itoa(data.Port)
	srv := http.Server{
		Addr:              ":" + portStr,
		WriteTimeout:      180 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		Handler:           r,
	}

	w := cmdapp.Log.Writer()
	defer w.Close()
	l := log.New(w, "", 0)
	gracehttp.SetLogger(l)

	return gracehttp.Serve(&srv)
}

// NewRouter creates the router for HTTP service
func NewRouter(data *ServiceData) *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	th := http.Handler(transcribeHandler{data: data})
	if data.metrics.transcribeResponseDur != nil {
		th = promhttp.InstrumentHandlerDuration(data.metrics.transcribeResponseDur, th)
	}
	router.Methods("POST").Path("/transcribe").Handler(th)
	router.Methods("GET").Path("/metrics").Handler(promhttp.Handler())
	if data.health != nil {
		router.Methods("GET").Path("/live").HandlerFunc(data.health.LiveEndpoint)
		router.Methods("GET").Path("/ready").HandlerFunc(data.health.ReadyEndpoint)
	}
	return router
}

type transcribeInput struct {
	AudioURL string `json:"audioUrl"`
}

type transcribeResult struct {
	Transcript *api.Transcript `json:"transcript,omitempty"`
	Error      string          `json:"error,omitempty"`
}

type transcribeHandler struct {
	data *ServiceData
}

func (h transcribeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cmdapp.Log.Infof("Transcribe request from %s", r.Host)

	var input transcribeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, "Can't decode input", http.StatusBadRequest)
		cmdapp.Log.Error(err)
		return
	}
	if input.AudioURL == "" {
		writeError(w, "audio URL is required", http.StatusBadRequest)
		return
	}

	tr, err := h.data.Transcriber.Transcribe(input.AudioURL)
	if err != nil {
		writeError(w, "Can't transcribe", http.StatusBadGateway)
		cmdapp.Log.Error(err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(&transcribeResult{Transcript: tr}); err != nil {
		http.Error(w, "Can not prepare result", http.StatusInternalServerError)
		cmdapp.Log.Error(err)
	}
}

func writeError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(&transcribeResult{Error: msg}); err != nil {
		cmdapp.Log.Error(err)
	}
}

func initMetrics(data *ServiceData) error {
	data.metrics.transcribeResponseDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "relay_service",
			Name:      "request_durations_seconds",
			Help:      "Request latency distributions.",
		}, nil)
	return metrics.Register(data.metrics.transcribeResponseDur)
}
