package processor

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/facebookgo/grace/gracehttp"
	"github.com/gorilla/mux"
	"github.com/heptiolabs/healthcheck"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/streadway/amqp"

	"bitbucket.org/edsplore/callqa/internal/pkg/cmdapp"
	"bitbucket.org/edsplore/callqa/internal/pkg/messages"
	"bitbucket.org/edsplore/callqa/internal/pkg/metrics"
	mng "bitbucket.org/edsplore/callqa/internal/pkg/mongo"
	"bitbucket.org/edsplore/callqa/internal/pkg/status"
)

type serviceMetric struct {
	stepDur            *prometheus.HistogramVec
	failures           *prometheus.CounterVec
	processResponseDur prometheus.ObserverVec
}

type backoffProvider interface {
	Get() backoff.BackOff
}

// ServiceData keeps data required for service work
type ServiceData struct {
	Transcriber        Transcriber
	Analyzer           Analyzer
	Signer             URLSigner
	StatusSaver        status.Saver
	TranscriptionSaver TranscriptionSaver
	AnalysisSaver      AnalysisSaver
	Calls              CallProvider
	Agents             AgentProvider
	Metrics            MetricLoader
	DefaultMetrics     MetricSet
	Locker             Locker
	Publisher          messages.Publisher
	InformSender       messages.Sender
	MessageSender      messages.Sender
	ProcessCh          <-chan amqp.Delivery

	SignExpiry        time.Duration
	DefaultLanguage   string
	DefaultConfidence float64

	Port    int
	bp      backoffProvider
	health  healthcheck.Handler
	metrics serviceMetric
}

// StartWorkerService starts listening for process messages
func StartWorkerService(data *ServiceData) error {
	if err := validateData(data); err != nil {
		return err
	}
	cmdapp.Log.Infof("Starting listen for messages")
	go listenQueue(data.ProcessCh, data)
	return nil
}

func validateData(data *ServiceData) error {
	if data.Transcriber == nil {
		return errors.New("No Transcriber set")
	}
	if data.Analyzer == nil {
		return errors.New("No Analyzer set")
	}
	if data.Signer == nil {
		return errors.New("No URL signer set")
	}
	if data.StatusSaver == nil {
		return errors.New("No status saver set")
	}
	if data.TranscriptionSaver == nil {
		return errors.New("No transcription saver set")
	}
	if data.AnalysisSaver == nil {
		return errors.New("No analysis saver set")
	}
	if data.Calls == nil {
		return errors.New("No call provider set")
	}
	if data.Agents == nil {
		return errors.New("No agent provider set")
	}
	if data.Metrics == nil {
		return errors.New("No metric loader set")
	}
	if data.DefaultMetrics == nil {
		return errors.New("No default metric set")
	}
	if data.Locker == nil {
		return errors.New("No locker set")
	}
	if data.ProcessCh == nil {
		return errors.New("No process channel set")
	}
	if data.bp == nil {
		return errors.New("No BackOff provider set")
	}
	return nil
}

// listenQueue processes deliveries one at a time, a failed call never stops
// the rest of the queue
func listenQueue(q <-chan amqp.Delivery, data *ServiceData) {
	for d := range q {
		if err := processMsg(&d, data); err != nil {
			cmdapp.Log.Errorf("Can't process message %s\n%s", d.MessageId, string(d.Body))
			cmdapp.Log.Error(err)
			d.Nack(false, !d.Redelivered) // redeliver for first time
			continue
		}
		d.Ack(false)
	}
	cmdapp.Log.Infof("Stopped listening queue")
}

func processMsg(d *amqp.Delivery, data *ServiceData) error {
	var message messages.ProcessMessage
	if err := json.Unmarshal(d.Body, &message); err != nil {
		return errors.Wrap(err, "Can't unmarshal message "+string(d.Body))
	}
	return ProcessCall(data, message.ID, message.File)
}

// StartWebServer starts the HTTP service for re-submission requests
func StartWebServer(data *ServiceData) error {
	cmdapp.Log.Infof("Starting HTTP service at %d", data.Port)
	r := NewRouter(data)

	portStr := strconv.Itoa(data.Port)
	srv := http.Server{
		Addr:              ":" + portStr,
		WriteTimeout:      15 * time.Second,
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
	ph := processHandler{data: data}
	bh := processAllHandler{data: data}
	if data.metrics.processResponseDur != nil {
		router.Methods("POST").Path("/process/{id}").Handler(
			promhttp.InstrumentHandlerDuration(data.metrics.processResponseDur, ph))
		router.Methods("POST").Path("/process").Handler(
			promhttp.InstrumentHandlerDuration(data.metrics.processResponseDur, bh))
	} else {
		router.Methods("POST").Path("/process/{id}").Handler(ph)
		router.Methods("POST").Path("/process").Handler(bh)
	}
	router.Methods("GET").Path("/metrics").Handler(promhttp.Handler())
	if data.health != nil {
		router.Methods("GET").Path("/live").HandlerFunc(data.health.LiveEndpoint)
		router.Methods("GET").Path("/ready").HandlerFunc(data.health.ReadyEndpoint)
	}
	return router
}

type processResult struct {
	ID string `json:"id"`
}

type processHandler struct {
	data *ServiceData
}

func (h processHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	cmdapp.Log.Infof("Process request for %s", id)

	call, err := h.data.Calls.Get(id)
	if err != nil {
		if errors.Cause(err) == mng.ErrCallNotFound {
			http.Error(w, "Unknown call", http.StatusNotFound)
		} else {
			http.Error(w, "Can't check call", http.StatusInternalServerError)
		}
		cmdapp.Log.Error(err)
		return
	}
	if !status.CanAdvance(status.From(call.Status), status.Transcribing) {
		http.Error(w, "Call can't be processed in status "+call.Status, http.StatusConflict)
		cmdapp.Log.Errorf("Call %s can't be processed in status %s", id, call.Status)
		return
	}
	err = h.data.MessageSender.Send(messages.NewProcessMessage(id, call.FilePath),
		messages.ProcessCall, "")
	if err != nil {
		http.Error(w, "Can't send process message", http.StatusInternalServerError)
		cmdapp.Log.Error(err)
		return
	}
	writeJSON(w, processResult{ID: id})
}

type processAllInput struct {
	IDs []string `json:"ids"`
}

type processAllResult struct {
	IDs []string `json:"ids"`
}

type processAllHandler struct {
	data *ServiceData
}

// ServeHTTP enqueues one process message per id keeping the request order
func (h processAllHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cmdapp.Log.Infof("Bulk process request from %s", r.Host)

	var input processAllInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Can't decode input", http.StatusBadRequest)
		cmdapp.Log.Error(err)
		return
	}
	if len(input.IDs) == 0 {
		http.Error(w, "No ids", http.StatusBadRequest)
		return
	}
	for _, id := range input.IDs {
		if id == "" {
			http.Error(w, "Empty id", http.StatusBadRequest)
			return
		}
	}
	sent := make([]string, 0, len(input.IDs))
	for _, id := range input.IDs {
		err := h.data.MessageSender.Send(messages.NewProcessMessage(id, ""),
			messages.ProcessCall, "")
		if err != nil {
			http.Error(w, "Can't send process message", http.StatusInternalServerError)
			cmdapp.Log.Error(err)
			return
		}
		sent = append(sent, id)
	}
	writeJSON(w, processAllResult{IDs: sent})
}

func writeJSON(w http.ResponseWriter, result interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(&result); err != nil {
		http.Error(w, "Can not prepare result", http.StatusInternalServerError)
		cmdapp.Log.Error(err)
	}
}

func initMetrics(data *ServiceData) error {
	namespace := "processor_service"
	data.metrics.stepDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Pipeline step duration distributions.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
		}, []string{"step"})
	err := metrics.Register(data.metrics.stepDur)
	if err != nil {
		return err
	}
	data.metrics.failures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_failures",
			Help:      "Pipeline failure counter by error code.",
		}, []string{"errorCode"})
	err = metrics.Register(data.metrics.failures)
	if err != nil {
		return err
	}
	data.metrics.processResponseDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_durations_seconds",
			Help:      "Request latency distributions.",
		}, nil)
	return metrics.Register(data.metrics.processResponseDur)
}

func observe(data *ServiceData, step string, start time.Time) {
	if data.metrics.stepDur != nil {
		data.metrics.stepDur.WithLabelValues(step).Observe(time.Since(start).Seconds())
	}
}

func countFailure(data *ServiceData, code string) {
	if data.metrics.failures != nil {
		data.metrics.failures.WithLabelValues(code).Inc()
	}
}
