package status

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"bitbucket.org/edsplore/callqa/internal/pkg/aggregator"
	"bitbucket.org/edsplore/callqa/internal/pkg/cmdapp"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/heptiolabs/healthcheck"
	"github.com/pkg/errors"
)

// ServiceData keeps data required for service work
type ServiceData struct {
	StatusProvider   Provider
	AnalysisProvider AnalysisProvider
	AgentSaver       AgentSaver
	Agents           AgentGetter
	MetricSaver      MetricSaver
	Metrics          MetricLoader
	Port             int
	EventChannelFunc eventChannelFunc
	health           healthcheck.Handler
}

// StartWebServer starts the HTTP service and listens for the requests
func StartWebServer(data *ServiceData) error {

	cmdapp.Log.Infof("Listening for status change events")
	go registerQueue(data, make(chan bool), time.Second)

	cmdapp.Log.Infof("Starting HTTP service at %d", data.Port)
	r := NewRouter(data)
	http.Handle("/", r)
	portStr := strconv.Itoa(data.Port)
	err := http.ListenAndServe(":"+portStr, nil)

	if err != nil {
		return errors.Wrap(err, "Can't start HTTP listener at port "+portStr)
	}
	return nil
}

// NewRouter creates the router for HTTP service
func NewRouter(data *ServiceData) *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	router.Methods("GET").Path("/status/{id}").Handler(statusHandler{data: data})
	router.Methods("GET").Path("/stats").Handler(statsHandler{data: data})
	router.Methods("POST").Path("/agents").Handler(agentCreateHandler{data: data})
	router.Methods("GET").Path("/agents/{id}").Handler(agentGetHandler{data: data})
	router.Methods("GET").Path("/metrics/{user}").Handler(metricListHandler{data: data})
	router.Methods("POST").Path("/metrics").Handler(metricSaveHandler{data: data})
	router.Methods("PUT").Path("/metrics/{id}").Handler(metricSaveHandler{data: data})
	router.Methods("DELETE").Path("/metrics/{id}").Handler(metricDeleteHandler{data: data})
	router.Handle("/subscribe", websocketHandler{data: data})
	if data.health != nil {
		router.Methods("GET").Path("/live").HandlerFunc(data.health.LiveEndpoint)
		router.Methods("GET").Path("/ready").HandlerFunc(data.health.ReadyEndpoint)
	}
	return router
}

type statusHandler struct {
	data *ServiceData
}

type statsHandler struct {
	data *ServiceData
}

type websocketHandler struct {
	data *ServiceData
}

func (h statusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cmdapp.Log.Infof("Status request from %s", r.Host)

	id := mux.Vars(r)["id"]
	if id == "" {
		setError(w, "No ID", http.StatusBadRequest)
		cmdapp.Log.Errorf("No ID")
		return
	}

	result, err := h.data.StatusProvider.Get(id)
	if err != nil {
		setError(w, "Cannot get status for ID: "+id, http.StatusBadRequest)
		cmdapp.Log.Errorf("Cannot get status for ID: " + id)
		return
	}

	writeJSON(w, result)
}

func (h statsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cmdapp.Log.Infof("Stats request from %s", r.Host)

	analyses, err := h.data.AnalysisProvider.GetAll()
	if err != nil {
		setError(w, "Cannot load analyses", http.StatusInternalServerError)
		cmdapp.Log.Error(err)
		return
	}

	writeJSON(w, aggregator.Calc(analyses))
}

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	}}

func (h websocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cmdapp.Log.Infof("ws request from %s", r.Host)

	c, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		setError(w, "Can not init ws connection", http.StatusBadRequest)
		cmdapp.Log.Error(err)
		return
	}
	go handleConnection(c)
}

func setError(w http.ResponseWriter, message string, statusCode int) {
	w.WriteHeader(statusCode)
	w.Write([]byte(message))
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	resultBytes, err := json.Marshal(data)
	if err != nil {
		setError(w, "Can not prepare result", http.StatusInternalServerError)
		cmdapp.Log.Error(err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(resultBytes)
}
