package upload

import (
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/edsplore/callqa/internal/app/upload/api"

	"bitbucket.org/edsplore/callqa/internal/pkg/cmdapp"
	"bitbucket.org/edsplore/callqa/internal/pkg/messages"
	"bitbucket.org/edsplore/callqa/internal/pkg/metrics"
	mng "bitbucket.org/edsplore/callqa/internal/pkg/mongo"
	"bitbucket.org/edsplore/callqa/internal/pkg/persistence"
	"bitbucket.org/edsplore/callqa/internal/pkg/status"
	"github.com/badoux/checkmail"
	"github.com/facebookgo/grace/gracehttp"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/heptiolabs/healthcheck"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// FileSaver saves the uploaded audio object
type FileSaver interface {
	Save(name string, reader io.Reader) error
}

// CallSaver persists the new call record
type CallSaver interface {
	Save(data *persistence.Call) error
}

// AgentProvider checks the owning agent exists
type AgentProvider interface {
	Get(id string) (*persistence.Agent, error)
}

type serviceMetric struct {
	uploadResponseDur prometheus.ObserverVec
	uploadRequestSize prometheus.ObserverVec
}

// ServiceData keeps data required for service work
type ServiceData struct {
	FileSaver     FileSaver
	CallSaver     CallSaver
	Agents        AgentProvider
	MessageSender messages.Sender

	Port    int
	health  healthcheck.Handler
	metrics serviceMetric
}

// FileResult - post method response in JSON
type FileResult struct {
	ID string `json:"id"`
}

// StartWebServer starts the HTTP service and listens for the requests
func StartWebServer(data *ServiceData) error {
	cmdapp.Log.Infof("Starting HTTP service at %d", data.Port)
	r := NewRouter(data)

	portStr := strconv.Itoa(data.Port)
	srv := http.Server{
		Addr:              ":" + portStr,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       180 * time.Second,
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
	uh := http.Handler(uploadHandler{data: data})
	if data.metrics.uploadResponseDur != nil {
		uh = promhttp.InstrumentHandlerDuration(data.metrics.uploadResponseDur,
			promhttp.InstrumentHandlerRequestSize(data.metrics.uploadRequestSize, uh))
	}
	router.Methods("POST").Path("/upload").Handler(uh)
	router.Methods("GET").Path("/metrics").Handler(promhttp.Handler())
	if data.health != nil {
		router.Methods("GET").Path("/live").HandlerFunc(data.health.LiveEndpoint)
		router.Methods("GET").Path("/ready").HandlerFunc(data.health.ReadyEndpoint)
	}
	return router
}

type uploadHandler struct {
	data *ServiceData
}

func (h uploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cmdapp.Log.Infof("Saving file from %s", r.Host)

	err := r.ParseMultipartForm(32 << 20)
	if err != nil {
		http.Error(w, "Can't parse MultipartForm", http.StatusBadRequest)
		cmdapp.Log.Error(errors.Wrap(err, "Can't parse MultipartForm"))
		return
	}
	defer cleanFiles(r.MultipartForm)
	err = validateFormParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		cmdapp.Log.Error(err)
		return
	}
	email := r.FormValue(api.PrmEmail)
	if email != "" {
		err := checkmail.ValidateFormat(email)
		if err != nil {
			http.Error(w, "Wrong email", http.StatusBadRequest)
			cmdapp.Log.Errorf("Wrong email")
			return
		}
	}
	externalID := r.FormValue(api.PrmExternalID)

	agentID := r.FormValue(api.PrmAgent)
	if agentID == "" {
		http.Error(w, "No agent", http.StatusBadRequest)
		cmdapp.Log.Errorf("No agent")
		return
	}
	_, err = h.data.Agents.Get(agentID)
	if err != nil {
		if errors.Cause(err) == mng.ErrAgentNotFound {
			http.Error(w, "Unknown agent: "+agentID, http.StatusBadRequest)
		} else {
			http.Error(w, "Can't check agent", http.StatusInternalServerError)
		}
		cmdapp.Log.Errorf("Problem with agent '%s'. %s", agentID, err.Error())
		return
	}

	file, handler, err := r.FormFile(api.PrmFile)
	if err != nil {
		http.Error(w, "No file", http.StatusBadRequest)
		cmdapp.Log.Error(err)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(handler.Filename))
	if !checkFileExtension(ext) {
		http.Error(w, "Wrong file extension: "+ext, http.StatusBadRequest)
		cmdapp.Log.Errorf("Wrong file extension: %s", ext)
		return
	}

	id := uuid.New().String()
	fileName := id + ext

	err = h.data.CallSaver.Save(&persistence.Call{ID: id, AgentID: agentID, FilePath: fileName,
		Email: email, ExternalID: externalID, CallDate: time.Now(),
		Status: status.Name(status.Pending)})
	if err != nil {
		http.Error(w, "Can not save call to DB", http.StatusInternalServerError)
		cmdapp.Log.Error(err)
		return
	}

	err = h.data.FileSaver.Save(fileName, file)
	if err != nil {
		http.Error(w, "Can not save file", http.StatusInternalServerError)
		cmdapp.Log.Error(err)
		return
	}

	err = h.data.MessageSender.Send(messages.NewProcessMessage(id, fileName),
		messages.ProcessCall, "")
	if err != nil {
		http.Error(w, "Can not send process message", http.StatusInternalServerError)
		cmdapp.Log.Error(err)
		return
	}

	result := FileResult{id}
	w.Header().Set("Content-Type", "application/json")
	encoder := json.NewEncoder(w)
	err = encoder.Encode(&result)
	if err != nil {
		http.Error(w, "Can not prepare result", http.StatusInternalServerError)
		cmdapp.Log.Error(err)
		return
	}
}

func cleanFiles(f *multipart.Form) {
	if f != nil {
		f.RemoveAll()
	}
}

func checkFileExtension(ext string) bool {
	return ext == ".wav" || ext == ".mp3" || ext == ".mp4" || ext == ".m4a"
}

func validateFormParams(r *http.Request) error {
	form := r.Form
	allowed := map[string]bool{api.PrmEmail: true, api.PrmAgent: true, api.PrmExternalID: true}
	for k := range form {
		_, f := allowed[k]
		if !f {
			return errors.Errorf("Unknown parameter '%s'", k)
		}
	}
	for _, p := range []string{api.PrmAgent, api.PrmExternalID} {
		if err := validateInjection(r, p); err != nil {
			return err
		}
	}
	return nil
}

func validateInjection(r *http.Request, paramName string) error {
	p := r.FormValue(paramName)
	lp := strings.ToLower(p)
	for _, k := range []string{"$", "(", ")", "eval", "shell", "{", "}"} {
		if strings.Contains(lp, k) {
			return errors.Errorf("Wrong parameter '%s' value '%s'", paramName, p)
		}
	}
	return nil
}

func initMetrics(data *ServiceData) error {
	namespace := "upload_service"
	data.metrics.uploadResponseDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_durations_seconds",
			Help:      "Request latency distributions.",
		}, nil)
	err := metrics.Register(data.metrics.uploadResponseDur)
	if err != nil {
		return err
	}
	data.metrics.uploadRequestSize = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace: namespace,
			Name:      "request_size_bytes",
			Help:      "Request size in bytes.",
		}, nil)
	return metrics.Register(data.metrics.uploadRequestSize)
}
