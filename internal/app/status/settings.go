package status

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"bitbucket.org/edsplore/callqa/internal/pkg/cmdapp"
	mng "bitbucket.org/edsplore/callqa/internal/pkg/mongo"
	"bitbucket.org/edsplore/callqa/internal/pkg/persistence"
)

// AgentSaver saves agent profiles
type AgentSaver interface {
	Save(agent *persistence.Agent) error
}

// AgentGetter retrieves agent profiles by ID
type AgentGetter interface {
	Get(id string) (*persistence.Agent, error)
}

// MetricSaver saves and deletes metric definitions
type MetricSaver interface {
	Save(def *persistence.MetricDefinition) error
	Delete(id string) error
}

// MetricLoader loads metric definitions of one user
type MetricLoader interface {
	LoadByUser(userID string) ([]persistence.MetricDefinition, error)
}

type agentInput struct {
	UserID     string `json:"userID"`
	Name       string `json:"name"`
	EmployeeID string `json:"employeeID,omitempty"`
}

type metricInput struct {
	UserID      string `json:"userID"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type idResult struct {
	ID string `json:"id"`
}

type agentCreateHandler struct {
	data *ServiceData
}

type agentGetHandler struct {
	data *ServiceData
}

type metricListHandler struct {
	data *ServiceData
}

type metricSaveHandler struct {
	data *ServiceData
}

type metricDeleteHandler struct {
	data *ServiceData
}

func (h agentCreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cmdapp.Log.Infof("Create agent request from %s", r.Host)

	var input agentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		setError(w, "Wrong request", http.StatusBadRequest)
		cmdapp.Log.Error(err)
		return
	}
	if input.UserID == "" || input.Name == "" {
		setError(w, "No userID or name", http.StatusBadRequest)
		cmdapp.Log.Errorf("No userID or name")
		return
	}

	agent := &persistence.Agent{ID: uuid.New().String(), UserID: input.UserID,
		Name: input.Name, EmployeeID: input.EmployeeID}
	if err := h.data.AgentSaver.Save(agent); err != nil {
		setError(w, "Can not save agent", http.StatusInternalServerError)
		cmdapp.Log.Error(err)
		return
	}
	writeJSON(w, idResult{ID: agent.ID})
}

func (h agentGetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	agent, err := h.data.Agents.Get(id)
	if err != nil {
		if errors.Cause(err) == mng.ErrAgentNotFound {
			setError(w, "Unknown agent: "+id, http.StatusNotFound)
			return
		}
		setError(w, "Can not get agent", http.StatusInternalServerError)
		cmdapp.Log.Error(err)
		return
	}
	writeJSON(w, agent)
}

func (h metricListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user := mux.Vars(r)["user"]
	res, err := h.data.Metrics.LoadByUser(user)
	if err != nil {
		setError(w, "Can not load metric definitions", http.StatusInternalServerError)
		cmdapp.Log.Error(err)
		return
	}
	if res == nil {
		res = []persistence.MetricDefinition{}
	}
	writeJSON(w, res)
}

func (h metricSaveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cmdapp.Log.Infof("Save metric request from %s", r.Host)

	var input metricInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		setError(w, "Wrong request", http.StatusBadRequest)
		cmdapp.Log.Error(err)
		return
	}
	if input.UserID == "" || input.Title == "" {
		setError(w, "No userID or title", http.StatusBadRequest)
		cmdapp.Log.Errorf("No userID or title")
		return
	}

	id := mux.Vars(r)["id"]
	if id == "" {
		id = uuid.New().String()
	}
	def := &persistence.MetricDefinition{ID: id, UserID: input.UserID,
		Title: input.Title, Description: input.Description}
	if err := h.data.MetricSaver.Save(def); err != nil {
		setError(w, "Can not save metric definition", http.StatusInternalServerError)
		cmdapp.Log.Error(err)
		return
	}
	writeJSON(w, idResult{ID: def.ID})
}

func (h metricDeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	err := h.data.MetricSaver.Delete(id)
	if err != nil {
		if errors.Cause(err) == mng.ErrMetricNotFound {
			setError(w, "Unknown metric: "+id, http.StatusNotFound)
			return
		}
		setError(w, "Can not delete metric definition", http.StatusInternalServerError)
		cmdapp.Log.Error(err)
		return
	}
	writeJSON(w, idResult{ID: id})
}
