package processor

import (
	"bitbucket.org/edsplore/callqa/internal/pkg/persistence"
)

// CallProvider loads the call record
type CallProvider interface {
	Get(id string) (*persistence.Call, error)
}

// AgentProvider loads the call owner
type AgentProvider interface {
	Get(id string) (*persistence.Agent, error)
}

// TranscriptionSaver persists the transcript for a call
type TranscriptionSaver interface {
	Save(data *persistence.Transcription) error
}

// AnalysisSaver persists the analysis with its children
type AnalysisSaver interface {
	Save(data *persistence.Analysis, issues []persistence.Issue,
		recommendations []persistence.Recommendation) error
}

// MetricLoader loads user defined metric definitions
type MetricLoader interface {
	LoadByUser(userID string) ([]persistence.MetricDefinition, error)
}

// MetricSet provides the fallback metric definitions
type MetricSet interface {
	Get() ([]persistence.MetricDefinition, error)
}

// Locker guards one call from concurrent pipeline runs
type Locker interface {
	Lock(id string, lockKey string) error
	UnLock(id string, lockKey string, value *int) error
}
