package status

import (
	"bitbucket.org/edsplore/callqa/internal/app/status/api"
	"bitbucket.org/edsplore/callqa/internal/pkg/persistence"
)

// Provider provides call processing status for ID
type Provider interface {
	Get(ID string) (*api.CallStatus, error)
}

// AnalysisProvider loads all persisted analyses for stats calculation
type AnalysisProvider interface {
	GetAll() ([]persistence.Analysis, error)
}
