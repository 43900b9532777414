package processor

import (
	"bitbucket.org/edsplore/callqa/internal/pkg/analyzer/api"
	"bitbucket.org/edsplore/callqa/internal/pkg/persistence"
)

// Analyzer evaluates a transcript against metric definitions
type Analyzer interface {
	Analyze(text string, metrics []persistence.MetricDefinition) (*api.CallAnalysis, error)
}
