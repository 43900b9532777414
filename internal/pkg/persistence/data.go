package persistence

import "time"

type (
	// Call is the main processing record, mutated only by the pipeline
	Call struct {
		ID                string    `bson:"ID"`
		AgentID           string    `bson:"agentID,omitempty"`
		FilePath          string    `bson:"filePath,omitempty"`
		Email             string    `bson:"email,omitempty"`
		ExternalID        string    `bson:"externalID,omitempty"`
		CallDate          time.Time `bson:"callDate,omitempty"`
		Status            string    `bson:"status,omitempty"`
		ProcessingDetails string    `bson:"processingDetails,omitempty"`
		ErrorCode         string    `bson:"errorCode,omitempty"`
		Duration          float64   `bson:"duration,omitempty"`
	}

	// Transcription holds the transcript for one call
	Transcription struct {
		ID         string  `bson:"ID"`
		CallID     string  `bson:"callID"`
		Content    string  `bson:"content"`
		Language   string  `bson:"language,omitempty"`
		Confidence float64 `bson:"confidence,omitempty"`
	}

	// Analysis holds the structured LLM evaluation for one call
	Analysis struct {
		ID                    string `bson:"ID"`
		CallID                string `bson:"callID"`
		PerformanceScore      int    `bson:"performanceScore"`
		Rating                string `bson:"rating"`
		Summary               string `bson:"summary,omitempty"`
		SummarySpanish        string `bson:"summarySpanish,omitempty"`
		MetricAnalysis        string `bson:"metricAnalysis,omitempty"`
		MetricAnalysisSpanish string `bson:"metricAnalysisSpanish,omitempty"`
	}

	// Issue is a problem found during analysis
	Issue struct {
		ID                 string `bson:"ID"`
		AnalysisID         string `bson:"analysisID"`
		Category           string `bson:"category"`
		CategorySpanish    string `bson:"categorySpanish,omitempty"`
		Description        string `bson:"description"`
		DescriptionSpanish string `bson:"descriptionSpanish,omitempty"`
		Severity           int    `bson:"severity"`
	}

	// Recommendation is an improvement suggestion from analysis
	Recommendation struct {
		ID             string `bson:"ID"`
		AnalysisID     string `bson:"analysisID"`
		Content        string `bson:"content"`
		ContentSpanish string `bson:"contentSpanish,omitempty"`
		Priority       int    `bson:"priority"`
	}

	// MetricDefinition is a user defined evaluation criterion
	MetricDefinition struct {
		ID          string    `bson:"ID" yaml:"id"`
		UserID      string    `bson:"userID,omitempty" yaml:"-"`
		Title       string    `bson:"title" yaml:"title"`
		Description string    `bson:"description,omitempty" yaml:"description"`
		CreatedAt   time.Time `bson:"createdAt,omitempty" yaml:"-"`
		EditedAt    time.Time `bson:"editedAt,omitempty" yaml:"-"`
	}

	// Agent is a call owner, created before any upload is permitted
	Agent struct {
		ID         string `bson:"ID"`
		UserID     string `bson:"userID,omitempty"`
		Name       string `bson:"name,omitempty"`
		EmployeeID string `bson:"employeeID,omitempty"`
	}
)
