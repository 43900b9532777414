package api

type (
	// MetricResult is a per metric evaluation, bilingual text fields
	MetricResult struct {
		MetricTitle         string   `json:"metric_title"`
		Score               int      `json:"score"`
		Analysis            string   `json:"analysis"`
		Examples            []string `json:"examples,omitempty"`
		Strengths           []string `json:"strengths,omitempty"`
		AreasForImprovement []string `json:"areas_for_improvement,omitempty"`
	}

	// Issue is a categorized problem found in the call
	Issue struct {
		Category           string `json:"category"`
		CategorySpanish    string `json:"category_spanish"`
		Description        string `json:"description"`
		DescriptionSpanish string `json:"description_spanish"`
		Severity           int    `json:"severity"`
	}

	// Recommendation is an improvement suggestion
	Recommendation struct {
		Content        string `json:"content"`
		ContentSpanish string `json:"content_spanish"`
		Priority       int    `json:"priority"`
	}

	// CallAnalysis is the fixed JSON contract with the analysis provider
	CallAnalysis struct {
		PerformanceScore      int              `json:"performance_score"`
		Rating                string           `json:"rating"`
		Summary               string           `json:"summary"`
		SummarySpanish        string           `json:"summary_spanish"`
		Issues                []Issue          `json:"issues"`
		Recommendations       []Recommendation `json:"recommendations"`
		MetricAnalysis        []MetricResult   `json:"metric_analysis,omitempty"`
		MetricAnalysisSpanish []MetricResult   `json:"metric_analysis_spanish,omitempty"`
	}
)

// Ratings lists the allowed categorical performance labels
var Ratings = map[string]bool{"excellent": true, "good": true, "average": true,
	"poor": true, "unacceptable": true}
