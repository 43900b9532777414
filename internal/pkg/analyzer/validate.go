package analyzer

import (
	"fmt"
	"strings"

	"bitbucket.org/edsplore/callqa/internal/pkg/analyzer/api"
	"bitbucket.org/edsplore/callqa/internal/pkg/errc"
	"bitbucket.org/edsplore/callqa/internal/pkg/persistence"
	"github.com/pkg/errors"
)

// Validate checks an analysis against the expected contract
func Validate(ca *api.CallAnalysis, metrics []persistence.MetricDefinition) error {
	if ca.PerformanceScore < 0 || ca.PerformanceScore > 100 {
		return schemaErr(fmt.Sprintf("Wrong performance_score: %d", ca.PerformanceScore))
	}
	if !api.Ratings[strings.ToLower(ca.Rating)] {
		return schemaErr("Wrong rating: " + ca.Rating)
	}
	if strings.TrimSpace(ca.Summary) == "" {
		return schemaErr("Empty summary")
	}
	if strings.TrimSpace(ca.SummarySpanish) == "" {
		return schemaErr("Empty summary_spanish")
	}
	for _, is := range ca.Issues {
		if is.Severity < 1 || is.Severity > 5 {
			return schemaErr(fmt.Sprintf("Wrong issue severity: %d", is.Severity))
		}
	}
	for _, r := range ca.Recommendations {
		if r.Priority < 1 || r.Priority > 5 {
			return schemaErr(fmt.Sprintf("Wrong recommendation priority: %d", r.Priority))
		}
	}
	err := validateMetrics(ca.MetricAnalysis, metrics, "metric_analysis")
	if err != nil {
		return err
	}
	return validateMetrics(ca.MetricAnalysisSpanish, metrics, "metric_analysis_spanish")
}

func validateMetrics(mrs []api.MetricResult, metrics []persistence.MetricDefinition, field string) error {
	expected := make(map[string]bool)
	for _, m := range metrics {
		expected[strings.ToLower(m.Title)] = false
	}
	for _, mr := range mrs {
		key := strings.ToLower(mr.MetricTitle)
		seen, f := expected[key]
		if !f {
			return schemaErr("Unknown metric in " + field + ": " + mr.MetricTitle)
		}
		if seen {
			return schemaErr("Duplicate metric in " + field + ": " + mr.MetricTitle)
		}
		if mr.Score < 0 || mr.Score > 10 {
			return schemaErr(fmt.Sprintf("Wrong score in %s for %s: %d", field, mr.MetricTitle, mr.Score))
		}
		expected[key] = true
	}
	for _, m := range metrics {
		if !expected[strings.ToLower(m.Title)] {
			return schemaErr("Missing metric in " + field + ": " + m.Title)
		}
	}
	return nil
}

func schemaErr(msg string) error {
	return errors.New(errc.Mark(errc.Schema, msg))
}
