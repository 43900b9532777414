package analyzer

import (
	"strings"

	"bitbucket.org/edsplore/callqa/internal/pkg/persistence"
)

const promptHeader = `You are a call center quality analyst. Evaluate the agent's performance in the call transcript against the metrics listed below. Score each metric from 0 to 10.`

const promptFooter = `Respond with a single JSON object using exactly these fields:
performance_score (integer 0-100), rating (one of: excellent, good, average, poor, unacceptable),
summary (English), summary_spanish (Spanish translation of summary),
issues (array of {category, category_spanish, description, description_spanish, severity 1-5}),
recommendations (array of {content, content_spanish, priority 1-5}),
metric_analysis (array of {metric_title, score 0-10, analysis, examples, strengths, areas_for_improvement} in English, one entry per listed metric),
metric_analysis_spanish (the same array fully translated to Spanish, keeping metric_title and score unchanged).
Use every listed metric exactly once and do not invent metrics.`

func buildSystemPrompt(metrics []persistence.MetricDefinition) string {
	sb := strings.Builder{}
	sb.WriteString(promptHeader)
	sb.WriteString("\n\nMetrics:\n")
	for _, m := range metrics {
		sb.WriteString("- ")
		sb.WriteString(m.Title)
		if m.Description != "" {
			sb.WriteString(": ")
			sb.WriteString(m.Description)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(promptFooter)
	return sb.String()
}
