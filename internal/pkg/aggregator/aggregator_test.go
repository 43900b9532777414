package aggregator

import (
	"sort"
	"testing"

	"bitbucket.org/edsplore/callqa/internal/pkg/analyzer/api"
	"bitbucket.org/edsplore/callqa/internal/pkg/persistence"
	"github.com/stretchr/testify/assert"
)

func newAnalysis(t *testing.T, id string, mrs ...api.MetricResult) persistence.Analysis {
	t.Helper()
	s, err := persistence.MarshalMetricResults(mrs)
	assert.Nil(t, err)
	return persistence.Analysis{ID: id, MetricAnalysis: s}
}

func sorted(st []MetricStats) []MetricStats {
	sort.Slice(st, func(i, j int) bool { return st[i].MetricTitle < st[j].MetricTitle })
	return st
}

func TestCalc_Empty(t *testing.T) {
	assert.Equal(t, 0, len(Calc(nil)))
	assert.Equal(t, 0, len(Calc([]persistence.Analysis{})))
}

func TestCalc_SingleCall(t *testing.T) {
	r := Calc([]persistence.Analysis{newAnalysis(t, "1",
		api.MetricResult{MetricTitle: "Empathy", Score: 8})})

	assert.Equal(t, 1, len(r))
	assert.Equal(t, "Empathy", r[0].MetricTitle)
	assert.Equal(t, 8.0, r[0].AverageScore)
	assert.Equal(t, 1, r[0].EqualToAverage)
	assert.Equal(t, 0, r[0].PartiallyEqual)
	assert.Equal(t, 0, r[0].NotMeeting)
	assert.Equal(t, 1, r[0].TotalCalls)
}

func TestCalc_SameScores(t *testing.T) {
	in := []persistence.Analysis{}
	for i := 0; i < 5; i++ {
		in = append(in, newAnalysis(t, "id", api.MetricResult{MetricTitle: "Empathy", Score: 7}))
	}
	r := Calc(in)

	assert.Equal(t, 1, len(r))
	assert.Equal(t, 7.0, r[0].AverageScore)
	assert.Equal(t, 5, r[0].EqualToAverage)
	assert.Equal(t, 0, r[0].PartiallyEqual)
	assert.Equal(t, 0, r[0].NotMeeting)
	assert.Equal(t, 5, r[0].TotalCalls)
}

func TestCalc_Buckets(t *testing.T) {
	r := Calc([]persistence.Analysis{
		newAnalysis(t, "1", api.MetricResult{MetricTitle: "Clarity", Score: 5}),
		newAnalysis(t, "2", api.MetricResult{MetricTitle: "Clarity", Score: 6}),
		newAnalysis(t, "3", api.MetricResult{MetricTitle: "Clarity", Score: 10}),
	})

	// mean 7, rounded 7: diffs 2, 1, 3
	assert.Equal(t, 1, len(r))
	assert.Equal(t, 7.0, r[0].AverageScore)
	assert.Equal(t, 0, r[0].EqualToAverage)
	assert.Equal(t, 1, r[0].PartiallyEqual)
	assert.Equal(t, 2, r[0].NotMeeting)
	assert.Equal(t, 3, r[0].TotalCalls)
}

func TestCalc_GroupsCaseInsensitive(t *testing.T) {
	r := Calc([]persistence.Analysis{
		newAnalysis(t, "1", api.MetricResult{MetricTitle: "Empathy", Score: 8}),
		newAnalysis(t, "2", api.MetricResult{MetricTitle: "EMPATHY", Score: 8}),
	})

	assert.Equal(t, 1, len(r))
	assert.Equal(t, "Empathy", r[0].MetricTitle)
	assert.Equal(t, 2, r[0].TotalCalls)
}

func TestCalc_SeveralMetrics(t *testing.T) {
	r := sorted(Calc([]persistence.Analysis{
		newAnalysis(t, "1", api.MetricResult{MetricTitle: "Clarity", Score: 6},
			api.MetricResult{MetricTitle: "Empathy", Score: 9}),
		newAnalysis(t, "2", api.MetricResult{MetricTitle: "Empathy", Score: 9}),
	}))

	assert.Equal(t, 2, len(r))
	assert.Equal(t, "Clarity", r[0].MetricTitle)
	assert.Equal(t, 1, r[0].TotalCalls)
	assert.Equal(t, "Empathy", r[1].MetricTitle)
	assert.Equal(t, 2, r[1].TotalCalls)
	assert.Equal(t, 9.0, r[1].AverageScore)
}

func TestCalc_SkipsMalformed(t *testing.T) {
	r := Calc([]persistence.Analysis{
		{ID: "1", MetricAnalysis: "not json"},
		newAnalysis(t, "2", api.MetricResult{MetricTitle: "Empathy", Score: 8}),
	})

	assert.Equal(t, 1, len(r))
	assert.Equal(t, 1, r[0].TotalCalls)
}

func TestCalc_SkipsEmptyMetricAnalysis(t *testing.T) {
	r := Calc([]persistence.Analysis{{ID: "1", MetricAnalysis: ""}})
	assert.Equal(t, 0, len(r))
}
