package aggregator

import (
	"math"
	"sort"
	"strings"

	"bitbucket.org/edsplore/callqa/internal/pkg/cmdapp"
	"bitbucket.org/edsplore/callqa/internal/pkg/persistence"
)

// MetricStats is an aggregated view of one metric over all analyzed calls
type MetricStats struct {
	MetricTitle    string  `json:"metricTitle"`
	AverageScore   float64 `json:"averageScore"`
	EqualToAverage int     `json:"equalToAverage"`
	PartiallyEqual int     `json:"partiallyEqual"`
	NotMeeting     int     `json:"notMeeting"`
	TotalCalls     int     `json:"totalCalls"`
}

type group struct {
	title  string
	scores []int
}

// Calc aggregates per metric scores from stored analyses.
// Records with unparseable metric results are skipped.
func Calc(analyses []persistence.Analysis) []MetricStats {
	groups := make(map[string]*group)
	for _, a := range analyses {
		mrs, err := persistence.ParseMetricResults(a.MetricAnalysis)
		if err != nil {
			cmdapp.Log.Warnf("Skipping analysis %s: %v", a.ID, err)
			continue
		}
		for _, mr := range mrs {
			key := strings.ToLower(mr.MetricTitle)
			g, f := groups[key]
			if !f {
				g = &group{title: mr.MetricTitle}
				groups[key] = g
			}
			g.scores = append(g.scores, mr.Score)
		}
	}

	res := make([]MetricStats, 0, len(groups))
	for _, g := range groups {
		res = append(res, calcGroup(g))
	}
	sort.Slice(res, func(i, j int) bool { return res[i].MetricTitle < res[j].MetricTitle })
	return res
}

func calcGroup(g *group) MetricStats {
	st := MetricStats{MetricTitle: g.title, TotalCalls: len(g.scores)}
	sum := 0
	for _, s := range g.scores {
		sum += s
	}
	st.AverageScore = float64(sum) / float64(len(g.scores))
	rounded := int(math.Round(st.AverageScore))
	for _, s := range g.scores {
		diff := s - rounded
		if diff < 0 {
			diff = -diff
		}
		switch {
		case diff == 0:
			st.EqualToAverage++
		case diff == 1:
			st.PartiallyEqual++
		default:
			st.NotMeeting++
		}
	}
	return st
}
