package persistence

import (
	"encoding/json"

	"bitbucket.org/edsplore/callqa/internal/pkg/analyzer/api"
	"github.com/pkg/errors"
)

// MarshalMetricResults serializes per metric results to the persisted text form
func MarshalMetricResults(mr []api.MetricResult) (string, error) {
	if len(mr) == 0 {
		return "", nil
	}
	res, err := json.Marshal(mr)
	if err != nil {
		return "", errors.Wrap(err, "Can't marshal metric results")
	}
	return string(res), nil
}

// ParseMetricResults restores per metric results from the persisted text form
func ParseMetricResults(data string) ([]api.MetricResult, error) {
	if data == "" {
		return nil, nil
	}
	var res []api.MetricResult
	if err := json.Unmarshal([]byte(data), &res); err != nil {
		return nil, errors.Wrap(err, "Can't parse metric results")
	}
	return res, nil
}
