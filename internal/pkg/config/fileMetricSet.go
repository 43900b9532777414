package config

import (
	"os"
	"path"

	"bitbucket.org/edsplore/callqa/internal/pkg/cmdapp"
	"bitbucket.org/edsplore/callqa/internal/pkg/persistence"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// FileMetricSet provides the default analysis metric definitions from a yaml file.
// It backs the pipeline when a user has no metric definitions of his own
type FileMetricSet struct {
	metrics []persistence.MetricDefinition
}

type metricSetFile struct {
	Metrics []persistence.MetricDefinition `yaml:"metrics"`
}

// NewFileMetricSet inits FileMetricSet from directory
func NewFileMetricSet(dir string) (*FileMetricSet, error) {
	if dir == "" {
		return nil, errors.New("No metric set path provided")
	}
	return newFileMetricSet(path.Join(dir, "metrics.default.yml"))
}

func newFileMetricSet(file string) (*FileMetricSet, error) {
	cmdapp.Log.Infof("Init default metric set from: %s", file)
	f, err := os.Open(file)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open metric set file: "+file)
	}
	defer f.Close()
	d := yaml.NewDecoder(f)
	t := metricSetFile{}
	err = d.Decode(&t)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read metric set file: "+file)
	}
	if len(t.Metrics) == 0 {
		return nil, errors.New("Empty default metric set in " + file)
	}
	return &FileMetricSet{metrics: t.Metrics}, nil
}

// Get returns the default metric definitions
func (fs *FileMetricSet) Get() ([]persistence.MetricDefinition, error) {
	return fs.metrics, nil
}
