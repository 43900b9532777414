package progress_test

import (
	"testing"

	"bitbucket.org/edsplore/callqa/internal/pkg/progress"
	"bitbucket.org/edsplore/callqa/internal/pkg/status"
	"github.com/stretchr/testify/assert"
)

func TestConvert(t *testing.T) {
	pr := progress.Convert(status.Name(status.Transcribing))
	assert.True(t, pr > 0)

	pr = progress.Convert("olia")
	assert.Equal(t, int32(0), pr)

	pr = progress.Convert(status.Name(status.Completed))
	assert.Equal(t, int32(100), pr)
}

func TestConvert_Analyzing(t *testing.T) {
	pr := progress.Convert(status.Name(status.Analyzing))
	assert.Equal(t, int32(70), pr)
}

func TestConvert_Failed(t *testing.T) {
	pr := progress.Convert(status.Name(status.Failed))
	assert.Equal(t, int32(0), pr)
}
