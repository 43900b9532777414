package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	assert.Equal(t, "pending", Name(Pending))
	assert.Equal(t, "transcribing", Name(Transcribing))
	assert.Equal(t, "analyzing", Name(Analyzing))
	assert.Equal(t, "completed", Name(Completed))
	assert.Equal(t, "failed", Name(Failed))
}

func TestFrom(t *testing.T) {
	assert.Equal(t, Pending, From("pending"))
	assert.Equal(t, Analyzing, From("analyzing"))
	assert.Equal(t, Status(0), From("olia"))
}

func TestCanAdvance(t *testing.T) {
	assert.True(t, CanAdvance(Pending, Transcribing))
	assert.True(t, CanAdvance(Transcribing, Analyzing))
	assert.True(t, CanAdvance(Transcribing, Failed))
	assert.True(t, CanAdvance(Analyzing, Completed))
	assert.True(t, CanAdvance(Analyzing, Failed))
	assert.True(t, CanAdvance(Failed, Transcribing))
}

func TestCanAdvance_Denies(t *testing.T) {
	assert.False(t, CanAdvance(Pending, Completed))
	assert.False(t, CanAdvance(Pending, Analyzing))
	assert.False(t, CanAdvance(Completed, Transcribing))
	assert.False(t, CanAdvance(Completed, Failed))
	assert.False(t, CanAdvance(Failed, Failed))
	assert.False(t, CanAdvance(Analyzing, Transcribing))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(Completed))
	assert.True(t, IsTerminal(Failed))
	assert.False(t, IsTerminal(Pending))
	assert.False(t, IsTerminal(Transcribing))
	assert.False(t, IsTerminal(Analyzing))
}
