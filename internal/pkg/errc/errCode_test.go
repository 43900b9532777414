package errc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var ece CodeExtractor

func TestDefault(t *testing.T) {
	assert.Equal(t, DefaultCode, ece.Get(""))
	assert.Equal(t, DefaultCode, ece.Get("error"))
	assert.Equal(t, DefaultCode, ece.Get("[[ErrorCode:"))
	assert.Equal(t, DefaultCode, ece.Get(errorCodeStart+"olia"))
	assert.Equal(t, DefaultCode, ece.Get("olia"+errorCodeEnd))
	assert.Equal(t, DefaultCode, ece.Get(errorCodeStart+""+errorCodeEnd))
}

func TestExtract(t *testing.T) {
	assert.Equal(t, "olia", ece.Get(errorCodeStart+"olia"+errorCodeEnd))
	assert.Equal(t, "olia", ece.Get("error\n\n"+errorCodeStart+"olia"+errorCodeEnd))
	assert.Equal(t, "olia", ece.Get("error\n\n"+errorCodeStart+"olia"+errorCodeEnd+"\naaaa"))
}

func TestTrims(t *testing.T) {
	assert.Equal(t, "errorCode", ece.Get(errorCodeStart+"  errorCode \n\t"+errorCodeEnd))
}

func TestMarkRoundTrip(t *testing.T) {
	assert.Equal(t, Provider, ece.Get(Mark(Provider, "transcription failed")))
	assert.Equal(t, Schema, ece.Get("wrapped: "+Mark(Schema, "bad payload")))
	assert.Equal(t, Persistence, ece.Get(Mark(Persistence, "")))
}
