package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func makeTranscript(text string) *Transcript {
	return &Transcript{Results: Results{Channels: []Channel{
		{DetectedLanguage: "en", Alternatives: []Alternative{
			{Confidence: 0.97, Paragraphs: Paragraphs{Transcript: text}}}}}}}
}

func TestText(t *testing.T) {
	tr := makeTranscript("hello world")
	text, err := tr.Text()
	assert.Nil(t, err)
	assert.Equal(t, "hello world", text)
}

func TestText_FailsNoChannels(t *testing.T) {
	tr := &Transcript{}
	_, err := tr.Text()
	assert.NotNil(t, err)
}

func TestText_FailsNoAlternatives(t *testing.T) {
	tr := &Transcript{Results: Results{Channels: []Channel{{}}}}
	_, err := tr.Text()
	assert.NotNil(t, err)
}

func TestConfidenceLanguage(t *testing.T) {
	tr := makeTranscript("olia")
	c, err := tr.Confidence()
	assert.Nil(t, err)
	assert.InDelta(t, 0.97, c, 0.0001)
	l, err := tr.Language()
	assert.Nil(t, err)
	assert.Equal(t, "en", l)
}

func TestDecode(t *testing.T) {
	var tr Transcript
	err := json.Unmarshal([]byte(`{"results":{"channels":[{"detected_language":"es",
		"alternatives":[{"confidence":0.9,"paragraphs":{"transcript":"hola"}}]}]}}`), &tr)
	assert.Nil(t, err)
	text, err := tr.Text()
	assert.Nil(t, err)
	assert.Equal(t, "hola", text)
}
