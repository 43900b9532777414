package api

import "github.com/pkg/errors"

type (
	// Paragraphs keeps the paragraph level transcript of one alternative
	Paragraphs struct {
		Transcript string `json:"transcript"`
	}

	// Alternative is one transcription hypothesis, best ranked first
	Alternative struct {
		Transcript string     `json:"transcript,omitempty"`
		Confidence float64    `json:"confidence,omitempty"`
		Paragraphs Paragraphs `json:"paragraphs,omitempty"`
	}

	// Channel is one audio channel transcription
	Channel struct {
		DetectedLanguage string        `json:"detected_language,omitempty"`
		Alternatives     []Alternative `json:"alternatives"`
	}

	// Results keeps per channel transcriptions
	Results struct {
		Channels []Channel `json:"channels"`
	}

	// Transcript is the provider shaped transcription payload
	Transcript struct {
		Results Results `json:"results"`
	}
)

// Text extracts the paragraph level transcript of the first channel's top
// alternative. The positional path is a fixed contract with the provider
func (t *Transcript) Text() (string, error) {
	_, alt, err := t.first()
	if err != nil {
		return "", err
	}
	return alt.Paragraphs.Transcript, nil
}

// Confidence returns the top alternative confidence of the first channel
func (t *Transcript) Confidence() (float64, error) {
	_, alt, err := t.first()
	if err != nil {
		return 0, err
	}
	return alt.Confidence, nil
}

// Language returns the detected language of the first channel
func (t *Transcript) Language() (string, error) {
	ch, _, err := t.first()
	if err != nil {
		return "", err
	}
	return ch.DetectedLanguage, nil
}

func (t *Transcript) first() (*Channel, *Alternative, error) {
	if len(t.Results.Channels) == 0 {
		return nil, nil, errors.New("No channels in transcript")
	}
	ch := &t.Results.Channels[0]
	if len(ch.Alternatives) == 0 {
		return nil, nil, errors.New("No alternatives in transcript channel")
	}
	return ch, &ch.Alternatives[0], nil
}
