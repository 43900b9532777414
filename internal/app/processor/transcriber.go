package processor

import (
	"time"

	"bitbucket.org/edsplore/callqa/internal/pkg/transcriber/api"
)

// Transcriber turns a signed audio URL into a provider transcript
type Transcriber interface {
	Transcribe(audioURL string) (*api.Transcript, error)
}

// URLSigner provides a time limited read URL for a stored audio object
type URLSigner interface {
	SignURL(filePath string, expiry time.Duration) (string, error)
}
