package errc

import (
	"strings"
)

const (
	// DefaultCode is a default service error code
	DefaultCode string = "SERVICE_ERROR"
	// Input marks caller input problems - missing audio, agent or metrics
	Input string = "INPUT_ERROR"
	// Provider marks transcription or analysis provider failures
	Provider string = "PROVIDER_ERROR"
	// Persistence marks DB failures
	Persistence string = "PERSISTENCE_ERROR"
	// Schema marks analysis responses violating the JSON contract
	Schema string = "SCHEMA_ERROR"
	// NotFoundCode marks missing records
	NotFoundCode string = "NOT_FOUND"

	errorCodeStart string = "[[[ErrorCode:"
	errorCodeEnd   string = "]]]"
)

// Mark embeds error code into a message so it survives error wrapping
func Mark(code string, msg string) string {
	return msg + " " + errorCodeStart + code + errorCodeEnd
}

// CodeExtractor gets the error code from error message
type CodeExtractor struct {
}

// Get searches for [[[ErrorCode:xxx]]] in string and returns xxx or SERVICE_ERROR
func (ece CodeExtractor) Get(err string) string {
	i := strings.Index(err, errorCodeStart)
	if i > -1 {
		ec := err[i+len(errorCodeStart):]
		ie := strings.Index(ec, errorCodeEnd)
		if ie > -1 {
			ec = strings.TrimSpace(ec[:ie])
			if len(ec) > 0 {
				return ec
			}
		}
	}
	return DefaultCode
}
