package messages

import "time"

// ProcessMessage asks the processor to run the pipeline for one call
type ProcessMessage struct {
	ID   string `json:"id"`
	File string `json:"file,omitempty"`
}

// NewProcessMessage creates the message with id and audio file path
func NewProcessMessage(id string, file string) *ProcessMessage {
	return &ProcessMessage{ID: id, File: file}
}

// InformMessage asks the inform service to notify about a terminal status
type InformMessage struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	At   time.Time `json:"at"`
}

// NewInformMessage creates inform message
func NewInformMessage(id string, msgType string, at time.Time) *InformMessage {
	return &InformMessage{ID: id, Type: msgType, At: at}
}
