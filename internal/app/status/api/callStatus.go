package api

// CallStatus is the processing state view returned to dashboard clients
type CallStatus struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	Progress          int32  `json:"progress"`
	ProcessingDetails string `json:"processingDetails,omitempty"`
	ErrorCode         string `json:"errorCode,omitempty"`
	Error             string `json:"error,omitempty"`
}
