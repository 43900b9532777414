package status

// Status represents call processing status
type Status int

const (
	// Pending - call is uploaded, waiting for processing
	Pending Status = iota + 1
	// Transcribing - audio is being transcribed
	Transcribing
	// Analyzing - transcript is being analyzed
	Analyzing
	// Completed - terminal OK state
	Completed
	// Failed - terminal failure state, call may be resubmitted
	Failed
)

var (
	statusName = map[Status]string{Pending: "pending", Transcribing: "transcribing",
		Analyzing: "analyzing", Completed: "completed", Failed: "failed"}
	nameStatus = map[string]Status{"pending": Pending, "transcribing": Transcribing,
		"analyzing": Analyzing, "completed": Completed, "failed": Failed}
	allowedEdges = map[Status][]Status{
		Pending:      {Transcribing},
		Transcribing: {Analyzing, Failed},
		Analyzing:    {Completed, Failed},
		Failed:       {Transcribing},
	}
)

// Name returns string value of a status
func Name(st Status) string {
	return statusName[st]
}

// From resolves status from its string value. Returns 0 for unknown values
func From(st string) Status {
	return nameStatus[st]
}

// IsTerminal returns true for completed and failed
func IsTerminal(st Status) bool {
	return st == Completed || st == Failed
}

// CanAdvance checks the lifecycle edge from -> to
func CanAdvance(from, to Status) bool {
	for _, st := range allowedEdges[from] {
		if st == to {
			return true
		}
	}
	return false
}
