package messages

const (
	// ProcessCall queue - one message per call to run the pipeline on
	ProcessCall string = "ProcessCall"
	// Inform queue - terminal status notifications
	Inform string = "Inform"
	// StatusChange exchange - fanout topic with call IDs on every status transition
	StatusChange string = "StatusChange"

	// InformTypeFinished - call processing finished OK
	InformTypeFinished string = "Finished"
	// InformTypeFailed - call processing failed
	InformTypeFailed string = "Failed"
)
