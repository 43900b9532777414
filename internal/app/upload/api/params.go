package api

const (
	// PrmFile parameter
	PrmFile = "file"
	// PrmAgent parameter - agent profile ID owning the call
	PrmAgent = "agent"
	// PrmEmail parameter - optional notification address
	PrmEmail = "email"
	// PrmExternalID parameter - optional caller side ID
	PrmExternalID = "externalID"
)
