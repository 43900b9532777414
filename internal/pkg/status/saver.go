package status

// Saver saves the call processing status
type Saver interface {
	Save(id string, st Status) error
	SaveError(id string, errorCode string, errorStr string) error
	SaveDetail(id string, detail string) error
}
