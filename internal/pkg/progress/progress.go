package progress

import (
	"bitbucket.org/edsplore/callqa/internal/pkg/status"
)

var statusProgressMap = make(map[string]int32)

func init() {
	statusProgressMap[status.Name(status.Pending)] = 5
	statusProgressMap[status.Name(status.Transcribing)] = 30
	statusProgressMap[status.Name(status.Analyzing)] = 70
	statusProgressMap[status.Name(status.Completed)] = 100
}

// Convert return percentage value of a progress for status value
func Convert(status string) int32 {
	pr, found := statusProgressMap[status]
	if found {
		return pr
	}
	return 0
}
