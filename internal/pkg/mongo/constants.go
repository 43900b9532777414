package mongo

const (
	store               = "callqa"
	callTable           = "calls"
	transcriptionTable  = "transcriptions"
	analysisTable       = "analyses"
	issueTable          = "issues"
	recommendationTable = "recommendations"
	metricTable         = "analysisMetrics"
	agentTable          = "agents"
	lockTable           = "processLock"
)

var indexData = []IndexData{
	newIndexData(callTable, "ID", true),
	newIndexData(transcriptionTable, "callID", true),
	newIndexData(analysisTable, "callID", true),
	newIndexData(issueTable, "analysisID", false),
	newIndexData(recommendationTable, "analysisID", false),
	newIndexData(metricTable, "userID", false),
	newIndexData(agentTable, "ID", true),
	newIndexData(lockTable, "ID", false)}
