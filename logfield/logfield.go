package logfield

const (
	ProjectID          = "projectID"
	Dataset            = "dataset"
	TableName          = "tableName"
	JobID              = "jobID"
	SourceURI          = "sourceURI"
	Location           = "location"
	Priority           = "priority"
	Schema             = "schema"
	Error              = "error"
	Query              = "query"
	QueryExecutionTime = "queryExecutionTime"
)
