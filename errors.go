package bqkit

import (
	"errors"
	"regexp"
	"strings"

	"google.golang.org/api/googleapi"
)

// JobErrorType buckets job failures into the classes callers typically act
// on differently.
type JobErrorType string

const (
	UncategorizedError     JobErrorType = "uncategorized_error"
	PermissionError        JobErrorType = "permission_error"
	ResourceNotFoundError  JobErrorType = "resource_not_found_error"
	ConcurrentQueriesError JobErrorType = "concurrent_queries_error"
	ColumnCountError       JobErrorType = "column_count_error"
)

type jobErrorMapping struct {
	jobErrorType JobErrorType
	format       *regexp.Regexp
}

var errorsMappings = []jobErrorMapping{
	{
		jobErrorType: PermissionError,
		format:       regexp.MustCompile(`googleapi: Error 403: Access Denied`),
	},
	{
		jobErrorType: ResourceNotFoundError,
		format:       regexp.MustCompile(`googleapi: Error 404: Not found: Dataset .*, notFound`),
	},
	{
		jobErrorType: ConcurrentQueriesError,
		format:       regexp.MustCompile(`googleapi: Error 400: Job exceeded rate limits: Your project_and_region exceeded quota for concurrent queries.`),
	},
	{
		jobErrorType: ConcurrentQueriesError,
		format:       regexp.MustCompile(`googleapi: Error 400: Exceeded rate limits: too many concurrent queries for this project_and_region.`),
	},
	{
		jobErrorType: ColumnCountError,
		format:       regexp.MustCompile(`googleapi: Error 400: Too many total leaf fields: .*, max allowed field count: 10000`),
	},
}

// ClassifyError maps a failure from the underlying handle to a JobErrorType.
// Unrecognized failures classify as UncategorizedError.
func ClassifyError(err error) JobErrorType {
	if err == nil {
		return UncategorizedError
	}
	for _, mapping := range errorsMappings {
		if mapping.format.MatchString(err.Error()) {
			return mapping.jobErrorType
		}
	}
	return UncategorizedError
}

// checkAndIgnoreAlreadyExistError reports whether err is nil or an
// already-exists failure that can be treated as success.
func checkAndIgnoreAlreadyExistError(err error) bool {
	if err == nil {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		// 409 is returned when we try to create a table that already exists
		// 400 is returned for all kinds of invalid input - so we need to check the error message too
		if gerr.Code == 409 || (gerr.Code == 400 && strings.Contains(gerr.Message, "already exists in schema")) {
			return true
		}
	}
	return false
}
