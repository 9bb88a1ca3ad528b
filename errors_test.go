package bqkit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestClassifyError(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want JobErrorType
	}{
		{
			name: "access denied",
			err:  errors.New("googleapi: Error 403: Access Denied: Dataset rudder:testing, accessDenied"),
			want: PermissionError,
		},
		{
			name: "dataset not found",
			err:  errors.New("googleapi: Error 404: Not found: Dataset rudder:testing, notFound"),
			want: ResourceNotFoundError,
		},
		{
			name: "concurrent queries quota",
			err:  errors.New("googleapi: Error 400: Job exceeded rate limits: Your project_and_region exceeded quota for concurrent queries."),
			want: ConcurrentQueriesError,
		},
		{
			name: "too many concurrent queries",
			err:  errors.New("googleapi: Error 400: Exceeded rate limits: too many concurrent queries for this project_and_region."),
			want: ConcurrentQueriesError,
		},
		{
			name: "too many columns",
			err:  errors.New("googleapi: Error 400: Too many total leaf fields: 10001, max allowed field count: 10000"),
			want: ColumnCountError,
		},
		{
			name: "unrecognized",
			err:  errors.New("googleapi: Error 500: Internal error"),
			want: UncategorizedError,
		},
		{
			name: "nil",
			err:  nil,
			want: UncategorizedError,
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, ClassifyError(tc.err))
		})
	}
}

func TestCheckAndIgnoreAlreadyExistError(t *testing.T) {
	require.True(t, checkAndIgnoreAlreadyExistError(nil))
	require.True(t, checkAndIgnoreAlreadyExistError(&googleapi.Error{Code: 409, Message: "Already Exists: Table"}))
	require.True(t, checkAndIgnoreAlreadyExistError(&googleapi.Error{Code: 400, Message: "Field id already exists in schema"}))
	require.False(t, checkAndIgnoreAlreadyExistError(&googleapi.Error{Code: 400, Message: "Invalid field name"}))
	require.False(t, checkAndIgnoreAlreadyExistError(errors.New("network unreachable")))
}
