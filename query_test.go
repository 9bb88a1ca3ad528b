package bqkit

import (
	"testing"

	"cloud.google.com/go/bigquery"
	"github.com/stretchr/testify/require"
)

func TestApplyQueryConfig(t *testing.T) {
	testCases := []struct {
		name         string
		opts         []QueryOption
		wantPriority bigquery.QueryPriority
	}{
		{
			name:         "sync defaults",
			opts:         nil,
			wantPriority: "",
		},
		{
			name:         "async defaults to batch priority",
			opts:         []QueryOption{Async()},
			wantPriority: bigquery.BatchPriority,
		},
		{
			name:         "async with explicit priority",
			opts:         []QueryOption{Async(), WithPriority(bigquery.InteractivePriority)},
			wantPriority: bigquery.InteractivePriority,
		},
		{
			name: "async keeps a caller supplied priority",
			opts: []QueryOption{Async(), WithConfig(func(cfg *bigquery.QueryConfig) {
				cfg.Priority = bigquery.InteractivePriority
			})},
			wantPriority: bigquery.InteractivePriority,
		},
		{
			name: "explicit priority wins over caller config",
			opts: []QueryOption{WithConfig(func(cfg *bigquery.QueryConfig) {
				cfg.Priority = bigquery.InteractivePriority
			}), WithPriority(bigquery.BatchPriority)},
			wantPriority: bigquery.BatchPriority,
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var o queryOptions
			for _, opt := range tc.opts {
				opt(&o)
			}

			var cfg bigquery.QueryConfig
			applyQueryConfig(&cfg, &o)
			require.Equal(t, tc.wantPriority, cfg.Priority)
		})
	}
}

func TestApplyQueryConfigCallerOverrides(t *testing.T) {
	var o queryOptions
	WithConfig(func(cfg *bigquery.QueryConfig) {
		cfg.DryRun = true
		cfg.Labels = map[string]string{"team": "warehouse"}
	})(&o)

	var cfg bigquery.QueryConfig
	applyQueryConfig(&cfg, &o)

	require.True(t, cfg.DryRun)
	require.Equal(t, map[string]string{"team": "warehouse"}, cfg.Labels)
}
