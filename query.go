package bqkit

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/rudderlabs/bqkit/logfield"
)

type queryOptions struct {
	async       bool
	priority    bigquery.QueryPriority
	prioritySet bool
	configFns   []func(*bigquery.QueryConfig)
}

// QueryOption customizes a Query call.
type QueryOption func(*queryOptions)

// Async submits the query as a job and returns immediately without results.
// Unless an explicit priority is set, async queries run at batch priority.
func Async() QueryOption {
	return func(o *queryOptions) {
		o.async = true
	}
}

// WithPriority sets the query priority explicitly.
func WithPriority(priority bigquery.QueryPriority) QueryOption {
	return func(o *queryOptions) {
		o.priority = priority
		o.prioritySet = true
	}
}

// WithConfig customizes the assembled query configuration. It runs before the
// explicit options are applied, so those always win.
func WithConfig(fn func(*bigquery.QueryConfig)) QueryOption {
	return func(o *queryOptions) {
		o.configFns = append(o.configFns, fn)
	}
}

// Query executes the given statement, which may also be DML. It returns the
// result rows as ordered column-name-to-value mappings, or nil when Async is
// requested, in which case the job continues detached.
func (c *Client) Query(ctx context.Context, query string, opts ...QueryOption) ([]map[string]bigquery.Value, error) {
	var o queryOptions
	for _, opt := range opts {
		opt(&o)
	}

	q := c.db.Query(query)
	applyQueryConfig(&q.QueryConfig, &o)

	c.logger.Infow("BQ: Sending query",
		logfield.Query, query,
	)
	c.logger.Debugw("BQ: Query job config",
		logfield.Query, query,
		logfield.Priority, q.QueryConfig.Priority,
	)

	if o.async {
		if _, err := c.getMiddleware().Run(ctx, q); err != nil {
			return nil, fmt.Errorf("submitting query job: %w", err)
		}
		c.logger.Infof("BQ: Not waiting for result of query, returning.")
		return nil, nil
	}

	it, err := c.getMiddleware().Read(ctx, q)
	if err != nil {
		return nil, err
	}

	var rows []map[string]bigquery.Value
	for {
		row := map[string]bigquery.Value{}
		err := it.Next(&row)
		if err != nil {
			if errors.Is(err, iterator.Done) {
				break
			}
			return nil, fmt.Errorf("iterating query results: %w", err)
		}
		rows = append(rows, row)
	}
	c.logger.Infof("BQ: Returning %d result rows.", len(rows))
	return rows, nil
}

// applyQueryConfig assembles the query configuration. Caller config functions
// run first; the explicit priority, or the batch default for async queries,
// is assigned afterwards and wins.
func applyQueryConfig(cfg *bigquery.QueryConfig, o *queryOptions) {
	for _, fn := range o.configFns {
		fn(cfg)
	}
	if o.prioritySet {
		cfg.Priority = o.priority
	} else if o.async && cfg.Priority == "" {
		cfg.Priority = bigquery.BatchPriority
	}
}
