package middleware

import (
	"context"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/rudderlabs/bqkit/logfield"
)

type Opt func(*Client)

type logger interface {
	Infow(msg string, keysAndValues ...interface{})
}

// Client intercepts query submissions to log the ones that run for at least
// the configured slow query threshold.
type Client struct {
	db *bigquery.Client

	since              func(time.Time) time.Duration
	logger             logger
	keysAndValues      []any
	slowQueryThreshold time.Duration
}

func WithLogger(logger logger) Opt {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithKeyAndValues(keyAndValues ...any) Opt {
	return func(c *Client) {
		c.keysAndValues = keyAndValues
	}
}

func WithSlowQueryThreshold(slowQueryThreshold time.Duration) Opt {
	return func(c *Client) {
		c.slowQueryThreshold = slowQueryThreshold
	}
}

func WithSince(since func(time.Time) time.Duration) Opt {
	return func(c *Client) {
		c.since = since
	}
}

func New(db *bigquery.Client, opts ...Opt) *Client {
	c := &Client{
		db:                 db,
		since:              time.Since,
		slowQueryThreshold: 300 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run submits the query as a job without waiting for it to complete.
func (c *Client) Run(ctx context.Context, query *bigquery.Query) (*bigquery.Job, error) {
	startedAt := time.Now()
	job, err := query.Run(ctx)
	c.logQuery(query.QueryConfig.Q, c.since(startedAt))
	return job, err
}

// Read submits the query and returns an iterator over its results.
func (c *Client) Read(ctx context.Context, query *bigquery.Query) (*bigquery.RowIterator, error) {
	startedAt := time.Now()
	it, err := query.Read(ctx)
	c.logQuery(query.QueryConfig.Q, c.since(startedAt))
	return it, err
}

func (c *Client) logQuery(query string, elapsed time.Duration) {
	if elapsed < c.slowQueryThreshold {
		return
	}

	keysAndValues := []any{
		logfield.Query, query,
		logfield.QueryExecutionTime, elapsed,
	}
	keysAndValues = append(keysAndValues, c.keysAndValues...)

	c.logger.Infow("executing query", keysAndValues...)
}
