// Package bqkit is a thin convenience layer over cloud.google.com/go/bigquery
// for the handful of operations we repeat across services: schema lookup,
// bulk newline-delimited JSON loads from GCS, and ad-hoc query execution in
// synchronous or fire-and-forget mode.
//
// All the heavy lifting is delegated to the vendor SDK. The kit owns exactly
// one connection handle per Client and adds no retries, caching or pooling of
// its own.
package bqkit

import (
	"context"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/option"

	"github.com/rudderlabs/rudder-go-kit/config"
	"github.com/rudderlabs/rudder-go-kit/googleutil"
	"github.com/rudderlabs/rudder-go-kit/logger"

	"github.com/rudderlabs/bqkit/logfield"
	"github.com/rudderlabs/bqkit/middleware"
)

// Credentials identifies the project to operate in and, optionally, the
// service account to operate as. An empty Credentials string falls back to
// application default credentials.
type Credentials struct {
	ProjectID   string
	Credentials string
}

// Client wraps a single BigQuery connection handle. Create it once via New
// and hold it for the process lifetime; Close releases the handle.
//
// The handle is not guarded by any locking beyond what the vendor SDK
// provides.
type Client struct {
	db         *bigquery.Client
	middleware *middleware.Client
	projectID  string
	creds      Credentials
	logger     logger.Logger

	config struct {
		slowQueryThreshold time.Duration
		strictSchemaFile   bool
	}
}

// Connect establishes a BigQuery connection handle for the given credentials.
// Most callers want New instead; Connect exists for code that manages the
// vendor handle directly.
func Connect(ctx context.Context, cred *Credentials) (*bigquery.Client, error) {
	var opts []option.ClientOption
	if !googleutil.ShouldSkipCredentialsInit(cred.Credentials) {
		credBytes := []byte(cred.Credentials)
		if err := googleutil.CompatibleGoogleCredentialsJSON(credBytes); err != nil {
			return nil, err
		}
		opts = append(opts, option.WithCredentialsJSON(credBytes))
	}
	client, err := bigquery.NewClient(ctx, cred.ProjectID, opts...)
	return client, err
}

// New creates a Client for the given credentials.
//
// Tunables read from conf:
//   - BigQuery.slowQueryThreshold: queries running at least this long are
//     logged (default 5m)
//   - BigQuery.strictSchemaFile: make an unparsable schema file an error
//     instead of a logged warning (default false)
func New(ctx context.Context, conf *config.Config, log logger.Logger, cred Credentials) (*Client, error) {
	c := &Client{
		projectID: cred.ProjectID,
		creds:     cred,
		logger:    log.Child("bqkit"),
	}

	c.config.slowQueryThreshold = conf.GetDuration("BigQuery.slowQueryThreshold", 5, time.Minute)
	c.config.strictSchemaFile = conf.GetBool("BigQuery.strictSchemaFile", false)

	c.logger.Infof("BQ: Connecting to BigQuery in project: %s", cred.ProjectID)

	db, err := Connect(ctx, &cred)
	if err != nil {
		return nil, err
	}
	c.db = db
	return c, nil
}

// DB exposes the underlying vendor handle for operations the kit does not
// cover.
func (c *Client) DB() *bigquery.Client {
	return c.db
}

// Close releases the underlying connection handle.
func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) getMiddleware() *middleware.Client {
	if c.middleware != nil {
		return c.middleware
	}
	return middleware.New(
		c.db,
		middleware.WithLogger(c.logger),
		middleware.WithKeyAndValues(
			logfield.ProjectID, c.projectID,
		),
		middleware.WithSlowQueryThreshold(c.config.slowQueryThreshold),
	)
}

// project returns the project to address when the caller passed an empty one.
func (c *Client) project(project string) string {
	if project == "" {
		return c.projectID
	}
	return project
}
