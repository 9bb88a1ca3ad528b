package bqkit

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/bigquery"
	bqService "google.golang.org/api/bigquery/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/rudderlabs/bqkit/logfield"
)

// ErrBadRequestImport is returned when a monitored job fails with a
// BadRequest class error. The job's error detail list is logged, not attached,
// so the message is fixed.
var ErrBadRequestImport = errors.New("Import failed with BadRequest exception. See error data in logs.")

// monitorJob blocks until the job completes. A BadRequest failure is logged
// together with the job's error list and translated to ErrBadRequestImport;
// every other failure propagates unchanged.
func (c *Client) monitorJob(ctx context.Context, job *bigquery.Job) error {
	status, err := job.Wait(ctx)
	if err != nil {
		if isBadRequest(err) {
			c.logger.Errorw("BQ: Job failed with BadRequest",
				logfield.JobID, job.ID(),
				logfield.Error, jobErrors(status),
			)
			return ErrBadRequestImport
		}
		return err
	}
	if err := status.Err(); err != nil {
		if isBadRequest(err) {
			c.logger.Errorw("BQ: Job failed with BadRequest",
				logfield.JobID, job.ID(),
				logfield.Error, jobErrors(status),
			)
			return ErrBadRequestImport
		}
		return err
	}
	return nil
}

// isBadRequest reports whether err is the service's BadRequest class of
// failure, surfaced by the SDK as an HTTP 400 googleapi error.
func isBadRequest(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == 400
	}
	var berr *bigquery.Error
	if errors.As(err, &berr) {
		return berr.Reason == "invalid" || berr.Reason == "invalidQuery"
	}
	return false
}

func jobErrors(status *bigquery.JobStatus) []*bigquery.Error {
	if status == nil {
		return nil
	}
	return status.Errors
}

// JobStatistics fetches the statistics of a completed job through the
// BigQuery v2 REST surface, which exposes counters the cloud SDK does not.
func (c *Client) JobStatistics(ctx context.Context, job *bigquery.Job) (*bqService.JobStatistics, error) {
	var opts []option.ClientOption
	if c.creds.Credentials != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(c.creds.Credentials)))
	}
	serv, err := bqService.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating service: %w", err)
	}

	bqJobGetCall := bqService.NewJobsService(serv).Get(
		job.ProjectID(),
		job.ID(),
	)
	bqJob, err := bqJobGetCall.Context(ctx).Location(job.Location()).Fields("statistics").Do()
	if err != nil {
		return nil, fmt.Errorf("getting job: %w", err)
	}
	return bqJob.Statistics, nil
}
