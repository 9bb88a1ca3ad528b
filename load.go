package bqkit

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"

	"github.com/rudderlabs/bqkit/logfield"
)

// UploadGCSJSONRequest describes a bulk load of a newline-delimited JSON
// object from GCS into a table. The zero value of every optional field is the
// default behaviour: append to the table, ignore unknown values, no schema
// autodetection, wait for the job to complete.
type UploadGCSJSONRequest struct {
	// Bucket and Blob address the source object as gs://bucket/blob.
	Bucket string
	Blob   string

	// Project, Dataset and Table reference the destination table. An empty
	// Project addresses the client's own project.
	Project string
	Dataset string
	Table   string

	// Truncate replaces the table's contents instead of appending to them.
	Truncate bool

	// FailOnUnknownValues treats values not matching the table schema as bad
	// records instead of ignoring them.
	FailOnUnknownValues bool

	// AutodetectSchema infers the schema from a sample of the data.
	AutodetectSchema bool

	// SchemaJSONPath points to a BigQuery schema JSON file to load the
	// explicit schema from. An unparsable file is logged and skipped unless
	// the client is configured with BigQuery.strictSchemaFile.
	SchemaJSONPath string

	// Async submits the load job and returns without monitoring it.
	Async bool

	// VerifySource checks that the source object exists before submitting
	// the job.
	VerifySource bool

	// ConfigOverrides customizes the assembled source configuration. It runs
	// before the explicit fields above are applied, so those always win.
	ConfigOverrides func(*bigquery.GCSReference)

	// JobOverrides customizes the assembled load job. It runs before the
	// write disposition derived from Truncate is applied, so that always
	// wins.
	JobOverrides func(*bigquery.Loader)
}

// UploadGCSJSON submits a load job importing gs://{Bucket}/{Blob} into
// `{Project}.{Dataset}.{Table}`. Unless req.Async is set, it blocks until the
// job completes; a BadRequest failure is translated to ErrBadRequestImport.
func (c *Client) UploadGCSJSON(ctx context.Context, req UploadGCSJSONRequest) error {
	sourceURI := fmt.Sprintf("gs://%s/%s", req.Bucket, req.Blob)
	tableRef := fmt.Sprintf("%s.%s.%s", c.project(req.Project), req.Dataset, req.Table)

	if req.VerifySource {
		if err := c.verifySourceObject(ctx, req.Bucket, req.Blob); err != nil {
			return err
		}
	}

	gcsRef, err := c.assembleGCSRef(sourceURI, &req)
	if err != nil {
		return err
	}

	loader := c.db.DatasetInProject(c.project(req.Project), req.Dataset).Table(req.Table).LoaderFrom(gcsRef)
	if req.JobOverrides != nil {
		req.JobOverrides(loader)
	}
	loader.WriteDisposition = writeDisposition(req.Truncate)

	c.logger.Infow("BQ: Submitting load job",
		logfield.SourceURI, sourceURI,
		logfield.TableName, tableRef,
	)
	c.logger.Debugw("BQ: Load job config",
		logfield.SourceURI, sourceURI,
		logfield.TableName, tableRef,
		"writeDisposition", loader.WriteDisposition,
		"ignoreUnknownValues", gcsRef.IgnoreUnknownValues,
		"autodetect", gcsRef.AutoDetect,
	)

	job, err := loader.Run(ctx)
	if err != nil {
		return fmt.Errorf("submitting load job: %w", err)
	}

	if req.Async {
		c.logger.Infof("BQ: Not waiting for load job %s, returning.", job.ID())
		return nil
	}

	if err := c.monitorJob(ctx, job); err != nil {
		return err
	}
	c.logger.Infof("BQ: Upload complete.")
	return nil
}

// assembleGCSRef builds the source configuration for a load. Caller overrides
// are applied first; the explicit request fields are assigned afterwards and
// overwrite any caller value for the same setting.
func (c *Client) assembleGCSRef(sourceURI string, req *UploadGCSJSONRequest) (*bigquery.GCSReference, error) {
	gcsRef := bigquery.NewGCSReference(sourceURI)
	if req.ConfigOverrides != nil {
		req.ConfigOverrides(gcsRef)
	}

	var schema bigquery.Schema
	if req.SchemaJSONPath != "" {
		if req.AutodetectSchema {
			c.logger.Warnf("BQ: AutodetectSchema is set while also specifying a schema file. " +
				"Consider unsetting AutodetectSchema to avoid type inference conflicts.")
		}
		c.logger.Debugf("BQ: Trying to build schema from %s...", req.SchemaJSONPath)
		var err error
		schema, err = SchemaFromJSONFile(req.SchemaJSONPath)
		if err != nil {
			if c.config.strictSchemaFile {
				return nil, fmt.Errorf("building schema: %w", err)
			}
			c.logger.Warnf("BQ: Failed to build schema: %v", err)
		} else {
			c.logger.Infof("BQ: Schema built.")
		}
	}

	gcsRef.SourceFormat = bigquery.JSON
	gcsRef.IgnoreUnknownValues = !req.FailOnUnknownValues
	gcsRef.AutoDetect = req.AutodetectSchema
	if schema != nil {
		gcsRef.Schema = schema
	}
	return gcsRef, nil
}

func writeDisposition(truncate bool) bigquery.TableWriteDisposition {
	if truncate {
		return bigquery.WriteTruncate
	}
	return bigquery.WriteAppend
}
