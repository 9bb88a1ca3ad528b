package bqkit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/bigquery"
	"github.com/samber/lo"
	"google.golang.org/api/googleapi"
)

// GetSchema returns the schema of `{project}.{dataset}.{table}`. An empty
// project addresses the client's own project. Lookup failures, including
// unknown tables, propagate untranslated.
func (c *Client) GetSchema(ctx context.Context, project, dataset, table string) (bigquery.Schema, error) {
	meta, err := c.db.DatasetInProject(c.project(project), dataset).Table(table).Metadata(ctx)
	if err != nil {
		return nil, err
	}
	return meta.Schema, nil
}

// SchemaFromJSONFile parses a table schema from a JSON file in the BigQuery
// schema format.
func SchemaFromJSONFile(path string) (bigquery.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	schema, err := bigquery.SchemaFromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("parsing schema file: %w", err)
	}
	return schema, nil
}

// SchemaFromFieldTypes builds a schema from a column name to field type
// mapping. Field order is unspecified.
func SchemaFromFieldTypes(columns map[string]bigquery.FieldType) bigquery.Schema {
	return lo.MapToSlice(columns, func(name string, typ bigquery.FieldType) *bigquery.FieldSchema {
		return &bigquery.FieldSchema{Name: name, Type: typ}
	})
}

// DatasetExists reports whether the dataset exists in the client's project.
func (c *Client) DatasetExists(ctx context.Context, dataset string) (bool, error) {
	_, err := c.db.Dataset(dataset).Metadata(ctx)
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == 404 {
			c.logger.Debugf("BQ: Dataset %s not found", dataset)
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CreateDataset creates the dataset in the given location, defaulting to US.
// An already existing dataset is not an error.
func (c *Client) CreateDataset(ctx context.Context, dataset, location string) error {
	location = strings.TrimSpace(location)
	if location == "" {
		location = "US"
	}

	exists, err := c.DatasetExists(ctx, dataset)
	if err != nil {
		c.logger.Errorf("BQ: Error checking if dataset: %s exists: %v", dataset, err)
		return err
	}
	if exists {
		c.logger.Infof("BQ: Skipping creating dataset: %s since it already exists", dataset)
		return nil
	}

	c.logger.Infof("BQ: Creating dataset: %s in project: %s", dataset, c.projectID)
	err = c.db.Dataset(dataset).Create(ctx, &bigquery.DatasetMetadata{
		Location: location,
	})
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == 409 {
			c.logger.Infof("BQ: Create dataset %s failed as dataset already exists", dataset)
			return nil
		}
		return err
	}
	return nil
}

// TableExists reports whether the table exists in the dataset.
func (c *Client) TableExists(ctx context.Context, dataset, table string) (bool, error) {
	_, err := c.db.Dataset(dataset).Table(table).Metadata(ctx)
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == 404 {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CreateTable creates an ingestion-time partitioned table with the given
// schema. An already existing table is not an error.
func (c *Client) CreateTable(ctx context.Context, dataset, table string, schema bigquery.Schema) error {
	c.logger.Infof("BQ: Creating table: %s in dataset: %s in project: %s", table, dataset, c.projectID)
	metaData := &bigquery.TableMetadata{
		Schema:           schema,
		TimePartitioning: &bigquery.TimePartitioning{},
	}
	err := c.db.Dataset(dataset).Table(table).Create(ctx, metaData)
	if !checkAndIgnoreAlreadyExistError(err) {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

// DeleteTable deletes the table from the dataset.
func (c *Client) DeleteTable(ctx context.Context, dataset, table string) error {
	return c.db.Dataset(dataset).Table(table).Delete(ctx)
}

// AddColumns appends the given fields to the table's schema. The update is
// conditional on the table's current ETag.
func (c *Client) AddColumns(ctx context.Context, dataset, table string, fields []*bigquery.FieldSchema) error {
	c.logger.Infof("BQ: Adding columns to table: %s in dataset: %s in project: %s", table, dataset, c.projectID)
	tableRef := c.db.Dataset(dataset).Table(table)
	meta, err := tableRef.Metadata(ctx)
	if err != nil {
		return err
	}

	newSchema := append(meta.Schema, fields...)
	_, err = tableRef.Update(ctx, bigquery.TableMetadataToUpdate{
		Schema: newSchema,
	}, meta.ETag)

	// One column already existing is recoverable, adding it is a no-op.
	if len(fields) == 1 && checkAndIgnoreAlreadyExistError(err) {
		return nil
	}
	return err
}
