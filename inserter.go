package bqkit

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"

	"github.com/rudderlabs/bqkit/logfield"
)

// Record is a single streaming-insert row. A value under the "insertId" key,
// if present, is used as the row's insert ID for best-effort deduplication
// instead of being inserted as a column.
type Record map[string]bigquery.Value

// Save implements bigquery.ValueSaver.
func (rec Record) Save() (map[string]bigquery.Value, string, error) {
	var insertID string
	if columnVal, ok := rec["insertId"]; ok {
		insertID, _ = columnVal.(string)
		delete(rec, "insertId")
	}
	return rec, insertID, nil
}

// InsertRows streams rows into the table through the insert-data API. It does
// not create a job; failures are reported per row in the returned error when
// the service rejects a subset of them.
func (c *Client) InsertRows(ctx context.Context, dataset, table string, rows []Record) error {
	if len(rows) == 0 {
		return nil
	}
	inserter := c.db.Dataset(dataset).Table(table).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		c.logger.Errorw("BQ: Error streaming rows",
			logfield.Dataset, dataset,
			logfield.TableName, table,
			logfield.Error, err,
		)
		return fmt.Errorf("streaming %d rows into %s.%s: %w", len(rows), dataset, table, err)
	}
	return nil
}
