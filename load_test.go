package bqkit

import (
	"os"
	"path/filepath"
	"testing"

	"cloud.google.com/go/bigquery"
	"github.com/stretchr/testify/require"

	"github.com/rudderlabs/rudder-go-kit/logger"
)

const testSchemaJSON = `[
	{"name": "id", "type": "STRING", "mode": "NULLABLE"},
	{"name": "received_at", "type": "TIMESTAMP", "mode": "NULLABLE"}
]`

func writeSchemaFile(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestAssembleGCSRef(t *testing.T) {
	c := &Client{logger: logger.NOP}

	t.Run("defaults", func(t *testing.T) {
		gcsRef, err := c.assembleGCSRef("gs://some-bucket/some-blob", &UploadGCSJSONRequest{})
		require.NoError(t, err)

		require.Equal(t, []string{"gs://some-bucket/some-blob"}, gcsRef.URIs)
		require.Equal(t, bigquery.JSON, gcsRef.SourceFormat)
		require.True(t, gcsRef.IgnoreUnknownValues)
		require.False(t, gcsRef.AutoDetect)
		require.Nil(t, gcsRef.Schema)
	})

	t.Run("explicit arguments win over caller overrides", func(t *testing.T) {
		gcsRef, err := c.assembleGCSRef("gs://some-bucket/some-blob", &UploadGCSJSONRequest{
			ConfigOverrides: func(ref *bigquery.GCSReference) {
				ref.SourceFormat = bigquery.CSV
				ref.IgnoreUnknownValues = false
				ref.AutoDetect = true
				ref.MaxBadRecords = 10
			},
		})
		require.NoError(t, err)

		require.Equal(t, bigquery.JSON, gcsRef.SourceFormat)
		require.True(t, gcsRef.IgnoreUnknownValues)
		require.False(t, gcsRef.AutoDetect)
		// settings without an explicit argument pass through untouched
		require.EqualValues(t, 10, gcsRef.MaxBadRecords)
	})

	t.Run("fail on unknown values", func(t *testing.T) {
		gcsRef, err := c.assembleGCSRef("gs://some-bucket/some-blob", &UploadGCSJSONRequest{
			FailOnUnknownValues: true,
			AutodetectSchema:    true,
		})
		require.NoError(t, err)

		require.False(t, gcsRef.IgnoreUnknownValues)
		require.True(t, gcsRef.AutoDetect)
	})

	t.Run("schema file", func(t *testing.T) {
		gcsRef, err := c.assembleGCSRef("gs://some-bucket/some-blob", &UploadGCSJSONRequest{
			SchemaJSONPath: writeSchemaFile(t, testSchemaJSON),
		})
		require.NoError(t, err)

		require.Len(t, gcsRef.Schema, 2)
		require.Equal(t, "id", gcsRef.Schema[0].Name)
		require.Equal(t, bigquery.StringFieldType, gcsRef.Schema[0].Type)
	})

	t.Run("unparsable schema file is skipped", func(t *testing.T) {
		gcsRef, err := c.assembleGCSRef("gs://some-bucket/some-blob", &UploadGCSJSONRequest{
			SchemaJSONPath: writeSchemaFile(t, "not json"),
		})
		require.NoError(t, err)
		require.Nil(t, gcsRef.Schema)
	})

	t.Run("unparsable schema file keeps a caller supplied schema", func(t *testing.T) {
		callerSchema := bigquery.Schema{{Name: "id", Type: bigquery.StringFieldType}}
		gcsRef, err := c.assembleGCSRef("gs://some-bucket/some-blob", &UploadGCSJSONRequest{
			SchemaJSONPath: writeSchemaFile(t, "not json"),
			ConfigOverrides: func(ref *bigquery.GCSReference) {
				ref.Schema = callerSchema
			},
		})
		require.NoError(t, err)
		require.Equal(t, callerSchema, gcsRef.Schema)
	})

	t.Run("strict schema file", func(t *testing.T) {
		strict := &Client{logger: logger.NOP}
		strict.config.strictSchemaFile = true

		_, err := strict.assembleGCSRef("gs://some-bucket/some-blob", &UploadGCSJSONRequest{
			SchemaJSONPath: writeSchemaFile(t, "not json"),
		})
		require.Error(t, err)
		require.Contains(t, err.Error(), "building schema")
	})
}

func TestWriteDisposition(t *testing.T) {
	require.Equal(t, bigquery.WriteAppend, writeDisposition(false))
	require.Equal(t, bigquery.WriteTruncate, writeDisposition(true))
}
