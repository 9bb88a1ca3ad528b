package bqkit

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// verifySourceObject checks that gs://{bucket}/{blob} exists before a load
// job is submitted for it. A missing object is reported here instead of as a
// failed job.
func (c *Client) verifySourceObject(ctx context.Context, bucket, blob string) error {
	var opts []option.ClientOption
	if c.creds.Credentials != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(c.creds.Credentials)))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return fmt.Errorf("creating storage client: %w", err)
	}
	defer func() { _ = client.Close() }()

	_, err = client.Bucket(bucket).Object(blob).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("source object gs://%s/%s does not exist: %w", bucket, blob, err)
		}
		return fmt.Errorf("checking source object gs://%s/%s: %w", bucket, blob, err)
	}
	return nil
}
