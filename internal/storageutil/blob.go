package storageutil

import (
	"context"
	"io"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// Blob adapts a gocloud.dev bucket to the ObjectHandler interface, so the
// same code serves local filesystem buckets in tests and cloud buckets in
// deployment.
type Blob struct {
	Bucket *blob.Bucket
}

func (b *Blob) Put(ctx context.Context, name string) (io.WriteCloser, error) {
	return b.Bucket.NewWriter(ctx, name, nil)
}

func (b *Blob) Get(ctx context.Context, name string) (ReadSizeCloser, error) {
	r, err := b.Bucket.NewReader(ctx, name, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	return r, nil
}
