package storageutil

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/pierrec/lz4/v4"
)

// ErrObjectNotFound indicates an object was not found.
var ErrObjectNotFound = errors.New("object not found")

type ReadSizeCloser interface {
	io.Reader
	io.Closer
	Size() int64
}

// ObjectHandler provides a common interface for multiple storage providers.
type ObjectHandler interface {
	// Put writes an object to the storage provider with name being the path.
	Put(ctx context.Context, name string) (io.WriteCloser, error)
	// Get reads an object from the storage provider with name being the
	// path. If the key was not found, it returns ErrObjectNotFound.
	Get(ctx context.Context, name string) (ReadSizeCloser, error)
}

const storageTimeout = 5 * time.Second

// CompressedWrite lz4-compresses data and writes it under objectName. Trace
// payloads are opaque bytes here; compression is the only transformation.
func CompressedWrite(ctx context.Context, b ObjectHandler, objectName string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	ow, err := b.Put(ctx, objectName)
	if err != nil {
		return err
	}
	zw := lz4.NewWriter(ow)
	_ = zw.Apply(lz4.CompressionLevelOption(lz4.Level9))
	if _, err := zw.Write(data); err != nil {
		ow.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		ow.Close()
		return err
	}
	return ow.Close()
}

// CompressedRead reads the object under objectName and decompresses it.
func CompressedRead(ctx context.Context, b ObjectHandler, objectName string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	or, err := b.Get(ctx, objectName)
	if err != nil {
		return nil, err
	}
	defer or.Close()
	return io.ReadAll(lz4.NewReader(or))
}
