// Package mocks provides a testify mock of storage.Client with helpers for
// the object layouts used in catalog and report tests.
package mocks

import (
	"context"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of storage.Client.
type Client struct {
	mock.Mock
}

func (m *Client) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}

func (m *Client) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

func (m *Client) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	args := m.Called(ctx, bucketName, objectName, opts)
	if obj, ok := args.Get(0).(io.ReadCloser); ok {
		return obj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	args := m.Called(ctx, bucketName, opts)
	if ch, ok := args.Get(0).(<-chan minio.ObjectInfo); ok {
		return ch
	}
	return Listing()
}

// OnDocument expects a read of objectName and serves body.
func (m *Client) OnDocument(bucketName, objectName, body string) *mock.Call {
	return m.On("GetObject", mock.Anything, bucketName, objectName, mock.Anything).
		Return(io.NopCloser(strings.NewReader(body)), nil)
}

// OnListing expects a recursive listing under prefix returning keys.
func (m *Client) OnListing(bucketName, prefix string, keys ...string) *mock.Call {
	return m.On("ListObjects", mock.Anything, bucketName, mock.MatchedBy(func(o minio.ListObjectsOptions) bool {
		return o.Prefix == prefix && o.Recursive
	})).Return(Listing(keys...))
}

// Listing returns a closed channel yielding one object per key.
func Listing(keys ...string) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(keys))
	for _, k := range keys {
		ch <- minio.ObjectInfo{Key: k}
	}
	close(ch)
	return ch
}
