// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/blazygo/internal/data"
	"github.com/staranto/blazygo/internal/store"
)

var _ store.Store = (*Store)(nil)

// fakeS3 is an in-memory bucket that understands the calls Store makes.
type fakeS3 struct {
	mu       sync.Mutex
	objects  map[string][]byte
	getErr   error
	pageSize int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, pageSize: 1000}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3v2.GetObjectInput, _ ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	b, ok := f.objects[awsv2.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3v2.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3v2.PutObjectInput, _ ...func(*s3v2.Options)) (*s3v2.PutObjectOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[awsv2.ToString(in.Key)] = b
	return &s3v2.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3v2.DeleteObjectInput, _ ...func(*s3v2.Options)) (*s3v2.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, awsv2.ToString(in.Key))
	return &s3v2.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3v2.ListObjectsV2Input, _ ...func(*s3v2.Options)) (*s3v2.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, awsv2.ToString(in.Prefix)) && k > awsv2.ToString(in.StartAfter) && k > awsv2.ToString(in.ContinuationToken) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := &s3v2.ListObjectsV2Output{IsTruncated: awsv2.Bool(false)}
	if len(keys) > f.pageSize {
		keys = keys[:f.pageSize]
		out.IsTruncated = awsv2.Bool(true)
		out.NextContinuationToken = awsv2.String(keys[len(keys)-1])
	}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: awsv2.String(k)})
	}
	return out, nil
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	s := New(fake, "bucket", "blazy/cache")

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", data.Data{"a": "b"}, store.Permanent, []string{"k:count:1"}))
	assert.Contains(t, fake.objects, s.ObjectKey("k"))
	assert.True(t, strings.HasPrefix(s.ObjectKey("k"), "blazy/cache/"))

	e, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, data.Data{"a": "b"}, e.Data)
	assert.Equal(t, []string{"k:count:1"}, e.Tags)
}

func TestStore_GetError(t *testing.T) {
	fake := newFakeS3()
	fake.getErr = errors.New("unreachable")
	s := New(fake, "bucket", "")

	_, ok, err := s.Get(context.Background(), "k")
	assert.False(t, ok)
	assert.ErrorIs(t, err, fake.getErr)
}

func TestStore_Expired(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	s := New(fake, "bucket", "")
	now := time.Now()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "k", data.Data{"a": "b"}, now.Add(-time.Minute), nil))
	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, fake.objects)
}

func TestStore_InvalidateTags(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	fake.pageSize = 1
	s := New(fake, "bucket", "p")

	require.NoError(t, s.Set(ctx, "a", data.Data{"x": "1"}, store.Permanent, []string{"t1"}))
	require.NoError(t, s.Set(ctx, "b", data.Data{"x": "1"}, store.Permanent, []string{"t2"}))
	require.NoError(t, s.Set(ctx, "c", data.Data{"x": "1"}, store.Permanent, []string{"t1", "t3"}))
	fake.objects["elsewhere/x.json"] = []byte(`{"tags":["t1"]}`)

	n, err := s.InvalidateTags(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, fake.objects, 2)
	assert.Contains(t, fake.objects, s.ObjectKey("b"))

	require.NoError(t, s.Delete(ctx, "b"))
	assert.Len(t, fake.objects, 1)
}
