// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package backend

import (
	"context"
	"errors"
	"testing"

	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/blazygo/internal/aws"
	"github.com/staranto/blazygo/internal/config"
	"github.com/staranto/blazygo/internal/store/file"
	"github.com/staranto/blazygo/internal/store/memory"
	s3store "github.com/staranto/blazygo/internal/store/s3"
)

type nopS3 struct{ s3store.API }

func TestNew(t *testing.T) {
	t.Setenv("BLAZY_CACHE_DIR", t.TempDir())
	ctx := context.Background()

	s, err := New(ctx, config.FromMap(map[string]interface{}{}))
	require.NoError(t, err)
	fs, ok := s.(*file.Store)
	require.True(t, ok)
	assert.Equal(t, "default", fs.Bin)

	dir := t.TempDir()
	s, err = New(ctx, config.FromMap(map[string]interface{}{
		"cache": map[string]interface{}{
			"backend": "file",
			"file":    map[string]interface{}{"dir": dir, "bin": "render"},
		},
	}))
	require.NoError(t, err)
	fs, ok = s.(*file.Store)
	require.True(t, ok)
	assert.Equal(t, dir, fs.Base)
	assert.Equal(t, "render", fs.Bin)

	s, err = New(ctx, config.FromMap(map[string]interface{}{
		"cache": map[string]interface{}{"backend": "memory"},
	}))
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, s)

	_, err = New(ctx, config.FromMap(map[string]interface{}{
		"cache": map[string]interface{}{"backend": "redis"},
	}))
	assert.Error(t, err)
}

func TestNewS3(t *testing.T) {
	ctx := context.Background()

	var got aws.S3Settings
	orig := S3ClientFunc
	t.Cleanup(func() { S3ClientFunc = orig })
	S3ClientFunc = func(_ context.Context, s aws.S3Settings) (s3store.API, error) {
		got = s
		return nopS3{}, nil
	}

	cfg := config.FromMap(map[string]interface{}{
		"cache": map[string]interface{}{
			"backend": "s3",
			"s3": map[string]interface{}{
				"bucket":      "blazy-cache",
				"region":      "us-west-2",
				"profile":     "media",
				"endpoint":    "http://localhost:9000",
				"max_retries": 5,
			},
		},
	})
	s, err := New(ctx, cfg)
	require.NoError(t, err)

	ss, ok := s.(*s3store.Store)
	require.True(t, ok)
	assert.Equal(t, "blazy-cache", ss.Bucket)
	assert.Equal(t, "blazy", ss.Prefix)
	assert.Equal(t, aws.S3Settings{Profile: "media", Region: "us-west-2", Endpoint: "http://localhost:9000", MaxAttempts: 5}, got)

	_, err = New(ctx, config.FromMap(map[string]interface{}{
		"cache": map[string]interface{}{"backend": "s3"},
	}))
	assert.Error(t, err)

	boom := errors.New("no credentials")
	S3ClientFunc = func(context.Context, aws.S3Settings) (s3store.API, error) { return nil, boom }
	_, err = New(ctx, cfg)
	assert.ErrorIs(t, err, boom)
}

func TestDefaultS3ClientFunc(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AWS_CONFIG_FILE", dir+"/config")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", dir+"/credentials")
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	t.Setenv("AWS_PROFILE", "")

	client, err := S3ClientFunc(context.Background(), aws.S3Settings{Region: "eu-central-1"})
	require.NoError(t, err)
	c, ok := client.(*s3v2.Client)
	require.True(t, ok)
	assert.Equal(t, "eu-central-1", c.Options().Region)
	assert.Nil(t, c.Options().BaseEndpoint)
}

func TestDefaultBackend(t *testing.T) {
	t.Setenv("BLAZY_CACHE_DIR", t.TempDir())

	assert.Equal(t, File, Default)

	st, err := New(context.Background(), config.FromMap(map[string]interface{}{}))
	require.NoError(t, err)
	assert.IsType(t, &file.Store{}, st)
}

func TestType(t *testing.T) {
	assert.Equal(t, File, Type(config.FromMap(map[string]interface{}{})))
	assert.Equal(t, S3, Type(config.FromMap(map[string]interface{}{
		"cache": map[string]interface{}{"backend": "s3"},
	})))
}
