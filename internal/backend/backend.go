// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package backend

import (
	"context"
	"fmt"

	"github.com/apex/log"

	"github.com/staranto/blazygo/internal/aws"
	"github.com/staranto/blazygo/internal/config"
	"github.com/staranto/blazygo/internal/store"
	"github.com/staranto/blazygo/internal/store/file"
	"github.com/staranto/blazygo/internal/store/memory"
	s3store "github.com/staranto/blazygo/internal/store/s3"
)

// Backend names accepted in cache.backend.
const (
	Memory = "memory"
	File   = "file"
	S3     = "s3"
)

// Default is used when cache.backend is not set.
const Default = File

// S3ClientFunc builds the client of the s3 backend. Tests swap it out.
var S3ClientFunc = func(ctx context.Context, s aws.S3Settings) (s3store.API, error) {
	client, err := aws.NewS3FromSettings(ctx, s)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Type returns the configured backend name.
func Type(cfg config.Type) string {
	typ, _ := cfg.GetString("cache.backend", Default)
	return typ
}

// New opens the cache store selected by cache.backend.
func New(ctx context.Context, cfg config.Type) (store.Store, error) {
	typ := Type(cfg)
	log.WithField("backend", typ).Debug("opening cache store")

	switch typ {
	case Memory:
		return memory.New(), nil
	case File:
		bin, _ := cfg.GetString("cache.file.bin", "default")
		dir, _ := cfg.GetString("cache.file.dir")
		if dir == "" {
			return file.NewFromEnv(bin), nil
		}
		return file.New(dir, bin), nil
	case S3:
		bucket, _ := cfg.GetString("cache.s3.bucket")
		if bucket == "" {
			return nil, fmt.Errorf("cache.s3.bucket is required for the s3 backend")
		}
		prefix, _ := cfg.GetString("cache.s3.prefix", "blazy")
		settings := aws.S3Settings{}
		settings.Profile, _ = cfg.GetString("cache.s3.profile")
		settings.Region, _ = cfg.GetString("cache.s3.region")
		settings.Endpoint, _ = cfg.GetString("cache.s3.endpoint")
		settings.MaxAttempts, _ = cfg.GetInt("cache.s3.max_retries", 0)

		client, err := S3ClientFunc(ctx, settings)
		if err != nil {
			return nil, err
		}
		return s3store.New(client, bucket, prefix), nil
	}

	return nil, fmt.Errorf("unknown cache backend: %s", typ)
}
