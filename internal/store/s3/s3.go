// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package s3 is a cache backend keeping one JSON object per entry in an S3
// bucket.
package s3

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/staranto/blazygo/internal/data"
	"github.com/staranto/blazygo/internal/store"
)

// API is the subset of the S3 client used by Store.
type API interface {
	GetObject(ctx context.Context, params *s3v2.GetObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3v2.PutObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3v2.DeleteObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3v2.ListObjectsV2Input, optFns ...func(*s3v2.Options)) (*s3v2.ListObjectsV2Output, error)
}

// Store keeps entries at s3://Bucket/Prefix/<md5(key)>.json.
type Store struct {
	Client API
	Bucket string
	Prefix string
	now    func() time.Time
}

// New returns a Store writing to bucket beneath prefix.
func New(client API, bucket, prefix string) *Store {
	return &Store{Client: client, Bucket: bucket, Prefix: prefix, now: time.Now}
}

// ObjectKey returns the object key used for the cache key.
func (s *Store) ObjectKey(key string) string {
	return path.Join(s.Prefix, encodeKey(key)+".json")
}

func (s *Store) Get(ctx context.Context, key string) (*store.Entry, bool, error) {
	objectKey := s.ObjectKey(key)
	e, ok, err := s.read(ctx, objectKey)
	if err != nil || !ok {
		return nil, false, err
	}
	if e.Expired(s.now()) {
		log.Debugf("expired cache object s3://%s/%s", s.Bucket, objectKey)
		if err := s.deleteObject(ctx, objectKey); err != nil {
			log.WithError(err).Warnf("failed to remove expired cache object %s", objectKey)
		}
		return nil, false, nil
	}
	return e, true, nil
}

func (s *Store) Set(ctx context.Context, key string, d data.Data, expire time.Time, tags []string) error {
	b, err := json.Marshal(store.NewEntry(key, d, expire, tags))
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %s: %w", key, err)
	}

	_, err = s.Client.PutObject(ctx, &s3v2.PutObjectInput{
		Bucket:      awsv2.String(s.Bucket),
		Key:         awsv2.String(s.ObjectKey(key)),
		Body:        bytes.NewReader(b),
		ContentType: awsv2.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to write cache object %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		if err := s.deleteObject(ctx, s.ObjectKey(k)); err != nil {
			return fmt.Errorf("failed to delete cache object %s: %w", k, err)
		}
	}
	return nil
}

func (s *Store) InvalidateTags(ctx context.Context, tags ...string) (int, error) {
	if len(tags) == 0 {
		return 0, nil
	}

	prefix := s.Prefix
	if prefix != "" {
		prefix += "/"
	}

	removed := 0
	paginator := s3v2.NewListObjectsV2Paginator(s.Client, &s3v2.ListObjectsV2Input{
		Bucket: awsv2.String(s.Bucket),
		Prefix: awsv2.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return removed, fmt.Errorf("failed to list cache objects: %w", err)
		}
		for _, obj := range page.Contents {
			objectKey := awsv2.ToString(obj.Key)
			e, ok, err := s.read(ctx, objectKey)
			if err != nil {
				log.WithError(err).Warnf("skipping cache object %s", objectKey)
				continue
			}
			if !ok || !e.HasAnyTag(tags...) {
				continue
			}
			if err := s.deleteObject(ctx, objectKey); err != nil {
				return removed, fmt.Errorf("failed to remove cache object %s: %w", objectKey, err)
			}
			removed++
		}
	}
	return removed, nil
}

func (s *Store) read(ctx context.Context, objectKey string) (*store.Entry, bool, error) {
	out, err := s.Client.GetObject(ctx, &s3v2.GetObjectInput{
		Bucket: awsv2.String(s.Bucket),
		Key:    awsv2.String(objectKey),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cache object %s: %w", objectKey, err)
	}
	defer out.Body.Close()

	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache object %s: %w", objectKey, err)
	}

	var e store.Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, false, fmt.Errorf("failed to decode cache object %s: %w", objectKey, err)
	}
	return &e, true, nil
}

func (s *Store) deleteObject(ctx context.Context, objectKey string) error {
	_, err := s.Client.DeleteObject(ctx, &s3v2.DeleteObjectInput{
		Bucket: awsv2.String(s.Bucket),
		Key:    awsv2.String(objectKey),
	})
	return err
}

// encodeKey returns the MD5 hash of the given key, encoded as a hex string.
func encodeKey(key string) string {
	h := md5.New()
	h.Write([]byte(key))
	return hex.EncodeToString(h.Sum(nil))
}
