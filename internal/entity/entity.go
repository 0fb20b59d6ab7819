// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package entity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when an entity or entity type does not exist.
var ErrNotFound = errors.New("entity not found")

// Entity is a single content record.
type Entity struct {
	Type      string         `json:"type" yaml:"-"`
	ID        string         `json:"id" yaml:"id"`
	UUID      string         `json:"uuid" yaml:"uuid"`
	Bundle    string         `json:"bundle,omitempty" yaml:"bundle"`
	Label     string         `json:"label,omitempty" yaml:"label"`
	Published bool           `json:"published" yaml:"published"`
	Fields    map[string]any `json:"fields,omitempty" yaml:"fields"`
}

// JSON returns the entity encoded as JSON. Query conditions are evaluated
// against this document.
func (e *Entity) JSON() string {
	b, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Storage loads and queries the entities of one type.
type Storage interface {
	Load(ctx context.Context, id string) (*Entity, error)
	// LoadMultiple loads the given ids, skipping missing ones. A nil ids
	// loads every entity of the type.
	LoadMultiple(ctx context.Context, ids []string) ([]*Entity, error)
	Query(conjunction string) *Query
}

// TypeManager hands out storage per entity type.
type TypeManager interface {
	Storage(entityType string) (Storage, error)
}

// Repository looks up entities across types.
type Repository interface {
	LoadByUUID(ctx context.Context, entityType, uuid string) (*Entity, error)
}

// NotFound returns an ErrNotFound for the entity of entityType with id.
func NotFound(entityType, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, entityType, id)
}
