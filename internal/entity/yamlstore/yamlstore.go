// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package yamlstore serves entities of every type from a YAML document of
// the form:
//
//	file:
//	  - id: "1"
//	    label: hero.png
//	    published: true
//	    fields:
//	      uri: public://hero.png
//
// Entities without a uuid get one derived from their type and id.
package yamlstore

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/apex/log"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/staranto/blazygo/internal/data"
	"github.com/staranto/blazygo/internal/entity"
)

// Namespace seeds the derived entity UUIDs.
var Namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:blazy:entity"))

// Store holds the entities of every type in memory.
type Store struct {
	mu    sync.RWMutex
	types map[string]map[string]*entity.Entity
}

// New returns an empty store.
func New() *Store {
	return &Store{types: map[string]map[string]*entity.Entity{}}
}

// Load reads the entity document at path.
func Load(path string) (*Store, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read entities: %w", err)
	}
	s, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse entities %s: %w", path, err)
	}
	log.WithField("path", path).WithField("types", len(s.types)).Debug("entities loaded")
	return s, nil
}

// Parse decodes an entity document.
func Parse(content []byte) (*Store, error) {
	var doc map[string][]*entity.Entity
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, err
	}

	s := New()
	for entityType, list := range doc {
		for i, e := range list {
			if e == nil || e.ID == "" {
				return nil, fmt.Errorf("%s entity %d has no id", entityType, i)
			}
			if err := s.Add(entityType, e); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

// FromMap builds a store from an already decoded document, such as the
// entities section of the config file.
func FromMap(m map[string]interface{}) (*Store, error) {
	content, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode entities: %w", err)
	}
	return Parse(content)
}

// Add stores e under entityType, deriving its uuid when missing.
func (s *Store) Add(entityType string, e *entity.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID, ok := s.types[entityType]
	if !ok {
		byID = map[string]*entity.Entity{}
		s.types[entityType] = byID
	}
	if _, dup := byID[e.ID]; dup {
		return fmt.Errorf("duplicate %s entity id %s", entityType, e.ID)
	}

	e.Type = entityType
	if e.UUID == "" {
		e.UUID = DeriveUUID(entityType, e.ID)
	}
	byID[e.ID] = e
	return nil
}

// DeriveUUID returns the stable uuid of an entity without one.
func DeriveUUID(entityType, id string) string {
	return uuid.NewSHA1(Namespace, []byte(entityType+":"+id)).String()
}

// Types returns the entity type names in sorted order.
func (s *Store) Types() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.types))
	for name := range s.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Storage returns the storage of entityType.
func (s *Store) Storage(entityType string) (entity.Storage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.types[entityType]; !ok {
		return nil, fmt.Errorf("%w: unknown entity type %s", entity.ErrNotFound, entityType)
	}
	return &typeStorage{store: s, entityType: entityType}, nil
}

// LoadByUUID finds an entity of entityType by uuid.
func (s *Store) LoadByUUID(_ context.Context, entityType, id string) (*entity.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.types[entityType] {
		if e.UUID == id {
			return clone(e), nil
		}
	}
	return nil, entity.NotFound(entityType, "uuid "+id)
}

type typeStorage struct {
	store      *Store
	entityType string
}

func (t *typeStorage) Load(_ context.Context, id string) (*entity.Entity, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	e, ok := t.store.types[t.entityType][id]
	if !ok {
		return nil, entity.NotFound(t.entityType, id)
	}
	return clone(e), nil
}

func (t *typeStorage) LoadMultiple(_ context.Context, ids []string) ([]*entity.Entity, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	byID := t.store.types[t.entityType]
	if ids == nil {
		ids = make([]string, 0, len(byID))
		for id := range byID {
			ids = append(ids, id)
		}
		data.SortKeys(ids)
	}

	result := make([]*entity.Entity, 0, len(ids))
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			result = append(result, clone(e))
		}
	}
	return result, nil
}

func (t *typeStorage) Query(conjunction string) *entity.Query {
	return entity.NewQuery(func(ctx context.Context) ([]*entity.Entity, error) {
		return t.LoadMultiple(ctx, nil)
	}, conjunction)
}

func clone(e *entity.Entity) *entity.Entity {
	c := *e
	if e.Fields != nil {
		c.Fields = make(map[string]any, len(e.Fields))
		for k, v := range e.Fields {
			c.Fields[k] = v
		}
	}
	return &c
}
