// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package blazy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/blazygo/internal/alter"
	"github.com/staranto/blazygo/internal/cached"
	"github.com/staranto/blazygo/internal/config"
	"github.com/staranto/blazygo/internal/data"
	"github.com/staranto/blazygo/internal/entity"
	"github.com/staranto/blazygo/internal/extension"
	"github.com/staranto/blazygo/internal/grid"
	"github.com/staranto/blazygo/internal/store"
	"github.com/staranto/blazygo/internal/store/memory"
)

// Placeholder is a 1x1 transparent GIF used as the src of images that have
// not been lazy loaded yet.
const Placeholder = "data:image/gif;base64,R0lGODlhAQABAIAAAAAAAP///yH5BAEAAAAALAAAAAABAAEAAAIBRAA7"

// Defaults of the optional arguments.
const (
	DefaultGroup        = "blazy.settings"
	DefaultStorageType  = "media"
	DefaultLoadType     = "image_style"
	DefaultPropertyType = "file"
	DefaultUUIDType     = "file"
)

// ErrNoEntities is returned by entity operations when no entity type manager
// is configured.
var ErrNoEntities = errors.New("no entity type manager configured")

// Manager is the entry point to the blazy services. Its collaborators are
// injected with Options; the zero configuration uses an empty config, an
// in-memory cache store and an empty alteration registry.
type Manager struct {
	root       string
	config     config.Type
	entities   entity.TypeManager
	repository entity.Repository
	registry   *alter.Registry
	extensions *extension.List
	cache      store.Store
	memo       *cached.Memo
	cacher     *cached.Cacher
}

// Option configures a Manager.
type Option func(*Manager)

// WithConfig sets the configuration.
func WithConfig(cfg config.Type) Option {
	return func(m *Manager) { m.config = cfg }
}

// WithEntities sets the entity type manager and repository.
func WithEntities(tm entity.TypeManager, repo entity.Repository) Option {
	return func(m *Manager) {
		m.entities = tm
		m.repository = repo
	}
}

// WithRegistry sets the alteration registry.
func WithRegistry(r *alter.Registry) Option {
	return func(m *Manager) { m.registry = r }
}

// WithExtensions sets the installed extensions.
func WithExtensions(l *extension.List) Option {
	return func(m *Manager) { m.extensions = l }
}

// WithStore sets the cache store.
func WithStore(s store.Store) Option {
	return func(m *Manager) { m.cache = s }
}

// WithMemo sets the memo shared by CachedData calls.
func WithMemo(memo *cached.Memo) Option {
	return func(m *Manager) { m.memo = memo }
}

// New returns a Manager for the site rooted at root.
func New(root string, opts ...Option) *Manager {
	m := &Manager{root: root}
	for _, opt := range opts {
		opt(m)
	}

	if m.config.Data == nil {
		m.config = config.FromMap(map[string]interface{}{})
	}
	if m.registry == nil {
		m.registry = alter.New()
	}
	if m.extensions == nil {
		m.extensions = extension.New(root)
	}
	if m.cache == nil {
		m.cache = memory.New()
	}
	if m.memo == nil {
		m.memo = cached.NewMemo()
	}
	m.cacher = cached.New(m.cache, m.registry, m.memo)

	return m
}

// Root returns the site root directory.
func (m *Manager) Root() string { return m.root }

// ConfigSource returns the configuration.
func (m *Manager) ConfigSource() config.Type { return m.config }

// EntityTypeManager returns the entity type manager, if any.
func (m *Manager) EntityTypeManager() entity.TypeManager { return m.entities }

// EntityRepository returns the entity repository, if any.
func (m *Manager) EntityRepository() entity.Repository { return m.repository }

// ModuleHandler returns the alteration registry.
func (m *Manager) ModuleHandler() *alter.Registry { return m.registry }

// Extensions returns the installed extensions.
func (m *Manager) Extensions() *extension.List { return m.extensions }

// Cache returns the cache store.
func (m *Manager) Cache() store.Store { return m.cache }

// Memo returns the memo used by CachedData.
func (m *Manager) Memo() *cached.Memo { return m.memo }

// Config returns key from the config group. An empty group means
// blazy.settings. An empty key returns the whole group without its _core
// entry. Missing keys and groups yield nil.
func (m *Manager) Config(key, group string) any {
	if group == "" {
		group = DefaultGroup
	}

	settings, _ := m.config.Group(group)
	if key == "" {
		result := make(map[string]interface{}, len(settings))
		for k, v := range settings {
			if k == "_core" {
				continue
			}
			result[k] = v
		}
		return result
	}

	v, err := m.config.Get(group + "." + key)
	if err != nil {
		return nil
	}
	return v
}

// Storage returns the storage of typ. An empty typ means media.
func (m *Manager) Storage(typ string) (entity.Storage, error) {
	if typ == "" {
		typ = DefaultStorageType
	}
	if m.entities == nil {
		return nil, ErrNoEntities
	}
	return m.entities.Storage(typ)
}

// EntityQuery returns a query over typ. An empty conjunction means AND.
func (m *Manager) EntityQuery(typ, conjunction string) (*entity.Query, error) {
	s, err := m.Storage(typ)
	if err != nil {
		return nil, err
	}
	return s.Query(conjunction), nil
}

// Load returns the entity id of typ. An empty typ means image_style. Config
// groups such as blazy.settings are routed to Config.
func (m *Manager) Load(ctx context.Context, id, typ string) (any, error) {
	if typ == "" {
		typ = DefaultLoadType
	}
	if strings.Contains(typ, ".settings") {
		return m.Config(id, typ), nil
	}

	s, err := m.Storage(typ)
	if err != nil {
		return nil, err
	}
	return s.Load(ctx, id)
}

// LoadMultiple returns the entities of typ with ids. Nil ids loads them all.
// An empty typ means image_style.
func (m *Manager) LoadMultiple(ctx context.Context, typ string, ids []string) ([]*entity.Entity, error) {
	if typ == "" {
		typ = DefaultLoadType
	}
	s, err := m.Storage(typ)
	if err != nil {
		return nil, err
	}
	return s.LoadMultiple(ctx, ids)
}

type propertyOptions struct {
	typ         string
	access      bool
	conjunction string
	condition   string
}

// PropertyOption customizes LoadByProperties.
type PropertyOption func(*propertyOptions)

// WithType sets the entity type. Defaults to file.
func WithType(typ string) PropertyOption {
	return func(o *propertyOptions) { o.typ = typ }
}

// WithAccess toggles the published check. Defaults to true.
func WithAccess(access bool) PropertyOption {
	return func(o *propertyOptions) { o.access = access }
}

// WithConjunction joins the conditions with AND or OR. Defaults to AND.
func WithConjunction(conjunction string) PropertyOption {
	return func(o *propertyOptions) { o.conjunction = conjunction }
}

// WithCondition sets the operator of every condition. Defaults to IN.
func WithCondition(condition string) PropertyOption {
	return func(o *propertyOptions) { o.condition = condition }
}

// LoadByProperties loads the entities whose fields match values. Scalar
// values are treated as one element lists.
func (m *Manager) LoadByProperties(ctx context.Context, values map[string]any, opts ...PropertyOption) ([]*entity.Entity, error) {
	o := propertyOptions{
		typ:         DefaultPropertyType,
		access:      true,
		conjunction: entity.And,
		condition:   entity.OpIn,
	}
	for _, opt := range opts {
		opt(&o)
	}

	s, err := m.Storage(o.typ)
	if err != nil {
		return nil, err
	}

	q := s.Query(o.conjunction).AccessCheck(o.access)
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	data.SortKeys(names)
	for _, name := range names {
		q.Condition(name, asList(values[name]), o.condition)
	}

	ids, err := q.Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s by properties: %w", o.typ, err)
	}
	if len(ids) == 0 {
		return []*entity.Entity{}, nil
	}
	return s.LoadMultiple(ctx, ids)
}

// LoadByUUID returns the entity of typ with uuid. An empty typ means file.
func (m *Manager) LoadByUUID(ctx context.Context, uuid, typ string) (*entity.Entity, error) {
	if typ == "" {
		typ = DefaultUUIDType
	}
	if m.repository == nil {
		return nil, ErrNoEntities
	}
	return m.repository.LoadByUUID(ctx, typ, uuid)
}

// CachedData returns the data cached under key, altering and persisting
// seed on a miss.
func (m *Manager) CachedData(ctx context.Context, key string, seed data.Data, opts ...cached.Option) (data.Data, error) {
	return m.cacher.Get(ctx, key, seed, opts...)
}

// LibrariesPath returns the path of the front-end library name.
func (m *Manager) LibrariesPath(name string, base bool) (string, bool) {
	return m.extensions.LibrariesPath(name, base)
}

// Path returns the path of an extension.
func (m *Manager) Path(typ, name string, absolute bool) (string, bool) {
	return m.extensions.Path(typ, name, absolute)
}

// ModuleExists reports whether the module name is installed.
func (m *Manager) ModuleExists(name string) bool {
	return m.extensions.Exists(name)
}

// ToGrid wraps items into a grid per the grid settings found in settings.
func (m *Manager) ToGrid(items []any, settings map[string]any) (grid.Result, error) {
	s, err := grid.SettingsFromMap(settings)
	if err != nil {
		return grid.Result{}, err
	}
	log.WithField("style", s.Style).WithField("items", len(items)).Debug("grid")
	return grid.Build(items, s)
}

func asList(v any) []any {
	switch l := v.(type) {
	case []any:
		return l
	case []string:
		out := make([]any, 0, len(l))
		for _, s := range l {
			out = append(out, s)
		}
		return out
	case nil:
		return []any{}
	default:
		return []any{l}
	}
}
