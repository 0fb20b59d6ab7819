// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package extension resolves installed modules, themes and profiles and the
// front-end libraries shipped next to them.
package extension

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/apex/log"
)

// Extension types.
const (
	Module  = "module"
	Theme   = "theme"
	Profile = "profile"
)

// BasePath is prepended to absolute paths.
const BasePath = "/"

// Extension is one installed extension. Path is relative to the root.
type Extension struct {
	Name string
	Type string
	Path string
}

// List is the set of installed extensions under a root directory.
type List struct {
	Root string
	byID map[string]Extension
}

// New returns a list of exts installed under root.
func New(root string, exts ...Extension) *List {
	l := &List{Root: root, byID: map[string]Extension{}}
	for _, e := range exts {
		l.byID[id(e.Type, e.Name)] = e
	}
	return l
}

// FromConfig builds a list from the extensions config section, which maps
// an extension type to name: path entries.
//
//	extensions:
//	  module:
//	    blazy: modules/contrib/blazy
//	  theme:
//	    olivero: core/themes/olivero
func FromConfig(root string, section map[string]interface{}) (*List, error) {
	var exts []Extension
	for typ, raw := range section {
		switch typ {
		case Module, Theme, Profile:
		default:
			return nil, fmt.Errorf("unknown extension type: %s", typ)
		}
		entries, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("extensions.%s must be a map of name to path", typ)
		}
		for name, p := range entries {
			ps, ok := p.(string)
			if !ok {
				return nil, fmt.Errorf("extensions.%s.%s path must be a string", typ, name)
			}
			exts = append(exts, Extension{Name: name, Type: typ, Path: strings.Trim(ps, "/")})
		}
	}
	return New(root, exts...), nil
}

// Names returns the names of the installed extensions of typ, sorted.
func (l *List) Names(typ string) []string {
	var names []string
	for _, e := range l.byID {
		if e.Type == typ {
			names = append(names, e.Name)
		}
	}
	sort.Strings(names)
	return names
}

// Exists reports whether the module name is installed. Profiles count as
// modules.
func (l *List) Exists(name string) bool {
	_, ok := l.byID[id(Module, name)]
	if !ok {
		_, ok = l.byID[id(Profile, name)]
	}
	return ok
}

// Path returns the path of an extension, relative to the root or prefixed
// with BasePath when absolute is set.
func (l *List) Path(typ, name string, absolute bool) (string, bool) {
	e, ok := l.byID[id(typ, name)]
	if !ok {
		return "", false
	}
	if absolute {
		return BasePath + e.Path, true
	}
	return e.Path, true
}

// LibrariesPath returns the first existing of libraries/<name> and
// libraries/<name>.js under the root. With base set the result is prefixed
// with BasePath.
func (l *List) LibrariesPath(name string, base bool) (string, bool) {
	for _, candidate := range []string{
		path.Join("libraries", name),
		path.Join("libraries", name+".js"),
	} {
		if _, err := os.Stat(filepath.Join(l.Root, filepath.FromSlash(candidate))); err != nil {
			continue
		}
		log.WithField("library", name).WithField("path", candidate).Debug("library found")
		if base {
			return BasePath + candidate, true
		}
		return candidate, true
	}
	return "", false
}

func id(typ, name string) string {
	return typ + ":" + name
}
