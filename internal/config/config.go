// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when no value exists at a key.
var ErrNotFound = errors.New("config key not found")

type Type struct {
	Source    string
	Namespace string
	Data      map[string]interface{}
}

// Config is the process-wide configuration used by the package level getters.
var Config Type

// Load reads the YAML config file. With no argument the path is resolved
// from BLAZY_CFG or the standard locations. The result also replaces Config.
func Load(cfgFilePath ...string) (Type, error) {
	var path string
	if len(cfgFilePath) > 0 && cfgFilePath[0] != "" {
		path = cfgFilePath[0]
	} else {
		p, err := getConfigPath()
		if err != nil {
			return Type{}, err
		}
		path = p
	}

	cfg, err := Parse(path)
	if err != nil {
		return Type{}, err
	}

	Config = cfg
	return Config, nil
}

// Parse reads the YAML file at path without touching Config.
func Parse(path string) (Type, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return Type{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var data map[string]interface{}
	if err := yaml.Unmarshal(bytes, &data); err != nil {
		return Type{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return Type{
		Source: path,
		Data:   data}, nil
}

// FromMap builds a Type around in-memory data.
func FromMap(data map[string]interface{}) Type {
	return Type{Source: "memory", Data: data}
}

// get traverses the map using a dotted key path. When a Namespace is set the
// namespaced path is tried first.
func (cfg *Type) get(kspec string) (any, error) {
	candidateKeys := []string{kspec}
	if cfg.Namespace != "" {
		candidateKeys = []string{cfg.Namespace + "." + kspec, kspec}
	}

	for _, key := range candidateKeys {
		if v, ok := lookup(cfg.Data, key); ok {
			return v, nil
		}
	}

	return nil, fmt.Errorf("%w: no valid path found among: %v", ErrNotFound, candidateKeys)
}

// lookup walks m along the dot separated segments of key. A segment may
// itself contain dots when the map has such a key, so "blazy.settings.grid"
// finds m["blazy.settings"]["grid"].
func lookup(m map[string]interface{}, key string) (any, bool) {
	if key == "" {
		return nil, false
	}
	if v, ok := m[key]; ok {
		return v, true
	}

	segments := strings.Split(key, ".")
	for i := len(segments) - 1; i > 0; i-- {
		head := strings.Join(segments[:i], ".")
		v, ok := m[head]
		if !ok {
			continue
		}
		child, ok := v.(map[string]interface{})
		if !ok {
			continue
		}
		if found, ok := lookup(child, strings.Join(segments[i:], ".")); ok {
			return found, true
		}
	}
	return nil, false
}

// Get returns the raw value at key.
func (cfg *Type) Get(key string) (any, error) {
	return cfg.get(key)
}

// Group returns the top level mapping named name. Group names commonly carry
// dots, e.g. "blazy.settings".
func (cfg *Type) Group(name string) (map[string]interface{}, bool) {
	v, ok := cfg.Data[name]
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]interface{})
	return m, ok
}

func (cfg *Type) GetString(key string, defaultValue ...string) (string, error) {
	val, err := cfg.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return "", err
	}

	s, ok := val.(string)
	if !ok {
		return "", errors.New("value is not a string")
	}

	return s, nil
}

func (cfg *Type) GetInt(key string, defaultValue ...int) (int, error) {
	val, err := cfg.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return 0, err
	}

	// YAML numbers may be unmarshaled as int/float64 depending on content.
	switch v := val.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, errors.New("value is not an int")
	}
}

func (cfg *Type) GetBool(key string, defaultValue ...bool) (bool, error) {
	val, err := cfg.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return false, err
	}

	b, ok := val.(bool)
	if !ok {
		return false, errors.New("value is not a bool")
	}
	return b, nil
}

// GetStringSlice returns a list value. Non-string items are formatted with %v.
func (cfg *Type) GetStringSlice(key string, defaultValue ...[]string) ([]string, error) {
	val, err := cfg.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return nil, err
	}

	list, ok := val.([]interface{})
	if !ok {
		return nil, errors.New("value is not a list")
	}

	result := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			result = append(result, s)
		} else {
			result = append(result, fmt.Sprintf("%v", item))
		}
	}
	return result, nil
}

// GetMap returns a mapping value. A missing key yields an empty map.
func (cfg *Type) GetMap(key string) (map[string]interface{}, error) {
	val, err := cfg.get(key)
	if errors.Is(err, ErrNotFound) || (err == nil && val == nil) {
		return map[string]interface{}{}, nil
	}
	if err != nil {
		return nil, err
	}
	m, ok := val.(map[string]interface{})
	if !ok {
		return nil, errors.New("value is not a mapping")
	}
	return m, nil
}

func ensureLoaded() {
	if len(Config.Data) == 0 {
		_, _ = Load()
	}
}

func GetString(key string, defaultValue ...string) (string, error) {
	ensureLoaded()
	return Config.GetString(key, defaultValue...)
}

func GetInt(key string, defaultValue ...int) (int, error) {
	ensureLoaded()
	return Config.GetInt(key, defaultValue...)
}

func GetBool(key string, defaultValue ...bool) (bool, error) {
	ensureLoaded()
	return Config.GetBool(key, defaultValue...)
}

func GetStringSlice(key string, defaultValue ...[]string) ([]string, error) {
	ensureLoaded()
	return Config.GetStringSlice(key, defaultValue...)
}

func getConfigPath() (string, error) {
	if p, ok := os.LookupEnv("BLAZY_CFG"); ok && p != "" {
		info, err := os.Stat(p)
		if err != nil {
			return "", fmt.Errorf("config file not found: %s", p)
		}
		if info.IsDir() {
			return "", fmt.Errorf("BLAZY_CFG points to a directory: %s", p)
		}
		return p, nil
	}

	var candidates []string = []string{
		os.Getenv("XDG_CONFIG_HOME"),
		os.Getenv("APPDATA"),
		os.Getenv("HOME"),
	}

	for _, c := range candidates {
		if c == "" {
			continue
		}
		file := filepath.Join(c, "blazy.yaml")
		if fileInfo, err := os.Stat(file); err == nil {
			if !fileInfo.IsDir() {
				log.Debugf("using config file: %s", file)
				return file, nil
			}
		}
	}
	return "", fmt.Errorf("no config file found in standard locations")
}
