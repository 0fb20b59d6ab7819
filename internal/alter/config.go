// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package alter

import (
	"context"
	"fmt"

	"github.com/staranto/blazygo/internal/data"
)

// Rule is a declarative alteration read from the "alter" config section.
//
//	alter:
//	  blazy.ratios:
//	    set:
//	      fluid: fluid
//	    unset: [enforced]
type Rule struct {
	Set   map[string]any
	Unset []string
}

// Func returns the callback applying the rule. Unset runs before set, so a
// key named in both ends up set.
func (rule Rule) Func() Func {
	return func(_ context.Context, d data.Data, _ map[string]any) error {
		for _, k := range rule.Unset {
			delete(d, k)
		}
		for k, v := range rule.Set {
			d[k] = v
		}
		return nil
	}
}

// ParseRules converts a raw "alter" config section into rules keyed by hook.
func ParseRules(section map[string]any) (map[string]Rule, error) {
	rules := make(map[string]Rule, len(section))
	for hook, raw := range section {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("alter %s: expected a mapping, got %T", hook, raw)
		}

		var rule Rule
		if set, ok := m["set"]; ok {
			sm, ok := set.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("alter %s: set must be a mapping, got %T", hook, set)
			}
			rule.Set = sm
		}
		if unset, ok := m["unset"]; ok {
			list, ok := unset.([]any)
			if !ok {
				return nil, fmt.Errorf("alter %s: unset must be a list, got %T", hook, unset)
			}
			for _, u := range list {
				rule.Unset = append(rule.Unset, fmt.Sprint(u))
			}
		}
		rules[hook] = rule
	}
	return rules, nil
}

// RegisterRules parses section and registers one callback per hook.
func (r *Registry) RegisterRules(section map[string]any) error {
	rules, err := ParseRules(section)
	if err != nil {
		return err
	}
	for hook, rule := range rules {
		r.Register(hook, rule.Func())
	}
	return nil
}
