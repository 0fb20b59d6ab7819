// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package entity

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/blazygo/internal/data"
	"github.com/staranto/blazygo/internal/filters"
)

// Supported condition operators.
const (
	OpIn         = "IN"
	OpNotIn      = "NOT IN"
	OpEqual      = "="
	OpNotEqual   = "<>"
	OpGreater    = ">"
	OpLess       = "<"
	OpStartsWith = "STARTS_WITH"
	OpContains   = "CONTAINS"
)

// Conjunctions joining the conditions of a query.
const (
	And = "AND"
	Or  = "OR"
)

// rootKeys are addressed at the top of the entity document. Any other field
// name is looked up under fields.
var rootKeys = map[string]bool{
	"id": true, "uuid": true, "type": true, "bundle": true, "label": true, "published": true,
}

// Condition is one field test of a Query.
type Condition struct {
	Field    string
	Values   []any
	Operator string
}

// LoadAllFunc returns every entity a query runs over.
type LoadAllFunc func(ctx context.Context) ([]*Entity, error)

// Query selects entity ids by field conditions.
type Query struct {
	loadAll     LoadAllFunc
	conjunction string
	conditions  []Condition
	access      bool
	sortField   string
	sortDesc    bool
	start       int
	length      int
}

// NewQuery returns a query over the entities returned by loadAll. An empty
// conjunction means AND.
func NewQuery(loadAll LoadAllFunc, conjunction string) *Query {
	if conjunction == "" {
		conjunction = And
	}
	return &Query{loadAll: loadAll, conjunction: strings.ToUpper(conjunction), length: -1}
}

// Condition adds a field test. values may be a scalar or a slice. An empty
// operator means IN for slices and = for scalars.
func (q *Query) Condition(field string, values any, operator string) *Query {
	list, isList := asList(values)
	if operator == "" {
		operator = OpEqual
		if isList {
			operator = OpIn
		}
	}
	q.conditions = append(q.conditions, Condition{Field: field, Values: list, Operator: strings.ToUpper(operator)})
	return q
}

// AccessCheck hides unpublished entities when check is true.
func (q *Query) AccessCheck(check bool) *Query {
	q.access = check
	return q
}

// Sort orders the results by field. Without a sort field ids are returned in
// natural order.
func (q *Query) Sort(field string, desc bool) *Query {
	q.sortField = field
	q.sortDesc = desc
	return q
}

// Range limits the results to length ids starting at start. A negative
// length means no limit.
func (q *Query) Range(start, length int) *Query {
	q.start = start
	q.length = length
	return q
}

// Count returns the number of matching entities, ignoring Range.
func (q *Query) Count(ctx context.Context) (int, error) {
	matched, err := q.match(ctx)
	if err != nil {
		return 0, err
	}
	return len(matched), nil
}

// Execute returns the ids of the matching entities.
func (q *Query) Execute(ctx context.Context) ([]string, error) {
	matched, err := q.match(ctx)
	if err != nil {
		return nil, err
	}

	if q.sortField == "" {
		sort.SliceStable(matched, func(i, j int) bool {
			return data.LessKey(matched[i].ID, matched[j].ID)
		})
	} else {
		path := fieldPath(q.sortField)
		sort.SliceStable(matched, func(i, j int) bool {
			a := gjson.Get(matched[i].JSON(), path)
			b := gjson.Get(matched[j].JSON(), path)
			if q.sortDesc {
				return b.Less(a, true)
			}
			return a.Less(b, true)
		})
	}

	ids := make([]string, 0, len(matched))
	for _, e := range matched {
		ids = append(ids, e.ID)
	}

	if q.start > 0 {
		if q.start >= len(ids) {
			return []string{}, nil
		}
		ids = ids[q.start:]
	}
	if q.length >= 0 && q.length < len(ids) {
		ids = ids[:q.length]
	}

	return ids, nil
}

func (q *Query) match(ctx context.Context) ([]*Entity, error) {
	if q.conjunction != And && q.conjunction != Or {
		return nil, fmt.Errorf("unsupported conjunction: %s", q.conjunction)
	}
	for _, c := range q.conditions {
		if err := c.validate(); err != nil {
			return nil, err
		}
	}

	candidates, err := q.loadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("query load: %w", err)
	}

	var matched []*Entity
	for _, e := range candidates {
		if q.access && !e.Published {
			continue
		}
		if q.evaluate(e) {
			matched = append(matched, e)
		}
	}

	log.WithField("conjunction", q.conjunction).
		WithField("conditions", len(q.conditions)).
		WithField("matched", len(matched)).
		Debug("entity query")

	return matched, nil
}

func (q *Query) evaluate(e *Entity) bool {
	if len(q.conditions) == 0 {
		return true
	}

	doc := e.JSON()
	for _, c := range q.conditions {
		ok := c.matches(gjson.Get(doc, fieldPath(c.Field)))
		if q.conjunction == Or && ok {
			return true
		}
		if q.conjunction == And && !ok {
			return false
		}
	}
	return q.conjunction == And
}

func (c Condition) validate() error {
	switch c.Operator {
	case OpIn, OpNotIn:
		if len(c.Values) == 0 {
			return fmt.Errorf("condition on %s: %s requires at least one value", c.Field, c.Operator)
		}
	case OpEqual, OpNotEqual, OpGreater, OpLess, OpStartsWith, OpContains:
		if len(c.Values) != 1 {
			return fmt.Errorf("condition on %s: %s requires exactly one value", c.Field, c.Operator)
		}
	default:
		return fmt.Errorf("condition on %s: unsupported operator %q", c.Field, c.Operator)
	}
	return nil
}

// matches reports whether the field value satisfies the condition. Missing
// fields never match. List-valued fields match a positive operator when any
// item matches, and a negative operator when no item matches. Objects only
// support CONTAINS, which tests for a key.
func (c Condition) matches(field gjson.Result) bool {
	if !field.Exists() || field.Type == gjson.Null {
		return false
	}

	negative := c.Operator == OpNotIn || c.Operator == OpNotEqual
	if field.IsArray() {
		for _, item := range field.Array() {
			if c.matchesPositive(item.Value()) {
				return !negative
			}
		}
		return negative
	}
	if field.IsObject() && c.Operator != OpContains {
		return negative
	}

	return c.matchesPositive(field.Value()) != negative
}

// matchesPositive evaluates the operator without its negation.
func (c Condition) matchesPositive(value any) bool {
	operand := "="
	switch c.Operator {
	case OpGreater:
		operand = ">"
	case OpLess:
		operand = "<"
	case OpStartsWith:
		operand = "^"
	case OpContains:
		operand = "@"
	}

	// STARTS_WITH and CONTAINS compare the text of a number.
	if operand == "^" || operand == "@" {
		value = numberText(value)
	}

	for _, v := range c.Values {
		f := filters.Filter{Key: c.Field, Operand: operand, Target: fmt.Sprintf("%v", v)}
		if filters.Match(value, f) {
			return true
		}
	}
	return false
}

// numberText returns the decimal form of a numeric value. Other values are
// returned unchanged.
func numberText(value any) any {
	switch v := value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return value
}

// fieldPath maps a condition field name to a gjson path over the entity
// document.
func fieldPath(field string) string {
	if strings.HasPrefix(field, "fields.") {
		return field
	}
	head, _, _ := strings.Cut(field, ".")
	if rootKeys[head] {
		return field
	}
	return "fields." + field
}

func asList(values any) ([]any, bool) {
	switch v := values.(type) {
	case nil:
		return nil, true
	case []any:
		return v, true
	case []string:
		out := make([]any, 0, len(v))
		for _, s := range v {
			out = append(out, s)
		}
		return out, true
	case []int:
		out := make([]any, 0, len(v))
		for _, n := range v {
			out = append(out, n)
		}
		return out, true
	default:
		return []any{v}, false
	}
}
