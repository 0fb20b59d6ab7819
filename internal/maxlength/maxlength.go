// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package maxlength counts, labels and enforces character limits on plain
// and HTML text. Characters are user-perceived grapheme clusters, so an
// emoji with modifiers counts once.
package maxlength

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/clipperhouse/uax29/v2/graphemes"
	"golang.org/x/net/html"
)

// DefaultLabel is the counter label used when none is configured.
const DefaultLabel = "Content limited to @limit characters, remaining: <strong>@remaining</strong>"

// Settings are the per-field limit settings.
type Settings struct {
	Limit   int    `json:"limit" yaml:"limit"`
	Label   string `json:"label,omitempty" yaml:"label"`
	Enforce bool   `json:"enforce" yaml:"enforce"`
	HTML    bool   `json:"html" yaml:"html"`
}

// Result is the outcome of applying Settings to a value.
type Result struct {
	Value     string `json:"value"`
	Count     int    `json:"count"`
	Remaining int    `json:"remaining"`
	Label     string `json:"label"`
	Truncated bool   `json:"truncated"`
}

// Apply counts value, truncating it first when the limit is enforced.
func (s Settings) Apply(value string) (Result, error) {
	r := Result{Value: value}

	if s.Enforce && s.Limit > 0 {
		truncated, err := Truncate(value, s.Limit, s.HTML)
		if err != nil {
			return r, err
		}
		r.Truncated = truncated != value
		r.Value = truncated
	}

	count, err := Count(r.Value, s.HTML)
	if err != nil {
		return r, err
	}

	label := s.Label
	if label == "" {
		label = DefaultLabel
	}
	r.Count = count
	r.Remaining = s.Limit - count
	r.Label = Label(label, s.Limit, count)
	return r, nil
}

// Count returns the number of characters in text. In HTML mode markup is
// ignored and entities count as the character they encode.
func Count(text string, isHTML bool) (int, error) {
	if !isHTML {
		return countGraphemes(text), nil
	}

	n := 0
	z := html.NewTokenizer(strings.NewReader(text))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return n, nil
			}
			return n, z.Err()
		case html.TextToken:
			n += countGraphemes(string(z.Text()))
		}
	}
}

// Label fills the @limit, @remaining and @count placeholders of template.
// Remaining goes negative once count exceeds limit.
func Label(template string, limit, count int) string {
	return strings.NewReplacer(
		"@limit", strconv.Itoa(limit),
		"@remaining", strconv.Itoa(limit-count),
		"@count", strconv.Itoa(count),
	).Replace(template)
}

// Truncate cuts text to at most limit characters. In HTML mode tags before
// the cut are kept, elements after the cut are dropped and any element still
// open at the cut is closed.
func Truncate(text string, limit int, isHTML bool) (string, error) {
	if limit < 0 {
		limit = 0
	}
	if !isHTML {
		return cutGraphemes(text, limit), nil
	}

	var (
		b         strings.Builder
		open      []string
		remaining = limit
	)

	z := html.NewTokenizer(strings.NewReader(text))
tokens:
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				break tokens
			}
			return "", z.Err()
		case html.TextToken:
			if remaining == 0 {
				break tokens
			}
			t := string(z.Text())
			n := countGraphemes(t)
			if n > remaining {
				b.WriteString(html.EscapeString(cutGraphemes(t, remaining)))
				remaining = 0
				break tokens
			}
			b.WriteString(html.EscapeString(t))
			remaining -= n
		case html.StartTagToken:
			if remaining == 0 {
				break tokens
			}
			tok := z.Token()
			b.WriteString(tok.String())
			if !isVoid(tok.Data) {
				open = append(open, tok.Data)
			}
		case html.SelfClosingTagToken:
			if remaining == 0 {
				break tokens
			}
			b.WriteString(z.Token().String())
		case html.EndTagToken:
			tok := z.Token()
			for i := len(open) - 1; i >= 0; i-- {
				if open[i] == tok.Data {
					for j := len(open) - 1; j >= i; j-- {
						b.WriteString("</" + open[j] + ">")
					}
					open = open[:i]
					break
				}
			}
		case html.CommentToken, html.DoctypeToken:
			if remaining > 0 {
				b.WriteString(z.Token().String())
			}
		}
	}

	for i := len(open) - 1; i >= 0; i-- {
		b.WriteString("</" + open[i] + ">")
	}
	return b.String(), nil
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true,
	"img": true, "input": true, "link": true, "meta": true, "source": true,
	"track": true, "wbr": true,
}

func isVoid(tag string) bool {
	return voidElements[tag]
}

func countGraphemes(s string) int {
	n := 0
	iter := graphemes.FromString(s)
	for iter.Next() {
		n++
	}
	return n
}

func cutGraphemes(s string, limit int) string {
	if limit == 0 {
		return ""
	}
	n := 0
	iter := graphemes.FromString(s)
	for iter.Next() {
		n++
		if n == limit {
			return s[:iter.End()]
		}
	}
	return s
}
