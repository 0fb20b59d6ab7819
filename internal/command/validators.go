// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/blazygo/internal/entity"
)

// GlobalFlagsValidator checks the global flags as a whole, after each has been
// validated on its own.
func GlobalFlagsValidator(ctx context.Context, c *cli.Command) error {
	if c.String("output") == "raw" && c.String("filter") != "" {
		return errors.New("--filter does not apply to --output raw")
	}
	return nil
}

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value any) error {
	if strings.HasPrefix(value.(string), "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

// PositiveValidator rejects ints below one.
func PositiveValidator(value any) error {
	if value.(int) < 1 {
		return errors.New("must be greater than zero")
	}
	return nil
}

func OutputValidator(value any) error {
	var validOutputFlagValues = []string{"text", "json", "raw", "yaml"}
	if !slices.Contains(validOutputFlagValues, value.(string)) {
		return fmt.Errorf("must be one of %v", validOutputFlagValues)
	}
	return nil
}

// ConjunctionValidator accepts AND and OR in any case.
func ConjunctionValidator(value any) error {
	valid := []string{entity.And, entity.Or}
	if !slices.Contains(valid, strings.ToUpper(value.(string))) {
		return fmt.Errorf("must be one of %v", valid)
	}
	return nil
}

// OperatorValidator accepts the entity query operators. Empty picks the
// default per value.
func OperatorValidator(value any) error {
	valid := []string{
		entity.OpIn, entity.OpNotIn, entity.OpEqual, entity.OpNotEqual,
		entity.OpGreater, entity.OpLess, entity.OpStartsWith, entity.OpContains,
	}
	op := strings.ToUpper(value.(string))
	if op == "" || slices.Contains(valid, op) {
		return nil
	}
	return fmt.Errorf("must be one of %v", valid)
}
