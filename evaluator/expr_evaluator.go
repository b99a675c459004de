/*
 * Copyright 2025 The RuleChain Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package evaluator provides expression evaluation backends for the rule
// chain engine. The default backend compiles expressions with expr-lang;
// a goja backed JavaScript backend is available as an alternative.
package evaluator

import (
	"errors"
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/rulechain/rulechain/api/types"
)

// ErrEmptyExpression is returned when an expression is blank.
var ErrEmptyExpression = errors.New("expression can not be empty")

// ExprEvaluator evaluates expressions with the expr-lang engine. Compiled
// programs are cached by expression text, so hot rules compile once.
// Unknown variables are allowed and evaluate to nil, matching partial fact
// sets at runtime.
type ExprEvaluator struct {
	sync.RWMutex
	programs map[string]*vm.Program
}

var _ types.ExpressionEvaluator = (*ExprEvaluator)(nil)

// NewExprEvaluator creates an evaluator with an empty program cache.
func NewExprEvaluator() *ExprEvaluator {
	return &ExprEvaluator{
		programs: make(map[string]*vm.Program),
	}
}

// Evaluate compiles (or reuses) the expression and runs it against vars,
// returning the raw result.
func (e *ExprEvaluator) Evaluate(expression string, vars map[string]interface{}) (interface{}, error) {
	program, err := e.program(expression)
	if err != nil {
		return nil, err
	}
	out, err := vm.Run(program, vars)
	if err != nil {
		return nil, fmt.Errorf("evaluate %q: %w", expression, err)
	}
	return out, nil
}

// EvaluateBool evaluates the expression and requires a boolean result.
func (e *ExprEvaluator) EvaluateBool(expression string, vars map[string]interface{}) (bool, error) {
	out, err := e.Evaluate(expression, vars)
	if err != nil {
		return false, err
	}
	result, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("expression %q returned non-boolean result %v", expression, out)
	}
	return result, nil
}

func (e *ExprEvaluator) program(expression string) (*vm.Program, error) {
	if expression == "" {
		return nil, ErrEmptyExpression
	}
	e.RLock()
	program, ok := e.programs[expression]
	e.RUnlock()
	if ok {
		return program, nil
	}

	program, err := expr.Compile(expression, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", expression, err)
	}
	e.Lock()
	e.programs[expression] = program
	e.Unlock()
	return program, nil
}
