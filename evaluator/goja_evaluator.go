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

package evaluator

import (
	"fmt"
	"sync"

	"github.com/dop251/goja"

	"github.com/rulechain/rulechain/api/types"
)

// GojaEvaluator evaluates expressions as JavaScript with the goja engine.
// Runtimes are pooled and reused; variables set for one evaluation are
// cleared before the runtime returns to the pool.
type GojaEvaluator struct {
	vmPool sync.Pool
}

var _ types.ExpressionEvaluator = (*GojaEvaluator)(nil)

// NewGojaEvaluator creates a JavaScript expression evaluator.
func NewGojaEvaluator() *GojaEvaluator {
	return &GojaEvaluator{
		vmPool: sync.Pool{
			New: func() interface{} {
				return goja.New()
			},
		},
	}
}

// Evaluate runs the expression as a JavaScript program with vars bound as
// globals, returning the exported result.
func (e *GojaEvaluator) Evaluate(expression string, vars map[string]interface{}) (interface{}, error) {
	if expression == "" {
		return nil, ErrEmptyExpression
	}
	vm := e.vmPool.Get().(*goja.Runtime)
	defer func() {
		for k := range vars {
			_ = vm.GlobalObject().Delete(k)
		}
		e.vmPool.Put(vm)
	}()

	for k, v := range vars {
		if err := vm.Set(k, v); err != nil {
			return nil, fmt.Errorf("bind %q: %w", k, err)
		}
	}
	value, err := vm.RunString(expression)
	if err != nil {
		return nil, fmt.Errorf("evaluate %q: %w", expression, err)
	}
	if value == nil || goja.IsUndefined(value) || goja.IsNull(value) {
		return nil, nil
	}
	return value.Export(), nil
}

// EvaluateBool evaluates the expression and requires a boolean result.
func (e *GojaEvaluator) EvaluateBool(expression string, vars map[string]interface{}) (bool, error) {
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
