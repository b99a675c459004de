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

package engine

import (
	"fmt"
	"sync"

	"github.com/rulechain/rulechain/api/types"
	"github.com/rulechain/rulechain/executors"
)

// Registry is the default executor registry, pre-populated with the
// executors registered through the executors package.
var Registry = new(ExecutorRegistry)

func init() {
	for _, executor := range executors.Registry.Executors() {
		_ = Registry.Register(executor)
	}
}

// ExecutorRegistry holds pattern executor prototypes keyed by pattern name.
// New executor instances are stamped out from the prototypes, so registered
// executors are never mutated by chain execution.
type ExecutorRegistry struct {
	executors map[string]types.PatternExecutor
	sync.RWMutex
}

// Register adds an executor prototype. Registering a pattern name twice is
// an error.
func (r *ExecutorRegistry) Register(executor types.PatternExecutor) error {
	r.Lock()
	defer r.Unlock()
	if r.executors == nil {
		r.executors = make(map[string]types.PatternExecutor)
	}
	if _, ok := r.executors[executor.PatternName()]; ok {
		return fmt.Errorf("executor already registered for pattern: %s", executor.PatternName())
	}
	r.executors[executor.PatternName()] = executor
	return nil
}

// Unregister removes an executor prototype by pattern name.
func (r *ExecutorRegistry) Unregister(patternName string) bool {
	r.Lock()
	defer r.Unlock()
	if _, ok := r.executors[patternName]; ok {
		delete(r.executors, patternName)
		return true
	}
	return false
}

// New creates an initialized executor instance for the given pattern.
func (r *ExecutorRegistry) New(patternName string, config types.Config) (types.PatternExecutor, error) {
	r.RLock()
	prototype, ok := r.executors[patternName]
	r.RUnlock()
	if !ok {
		return nil, fmt.Errorf("executor not found for pattern: %s", patternName)
	}
	executor := prototype.New()
	if err := executor.Init(config); err != nil {
		return nil, err
	}
	return executor, nil
}

// Contains reports whether a pattern name has a registered executor.
func (r *ExecutorRegistry) Contains(patternName string) bool {
	r.RLock()
	defer r.RUnlock()
	_, ok := r.executors[patternName]
	return ok
}

// PatternNames returns the registered pattern names.
func (r *ExecutorRegistry) PatternNames() []string {
	r.RLock()
	defer r.RUnlock()
	var names []string
	for name := range r.executors {
		names = append(names, name)
	}
	return names
}
