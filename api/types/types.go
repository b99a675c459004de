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

package types

import (
	"sync"
)

// Pattern tags for the supported rule chain execution strategies.
// A rule chain's `pattern` field must match one of these, otherwise the
// engine rejects the chain without executing it.
const (
	PatternConditionalChaining  = "conditional-chaining"
	PatternSequentialDependency = "sequential-dependency"
	PatternResultBasedRouting   = "result-based-routing"
	PatternAccumulativeChaining = "accumulative-chaining"
	PatternComplexWorkflow      = "complex-workflow"
	PatternFluentBuilder        = "fluent-builder"
)

// Configuration is the untyped, string keyed configuration carried by a rule
// chain. Its shape is pattern specific; executors decode the parts they own.
type Configuration map[string]interface{}

// Copy returns a shallow copy of the configuration.
func (c Configuration) Copy() Configuration {
	copied := make(Configuration, len(c))
	for k, v := range c {
		copied[k] = v
	}
	return copied
}

// RuleChain is the inbound contract from the configuration loader: one chain
// definition with a pattern tag and a pattern specific configuration map.
type RuleChain struct {
	// Id is the unique identifier of the chain.
	Id string `json:"id" yaml:"id"`
	// Name is a human readable chain name.
	Name string `json:"name" yaml:"name"`
	// Description documents the chain's intent.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// Pattern selects the execution strategy, one of the Pattern* constants.
	Pattern string `json:"pattern" yaml:"pattern"`
	// Enabled gates execution. Disabled chains are skipped, not failed.
	Enabled bool `json:"enabled" yaml:"enabled"`
	// Priority orders chains when a caller runs several of them.
	Priority int `json:"priority,omitempty" yaml:"priority,omitempty"`
	// Configuration is the pattern specific configuration map.
	Configuration Configuration `json:"configuration" yaml:"configuration"`
}

// Rule is the minimal rule representation evaluated inside a chain. Rules are
// synthesized on the fly from chain step configuration and are immutable
// value objects.
type Rule struct {
	// Id identifies the rule inside its chain.
	Id string
	// Name is the display name, defaulting to Id.
	Name string
	// Condition is the expression handed to the expression evaluator.
	Condition string
	// Message describes what a triggered rule means.
	Message string
}

// ExpressionEvaluator is the external expression evaluation capability.
// The engine never inspects the expression grammar; it only requires that
// boolean evaluations yield a bool and generic evaluations yield some value.
// Implementations must not perform blocking I/O.
type ExpressionEvaluator interface {
	// Evaluate evaluates an expression against the given variables and
	// returns the raw result.
	Evaluate(expression string, vars map[string]interface{}) (interface{}, error)
	// EvaluateBool evaluates an expression expected to produce a boolean.
	EvaluateBool(expression string, vars map[string]interface{}) (bool, error)
}

// PatternExecutor is the contract implemented by every chain pattern.
// Executors are registered as prototypes; the engine creates a fresh instance
// via New and initializes it with the engine Config.
type PatternExecutor interface {
	// New creates a new instance of the executor.
	New() PatternExecutor
	// PatternName returns the dispatch key for this executor.
	PatternName() string
	// Init initializes the executor with the engine configuration.
	Init(config Config) error
	// ValidateConfiguration structurally checks a chain configuration.
	// It returns false, never an error, on any structural defect.
	ValidateConfiguration(configuration Configuration) bool
	// Execute runs the pattern against the context and returns a result.
	// It must not panic or return errors out of band: every failure is
	// represented in the returned RuleChainResult.
	Execute(chain *RuleChain, configuration Configuration, ctx *ChainContext) RuleChainResult
}

// SafeExecutorSlice is a thread safe collection of executor prototypes,
// used by executor packages to register themselves at init time.
type SafeExecutorSlice struct {
	executors []PatternExecutor
	sync.Mutex
}

// Add appends executor prototypes to the slice.
func (p *SafeExecutorSlice) Add(executors ...PatternExecutor) {
	p.Lock()
	defer p.Unlock()
	p.executors = append(p.executors, executors...)
}

// Executors returns the registered executor prototypes.
func (p *SafeExecutorSlice) Executors() []PatternExecutor {
	p.Lock()
	defer p.Unlock()
	return p.executors
}

// Properties are global key value properties made visible to expressions
// alongside the chain context variables.
type Properties map[string]interface{}
