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

// Package engine dispatches rule chains to their pattern executors and
// validates chain definitions before execution.
package engine

import (
	"fmt"

	"github.com/rulechain/rulechain/api/types"
	"github.com/rulechain/rulechain/evaluator"
)

// Engine executes rule chains by dispatching on their pattern tag.
type Engine struct {
	Config   types.Config
	registry *ExecutorRegistry
}

// New creates an engine from the given options. When no evaluator is
// configured the expr-based evaluator is used.
func New(opts ...types.Option) *Engine {
	config := types.NewConfig(opts...)
	if config.Evaluator == nil {
		config.Evaluator = evaluator.NewExprEvaluator()
	}
	return &Engine{
		Config:   config,
		registry: Registry,
	}
}

// NewWithRegistry creates an engine backed by a custom executor registry.
func NewWithRegistry(registry *ExecutorRegistry, opts ...types.Option) *Engine {
	e := New(opts...)
	e.registry = registry
	return e
}

// ValidateChain validates a chain definition against this engine's
// registry, so custom-registered patterns validate the same way they
// execute.
func (e *Engine) ValidateChain(chain *types.RuleChain) error {
	return e.registry.ValidateChain(chain)
}

// ValidateChains validates a chain collection against this engine's
// registry.
func (e *Engine) ValidateChains(chains []types.RuleChain) error {
	return e.registry.ValidateChains(chains)
}

// ExecuteChain runs one rule chain against the given facts and returns the
// execution result. Execution never returns an error: every failure mode is
// reported through the result's ErrorMessage so callers always get the
// execution metadata collected up to the failure.
func (e *Engine) ExecuteChain(chain *types.RuleChain, facts map[string]interface{}) types.RuleChainResult {
	result := e.executeChain(chain, facts)
	if e.Config.OnChainEnd != nil {
		e.Config.OnChainEnd(chain, result)
	}
	return result
}

func (e *Engine) executeChain(chain *types.RuleChain, facts map[string]interface{}) types.RuleChainResult {
	if chain == nil {
		return types.NewResultBuilder("", "").
			ErrorMessage("rule chain is nil").Build()
	}

	logger := types.NewLogger(e.Config.Logger)

	if !chain.Enabled {
		logger.Printf("rule chain %s is disabled, skipping", chain.Id)
		return types.NewResultBuilder(chain.Id, chain.Pattern).
			RuleChainName(chain.Name).
			FinalOutcome("SKIPPED").
			Successful(true).Build()
	}

	if !e.registry.Contains(chain.Pattern) {
		return types.NewResultBuilder(chain.Id, chain.Pattern).
			RuleChainName(chain.Name).
			ErrorMessage(fmt.Sprintf("unsupported pattern: %s", chain.Pattern)).Build()
	}

	executor, err := e.registry.New(chain.Pattern, e.Config)
	if err != nil {
		return types.NewResultBuilder(chain.Id, chain.Pattern).
			RuleChainName(chain.Name).
			ErrorMessage(err.Error()).Build()
	}

	logger.Printf("executing rule chain %s with pattern %s", chain.Id, chain.Pattern)

	ctx := types.NewChainContext(facts)
	return executor.Execute(chain, chain.Configuration, ctx)
}

// ExecuteChains runs multiple rule chains in priority order (highest
// priority first, declaration order within equal priorities) and returns
// their results keyed by chain id.
func (e *Engine) ExecuteChains(chains []types.RuleChain, facts map[string]interface{}) map[string]types.RuleChainResult {
	results := make(map[string]types.RuleChainResult, len(chains))
	for _, chain := range sortByPriority(chains) {
		chain := chain
		results[chain.Id] = e.ExecuteChain(&chain, facts)
	}
	return results
}
