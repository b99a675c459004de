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

// Config defines the configuration for the rule chain engine.
type Config struct {
	// Evaluator is the expression evaluation backend used for every rule
	// condition and router expression. If not configured, the engine wires
	// the default expr backend.
	Evaluator ExpressionEvaluator
	// Logger is the logging interface, defaulting to `DefaultLogger()`.
	Logger Logger
	// Properties are global properties in key-value format. They are merged
	// below the chain context variables for every evaluation; a context
	// variable with the same name wins.
	Properties Properties
	// OnChainEnd is an optional callback invoked with the result of every
	// chain execution, after the result is finalized.
	OnChainEnd func(chain *RuleChain, result RuleChainResult)
}

// NewConfig creates a new Config with default values and applies the
// provided options.
func NewConfig(opts ...Option) Config {
	c := &Config{
		Logger:     DefaultLogger(),
		Properties: make(Properties),
	}

	for _, opt := range opts {
		_ = opt(c)
	}
	return *c
}
