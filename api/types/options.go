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

// Option is a function type that modifies the Config.
type Option func(*Config) error

// WithEvaluator is an option that sets the expression evaluation backend
// of the Config.
func WithEvaluator(evaluator ExpressionEvaluator) Option {
	return func(c *Config) error {
		c.Evaluator = evaluator
		return nil
	}
}

// WithLogger is an option that sets the logger of the Config.
func WithLogger(logger Logger) Option {
	return func(c *Config) error {
		c.Logger = logger
		return nil
	}
}

// WithProperties is an option that sets the global properties of the Config.
func WithProperties(properties Properties) Option {
	return func(c *Config) error {
		c.Properties = properties
		return nil
	}
}

// WithOnChainEnd is an option that sets the chain end callback of the Config.
func WithOnChainEnd(onChainEnd func(chain *RuleChain, result RuleChainResult)) Option {
	return func(c *Config) error {
		c.OnChainEnd = onChainEnd
		return nil
	}
}
