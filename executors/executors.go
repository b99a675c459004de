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

// Package executors implements the six rule chain execution patterns:
// conditional-chaining, sequential-dependency, result-based-routing,
// accumulative-chaining, complex-workflow and fluent-builder.
//
// Each executor is registered with the Registry at init time, allowing the
// engine to dispatch on a chain's pattern tag.
package executors

import (
	"github.com/rulechain/rulechain/api/types"
)

// Registry collects the executor prototypes of this package.
var Registry = new(types.SafeExecutorSlice)
