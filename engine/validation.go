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
	"sort"

	"github.com/rulechain/rulechain/api/types"
	"github.com/rulechain/rulechain/utils/str"
)

// ValidateChains validates a chain collection against the default registry.
func ValidateChains(chains []types.RuleChain) error {
	return Registry.ValidateChains(chains)
}

// ValidateChain validates one chain definition against the default registry.
func ValidateChain(chain *types.RuleChain) error {
	return Registry.ValidateChain(chain)
}

// ValidateChains validates a chain collection at load time. Beyond
// per-chain validation it rejects duplicate chain ids.
func (r *ExecutorRegistry) ValidateChains(chains []types.RuleChain) error {
	seen := make(map[string]bool, len(chains))
	for i := range chains {
		chain := &chains[i]
		if err := r.ValidateChain(chain); err != nil {
			return err
		}
		if seen[chain.Id] {
			return fmt.Errorf("duplicate rule chain id: %s", chain.Id)
		}
		seen[chain.Id] = true
	}
	return nil
}

// ValidateChain validates one chain definition: required fields, a pattern
// tag known to this registry, a pattern-valid configuration, and an acyclic
// stage dependency graph for the stage-based patterns. Validation does not
// evaluate any expression, so validating is side-effect free and running it
// twice yields the same verdict.
func (r *ExecutorRegistry) ValidateChain(chain *types.RuleChain) error {
	if chain == nil {
		return fmt.Errorf("rule chain is nil")
	}
	if chain.Id == "" {
		return fmt.Errorf("rule chain id is required")
	}
	if chain.Name == "" {
		return fmt.Errorf("rule chain %s: name is required", chain.Id)
	}
	if chain.Pattern == "" {
		return fmt.Errorf("rule chain %s: pattern is required", chain.Id)
	}
	if !r.Contains(chain.Pattern) {
		return fmt.Errorf("rule chain %s: unknown pattern: %s", chain.Id, chain.Pattern)
	}
	if len(chain.Configuration) == 0 {
		return fmt.Errorf("rule chain %s: configuration is required", chain.Id)
	}

	executor, err := r.New(chain.Pattern, types.NewConfig())
	if err != nil {
		return fmt.Errorf("rule chain %s: %w", chain.Id, err)
	}
	if !executor.ValidateConfiguration(chain.Configuration) {
		return fmt.Errorf("rule chain %s: invalid %s configuration", chain.Id, chain.Pattern)
	}

	switch chain.Pattern {
	case types.PatternSequentialDependency, types.PatternComplexWorkflow:
		if stages, ok := chain.Configuration["stages"].([]interface{}); ok {
			if stageId, found := DetectCircularDependency(stages); found {
				return fmt.Errorf("rule chain %s: circular dependency detected involving stage: %s", chain.Id, stageId)
			}
		}
	}
	return nil
}

// DetectCircularDependency checks the depends-on graph of a stage list and
// reports a stage involved in a cycle, if any. References to stage ids that
// do not exist are treated as absent edges, not cycles.
func DetectCircularDependency(stages []interface{}) (string, bool) {
	deps := make(map[string][]string, len(stages))
	var order []string

	for _, stageObj := range stages {
		stageConfig, ok := stageObj.(map[string]interface{})
		if !ok {
			if typed, isTyped := stageObj.(types.Configuration); isTyped {
				stageConfig = typed
			} else {
				continue
			}
		}
		id := validationStageId(stageConfig)
		if id == "" {
			continue
		}
		order = append(order, id)
		if dependsOn, ok := stageConfig["depends-on"].([]interface{}); ok {
			for _, dep := range dependsOn {
				deps[id] = append(deps[id], str.ToString(dep))
			}
		} else {
			deps[id] = nil
		}
	}

	visited := make(map[string]bool, len(order))
	recursionStack := make(map[string]bool, len(order))

	var visit func(id string) (string, bool)
	visit = func(id string) (string, bool) {
		if recursionStack[id] {
			return id, true
		}
		if visited[id] {
			return "", false
		}
		visited[id] = true
		recursionStack[id] = true
		for _, dep := range deps[id] {
			if _, known := deps[dep]; !known {
				continue
			}
			if cycleStage, found := visit(dep); found {
				return cycleStage, true
			}
		}
		recursionStack[id] = false
		return "", false
	}

	for _, id := range order {
		if cycleStage, found := visit(id); found {
			return cycleStage, true
		}
	}
	return "", false
}

func validationStageId(stageConfig map[string]interface{}) string {
	if id, ok := stageConfig["stage"]; ok {
		return str.ToString(id)
	}
	if id, ok := stageConfig["rule-id"]; ok {
		return str.ToString(id)
	}
	return ""
}

// sortByPriority orders chains for batch execution: highest priority first,
// with declaration order preserved among equal priorities.
func sortByPriority(chains []types.RuleChain) []types.RuleChain {
	sorted := make([]types.RuleChain, len(chains))
	copy(sorted, chains)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})
	return sorted
}
