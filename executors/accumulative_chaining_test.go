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

package executors

import (
	"testing"

	"github.com/rulechain/rulechain/api/types"
	"github.com/rulechain/rulechain/test/assert"
)

func creditScoringConfig() types.Configuration {
	return types.Configuration{
		"accumulator-variable": "totalScore",
		"initial-value":        0,
		"accumulation-rules": []interface{}{
			map[string]interface{}{
				"id":        "credit-score-component",
				"condition": "creditScore >= 700 ? 25 : (creditScore >= 650 ? 15 : 10)",
				"message":   "Credit score component calculated",
				"weight":    1.0,
			},
			map[string]interface{}{
				"id":        "income-component",
				"condition": "annualIncome >= 80000 ? 20 : (annualIncome >= 60000 ? 15 : 10)",
				"message":   "Income component calculated",
				"weight":    1.5,
			},
		},
		"final-decision-rule": map[string]interface{}{
			"id":        "loan-decision",
			"condition": "totalScore >= 50 ? 'APPROVED' : (totalScore >= 35 ? 'CONDITIONAL' : 'DENIED')",
			"message":   "Final loan decision",
		},
	}
}

func TestAccumulativeChainingCreditScoring(t *testing.T) {
	chain := newChain("credit-scoring", types.PatternAccumulativeChaining, creditScoringConfig())
	result := execute(t, &AccumulativeChainingExecutor{}, chain, map[string]interface{}{
		"creditScore":  720,
		"annualIncome": 90000,
	})

	assert.True(t, result.Successful)
	// 25*1.0 + 20*1.5 = 55
	assert.Equal(t, "APPROVED", result.FinalOutcome)
	assert.Equal(t, "APPROVED", result.StageResult("finalDecision"))
	assert.Equal(t, 55.0, result.StageResult("totalScore_final"))
	assert.Equal(t, 25.0, result.StageResult("component_1_credit-score-component_score"))
	assert.Equal(t, 30.0, result.StageResult("component_2_income-component_weighted"))
	assert.Equal(t, 2, result.StageResult("total_rules_available"))
	assert.Equal(t, 2, result.StageResult("rules_selected_for_execution"))
}

func TestAccumulativeChainingWithoutFinalDecision(t *testing.T) {
	chain := newChain("plain-accumulation", types.PatternAccumulativeChaining, types.Configuration{
		"accumulator-variable": "score",
		"initial-value":        10,
		"accumulation-rules": []interface{}{
			map[string]interface{}{"id": "bonus", "condition": "5"},
		},
	})

	result := execute(t, &AccumulativeChainingExecutor{}, chain, nil)
	assert.True(t, result.Successful)
	assert.Equal(t, "ACCUMULATION_COMPLETED", result.FinalOutcome)
	assert.Equal(t, 10.0, result.StageResult("score_initial"))
	assert.Equal(t, 15.0, result.StageResult("score_final"))
}

func TestAccumulativeChainingAccumulatorVisibleToLaterRules(t *testing.T) {
	chain := newChain("running-total", types.PatternAccumulativeChaining, types.Configuration{
		"accumulation-rules": []interface{}{
			map[string]interface{}{"id": "first", "condition": "10"},
			map[string]interface{}{"id": "doubler", "condition": "totalScore"},
		},
	})

	result := execute(t, &AccumulativeChainingExecutor{}, chain, nil)
	assert.True(t, result.Successful)
	assert.Equal(t, 20.0, result.StageResult("totalScore_final"))
}

func TestAccumulativeChainingBooleanAndUnparseableComponents(t *testing.T) {
	chain := newChain("mixed-components", types.PatternAccumulativeChaining, types.Configuration{
		"accumulation-rules": []interface{}{
			map[string]interface{}{"id": "bool-hit", "condition": "true", "weight": 3.0},
			map[string]interface{}{"id": "bool-miss", "condition": "false", "weight": 3.0},
			map[string]interface{}{"id": "text", "condition": "'not-a-number'"},
		},
	})

	result := execute(t, &AccumulativeChainingExecutor{}, chain, nil)
	assert.True(t, result.Successful)
	assert.Equal(t, 3.0, result.StageResult("totalScore_final"))
}

func TestAccumulativeChainingWeightThresholdSelection(t *testing.T) {
	chain := newChain("weight-threshold", types.PatternAccumulativeChaining, types.Configuration{
		"rule-selection": map[string]interface{}{
			"strategy":         "weight-threshold",
			"weight-threshold": 0.7,
		},
		"accumulation-rules": []interface{}{
			map[string]interface{}{"id": "heavy", "condition": "10", "weight": 0.9},
			map[string]interface{}{"id": "light", "condition": "10", "weight": 0.3},
		},
	})

	result := execute(t, &AccumulativeChainingExecutor{}, chain, nil)
	assert.True(t, result.Successful)
	assert.Equal(t, 2, result.StageResult("total_rules_available"))
	assert.Equal(t, 1, result.StageResult("rules_selected_for_execution"))
	assert.Equal(t, 9.0, result.StageResult("totalScore_final"))
	assert.True(t, result.HasStageResult("component_1_heavy_score"))
	assert.False(t, result.HasStageResult("component_2_light_score"))
}

func TestAccumulativeChainingTopWeightedSelection(t *testing.T) {
	chain := newChain("top-weighted", types.PatternAccumulativeChaining, types.Configuration{
		"rule-selection": map[string]interface{}{
			"strategy":  "top-weighted",
			"max-rules": 2,
		},
		"accumulation-rules": []interface{}{
			map[string]interface{}{"id": "low", "condition": "1", "weight": 0.2},
			map[string]interface{}{"id": "high", "condition": "1", "weight": 0.9},
			map[string]interface{}{"id": "mid", "condition": "1", "weight": 0.5},
		},
	})

	result := execute(t, &AccumulativeChainingExecutor{}, chain, nil)
	assert.True(t, result.Successful)
	assert.Equal(t, 2, result.StageResult("rules_selected_for_execution"))
	// Highest weight executes first.
	assert.True(t, result.HasStageResult("component_1_high_score"))
	assert.True(t, result.HasStageResult("component_2_mid_score"))
}

func TestAccumulativeChainingPrioritySelection(t *testing.T) {
	chain := newChain("priority-based", types.PatternAccumulativeChaining, types.Configuration{
		"rule-selection": map[string]interface{}{
			"strategy":     "priority-based",
			"min-priority": "MEDIUM",
		},
		"accumulation-rules": []interface{}{
			map[string]interface{}{"id": "low-rule", "condition": "1", "priority": "LOW"},
			map[string]interface{}{"id": "medium-rule", "condition": "1", "priority": "MEDIUM"},
			map[string]interface{}{"id": "high-rule", "condition": "1", "priority": "HIGH"},
		},
	})

	result := execute(t, &AccumulativeChainingExecutor{}, chain, nil)
	assert.True(t, result.Successful)
	assert.Equal(t, 2, result.StageResult("rules_selected_for_execution"))
	// HIGH outranks MEDIUM in the execution order.
	assert.True(t, result.HasStageResult("component_1_high-rule_score"))
	assert.True(t, result.HasStageResult("component_2_medium-rule_score"))
	assert.False(t, result.HasStageResult("component_3_low-rule_score"))
}

func TestAccumulativeChainingDynamicThresholdSelection(t *testing.T) {
	chain := newChain("dynamic-threshold", types.PatternAccumulativeChaining, types.Configuration{
		"rule-selection": map[string]interface{}{
			"strategy":             "dynamic-threshold",
			"threshold-expression": "strictMode ? 0.8 : 0.2",
		},
		"accumulation-rules": []interface{}{
			map[string]interface{}{"id": "heavy", "condition": "10", "weight": 0.9},
			map[string]interface{}{"id": "light", "condition": "10", "weight": 0.4},
		},
	})

	strict := execute(t, &AccumulativeChainingExecutor{}, chain, map[string]interface{}{"strictMode": true})
	assert.Equal(t, 1, strict.StageResult("rules_selected_for_execution"))

	relaxed := execute(t, &AccumulativeChainingExecutor{}, chain, map[string]interface{}{"strictMode": false})
	assert.Equal(t, 2, relaxed.StageResult("rules_selected_for_execution"))
}

func TestAccumulativeChainingValidation(t *testing.T) {
	executor := &AccumulativeChainingExecutor{}

	assert.False(t, executor.ValidateConfiguration(nil))
	assert.False(t, executor.ValidateConfiguration(types.Configuration{
		"accumulation-rules": []interface{}{},
	}))
	assert.False(t, executor.ValidateConfiguration(types.Configuration{
		"initial-value":      "not-a-number",
		"accumulation-rules": []interface{}{map[string]interface{}{"condition": "1"}},
	}))
	assert.False(t, executor.ValidateConfiguration(types.Configuration{
		"accumulation-rules": []interface{}{
			map[string]interface{}{"condition": "1", "weight": "heavy"},
		},
	}))
	assert.False(t, executor.ValidateConfiguration(types.Configuration{
		"accumulation-rules": []interface{}{
			map[string]interface{}{"condition": "1", "priority": "URGENT"},
		},
	}))
	assert.False(t, executor.ValidateConfiguration(types.Configuration{
		"accumulation-rules": []interface{}{map[string]interface{}{"condition": "1"}},
		"rule-selection": map[string]interface{}{
			"strategy": "weight-threshold",
		},
	}))
	assert.False(t, executor.ValidateConfiguration(types.Configuration{
		"accumulation-rules": []interface{}{map[string]interface{}{"condition": "1"}},
		"rule-selection": map[string]interface{}{
			"strategy": "nearest-neighbor",
		},
	}))
	assert.True(t, executor.ValidateConfiguration(creditScoringConfig()))
}
