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

func conditionalChainingConfig() types.Configuration {
	return types.Configuration{
		"trigger-rule": map[string]interface{}{
			"id":        "high-value-check",
			"condition": "customerType == 'PREMIUM' && transactionAmount > 100000",
			"message":   "High-value customer transaction detected",
		},
		"conditional-rules": map[string]interface{}{
			"on-trigger": []interface{}{
				map[string]interface{}{
					"id":        "enhanced-due-diligence",
					"condition": "accountAge >= 3",
					"message":   "Enhanced due diligence check passed",
				},
			},
			"on-no-trigger": []interface{}{
				map[string]interface{}{
					"id":        "standard-processing",
					"condition": "true",
					"message":   "Standard processing applied",
				},
			},
		},
	}
}

func TestConditionalChainingTriggeredPath(t *testing.T) {
	chain := newChain("high-value-processing", types.PatternConditionalChaining, conditionalChainingConfig())
	result := execute(t, &ConditionalChainingExecutor{}, chain, map[string]interface{}{
		"customerType":      "PREMIUM",
		"transactionAmount": 150000,
		"accountAge":        5,
	})

	assert.True(t, result.Successful)
	assert.Equal(t, "TRIGGERED_PATH_COMPLETED", result.FinalOutcome)
	assert.Equal(t, true, result.StageResult("triggerResult"))
	assert.Equal(t, true, result.StageResult("conditional_rule_enhanced-due-diligence_result"))
	assert.False(t, result.HasStageResult("conditional_rule_standard-processing_result"))
	assert.Equal(t, 2, result.ExecutedRules)
	assert.Equal(t, 2, result.TriggeredRules)
}

func TestConditionalChainingNoTriggerPath(t *testing.T) {
	chain := newChain("high-value-processing", types.PatternConditionalChaining, conditionalChainingConfig())
	result := execute(t, &ConditionalChainingExecutor{}, chain, map[string]interface{}{
		"customerType":      "STANDARD",
		"transactionAmount": 5000,
		"accountAge":        1,
	})

	assert.True(t, result.Successful)
	assert.Equal(t, "NO_TRIGGER_PATH_COMPLETED", result.FinalOutcome)
	assert.Equal(t, false, result.StageResult("triggerResult"))
	assert.Equal(t, true, result.StageResult("conditional_rule_standard-processing_result"))
	assert.False(t, result.HasStageResult("conditional_rule_enhanced-due-diligence_result"))
}

func TestConditionalChainingMissingBranchIsNoOp(t *testing.T) {
	chain := newChain("trigger-only", types.PatternConditionalChaining, types.Configuration{
		"trigger-rule": map[string]interface{}{
			"id":        "check",
			"condition": "amount > 10",
		},
		"conditional-rules": map[string]interface{}{
			"on-trigger": []interface{}{
				map[string]interface{}{"id": "followup", "condition": "true"},
			},
		},
	})

	result := execute(t, &ConditionalChainingExecutor{}, chain, map[string]interface{}{"amount": 5})
	assert.True(t, result.Successful)
	assert.Equal(t, "NO_TRIGGER_PATH_COMPLETED", result.FinalOutcome)
	assert.Equal(t, 1, result.ExecutedRules)
}

func TestConditionalChainingRuleFailureIsNotFatal(t *testing.T) {
	chain := newChain("failing-branch", types.PatternConditionalChaining, types.Configuration{
		"trigger-rule": map[string]interface{}{
			"id":        "check",
			"condition": "true",
		},
		"conditional-rules": map[string]interface{}{
			"on-trigger": []interface{}{
				map[string]interface{}{"id": "broken", "condition": "missingVar > 10"},
				map[string]interface{}{"id": "healthy", "condition": "true"},
			},
		},
	})

	result := execute(t, &ConditionalChainingExecutor{}, chain, map[string]interface{}{})
	assert.True(t, result.Successful)
	assert.Equal(t, "TRIGGERED_PATH_COMPLETED", result.FinalOutcome)
	assert.Equal(t, false, result.StageResult("conditional_rule_broken_result"))
	assert.Equal(t, true, result.StageResult("conditional_rule_healthy_result"))
	assert.Equal(t, 3, result.ExecutedRules)
	assert.Equal(t, 2, result.TriggeredRules)
}

func TestConditionalChainingValidation(t *testing.T) {
	executor := &ConditionalChainingExecutor{}

	assert.False(t, executor.ValidateConfiguration(nil))
	assert.False(t, executor.ValidateConfiguration(types.Configuration{}))
	assert.False(t, executor.ValidateConfiguration(types.Configuration{
		"trigger-rule": map[string]interface{}{"id": "no-condition"},
		"conditional-rules": map[string]interface{}{
			"on-trigger": []interface{}{},
		},
	}))
	assert.False(t, executor.ValidateConfiguration(types.Configuration{
		"trigger-rule": map[string]interface{}{"condition": "true"},
		"conditional-rules": map[string]interface{}{
			"on-trigger": "not-a-list",
		},
	}))
	assert.True(t, executor.ValidateConfiguration(conditionalChainingConfig()))

	// Validation is a pure check: the same configuration yields the same
	// verdict when validated again.
	assert.True(t, executor.ValidateConfiguration(conditionalChainingConfig()))
}

func TestConditionalChainingInvalidConfigurationRejected(t *testing.T) {
	chain := newChain("invalid", types.PatternConditionalChaining, types.Configuration{
		"trigger-rule": map[string]interface{}{"id": "no-condition"},
	})
	result := execute(t, &ConditionalChainingExecutor{}, chain, nil)
	assert.False(t, result.Successful)
	assert.NotEqual(t, "", result.ErrorMessage)
	assert.Equal(t, 0, result.ExecutedRules)
}
