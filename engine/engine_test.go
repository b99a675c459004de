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
	"testing"

	"github.com/rulechain/rulechain/api/types"
	"github.com/rulechain/rulechain/test/assert"
)

func routingChain(id string) *types.RuleChain {
	return &types.RuleChain{
		Id:      id,
		Name:    "Risk Based Routing",
		Pattern: types.PatternResultBasedRouting,
		Enabled: true,
		Configuration: types.Configuration{
			"router-rule": map[string]interface{}{
				"id":        "risk-assessment",
				"condition": "riskScore > 70 ? 'HIGH_RISK' : 'LOW_RISK'",
			},
			"routes": map[string]interface{}{
				"HIGH_RISK": map[string]interface{}{
					"rules": []interface{}{
						map[string]interface{}{"id": "manager-approval", "condition": "true"},
					},
				},
			},
		},
	}
}

func TestEngineExecuteChain(t *testing.T) {
	e := New()
	result := e.ExecuteChain(routingChain("risk-routing"), map[string]interface{}{"riskScore": 85})

	assert.True(t, result.Successful)
	assert.Equal(t, "ROUTE_HIGH_RISK_COMPLETED", result.FinalOutcome)
	assert.Equal(t, "risk-routing", result.RuleChainId)
	assert.Equal(t, types.PatternResultBasedRouting, result.PatternName)
	assert.NotEqual(t, "", result.ExecutionId)
}

func TestEngineExecuteChainIsDeterministic(t *testing.T) {
	e := New()
	facts := map[string]interface{}{"riskScore": 85}

	first := e.ExecuteChain(routingChain("risk-routing"), facts)
	for i := 0; i < 10; i++ {
		again := e.ExecuteChain(routingChain("risk-routing"), facts)
		assert.Equal(t, first.FinalOutcome, again.FinalOutcome)
		assert.Equal(t, first.ExecutionPath, again.ExecutionPath)
		assert.Equal(t, first.ExecutedRules, again.ExecutedRules)
		assert.Equal(t, first.TriggeredRules, again.TriggeredRules)
	}
}

func TestEngineNilChain(t *testing.T) {
	e := New()
	result := e.ExecuteChain(nil, nil)
	assert.False(t, result.Successful)
	assert.Equal(t, "rule chain is nil", result.ErrorMessage)
}

func TestEngineDisabledChainIsSkipped(t *testing.T) {
	e := New()
	chain := routingChain("disabled-chain")
	chain.Enabled = false

	result := e.ExecuteChain(chain, nil)
	assert.True(t, result.Successful)
	assert.Equal(t, "SKIPPED", result.FinalOutcome)
	assert.Equal(t, 0, result.ExecutedRules)
}

func TestEngineUnknownPattern(t *testing.T) {
	e := New()
	chain := routingChain("unknown-pattern")
	chain.Pattern = "round-robin"

	result := e.ExecuteChain(chain, nil)
	assert.False(t, result.Successful)
	assert.Equal(t, "unsupported pattern: round-robin", result.ErrorMessage)
}

func TestEngineOnChainEndCallback(t *testing.T) {
	var observed []string
	e := New(types.WithOnChainEnd(func(chain *types.RuleChain, result types.RuleChainResult) {
		observed = append(observed, result.FinalOutcome)
	}))

	e.ExecuteChain(routingChain("risk-routing"), map[string]interface{}{"riskScore": 85})
	disabled := routingChain("disabled")
	disabled.Enabled = false
	e.ExecuteChain(disabled, nil)

	assert.Equal(t, []string{"ROUTE_HIGH_RISK_COMPLETED", "SKIPPED"}, observed)
}

func TestEngineProperties(t *testing.T) {
	e := New(types.WithProperties(types.Properties{"threshold": 70}))
	chain := &types.RuleChain{
		Id:      "property-chain",
		Name:    "Property Chain",
		Pattern: types.PatternConditionalChaining,
		Enabled: true,
		Configuration: types.Configuration{
			"trigger-rule": map[string]interface{}{
				"id":        "uses-property",
				"condition": "score > threshold",
			},
			"conditional-rules": map[string]interface{}{},
		},
	}

	result := e.ExecuteChain(chain, map[string]interface{}{"score": 80})
	assert.True(t, result.Successful)
	assert.Equal(t, "TRIGGERED_PATH_COMPLETED", result.FinalOutcome)
}

func TestEngineExecuteChainsPriorityOrder(t *testing.T) {
	var order []string
	e := New(types.WithOnChainEnd(func(chain *types.RuleChain, result types.RuleChainResult) {
		order = append(order, chain.Id)
	}))

	low := routingChain("low-priority")
	low.Priority = 1
	high := routingChain("high-priority")
	high.Priority = 100

	results := e.ExecuteChains([]types.RuleChain{*low, *high}, map[string]interface{}{"riskScore": 85})
	assert.Equal(t, 2, len(results))
	assert.Equal(t, []string{"high-priority", "low-priority"}, order)
}
