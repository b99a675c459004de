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

// Rule chain configuration example:
//
//	id: "customer-processing-tree"
//	pattern: "fluent-builder"
//	configuration:
//	  root-rule:
//	    id: "customer-type-check"
//	    condition: "customerType == 'VIP' || customerType == 'PREMIUM'"
//	    message: "High-tier customer detected"
//	    on-success:
//	      rule:
//	        id: "high-value-check"
//	        condition: "transactionAmount > 100000"
//	        message: "High-value transaction detected"
//	        on-success:
//	          rule:
//	            id: "final-approval"
//	            condition: "true"
//	            message: "Final approval granted"
//	    on-failure:
//	      rule:
//	        id: "basic-validation"
//	        condition: "transactionAmount > 0"
//	        message: "Basic validation check"

import (
	"fmt"

	"github.com/rulechain/rulechain/api/types"
)

func init() {
	Registry.Add(&FluentBuilderExecutor{})
}

// FluentBuilderExecutor walks a binary decision tree of rules. Each rule's
// boolean result selects the on-success or on-failure branch; the chain's
// outcome is SUCCESS when the last rule on the walked path triggered and
// FAILURE otherwise. A missing branch ends the walk at the current rule.
type FluentBuilderExecutor struct {
	BaseExecutor
}

func (x *FluentBuilderExecutor) New() types.PatternExecutor {
	return &FluentBuilderExecutor{}
}

func (x *FluentBuilderExecutor) PatternName() string {
	return types.PatternFluentBuilder
}

func (x *FluentBuilderExecutor) ValidateConfiguration(configuration types.Configuration) bool {
	if configuration == nil {
		return false
	}
	if !hasRequiredKey(configuration, "root-rule") {
		return false
	}
	rootRule := getMapValue(configuration, "root-rule")
	if rootRule == nil {
		return false
	}
	return x.validateRuleTree(rootRule)
}

func (x *FluentBuilderExecutor) validateRuleTree(ruleConfig map[string]interface{}) bool {
	if !hasRequiredKey(ruleConfig, "condition") {
		return false
	}
	for _, branchKey := range []string{"on-success", "on-failure"} {
		branchValue, declared := ruleConfig[branchKey]
		if !declared {
			continue
		}
		branch, ok := asMap(branchValue)
		if !ok {
			return false
		}
		childRule := getMapValue(branch, "rule")
		if childRule == nil || !x.validateRuleTree(childRule) {
			return false
		}
	}
	return true
}

func (x *FluentBuilderExecutor) Execute(chain *types.RuleChain, configuration types.Configuration, ctx *types.ChainContext) (result types.RuleChainResult) {
	if !x.ValidateConfiguration(configuration) {
		return validationFailure(chain, x.PatternName(), "Invalid fluent builder configuration")
	}

	rb := types.NewResultBuilder(chain.Id, x.PatternName()).RuleChainName(chain.Name)
	defer func() {
		if r := recover(); r != nil {
			result = rb.ErrorMessage(fmt.Sprintf("Execution error: %v", r)).Build()
		}
	}()

	ctx.SetCurrentStage("decision-tree-execution")

	rootRule := getMapValue(configuration, "root-rule")
	lastTriggered := x.executeRuleTree(rootRule, ctx, rb)

	outcome := "FAILURE"
	if lastTriggered {
		outcome = "SUCCESS"
	}
	return rb.FinalOutcome(outcome).Successful(true).Build()
}

// executeRuleTree evaluates one node of the decision tree and recurses into
// the branch selected by the result. The return value is the boolean result
// of the deepest rule evaluated on this path.
func (x *FluentBuilderExecutor) executeRuleTree(ruleConfig map[string]interface{}, ctx *types.ChainContext, rb *types.ResultBuilder) bool {
	rule := ruleFromConfig(ruleConfig)
	triggered := x.executeRule(rule, ctx, rb)

	resultKey := "fluent_rule_" + rule.Id + "_result"
	ctx.AddStageResult(resultKey, triggered)
	rb.AddStageResult(resultKey, triggered)

	branchKey := "on-failure"
	if triggered {
		branchKey = "on-success"
	}

	branch := getMapValue(ruleConfig, branchKey)
	if branch == nil {
		return triggered
	}
	childRule := getMapValue(branch, "rule")
	if childRule == nil {
		return triggered
	}
	return x.executeRuleTree(childRule, ctx, rb)
}
