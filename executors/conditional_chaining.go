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
//	id: "high-value-processing"
//	pattern: "conditional-chaining"
//	configuration:
//	  trigger-rule:
//	    id: "high-value-check"
//	    condition: "customerType == 'PREMIUM' && transactionAmount > 100000"
//	    message: "High-value customer transaction detected"
//	  conditional-rules:
//	    on-trigger:
//	      - id: "enhanced-due-diligence"
//	        condition: "accountAge >= 3"
//	        message: "Enhanced due diligence check passed"
//	    on-no-trigger:
//	      - id: "standard-processing"
//	        condition: "true"
//	        message: "Standard processing applied"

import (
	"fmt"

	"github.com/rulechain/rulechain/api/types"
)

func init() {
	Registry.Add(&ConditionalChainingExecutor{})
}

// ConditionalChainingExecutor executes a trigger rule and branches into one
// of two rule lists depending on the trigger's boolean outcome.
type ConditionalChainingExecutor struct {
	BaseExecutor
}

func (x *ConditionalChainingExecutor) New() types.PatternExecutor {
	return &ConditionalChainingExecutor{}
}

func (x *ConditionalChainingExecutor) PatternName() string {
	return types.PatternConditionalChaining
}

func (x *ConditionalChainingExecutor) ValidateConfiguration(configuration types.Configuration) bool {
	if configuration == nil {
		return false
	}
	if !hasRequiredKey(configuration, "trigger-rule") {
		return false
	}
	triggerRule := getMapValue(configuration, "trigger-rule")
	if triggerRule == nil || !hasRequiredKey(triggerRule, "condition") {
		return false
	}
	if !hasRequiredKey(configuration, "conditional-rules") {
		return false
	}
	conditionalRules := getMapValue(configuration, "conditional-rules")
	if conditionalRules == nil {
		return false
	}
	// Branch lists are optional, but a declared branch must be a well
	// formed rule list.
	for _, branch := range []string{"on-trigger", "on-no-trigger"} {
		if _, ok := conditionalRules[branch]; !ok {
			continue
		}
		rules, ok := asList(conditionalRules[branch])
		if !ok {
			return false
		}
		for _, ruleObj := range rules {
			ruleConfig, ok := asMap(ruleObj)
			if !ok || !hasRequiredKey(ruleConfig, "condition") {
				return false
			}
		}
	}
	return true
}

func (x *ConditionalChainingExecutor) Execute(chain *types.RuleChain, configuration types.Configuration, ctx *types.ChainContext) (result types.RuleChainResult) {
	if !x.ValidateConfiguration(configuration) {
		return validationFailure(chain, x.PatternName(), "Invalid conditional chaining configuration")
	}

	rb := types.NewResultBuilder(chain.Id, x.PatternName()).RuleChainName(chain.Name)
	defer func() {
		if r := recover(); r != nil {
			result = rb.ErrorMessage(fmt.Sprintf("Execution error: %v", r)).Build()
		}
	}()

	ctx.SetCurrentStage("trigger-evaluation")
	triggerRule := ruleFromConfig(getMapValue(configuration, "trigger-rule"))
	triggered := x.executeRule(triggerRule, ctx, rb)

	ctx.AddStageResult("triggerResult", triggered)
	rb.AddStageResult("triggerResult", triggered)

	branch := "on-no-trigger"
	outcome := "NO_TRIGGER_PATH_COMPLETED"
	if triggered {
		branch = "on-trigger"
		outcome = "TRIGGERED_PATH_COMPLETED"
	}

	ctx.SetCurrentStage(branch + "-execution")
	conditionalRules := getMapValue(configuration, "conditional-rules")
	for _, ruleObj := range getListValue(conditionalRules, branch) {
		ruleConfig, ok := asMap(ruleObj)
		if !ok {
			continue
		}
		rule := ruleFromConfig(ruleConfig)
		ruleTriggered := x.executeRule(rule, ctx, rb)

		resultKey := "conditional_rule_" + rule.Name + "_result"
		ctx.AddStageResult(resultKey, ruleTriggered)
		rb.AddStageResult(resultKey, ruleTriggered)
	}

	return rb.FinalOutcome(outcome).Successful(true).Build()
}
