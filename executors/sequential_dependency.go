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
//	id: "discount-calculation-pipeline"
//	pattern: "sequential-dependency"
//	configuration:
//	  stages:
//	    - stage: 1
//	      name: "Base Discount Calculation"
//	      rule:
//	        id: "base-discount"
//	        condition: "customerTier == 'GOLD' ? 0.15 : 0.05"
//	        message: "Base discount calculated"
//	      output-variable: "baseDiscount"
//	    - stage: 2
//	      name: "Regional Multiplier"
//	      depends-on: [1]
//	      rule:
//	        id: "regional-multiplier"
//	        condition: "region == 'US' ? baseDiscount * 1.2 : baseDiscount"
//	        message: "Regional multiplier applied"
//	      output-variable: "finalDiscount"

import (
	"fmt"

	"github.com/rulechain/rulechain/api/types"
)

func init() {
	Registry.Add(&SequentialDependencyExecutor{})
}

// SequentialDependencyExecutor runs a pipeline of stages strictly in
// declaration order, each stage's output becoming visible to the stages
// after it. The `depends-on` declarations feed the load time cycle check
// only; they never reorder execution.
type SequentialDependencyExecutor struct {
	BaseExecutor
}

func (x *SequentialDependencyExecutor) New() types.PatternExecutor {
	return &SequentialDependencyExecutor{}
}

func (x *SequentialDependencyExecutor) PatternName() string {
	return types.PatternSequentialDependency
}

func (x *SequentialDependencyExecutor) ValidateConfiguration(configuration types.Configuration) bool {
	if configuration == nil {
		return false
	}
	if !hasRequiredKey(configuration, "stages") {
		return false
	}
	stages, ok := asList(configuration["stages"])
	if !ok || len(stages) == 0 {
		return false
	}
	for _, stageObj := range stages {
		stage, ok := asMap(stageObj)
		if !ok {
			return false
		}
		if stageId(stage) == "" {
			return false
		}
		// A stage evaluates either its nested rule or its own condition.
		rule := getMapValue(stage, "rule")
		if rule != nil {
			if !hasRequiredKey(rule, "condition") {
				return false
			}
		} else if !hasRequiredKey(stage, "condition") {
			return false
		}
		if _, ok := stage["depends-on"]; ok {
			if _, isList := asList(stage["depends-on"]); !isList {
				return false
			}
		}
	}
	return true
}

func (x *SequentialDependencyExecutor) Execute(chain *types.RuleChain, configuration types.Configuration, ctx *types.ChainContext) (result types.RuleChainResult) {
	if !x.ValidateConfiguration(configuration) {
		return validationFailure(chain, x.PatternName(), "Invalid sequential dependency configuration")
	}

	rb := types.NewResultBuilder(chain.Id, x.PatternName()).RuleChainName(chain.Name)
	defer func() {
		if r := recover(); r != nil {
			result = rb.ErrorMessage(fmt.Sprintf("Execution error: %v", r)).Build()
		}
	}()

	stages := getListValue(configuration, "stages")
	for i, stageObj := range stages {
		stage, _ := asMap(stageObj)
		id := stageId(stage)
		stageName := getStringValue(stage, "name", id)

		ctx.SetCurrentStage(stageName)
		rb.AddToPath(stageName)

		ruleConfig := getMapValue(stage, "rule")
		if ruleConfig == nil {
			// Stage carries the condition inline.
			ruleConfig = stage
		}
		rule := ruleFromConfig(ruleConfig)

		// Stage rules evaluate generically so pipelines can compute numbers
		// and strings for later stages.
		value, err := x.evaluate(rule.Condition, ctx)
		var triggered bool
		switch {
		case err != nil:
			x.logger().Printf("stage %d (%s) evaluation failed: %v", i+1, stageName, err)
		case value == nil:
		default:
			// A boolean result keeps verdict semantics; any other value
			// counts as triggered.
			if verdict, isBool := value.(bool); isBool {
				triggered = verdict
			} else {
				triggered = true
			}
		}
		rb.RuleEvaluated(triggered)

		stageKey := "stage_" + id + "_result"
		ctx.AddStageResult(stageKey, value)
		rb.AddStageResult(stageKey, value)

		if outputVariable := getStringValue(stage, "output-variable", ""); outputVariable != "" {
			ctx.SetVariable(outputVariable, value)
			ctx.AddStageResult(outputVariable, value)
			rb.AddStageResult(outputVariable, value)
		}
	}

	return rb.FinalOutcome("SEQUENTIAL_PIPELINE_COMPLETED").Successful(true).Build()
}
