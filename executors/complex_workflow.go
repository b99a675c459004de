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
//	id: "trade-processing-workflow"
//	pattern: "complex-workflow"
//	configuration:
//	  stages:
//	    - stage: "pre-validation"
//	      name: "Pre-Validation Stage"
//	      rules:
//	        - condition: "tradeType != nil && notionalAmount != nil"
//	          message: "Basic trade data validation"
//	      failure-action: "terminate"
//	    - stage: "risk-assessment"
//	      name: "Risk Assessment Stage"
//	      depends-on: ["pre-validation"]
//	      rules:
//	        - condition: "notionalAmount > 1000000 ? 'HIGH' : 'MEDIUM'"
//	          message: "Risk level assessment"
//	      output-variable: "riskLevel"
//	    - stage: "approval"
//	      name: "Approval Stage"
//	      depends-on: ["risk-assessment"]
//	      conditional-execution:
//	        condition: "riskLevel == 'HIGH'"
//	        on-true:
//	          rules:
//	            - condition: "true"
//	              message: "Senior approval required"
//	        on-false:
//	          rules:
//	            - condition: "true"
//	              message: "Standard approval applied"

import (
	"fmt"
	"strings"

	"github.com/rulechain/rulechain/api/types"
	"github.com/rulechain/rulechain/utils/str"
)

func init() {
	Registry.Add(&ComplexWorkflowExecutor{})
}

// workflowStage is the parsed form of one stage entry.
type workflowStage struct {
	id                   string
	name                 string
	dependencies         []string
	rules                []map[string]interface{}
	failureAction        string
	outputVariable       string
	conditionalExecution map[string]interface{}
}

// ComplexWorkflowExecutor runs multi-stage workflows with declared
// dependencies between stages. Stages execute in topological order of the
// depends-on graph; stages with no ordering constraint keep their
// declaration order so repeated executions are deterministic.
type ComplexWorkflowExecutor struct {
	BaseExecutor
}

func (x *ComplexWorkflowExecutor) New() types.PatternExecutor {
	return &ComplexWorkflowExecutor{}
}

func (x *ComplexWorkflowExecutor) PatternName() string {
	return types.PatternComplexWorkflow
}

func (x *ComplexWorkflowExecutor) ValidateConfiguration(configuration types.Configuration) bool {
	if configuration == nil {
		return false
	}
	if !hasRequiredKey(configuration, "stages") {
		return false
	}
	stagesConfig, ok := asList(configuration["stages"])
	if !ok || len(stagesConfig) == 0 {
		return false
	}

	stageIds := make(map[string]bool)
	for _, stageObj := range stagesConfig {
		stageConfig, ok := asMap(stageObj)
		if !ok {
			return false
		}
		if !x.validateStage(stageConfig, stageIds) {
			return false
		}
	}
	return true
}

func (x *ComplexWorkflowExecutor) validateStage(stageConfig map[string]interface{}, stageIds map[string]bool) bool {
	id := stageId(stageConfig)
	if strings.TrimSpace(id) == "" {
		return false
	}
	if stageIds[id] {
		// Duplicate stage ids make the dependency graph ambiguous.
		return false
	}
	stageIds[id] = true

	if _, declared := stageConfig["failure-action"]; declared {
		failureAction := getStringValue(stageConfig, "failure-action", "continue")
		if failureAction != "terminate" && failureAction != "continue" {
			return false
		}
	}
	if _, declared := stageConfig["depends-on"]; declared {
		if _, ok := asList(stageConfig["depends-on"]); !ok {
			return false
		}
	}
	if _, declared := stageConfig["rules"]; declared {
		rules, ok := asList(stageConfig["rules"])
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
	if _, declared := stageConfig["conditional-execution"]; declared {
		conditionalExecution := getMapValue(stageConfig, "conditional-execution")
		if conditionalExecution == nil || !hasRequiredKey(conditionalExecution, "condition") {
			return false
		}
	}
	return true
}

func (x *ComplexWorkflowExecutor) Execute(chain *types.RuleChain, configuration types.Configuration, ctx *types.ChainContext) (result types.RuleChainResult) {
	if !x.ValidateConfiguration(configuration) {
		return validationFailure(chain, x.PatternName(), "Invalid complex workflow configuration")
	}

	rb := types.NewResultBuilder(chain.Id, x.PatternName()).RuleChainName(chain.Name)
	defer func() {
		if r := recover(); r != nil {
			result = rb.ErrorMessage(fmt.Sprintf("Execution error: %v", r)).Build()
		}
	}()

	stagesConfig := getListValue(configuration, "stages")
	stages, order := x.buildStages(stagesConfig)

	executionOrder, err := executionOrder(stages, order)
	if err != nil {
		return rb.ErrorMessage(err.Error()).Build()
	}

	for _, id := range executionOrder {
		stage := stages[id]
		if !x.executeWorkflowStage(stage, ctx, rb) {
			if stage.failureAction == "terminate" {
				return rb.ErrorMessage("Stage '" + id + "' failed with terminate action").Build()
			}
			x.logger().Printf("stage %s failed, continuing execution", id)
		}
	}

	return rb.FinalOutcome("COMPLEX_WORKFLOW_COMPLETED").Successful(true).Build()
}

func (x *ComplexWorkflowExecutor) buildStages(stagesConfig []interface{}) (map[string]*workflowStage, []string) {
	stages := make(map[string]*workflowStage)
	var order []string

	for _, stageObj := range stagesConfig {
		stageConfig, ok := asMap(stageObj)
		if !ok {
			continue
		}

		stage := &workflowStage{
			id:             stageId(stageConfig),
			failureAction:  getStringValue(stageConfig, "failure-action", "continue"),
			outputVariable: getStringValue(stageConfig, "output-variable", ""),
		}
		stage.name = getStringValue(stageConfig, "name", stage.id)

		for _, dep := range getListValue(stageConfig, "depends-on") {
			stage.dependencies = append(stage.dependencies, str.ToString(dep))
		}
		for _, ruleObj := range getListValue(stageConfig, "rules") {
			if ruleConfig, ok := asMap(ruleObj); ok {
				stage.rules = append(stage.rules, ruleConfig)
			}
		}
		stage.conditionalExecution = getMapValue(stageConfig, "conditional-execution")

		stages[stage.id] = stage
		order = append(order, stage.id)
	}

	return stages, order
}

// executionOrder topologically sorts the stages. Visiting stages in
// declaration order keeps the result stable for graphs with more than one
// valid ordering. Dependencies on unknown stage ids are ignored.
func executionOrder(stages map[string]*workflowStage, declarationOrder []string) ([]string, error) {
	var sorted []string
	visited := make(map[string]bool)
	visiting := make(map[string]bool)

	var visit func(id string) error
	visit = func(id string) error {
		if visiting[id] {
			return fmt.Errorf("circular dependency detected involving stage: %s", id)
		}
		if visited[id] {
			return nil
		}
		visiting[id] = true
		for _, dependency := range stages[id].dependencies {
			if _, known := stages[dependency]; known {
				if err := visit(dependency); err != nil {
					return err
				}
			}
		}
		delete(visiting, id)
		visited[id] = true
		sorted = append(sorted, id)
		return nil
	}

	for _, id := range declarationOrder {
		if err := visit(id); err != nil {
			return nil, err
		}
	}
	return sorted, nil
}

func (x *ComplexWorkflowExecutor) executeWorkflowStage(stage *workflowStage, ctx *types.ChainContext, rb *types.ResultBuilder) bool {
	ctx.SetCurrentStage(stage.name)

	if stage.conditionalExecution != nil {
		return x.executeConditionalStage(stage, ctx, rb)
	}
	return x.executeStandardStage(stage, ctx, rb)
}

// executeConditionalStage picks the on-true or on-false branch based on the
// stage condition. A branch with no rules is a successful no-op.
func (x *ComplexWorkflowExecutor) executeConditionalStage(stage *workflowStage, ctx *types.ChainContext, rb *types.ResultBuilder) bool {
	condition := getStringValue(stage.conditionalExecution, "condition", "true")

	conditionResult, err := x.evaluateBool(condition, ctx)
	if err != nil {
		x.logger().Printf("conditional stage %s condition failed: %v", stage.name, err)
		return false
	}

	branchKey := "on-false"
	if conditionResult {
		branchKey = "on-true"
	}

	branch := getMapValue(stage.conditionalExecution, branchKey)
	if branch == nil {
		return true
	}
	branchRules := getListValue(branch, "rules")
	if len(branchRules) == 0 {
		return true
	}

	allPassed := true
	for _, ruleObj := range branchRules {
		ruleConfig, ok := asMap(ruleObj)
		if !ok {
			continue
		}
		rule := ruleFromConfig(ruleConfig)
		if !x.executeRule(rule, ctx, rb) {
			allPassed = false
			if stage.failureAction == "terminate" {
				return false
			}
		}
	}
	return allPassed
}

func (x *ComplexWorkflowExecutor) executeStandardStage(stage *workflowStage, ctx *types.ChainContext, rb *types.ResultBuilder) bool {
	if len(stage.rules) == 0 {
		return true
	}

	allPassed := true
	var stageResult interface{}

	for _, ruleConfig := range stage.rules {
		rule := ruleFromConfig(ruleConfig)

		var triggered bool
		if stage.outputVariable == "" {
			triggered = x.executeRule(rule, ctx, rb)
		} else {
			// Output stages produce values, not verdicts: evaluate
			// generically and let the last triggered rule's result feed the
			// output variable. A boolean result keeps verdict semantics.
			rb.AddToPath(rule.Name)
			value, err := x.evaluate(rule.Condition, ctx)
			switch {
			case err != nil:
				x.logger().Printf("rule %s in stage %s failed: %v", rule.Name, stage.name, err)
			case value == nil:
			default:
				if verdict, isBool := value.(bool); isBool {
					triggered = verdict
				} else {
					triggered = true
				}
				if triggered {
					stageResult = value
				}
			}
			rb.RuleEvaluated(triggered)
		}

		if !triggered {
			allPassed = false
			if stage.failureAction == "terminate" {
				x.logger().Printf("rule %s failed in stage %s with terminate action", rule.Name, stage.name)
				return false
			}
		}
	}

	if stage.outputVariable != "" && stageResult != nil {
		ctx.AddStageResult(stage.outputVariable, stageResult)
		ctx.SetVariable(stage.outputVariable, stageResult)
		rb.AddStageResult(stage.outputVariable, stageResult)
	}

	stageResultKey := "stage_" + stage.id + "_result"
	summary := "SUCCESS"
	if !allPassed {
		summary = "PARTIAL_SUCCESS"
	}
	ctx.AddStageResult(stageResultKey, summary)
	rb.AddStageResult(stageResultKey, summary)

	return allPassed
}
