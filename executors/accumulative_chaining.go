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
//	id: "credit-scoring"
//	pattern: "accumulative-chaining"
//	configuration:
//	  accumulator-variable: "totalScore"
//	  initial-value: 0
//	  accumulation-rules:
//	    - id: "credit-score-component"
//	      condition: "creditScore >= 700 ? 25 : (creditScore >= 650 ? 15 : 10)"
//	      message: "Credit score component calculated"
//	      weight: 1.0
//	    - id: "income-component"
//	      condition: "annualIncome >= 80000 ? 20 : (annualIncome >= 60000 ? 15 : 10)"
//	      message: "Income component calculated"
//	      weight: 1.5
//	  rule-selection:
//	    strategy: "weight-threshold"
//	    weight-threshold: 1.0
//	  final-decision-rule:
//	    id: "loan-decision"
//	    condition: "totalScore >= 60 ? 'APPROVED' : (totalScore >= 40 ? 'CONDITIONAL' : 'DENIED')"
//	    message: "Final loan decision"

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rulechain/rulechain/api/types"
	"github.com/rulechain/rulechain/utils/str"
)

func init() {
	Registry.Add(&AccumulativeChainingExecutor{})
}

var priorityOrder = map[string]int{
	"HIGH":   3,
	"MEDIUM": 2,
	"LOW":    1,
}

// AccumulativeChainingExecutor builds up a numeric score across multiple
// weighted rules, then optionally derives a final decision from the
// accumulated value. The accumulator variable is visible to every rule
// condition, so later components can react to the running total.
type AccumulativeChainingExecutor struct {
	BaseExecutor
}

func (x *AccumulativeChainingExecutor) New() types.PatternExecutor {
	return &AccumulativeChainingExecutor{}
}

func (x *AccumulativeChainingExecutor) PatternName() string {
	return types.PatternAccumulativeChaining
}

func (x *AccumulativeChainingExecutor) ValidateConfiguration(configuration types.Configuration) bool {
	if configuration == nil {
		return false
	}
	if strings.TrimSpace(getStringValue(configuration, "accumulator-variable", "totalScore")) == "" {
		return false
	}
	if initialValue, declared := configuration["initial-value"]; declared {
		if !str.IsNumber(initialValue) {
			return false
		}
	}
	if !hasRequiredKey(configuration, "accumulation-rules") {
		return false
	}
	accumulationRules, ok := asList(configuration["accumulation-rules"])
	if !ok || len(accumulationRules) == 0 {
		return false
	}
	for _, ruleObj := range accumulationRules {
		ruleConfig, ok := asMap(ruleObj)
		if !ok || !x.validateAccumulationRule(ruleConfig) {
			return false
		}
	}
	if _, declared := configuration["final-decision-rule"]; declared {
		finalDecisionConfig := getMapValue(configuration, "final-decision-rule")
		if finalDecisionConfig == nil || !hasRequiredKey(finalDecisionConfig, "condition") {
			return false
		}
	}
	if _, declared := configuration["rule-selection"]; declared {
		if !x.validateRuleSelection(configuration) {
			return false
		}
	}
	return true
}

func (x *AccumulativeChainingExecutor) validateAccumulationRule(ruleConfig map[string]interface{}) bool {
	if !hasRequiredKey(ruleConfig, "condition") {
		return false
	}
	if weight, declared := ruleConfig["weight"]; declared {
		if !str.IsNumber(weight) {
			return false
		}
	}
	if _, declared := ruleConfig["priority"]; declared {
		priority := strings.ToUpper(getStringValue(ruleConfig, "priority", "LOW"))
		if _, known := priorityOrder[priority]; !known {
			return false
		}
	}
	return true
}

func (x *AccumulativeChainingExecutor) validateRuleSelection(configuration types.Configuration) bool {
	ruleSelection := getMapValue(configuration, "rule-selection")
	if ruleSelection == nil {
		return false
	}
	switch strings.ToLower(getStringValue(ruleSelection, "strategy", "all")) {
	case "weight-threshold":
		threshold, declared := ruleSelection["weight-threshold"]
		if !declared || !str.IsNumber(threshold) {
			return false
		}
	case "top-weighted":
		if _, declared := ruleSelection["max-rules"]; declared {
			if getIntValue(ruleSelection, "max-rules", 0) <= 0 {
				return false
			}
		}
	case "priority-based":
		if _, declared := ruleSelection["min-priority"]; declared {
			minPriority := strings.ToUpper(getStringValue(ruleSelection, "min-priority", "LOW"))
			if _, known := priorityOrder[minPriority]; !known {
				return false
			}
		}
	case "dynamic-threshold":
		if !hasRequiredKey(ruleSelection, "threshold-expression") {
			return false
		}
	case "all":
	default:
		return false
	}
	return true
}

func (x *AccumulativeChainingExecutor) Execute(chain *types.RuleChain, configuration types.Configuration, ctx *types.ChainContext) (result types.RuleChainResult) {
	if !x.ValidateConfiguration(configuration) {
		return validationFailure(chain, x.PatternName(), "Invalid accumulative chaining configuration")
	}

	rb := types.NewResultBuilder(chain.Id, x.PatternName()).RuleChainName(chain.Name)
	defer func() {
		if r := recover(); r != nil {
			result = rb.ErrorMessage(fmt.Sprintf("Execution error: %v", r)).Build()
		}
	}()

	accumulatorVariable := getStringValue(configuration, "accumulator-variable", "totalScore")
	initialValue := getFloatValue(configuration, "initial-value", 0)

	ctx.AddStageResult(accumulatorVariable, initialValue)
	ctx.SetVariable(accumulatorVariable, initialValue)
	rb.AddStageResult(accumulatorVariable+"_initial", initialValue)

	currentScore := x.executeAccumulationRules(configuration, ctx, rb, accumulatorVariable, initialValue)

	ctx.AddStageResult(accumulatorVariable, currentScore)
	ctx.SetVariable(accumulatorVariable, currentScore)
	rb.AddStageResult(accumulatorVariable+"_final", currentScore)

	finalDecision, decided := x.executeFinalDecisionRule(configuration, ctx, rb)

	outcome := "ACCUMULATION_COMPLETED"
	if decided {
		outcome = finalDecision
	}
	rb.FinalOutcome(outcome)
	rb.AddStageResult("finalDecision", finalDecision)

	return rb.Successful(true).Build()
}

func (x *AccumulativeChainingExecutor) executeAccumulationRules(configuration types.Configuration, ctx *types.ChainContext, rb *types.ResultBuilder, accumulatorVariable string, currentScore float64) float64 {
	accumulationRules := getListValue(configuration, "accumulation-rules")
	if len(accumulationRules) == 0 {
		return currentScore
	}

	selectedRules := x.selectRulesForExecution(configuration, accumulationRules, ctx)

	ctx.SetCurrentStage("accumulation-rules-execution")

	rb.AddStageResult("total_rules_available", len(accumulationRules))
	rb.AddStageResult("rules_selected_for_execution", len(selectedRules))
	ctx.AddStageResult("total_rules_available", len(accumulationRules))
	ctx.AddStageResult("rules_selected_for_execution", len(selectedRules))

	for i, ruleObj := range selectedRules {
		ruleConfig, ok := asMap(ruleObj)
		if !ok {
			continue
		}
		currentScore = x.executeAccumulationRule(ruleConfig, i+1, ctx, rb, accumulatorVariable, currentScore)
	}

	return currentScore
}

// selectRulesForExecution applies the configured selection strategy. With no
// rule-selection block every rule runs, preserving the original behaviour of
// chains written before selection existed.
func (x *AccumulativeChainingExecutor) selectRulesForExecution(configuration types.Configuration, allRules []interface{}, ctx *types.ChainContext) []interface{} {
	ruleSelection := getMapValue(configuration, "rule-selection")
	if ruleSelection == nil {
		return allRules
	}

	strategy := strings.ToLower(getStringValue(ruleSelection, "strategy", "all"))
	switch strategy {
	case "weight-threshold":
		return selectByWeightThreshold(allRules, getFloatValue(ruleSelection, "weight-threshold", 0))
	case "top-weighted":
		return selectTopWeighted(allRules, getIntValue(ruleSelection, "max-rules", len(allRules)))
	case "priority-based":
		return selectByPriority(allRules, getStringValue(ruleSelection, "min-priority", "LOW"))
	case "dynamic-threshold":
		return x.selectByDynamicThreshold(allRules, ruleSelection, ctx)
	default:
		return allRules
	}
}

func ruleWeight(ruleObj interface{}) float64 {
	if ruleConfig, ok := asMap(ruleObj); ok {
		return getFloatValue(ruleConfig, "weight", 1.0)
	}
	return 1.0
}

func rulePriority(ruleObj interface{}) int {
	if ruleConfig, ok := asMap(ruleObj); ok {
		priority := strings.ToUpper(getStringValue(ruleConfig, "priority", "LOW"))
		if value, known := priorityOrder[priority]; known {
			return value
		}
	}
	return 1
}

func selectByWeightThreshold(allRules []interface{}, threshold float64) []interface{} {
	var selected []interface{}
	for _, ruleObj := range allRules {
		if ruleWeight(ruleObj) >= threshold {
			selected = append(selected, ruleObj)
		}
	}
	return selected
}

func selectTopWeighted(allRules []interface{}, maxRules int) []interface{} {
	sorted := make([]interface{}, len(allRules))
	copy(sorted, allRules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return ruleWeight(sorted[i]) > ruleWeight(sorted[j])
	})
	if maxRules > len(sorted) {
		maxRules = len(sorted)
	}
	return sorted[:maxRules]
}

func selectByPriority(allRules []interface{}, minPriority string) []interface{} {
	minValue, known := priorityOrder[strings.ToUpper(minPriority)]
	if !known {
		minValue = 1
	}

	var selected []interface{}
	for _, ruleObj := range allRules {
		if rulePriority(ruleObj) >= minValue {
			selected = append(selected, ruleObj)
		}
	}

	// Highest priority first, then heaviest weight.
	sort.SliceStable(selected, func(i, j int) bool {
		if rulePriority(selected[i]) != rulePriority(selected[j]) {
			return rulePriority(selected[i]) > rulePriority(selected[j])
		}
		return ruleWeight(selected[i]) > ruleWeight(selected[j])
	})
	return selected
}

func (x *AccumulativeChainingExecutor) selectByDynamicThreshold(allRules []interface{}, ruleSelection map[string]interface{}, ctx *types.ChainContext) []interface{} {
	thresholdExpression := getStringValue(ruleSelection, "threshold-expression", "0.5")

	thresholdResult, err := x.evaluate(thresholdExpression, ctx)
	if err != nil {
		x.logger().Printf("dynamic threshold expression failed, executing all rules: %v", err)
		return allRules
	}
	threshold, ok := str.ToFloat64(thresholdResult)
	if !ok {
		threshold = 0.5
	}

	return selectByWeightThreshold(allRules, threshold)
}

// executeAccumulationRule evaluates one component and folds its weighted
// score into the accumulator. Numeric results contribute their value,
// booleans contribute 1 or 0, anything else is parsed through its string
// form and contributes 0 when unparseable. Evaluation failure leaves the
// accumulator unchanged.
func (x *AccumulativeChainingExecutor) executeAccumulationRule(ruleConfig map[string]interface{}, ruleIndex int, ctx *types.ChainContext, rb *types.ResultBuilder, accumulatorVariable string, currentScore float64) float64 {
	accumulationRule := ruleFromConfig(ruleConfig)
	weight := getFloatValue(ruleConfig, "weight", 1.0)

	componentResult, err := x.evaluate(accumulationRule.Condition, ctx)
	if err != nil {
		x.logger().Printf("accumulation rule %d (%s) failed: %v", ruleIndex, accumulationRule.Name, err)
		return currentScore
	}

	var componentScore float64
	switch value := componentResult.(type) {
	case bool:
		if value {
			componentScore = 1.0
		}
	default:
		if number, ok := str.ToFloat64(componentResult); ok {
			componentScore = number
		}
	}

	weightedScore := componentScore * weight
	newScore := currentScore + weightedScore

	// Execute as a rule for tracking purposes.
	x.executeRule(accumulationRule, ctx, rb)

	componentKey := fmt.Sprintf("component_%d_%s", ruleIndex, accumulationRule.Name)
	ctx.AddStageResult(componentKey+"_score", componentScore)
	ctx.AddStageResult(componentKey+"_weighted", weightedScore)
	rb.AddStageResult(componentKey+"_score", componentScore)
	rb.AddStageResult(componentKey+"_weighted", weightedScore)

	// Expose the running total to subsequent rules.
	ctx.AddStageResult(accumulatorVariable, newScore)
	ctx.SetVariable(accumulatorVariable, newScore)

	return newScore
}

func (x *AccumulativeChainingExecutor) executeFinalDecisionRule(configuration types.Configuration, ctx *types.ChainContext, rb *types.ResultBuilder) (string, bool) {
	finalDecisionConfig := getMapValue(configuration, "final-decision-rule")
	if finalDecisionConfig == nil {
		return "", false
	}

	ctx.SetCurrentStage("final-decision-execution")
	finalDecisionRule := ruleFromConfig(finalDecisionConfig)

	decisionResult, err := x.evaluate(finalDecisionRule.Condition, ctx)
	if err != nil {
		x.logger().Printf("final decision rule failed: %v", err)
		return "ERROR", true
	}

	finalDecision := "UNKNOWN"
	if decisionResult != nil {
		finalDecision = str.ToString(decisionResult)
	}

	// Execute as a rule for tracking purposes.
	x.executeRule(finalDecisionRule, ctx, rb)

	return finalDecision, true
}
