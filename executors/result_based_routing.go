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
//	id: "risk-based-routing"
//	pattern: "result-based-routing"
//	configuration:
//	  router-rule:
//	    id: "risk-assessment"
//	    condition: "riskScore > 70 ? 'HIGH_RISK' : 'LOW_RISK'"
//	    message: "Risk level determined"
//	    output-variable: "riskLevel"
//	  routes:
//	    HIGH_RISK:
//	      rules:
//	        - id: "manager-approval"
//	          condition: "transactionAmount > 100000"
//	          message: "Manager approval required"
//	    LOW_RISK:
//	      rules:
//	        - id: "basic-validation"
//	          condition: "transactionAmount > 0"
//	          message: "Basic validation check"

import (
	"fmt"

	"github.com/rulechain/rulechain/api/types"
	"github.com/rulechain/rulechain/utils/str"
)

func init() {
	Registry.Add(&ResultBasedRoutingExecutor{})
}

// ResultBasedRoutingExecutor evaluates a router rule whose result selects
// which route's rules to run. Routing tables may be partial: a route key
// with no entry is a legitimate no-op branch, not an error. That is the
// mechanism by which callers declare only the routes they care about.
type ResultBasedRoutingExecutor struct {
	BaseExecutor
}

func (x *ResultBasedRoutingExecutor) New() types.PatternExecutor {
	return &ResultBasedRoutingExecutor{}
}

func (x *ResultBasedRoutingExecutor) PatternName() string {
	return types.PatternResultBasedRouting
}

func (x *ResultBasedRoutingExecutor) ValidateConfiguration(configuration types.Configuration) bool {
	if configuration == nil {
		return false
	}
	if !hasRequiredKey(configuration, "router-rule") {
		return false
	}
	routerRule := getMapValue(configuration, "router-rule")
	if routerRule == nil || !hasRequiredKey(routerRule, "condition") {
		return false
	}
	if !hasRequiredKey(configuration, "routes") {
		return false
	}
	routes := getMapValue(configuration, "routes")
	if routes == nil || len(routes) == 0 {
		return false
	}
	for _, routeValue := range routes {
		route, ok := asMap(routeValue)
		if !ok {
			return false
		}
		// Routes can have rules, but it's optional.
		if _, declared := route["rules"]; !declared {
			continue
		}
		rules, ok := asList(route["rules"])
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

func (x *ResultBasedRoutingExecutor) Execute(chain *types.RuleChain, configuration types.Configuration, ctx *types.ChainContext) (result types.RuleChainResult) {
	if !x.ValidateConfiguration(configuration) {
		return validationFailure(chain, x.PatternName(), "Invalid result-based routing configuration")
	}

	rb := types.NewResultBuilder(chain.Id, x.PatternName()).RuleChainName(chain.Name)
	defer func() {
		if r := recover(); r != nil {
			result = rb.ErrorMessage(fmt.Sprintf("Execution error: %v", r)).Build()
		}
	}()

	routeKey, ok := x.executeRouterRule(configuration, ctx, rb)
	if !ok {
		return rb.ErrorMessage("Router rule execution failed").Build()
	}

	ctx.AddStageResult("routeKey", routeKey)
	rb.AddStageResult("routeKey", routeKey)

	x.executeRoute(configuration, routeKey, ctx, rb)

	return rb.FinalOutcome("ROUTE_" + routeKey + "_COMPLETED").Successful(true).Build()
}

// executeRouterRule evaluates the router rule to determine which route to
// take. The router expression is evaluated generically; any result converts
// to the route key through its string form. A nil result or evaluation
// failure is fatal since no route can be selected.
func (x *ResultBasedRoutingExecutor) executeRouterRule(configuration types.Configuration, ctx *types.ChainContext, rb *types.ResultBuilder) (string, bool) {
	routerRuleConfig := getMapValue(configuration, "router-rule")

	ctx.SetCurrentStage("router-evaluation")
	routerRule := ruleFromConfig(routerRuleConfig)

	routeResult, err := x.evaluate(routerRule.Condition, ctx)
	if err != nil {
		x.logger().Printf("router rule evaluation failed: %v", err)
		return "", false
	}
	if routeResult == nil {
		x.logger().Printf("router rule returned nil result")
		return "", false
	}
	routeKey := str.ToString(routeResult)

	// Also execute as a rule for tracking purposes.
	x.executeRule(routerRule, ctx, rb)

	if outputVariable := getStringValue(routerRuleConfig, "output-variable", ""); outputVariable != "" {
		ctx.AddStageResult(outputVariable, routeKey)
		ctx.SetVariable(outputVariable, routeKey)
		rb.AddStageResult(outputVariable, routeKey)
	}

	return routeKey, true
}

// executeRoute runs the rules of the selected route, if any are configured.
func (x *ResultBasedRoutingExecutor) executeRoute(configuration types.Configuration, routeKey string, ctx *types.ChainContext, rb *types.ResultBuilder) {
	routes := getMapValue(configuration, "routes")

	route := getMapValue(routes, routeKey)
	if route == nil {
		// Some routes intentionally have no rules configured.
		x.logger().Printf("no route configuration for key: %s", routeKey)
		ctx.AddStageResult("routeExecutionResult", "NO_RULES_FOR_ROUTE")
		rb.AddStageResult("routeExecutionResult", "NO_RULES_FOR_ROUTE")
		return
	}

	ctx.SetCurrentStage("route-" + routeKey + "-execution")

	routeRules := getListValue(route, "rules")
	if len(routeRules) == 0 {
		ctx.AddStageResult("routeExecutionResult", "NO_RULES_CONFIGURED")
		rb.AddStageResult("routeExecutionResult", "NO_RULES_CONFIGURED")
		return
	}

	executedRules := 0
	triggeredRules := 0

	for _, ruleObj := range routeRules {
		ruleConfig, ok := asMap(ruleObj)
		if !ok {
			continue
		}
		routeRule := ruleFromConfig(ruleConfig)
		triggered := x.executeRule(routeRule, ctx, rb)

		executedRules++
		if triggered {
			triggeredRules++
		}

		resultKey := "route_" + routeKey + "_" + routeRule.Name + "_result"
		ctx.AddStageResult(resultKey, triggered)
		rb.AddStageResult(resultKey, triggered)
	}

	ctx.AddStageResult("routeExecutionResult", "COMPLETED")
	ctx.AddStageResult("routeExecutedRules", executedRules)
	ctx.AddStageResult("routeTriggeredRules", triggeredRules)

	rb.AddStageResult("routeExecutionResult", "COMPLETED")
	rb.AddStageResult("routeExecutedRules", executedRules)
	rb.AddStageResult("routeTriggeredRules", triggeredRules)
}
