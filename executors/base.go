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
	"fmt"

	"github.com/rulechain/rulechain/api/types"
	"github.com/rulechain/rulechain/utils/maps"
	"github.com/rulechain/rulechain/utils/str"
)

// BaseExecutor carries the engine configuration and the helpers shared by
// every pattern executor: configuration map traversal, rule synthesis and
// rule evaluation bookkeeping.
type BaseExecutor struct {
	Config types.Config
}

// Init stores the engine configuration.
func (b *BaseExecutor) Init(config types.Config) error {
	b.Config = config
	return nil
}

func (b *BaseExecutor) logger() types.Logger {
	return types.NewLogger(b.Config.Logger)
}

// vars builds the evaluation environment for one evaluation: global
// properties overlaid by the context's variables.
func (b *BaseExecutor) vars(ctx *types.ChainContext) map[string]interface{} {
	merged := make(map[string]interface{}, len(b.Config.Properties))
	for k, v := range b.Config.Properties {
		merged[k] = v
	}
	for k, v := range ctx.Variables() {
		merged[k] = v
	}
	return merged
}

// evaluate runs a generic (non-boolean) expression against the context.
func (b *BaseExecutor) evaluate(expression string, ctx *types.ChainContext) (interface{}, error) {
	if b.Config.Evaluator == nil {
		return nil, fmt.Errorf("no expression evaluator configured")
	}
	return b.Config.Evaluator.Evaluate(expression, b.vars(ctx))
}

// evaluateBool runs a boolean expression against the context.
func (b *BaseExecutor) evaluateBool(expression string, ctx *types.ChainContext) (bool, error) {
	if b.Config.Evaluator == nil {
		return false, fmt.Errorf("no expression evaluator configured")
	}
	return b.Config.Evaluator.EvaluateBool(expression, b.vars(ctx))
}

// executeRule evaluates a rule's condition as a boolean and records the
// evaluation on the result builder. Evaluation failures are not fatal: the
// rule counts as not triggered and the chain continues.
func (b *BaseExecutor) executeRule(rule types.Rule, ctx *types.ChainContext, rb *types.ResultBuilder) bool {
	rb.AddToPath(rule.Name)
	if b.Config.Evaluator == nil {
		rb.RuleEvaluated(false)
		return false
	}
	triggered, err := b.Config.Evaluator.EvaluateBool(rule.Condition, b.vars(ctx))
	if err != nil {
		b.logger().Printf("rule %s evaluation failed: %v", rule.Name, err)
		triggered = false
	}
	rb.RuleEvaluated(triggered)
	return triggered
}

// ruleFromConfig decodes a rule configuration map into a Rule. Missing id
// and name fall back to defaults so results stay addressable.
func ruleFromConfig(config types.Configuration) types.Rule {
	var rule types.Rule
	if err := maps.Map2Struct(map[string]interface{}(config), &rule); err != nil {
		rule = types.Rule{
			Id:        getStringValue(config, "id", ""),
			Condition: getStringValue(config, "condition", ""),
			Message:   getStringValue(config, "message", ""),
		}
		rule.Name = getStringValue(config, "name", "")
	}
	if rule.Id == "" {
		rule.Id = "unnamed-rule"
	}
	if rule.Name == "" {
		rule.Name = rule.Id
	}
	return rule
}

// validationFailure builds the rejected-chain result for an invalid
// configuration.
func validationFailure(chain *types.RuleChain, patternName string, message string) types.RuleChainResult {
	return types.NewResultBuilder(chain.Id, patternName).
		RuleChainName(chain.Name).
		ErrorMessage(message).
		Build()
}

// asMap converts a configuration value to a Configuration map. The loader
// normalizes YAML maps to string keys, so only string keyed maps appear.
func asMap(value interface{}) (types.Configuration, bool) {
	switch m := value.(type) {
	case types.Configuration:
		return m, true
	case map[string]interface{}:
		return m, true
	default:
		return nil, false
	}
}

// asList converts a configuration value to a generic list.
func asList(value interface{}) ([]interface{}, bool) {
	l, ok := value.([]interface{})
	return l, ok
}

// hasRequiredKey reports whether the key is present with a non-nil value.
func hasRequiredKey(config types.Configuration, key string) bool {
	v, ok := config[key]
	return ok && v != nil
}

// getMapValue returns the map under key, or nil when absent or not a map.
func getMapValue(config types.Configuration, key string) types.Configuration {
	if m, ok := asMap(config[key]); ok {
		return m
	}
	return nil
}

// getListValue returns the list under key, or nil when absent or not a list.
func getListValue(config types.Configuration, key string) []interface{} {
	if l, ok := asList(config[key]); ok {
		return l
	}
	return nil
}

// getStringValue returns the string form of the value under key, or the
// default when the key is absent or nil.
func getStringValue(config types.Configuration, key string, defaultValue string) string {
	v, ok := config[key]
	if !ok || v == nil {
		return defaultValue
	}
	return str.ToString(v)
}

// getFloatValue returns the numeric value under key, or the default.
func getFloatValue(config types.Configuration, key string, defaultValue float64) float64 {
	if v, ok := config[key]; ok && str.IsNumber(v) {
		f, _ := str.ToFloat64(v)
		return f
	}
	return defaultValue
}

// getIntValue returns the integer value under key, or the default.
func getIntValue(config types.Configuration, key string, defaultValue int) int {
	if v, ok := config[key]; ok && str.IsNumber(v) {
		f, _ := str.ToFloat64(v)
		return int(f)
	}
	return defaultValue
}

// stageId resolves a stage's identity: the `stage` field, falling back to
// `rule-id`. Numeric stage ids are legal and converted to their string form.
func stageId(stage types.Configuration) string {
	if v, ok := stage["stage"]; ok && v != nil {
		return str.ToString(v)
	}
	if v, ok := stage["rule-id"]; ok && v != nil {
		return str.ToString(v)
	}
	return ""
}
