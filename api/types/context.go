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

package types

// StageResult is one entry of the ordered stage result log: the value a
// named stage produced. Re-recording a name updates the value in place and
// keeps the original position, so the log stays in first-write order.
type StageResult struct {
	Name  string
	Value interface{}
}

// ChainContext is the mutable, chain scoped store of named variables plus an
// ordered log of stage results. One context is created per chain execution
// and mutated throughout it.
//
// A ChainContext is not safe for concurrent use. It is owned exclusively by
// the goroutine running the chain for the duration of that execution and
// must not be shared across concurrent executions.
type ChainContext struct {
	variables     map[string]interface{}
	stageResults  []StageResult
	stageIndex    map[string]int
	executionPath []string
	currentStage  string
	parent        *ChainContext
}

// NewChainContext creates a context seeded with the given initial facts.
// The initial map is copied; later mutations of the caller's map are not
// visible to the context.
func NewChainContext(initial map[string]interface{}) *ChainContext {
	ctx := &ChainContext{
		variables:  make(map[string]interface{}, len(initial)),
		stageIndex: make(map[string]int),
	}
	for k, v := range initial {
		ctx.variables[k] = v
	}
	return ctx
}

// NewChild creates a nested scope. Variable lookups fall through to the
// parent; writes stay in the child.
func (c *ChainContext) NewChild() *ChainContext {
	return &ChainContext{
		variables:  make(map[string]interface{}),
		stageIndex: make(map[string]int),
		parent:     c,
	}
}

// SetVariable sets a named variable. Last write wins.
func (c *ChainContext) SetVariable(name string, value interface{}) {
	c.variables[name] = value
}

// GetVariable looks up a variable in this scope, then in parent scopes.
func (c *ChainContext) GetVariable(name string) (interface{}, bool) {
	if v, ok := c.variables[name]; ok {
		return v, true
	}
	if c.parent != nil {
		return c.parent.GetVariable(name)
	}
	return nil, false
}

// Variables returns a flattened snapshot of all visible variables, child
// scopes shadowing parents. The snapshot is what evaluators receive; they
// never see the context itself.
func (c *ChainContext) Variables() map[string]interface{} {
	var snapshot map[string]interface{}
	if c.parent != nil {
		snapshot = c.parent.Variables()
	} else {
		snapshot = make(map[string]interface{}, len(c.variables))
	}
	for k, v := range c.variables {
		snapshot[k] = v
	}
	return snapshot
}

// AddStageResult appends a named stage result to the ordered log. The value
// is recorded in the log only; use SetVariable as well when later
// expressions should see it.
func (c *ChainContext) AddStageResult(name string, value interface{}) {
	if i, ok := c.stageIndex[name]; ok {
		c.stageResults[i].Value = value
		return
	}
	c.stageIndex[name] = len(c.stageResults)
	c.stageResults = append(c.stageResults, StageResult{Name: name, Value: value})
}

// StageResult returns the logged value for a stage name.
func (c *ChainContext) StageResult(name string) (interface{}, bool) {
	if i, ok := c.stageIndex[name]; ok {
		return c.stageResults[i].Value, true
	}
	return nil, false
}

// StageResults returns a copy of the ordered stage result log.
func (c *ChainContext) StageResults() []StageResult {
	results := make([]StageResult, len(c.stageResults))
	copy(results, c.stageResults)
	return results
}

// SetCurrentStage records which stage is executing, for audit and debugging.
func (c *ChainContext) SetCurrentStage(stage string) {
	c.currentStage = stage
	c.executionPath = append(c.executionPath, stage)
}

// CurrentStage returns the stage recorded last.
func (c *ChainContext) CurrentStage() string {
	return c.currentStage
}

// ExecutionPath returns the ordered list of stages recorded so far.
func (c *ChainContext) ExecutionPath() []string {
	path := make([]string, len(c.executionPath))
	copy(path, c.executionPath)
	return path
}
