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

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// RuleChainResult is the sole externally observable output of one chain
// execution: per stage outcomes, a final outcome tag and success status.
// It is assembled through a ResultBuilder and immutable after Build.
type RuleChainResult struct {
	// ExecutionId uniquely identifies this execution.
	ExecutionId string
	// RuleChainId is the id of the executed chain.
	RuleChainId string
	// RuleChainName is the name of the executed chain.
	RuleChainName string
	// PatternName is the pattern tag the chain was executed under.
	PatternName string
	// FinalOutcome is a free form outcome tag, pattern defined.
	FinalOutcome string
	// Successful reports whether the chain completed without a fatal error.
	Successful bool
	// ErrorMessage carries the failure description when Successful is false.
	ErrorMessage string
	// ExecutionPath lists rule and stage names in evaluation order.
	ExecutionPath []string
	// ExecutedRules counts every rule evaluation performed.
	ExecutedRules int
	// TriggeredRules counts rule evaluations whose condition held.
	TriggeredRules int
	// StartTime and EndTime bound the execution.
	StartTime time.Time
	EndTime   time.Time

	stageResults []StageResult
	stageIndex   map[string]int
}

// HasStageResult reports whether a stage result with the given name was
// recorded.
func (r *RuleChainResult) HasStageResult(name string) bool {
	_, ok := r.stageIndex[name]
	return ok
}

// StageResult returns the recorded value for a stage name, or nil.
func (r *RuleChainResult) StageResult(name string) interface{} {
	if i, ok := r.stageIndex[name]; ok {
		return r.stageResults[i].Value
	}
	return nil
}

// StageResults returns the ordered stage result log.
func (r *RuleChainResult) StageResults() []StageResult {
	results := make([]StageResult, len(r.stageResults))
	copy(results, r.stageResults)
	return results
}

// ResultBuilder incrementally assembles a RuleChainResult. One builder is
// created per execution and finalized exactly once through Build,
// CompleteWithOutcome or CompleteWithError.
type ResultBuilder struct {
	result RuleChainResult
}

// NewResultBuilder creates a builder for the given chain id and pattern.
func NewResultBuilder(ruleChainId string, patternName string) *ResultBuilder {
	uuId, _ := uuid.NewV4()
	return &ResultBuilder{
		result: RuleChainResult{
			ExecutionId: uuId.String(),
			RuleChainId: ruleChainId,
			PatternName: patternName,
			StartTime:   time.Now(),
			stageIndex:  make(map[string]int),
		},
	}
}

// RuleChainName sets the chain's display name.
func (b *ResultBuilder) RuleChainName(name string) *ResultBuilder {
	b.result.RuleChainName = name
	return b
}

// AddStageResult records a named stage result. Re-recording a name updates
// the value in place, matching the context's stage log semantics.
func (b *ResultBuilder) AddStageResult(name string, value interface{}) *ResultBuilder {
	if i, ok := b.result.stageIndex[name]; ok {
		b.result.stageResults[i].Value = value
		return b
	}
	b.result.stageIndex[name] = len(b.result.stageResults)
	b.result.stageResults = append(b.result.stageResults, StageResult{Name: name, Value: value})
	return b
}

// AddToPath appends a rule or stage name to the execution path.
func (b *ResultBuilder) AddToPath(name string) *ResultBuilder {
	b.result.ExecutionPath = append(b.result.ExecutionPath, name)
	return b
}

// RuleEvaluated bumps the execution counters for one rule evaluation.
func (b *ResultBuilder) RuleEvaluated(triggered bool) *ResultBuilder {
	b.result.ExecutedRules++
	if triggered {
		b.result.TriggeredRules++
	}
	return b
}

// FinalOutcome sets the chain's outcome tag.
func (b *ResultBuilder) FinalOutcome(outcome string) *ResultBuilder {
	b.result.FinalOutcome = outcome
	return b
}

// Successful marks the execution successful or not.
func (b *ResultBuilder) Successful(successful bool) *ResultBuilder {
	b.result.Successful = successful
	return b
}

// ErrorMessage records a failure description and marks the result failed.
func (b *ResultBuilder) ErrorMessage(message string) *ResultBuilder {
	b.result.ErrorMessage = message
	b.result.Successful = false
	return b
}

// Build finalizes and returns the result.
func (b *ResultBuilder) Build() RuleChainResult {
	b.result.EndTime = time.Now()
	return b.result
}
