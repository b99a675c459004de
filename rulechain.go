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

// Package rulechain executes YAML-defined business rule chains. A chain
// declares one of six execution patterns and a pattern specific
// configuration; the engine dispatches each chain to its pattern executor
// and reports a detailed execution result.
//
// Basic usage:
//
//	ruleEngine, err := rulechain.New(yamlData)
//	if err != nil {
//		...
//	}
//	result, err := ruleEngine.Execute("risk-routing", map[string]interface{}{
//		"riskScore": 85,
//	})
package rulechain

import (
	"fmt"
	"sync"

	"github.com/rulechain/rulechain/api/types"
	"github.com/rulechain/rulechain/engine"
	"github.com/rulechain/rulechain/loader"
)

// RuleEngine holds a validated set of rule chains and executes them by id.
type RuleEngine struct {
	engine   *engine.Engine
	metadata loader.Metadata
	chains   map[string]*types.RuleChain
	order    []string
	sync.RWMutex
}

// New parses a YAML rule chain document, validates every chain in it, and
// returns an engine ready to execute them.
func New(data []byte, opts ...types.Option) (*RuleEngine, error) {
	definition, err := loader.Load(data)
	if err != nil {
		return nil, err
	}
	return NewFromDefinition(definition, opts...)
}

// NewFromFile is like New but reads the document from a file.
func NewFromFile(filename string, opts ...types.Option) (*RuleEngine, error) {
	definition, err := loader.LoadFile(filename)
	if err != nil {
		return nil, err
	}
	return NewFromDefinition(definition, opts...)
}

// NewFromDefinition builds an engine from an already parsed definition.
func NewFromDefinition(definition *loader.Definition, opts ...types.Option) (*RuleEngine, error) {
	e := &RuleEngine{
		engine:   engine.New(opts...),
		metadata: definition.Metadata,
		chains:   make(map[string]*types.RuleChain, len(definition.RuleChains)),
	}
	if err := e.engine.ValidateChains(definition.RuleChains); err != nil {
		return nil, err
	}
	for i := range definition.RuleChains {
		chain := &definition.RuleChains[i]
		e.chains[chain.Id] = chain
		e.order = append(e.order, chain.Id)
	}
	return e, nil
}

// Execute runs the chain with the given id against the facts.
func (e *RuleEngine) Execute(chainId string, facts map[string]interface{}) (types.RuleChainResult, error) {
	e.RLock()
	chain, ok := e.chains[chainId]
	e.RUnlock()
	if !ok {
		return types.RuleChainResult{}, fmt.Errorf("rule chain not found: %s", chainId)
	}
	return e.engine.ExecuteChain(chain, facts), nil
}

// ExecuteAll runs every loaded chain against the facts and returns the
// results keyed by chain id.
func (e *RuleEngine) ExecuteAll(facts map[string]interface{}) map[string]types.RuleChainResult {
	e.RLock()
	chains := make([]types.RuleChain, 0, len(e.order))
	for _, id := range e.order {
		chains = append(chains, *e.chains[id])
	}
	e.RUnlock()
	return e.engine.ExecuteChains(chains, facts)
}

// AddChain validates and registers one more chain. Replacing an existing id
// is an error.
func (e *RuleEngine) AddChain(chain *types.RuleChain) error {
	if err := e.engine.ValidateChain(chain); err != nil {
		return err
	}
	e.Lock()
	defer e.Unlock()
	if _, ok := e.chains[chain.Id]; ok {
		return fmt.Errorf("rule chain already loaded: %s", chain.Id)
	}
	e.chains[chain.Id] = chain
	e.order = append(e.order, chain.Id)
	return nil
}

// RemoveChain drops a chain by id.
func (e *RuleEngine) RemoveChain(chainId string) bool {
	e.Lock()
	defer e.Unlock()
	if _, ok := e.chains[chainId]; !ok {
		return false
	}
	delete(e.chains, chainId)
	for i, id := range e.order {
		if id == chainId {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	return true
}

// Chain returns a loaded chain by id.
func (e *RuleEngine) Chain(chainId string) (*types.RuleChain, bool) {
	e.RLock()
	defer e.RUnlock()
	chain, ok := e.chains[chainId]
	return chain, ok
}

// ChainIds returns the loaded chain ids in document order.
func (e *RuleEngine) ChainIds() []string {
	e.RLock()
	defer e.RUnlock()
	ids := make([]string, len(e.order))
	copy(ids, e.order)
	return ids
}

// Metadata returns the document metadata the chains were loaded with.
func (e *RuleEngine) Metadata() loader.Metadata {
	return e.metadata
}
