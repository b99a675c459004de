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

// Package loader parses YAML rule chain documents into chain definitions.
//
// A document carries optional metadata and a rule-chains list:
//
//	metadata:
//	  name: "Risk Configuration"
//	  version: "1.0.0"
//	rule-chains:
//	  - id: "risk-routing"
//	    name: "Risk Based Routing"
//	    pattern: "result-based-routing"
//	    enabled: true
//	    configuration:
//	      ...
package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/rulechain/rulechain/api/types"
)

// Metadata describes a rule chain document.
type Metadata struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
	Author      string `yaml:"author"`
}

// Definition is the parsed form of a YAML rule chain document.
type Definition struct {
	Metadata   Metadata          `yaml:"metadata"`
	RuleChains []types.RuleChain `yaml:"-"`
}

type document struct {
	Metadata   Metadata   `yaml:"metadata"`
	RuleChains []chainDef `yaml:"rule-chains"`
}

type chainDef struct {
	Id            string                      `yaml:"id"`
	Name          string                      `yaml:"name"`
	Description   string                      `yaml:"description"`
	Pattern       string                      `yaml:"pattern"`
	Enabled       *bool                       `yaml:"enabled"`
	Priority      int                         `yaml:"priority"`
	Configuration map[interface{}]interface{} `yaml:"configuration"`
}

// Load parses a YAML document from a byte slice. Chains omitting the
// enabled field default to enabled.
func Load(data []byte) (*Definition, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse rule chain document: %w", err)
	}

	definition := &Definition{Metadata: doc.Metadata}
	for _, def := range doc.RuleChains {
		enabled := true
		if def.Enabled != nil {
			enabled = *def.Enabled
		}
		definition.RuleChains = append(definition.RuleChains, types.RuleChain{
			Id:            def.Id,
			Name:          def.Name,
			Description:   def.Description,
			Pattern:       def.Pattern,
			Enabled:       enabled,
			Priority:      def.Priority,
			Configuration: normalizeMap(def.Configuration),
		})
	}
	return definition, nil
}

// LoadFile parses a YAML document from a file.
func LoadFile(filename string) (*Definition, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read rule chain document: %w", err)
	}
	return Load(data)
}

// normalizeMap converts the interface-keyed maps produced by yaml.v2 into
// the string-keyed configuration shape executors traverse. Non-string keys
// are stringified, which is how numeric route keys stay addressable.
func normalizeMap(in map[interface{}]interface{}) types.Configuration {
	if in == nil {
		return nil
	}
	out := make(types.Configuration, len(in))
	for k, v := range in {
		out[fmt.Sprintf("%v", k)] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v interface{}) interface{} {
	switch value := v.(type) {
	case map[interface{}]interface{}:
		normalized := make(map[string]interface{}, len(value))
		for k, item := range value {
			normalized[fmt.Sprintf("%v", k)] = normalizeValue(item)
		}
		return normalized
	case []interface{}:
		normalized := make([]interface{}, len(value))
		for i, item := range value {
			normalized[i] = normalizeValue(item)
		}
		return normalized
	default:
		return v
	}
}
