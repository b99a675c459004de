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

package loader

import (
	"testing"

	"github.com/rulechain/rulechain/api/types"
	"github.com/rulechain/rulechain/test/assert"
)

var ruleChainDocument = `
metadata:
  name: "Risk Configuration"
  version: "1.0.0"
  description: "Risk based routing chains"

rule-chains:
  - id: "risk-routing"
    name: "Risk Based Routing"
    description: "Routes transactions by assessed risk"
    pattern: "result-based-routing"
    enabled: true
    priority: 10
    configuration:
      router-rule:
        id: "risk-assessment"
        condition: "riskScore > 70 ? 'HIGH_RISK' : 'LOW_RISK'"
      routes:
        HIGH_RISK:
          rules:
            - id: "manager-approval"
              condition: "transactionAmount > 100000"
  - id: "disabled-chain"
    name: "Disabled Chain"
    pattern: "fluent-builder"
    enabled: false
    configuration:
      root-rule:
        id: "gate"
        condition: "true"
  - id: "default-enabled"
    name: "Default Enabled"
    pattern: "fluent-builder"
    configuration:
      root-rule:
        id: "gate"
        condition: "true"
`

func TestLoadDocument(t *testing.T) {
	definition, err := Load([]byte(ruleChainDocument))
	assert.Nil(t, err)
	assert.Equal(t, "Risk Configuration", definition.Metadata.Name)
	assert.Equal(t, "1.0.0", definition.Metadata.Version)
	assert.Equal(t, 3, len(definition.RuleChains))

	chain := definition.RuleChains[0]
	assert.Equal(t, "risk-routing", chain.Id)
	assert.Equal(t, "Risk Based Routing", chain.Name)
	assert.Equal(t, types.PatternResultBasedRouting, chain.Pattern)
	assert.True(t, chain.Enabled)
	assert.Equal(t, 10, chain.Priority)
}

func TestLoadNormalizesNestedMaps(t *testing.T) {
	definition, err := Load([]byte(ruleChainDocument))
	assert.Nil(t, err)

	configuration := definition.RuleChains[0].Configuration
	routerRule, ok := configuration["router-rule"].(map[string]interface{})
	assert.True(t, ok, "router-rule should be string keyed after normalization")
	assert.Equal(t, "risk-assessment", routerRule["id"])

	routes, ok := configuration["routes"].(map[string]interface{})
	assert.True(t, ok)
	highRisk, ok := routes["HIGH_RISK"].(map[string]interface{})
	assert.True(t, ok)
	rules, ok := highRisk["rules"].([]interface{})
	assert.True(t, ok)
	rule, ok := rules[0].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, "manager-approval", rule["id"])
}

func TestLoadEnabledDefaultsToTrue(t *testing.T) {
	definition, err := Load([]byte(ruleChainDocument))
	assert.Nil(t, err)
	assert.False(t, definition.RuleChains[1].Enabled)
	assert.True(t, definition.RuleChains[2].Enabled)
}

func TestLoadNumericKeysAreStringified(t *testing.T) {
	doc := `
rule-chains:
  - id: "numeric-routes"
    name: "Numeric Routes"
    pattern: "result-based-routing"
    configuration:
      router-rule:
        condition: "1"
      routes:
        1:
          rules:
            - condition: "true"
`
	definition, err := Load([]byte(doc))
	assert.Nil(t, err)

	routes, ok := definition.RuleChains[0].Configuration["routes"].(map[string]interface{})
	assert.True(t, ok)
	_, ok = routes["1"]
	assert.True(t, ok, "numeric route key should be addressable as a string")
}

func TestLoadInvalidYaml(t *testing.T) {
	_, err := Load([]byte("rule-chains: ["))
	assert.NotNil(t, err)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("does-not-exist.yaml")
	assert.NotNil(t, err)
}
