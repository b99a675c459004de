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

// Package maps decodes loosely typed configuration maps into typed values.
package maps

import "github.com/mitchellh/mapstructure"

// Map2Struct translates a map produced by the YAML loader into the output
// structure. Keys are matched to fields case-insensitively, so lowercase
// configuration keys decode into exported fields without tags. output must
// be a pointer to a struct or map.
func Map2Struct(input interface{}, output interface{}) error {
	return mapstructure.Decode(input, output)
}
