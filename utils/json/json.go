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

// Package json wraps encoding/json with HTML escaping disabled, so values
// rendered into results keep &, < and > literal.
package json

import (
	"bytes"
	"encoding/json"
)

// Marshal encodes v without HTML escaping and without the trailing newline
// the stdlib encoder appends.
func Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return buf.Bytes(), err
	}
	if buf.Len() > 0 {
		return buf.Bytes()[:buf.Len()-1], nil
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes json data into m.
func Unmarshal(b []byte, m interface{}) error {
	return json.Unmarshal(b, m)
}
