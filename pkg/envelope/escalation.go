// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package envelope

// Escalation asks a human to resolve an ambiguity the analysis could
// not settle on its own.
type Escalation struct {
	Required       bool     `json:"required"`
	Reason         string   `json:"reason,omitempty"`
	DecisionNeeded string   `json:"decision_needed,omitempty"`
	Options        []string `json:"options,omitempty"`
	ResumeToken    *string  `json:"resume_token,omitempty"`
}

func validateEscalation(e *Escalation) error {
	if e == nil || !e.Required {
		return nil
	}
	if isBlank(e.Reason) {
		return fieldErr("escalation.reason", "required when escalation.required=true")
	}
	if isBlank(e.DecisionNeeded) {
		return fieldErr("escalation.decision_needed", "required when escalation.required=true")
	}
	if len(e.Options) < 2 {
		return fieldErr("escalation.options", "must list at least 2 options when required=true, got %d", len(e.Options))
	}
	for _, opt := range e.Options {
		if isBlank(opt) {
			return fieldErr("escalation.options", "contains an empty option")
		}
	}
	return nil
}
