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

import "testing"

func TestValidateEscalation_NotRequiredSkipsValidation(t *testing.T) {
	e := &Escalation{Required: false}
	if err := validateEscalation(e); err != nil {
		t.Fatalf("expected no error when not required, got %v", err)
	}
}

func TestValidateEscalation_RequiresReasonAndDecisionAndTwoOptions(t *testing.T) {
	e := &Escalation{Required: true}
	if err := validateEscalation(e); err == nil {
		t.Fatal("expected error for missing fields")
	}
	e.Reason = "ambiguous taint classification"
	e.DecisionNeeded = "is this input externally controlled"
	if err := validateEscalation(e); err == nil {
		t.Fatal("expected error for fewer than 2 options")
	}
	e.Options = []string{"yes", "no"}
	if err := validateEscalation(e); err != nil {
		t.Fatalf("expected no error once all fields present, got %v", err)
	}
}
