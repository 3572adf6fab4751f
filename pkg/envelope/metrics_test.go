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

func TestValidateMetrics_RejectsZeroExecutionTime(t *testing.T) {
	m := Metrics{ExecutionTimeMs: 0}
	if err := validateMetrics(m); err == nil {
		t.Fatal("expected error for zero execution_time_ms")
	}
}

func TestValidateMetrics_RejectsSuppressedExceedingGenerated(t *testing.T) {
	m := Metrics{ExecutionTimeMs: 1, ClaimsGenerated: 2, ClaimsSuppressed: 3}
	if err := validateMetrics(m); err == nil {
		t.Fatal("expected error for claims_suppressed > claims_generated")
	}
}

func TestValidateMetrics_AcceptsWellFormedMetrics(t *testing.T) {
	m := Metrics{ExecutionTimeMs: 42, ClaimsGenerated: 3, ClaimsSuppressed: 1}
	if err := validateMetrics(m); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
