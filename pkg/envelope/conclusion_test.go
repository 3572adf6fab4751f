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

func TestValidateConclusion_NilIsValid(t *testing.T) {
	if err := validateConclusion(nil); err != nil {
		t.Fatalf("expected nil conclusion to be valid, got %v", err)
	}
}

func TestValidateConclusion_RejectsOutOfRangeCoverage(t *testing.T) {
	c := &Conclusion{ReasoningSummary: "summary", Recommendation: "fix it", Coverage: 1.5}
	if err := validateConclusion(c); err == nil {
		t.Fatal("expected error for coverage > 1")
	}
}

func TestValidateConclusion_RequiresReasoningSummaryAndRecommendation(t *testing.T) {
	c := &Conclusion{Coverage: 0.5}
	if err := validateConclusion(c); err == nil {
		t.Fatal("expected error for missing reasoning_summary/recommendation")
	}
}
