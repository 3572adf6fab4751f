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

func TestBuilder_ResolvesPendingEvidenceAgainstAddedClaim(t *testing.T) {
	ev := validEvidence()
	ev.ClaimIDs = []string{pendingClaimID}

	env, err := NewBuilder("req_xyz").
		WithSummary("staged build resolves pending evidence").
		AddEvidence(ev).
		AddClaim(validClaim()).
		WithMetrics(Metrics{ExecutionTimeMs: 3.2}).
		Build()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if env.Evidences[0].ClaimIDs[0] != validClaim().ID {
		t.Errorf("expected pending claim id resolved to %q, got %q", validClaim().ID, env.Evidences[0].ClaimIDs[0])
	}
}

func TestBuilder_RejectsPendingEvidenceWithNoClaimEverAdded(t *testing.T) {
	ev := validEvidence()
	ev.ClaimIDs = []string{pendingClaimID}

	_, err := NewBuilder("req_xyz").
		WithSummary("no claim added").
		AddEvidence(ev).
		WithMetrics(Metrics{ExecutionTimeMs: 1}).
		Build()
	if err == nil {
		t.Fatal("expected error for evidence left pending with no claim added")
	}
}

func TestBuilder_DerivesMetricsCountersWhenUnset(t *testing.T) {
	c1 := validClaim()
	c2 := validClaim()
	c2.ID = "claim_2"
	c2.Suppressed = true
	c2.SuppressionReason = "reviewed, benign"

	env, err := NewBuilder("req_xyz").
		WithSummary("derives claims_generated and claims_suppressed").
		AddClaim(c1).
		AddClaim(c2).
		WithMetrics(Metrics{ExecutionTimeMs: 5}).
		Build()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if env.Metrics.ClaimsGenerated != 2 {
		t.Errorf("expected claims_generated 2, got %d", env.Metrics.ClaimsGenerated)
	}
	if env.Metrics.ClaimsSuppressed != 1 {
		t.Errorf("expected claims_suppressed 1, got %d", env.Metrics.ClaimsSuppressed)
	}
}

func TestBuilder_BuildRunsFullValidation(t *testing.T) {
	_, err := NewBuilder("not-a-valid-request-id").
		WithSummary("should fail validation").
		WithMetrics(Metrics{ExecutionTimeMs: 1}).
		Build()
	if err == nil {
		t.Fatal("expected validation error from malformed request id")
	}
}
