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

import (
	"regexp"
	"strings"
)

var (
	requestIDPattern = regexp.MustCompile(`^req_[a-zA-Z0-9_-]+$`)
	replayRefPattern = regexp.MustCompile(`^replay:[a-zA-Z0-9_-]+$`)
)

// ResultEnvelope is the canonical, self-contained output of an
// analysis request: the claims it produced, the evidence backing them,
// an optional synthesized conclusion, how much it cost to run, and an
// optional escalation back to a human.
type ResultEnvelope struct {
	RequestID  string      `json:"request_id"`
	Summary    string      `json:"summary"`
	Claims     []Claim     `json:"claims"`
	Evidences  []Evidence  `json:"evidences"`
	Conclusion *Conclusion `json:"conclusion,omitempty"`
	Metrics    Metrics     `json:"metrics"`
	Escalation *Escalation `json:"escalation,omitempty"`
	ReplayRef  string      `json:"replay_ref"`
}

// Validate runs the exhaustive construction checks: every field's own
// shape, plus the cross-field consistency between claims, evidence,
// and metrics.
func (r ResultEnvelope) Validate() error {
	if r.RequestID == "" || !requestIDPattern.MatchString(r.RequestID) {
		return fieldErr("envelope.request_id", "must match ^req_[a-zA-Z0-9_-]+$, got %q", r.RequestID)
	}
	if isBlank(r.Summary) {
		return fieldErr("envelope.summary", "must be non-empty")
	}
	if len(r.Summary) > 500 {
		return fieldErr("envelope.summary", "must be <= 500 chars, got %d", len(r.Summary))
	}

	claimIDs := make(map[string]bool, len(r.Claims))
	for i, c := range r.Claims {
		if err := validateClaim(c); err != nil {
			return err
		}
		if claimIDs[c.ID] {
			return fieldErr("envelope.claims", "duplicate claim id %q at index %d", c.ID, i)
		}
		claimIDs[c.ID] = true
	}

	for i, e := range r.Evidences {
		if err := validateEvidence(e); err != nil {
			return err
		}
		for _, cid := range e.ClaimIDs {
			if !claimIDs[cid] {
				return fieldErr("envelope.evidences", "evidence[%d] (%s) references unknown claim %q", i, e.ID, cid)
			}
		}
	}

	if err := validateConclusion(r.Conclusion); err != nil {
		return err
	}
	if err := validateMetrics(r.Metrics); err != nil {
		return err
	}
	if r.Metrics.ClaimsGenerated != len(r.Claims) {
		return fieldErr("envelope.metrics.claims_generated", "(%d) must equal len(claims) (%d)", r.Metrics.ClaimsGenerated, len(r.Claims))
	}
	suppressed := 0
	for _, c := range r.Claims {
		if c.Suppressed {
			suppressed++
		}
	}
	if r.Metrics.ClaimsSuppressed != suppressed {
		return fieldErr("envelope.metrics.claims_suppressed", "(%d) must equal count of suppressed claims (%d)", r.Metrics.ClaimsSuppressed, suppressed)
	}
	if err := validateEscalation(r.Escalation); err != nil {
		return err
	}

	if r.ReplayRef != "" {
		if !replayRefPattern.MatchString(r.ReplayRef) {
			return fieldErr("envelope.replay_ref", "must match ^replay:[a-zA-Z0-9_-]+$, got %q", r.ReplayRef)
		}
		wantSuffix := strings.TrimPrefix(r.RequestID, "req_")
		gotSuffix := strings.TrimPrefix(r.ReplayRef, "replay:")
		if gotSuffix != wantSuffix {
			return fieldErr("envelope.replay_ref", "suffix %q must match request_id suffix %q", gotSuffix, wantSuffix)
		}
	}

	return nil
}

// GetActionableClaims returns every non-suppressed claim.
func (r ResultEnvelope) GetActionableClaims() []Claim {
	out := make([]Claim, 0, len(r.Claims))
	for _, c := range r.Claims {
		if c.IsActionable() {
			out = append(out, c)
		}
	}
	return out
}

// GetHighConfidenceClaims returns every claim with confidence >= 0.8.
func (r ResultEnvelope) GetHighConfidenceClaims() []Claim {
	out := make([]Claim, 0, len(r.Claims))
	for _, c := range r.Claims {
		if c.IsHighConfidence() {
			out = append(out, c)
		}
	}
	return out
}

// GetProvenClaims returns every claim whose confidence basis is proven.
func (r ResultEnvelope) GetProvenClaims() []Claim {
	out := make([]Claim, 0, len(r.Claims))
	for _, c := range r.Claims {
		if c.IsProven() {
			out = append(out, c)
		}
	}
	return out
}

// HasEscalation reports whether this envelope requires a human decision.
func (r ResultEnvelope) HasEscalation() bool {
	return r.Escalation != nil && r.Escalation.Required
}
