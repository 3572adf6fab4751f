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

// Builder stages an envelope's claims and evidence before their
// cross-references are resolved. Evidence produced ahead of the claim
// it supports can carry the "pending" sentinel in its ClaimIDs; Build
// resolves those against the claims added by then and rejects anything
// left unresolved.
type Builder struct {
	requestID  string
	summary    string
	claims     []Claim
	evidences  []Evidence
	conclusion *Conclusion
	metrics    Metrics
	escalation *Escalation
	replayRef  string
}

// NewBuilder starts a staged envelope for the given request id.
func NewBuilder(requestID string) *Builder {
	return &Builder{requestID: requestID}
}

// WithSummary sets the envelope's human-readable summary.
func (b *Builder) WithSummary(summary string) *Builder {
	b.summary = summary
	return b
}

// AddClaim appends a claim. Its ID becomes available to resolve
// previously staged pending evidence at Build time.
func (b *Builder) AddClaim(c Claim) *Builder {
	b.claims = append(b.claims, c)
	return b
}

// AddEvidence appends evidence. If its ClaimIDs contains the "pending"
// sentinel, resolution against real claim IDs is deferred to Build.
func (b *Builder) AddEvidence(e Evidence) *Builder {
	b.evidences = append(b.evidences, e)
	return b
}

// WithConclusion attaches a synthesized conclusion.
func (b *Builder) WithConclusion(c Conclusion) *Builder {
	b.conclusion = &c
	return b
}

// WithMetrics sets the run's execution metrics.
func (b *Builder) WithMetrics(m Metrics) *Builder {
	b.metrics = m
	return b
}

// WithEscalation attaches an escalation request.
func (b *Builder) WithEscalation(e Escalation) *Builder {
	b.escalation = &e
	return b
}

// WithReplayRef sets the replay reference.
func (b *Builder) WithReplayRef(ref string) *Builder {
	b.replayRef = ref
	return b
}

// Build resolves staged pending evidence against the final claim set,
// fills derived metrics counters when left zero-valued, and runs the
// full ResultEnvelope validation.
func (b *Builder) Build() (*ResultEnvelope, error) {
	lastClaimID := ""
	if n := len(b.claims); n > 0 {
		lastClaimID = b.claims[n-1].ID
	}

	resolved := make([]Evidence, len(b.evidences))
	for i, e := range b.evidences {
		ids := make([]string, len(e.ClaimIDs))
		copy(ids, e.ClaimIDs)
		for j, cid := range ids {
			if cid == pendingClaimID {
				if lastClaimID == "" {
					return nil, fieldErr("envelope.evidences", "evidence[%d] (%s) left pending with no claim added yet", i, e.ID)
				}
				ids[j] = lastClaimID
			}
		}
		e.ClaimIDs = ids
		resolved[i] = e
	}

	metrics := b.metrics
	if metrics.ClaimsGenerated == 0 {
		metrics.ClaimsGenerated = len(b.claims)
	}
	if metrics.ClaimsSuppressed == 0 {
		for _, c := range b.claims {
			if c.Suppressed {
				metrics.ClaimsSuppressed++
			}
		}
	}

	env := ResultEnvelope{
		RequestID:  b.requestID,
		Summary:    b.summary,
		Claims:     b.claims,
		Evidences:  resolved,
		Conclusion: b.conclusion,
		Metrics:    metrics,
		Escalation: b.escalation,
		ReplayRef:  b.replayRef,
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	return &env, nil
}
