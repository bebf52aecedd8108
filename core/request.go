package core

import (
	"fmt"
	"strconv"
	"strings"
)

// RecursionPolicy controls whether an agent spawned for an AgentSpec may
// itself spawn sub-agents through team formation.
type RecursionPolicy int

const (
	// RecursionPolicyUnspecified leaves the decision to the orchestrator
	// default (treated as MAY).
	RecursionPolicyUnspecified RecursionPolicy = iota
	// RecursionPolicyMay permits recursive sub-invocation when the depth
	// budget allows it.
	RecursionPolicyMay
	// RecursionPolicyMust requires recursive sub-invocation; running out of
	// depth budget is an error, never a silent downgrade.
	RecursionPolicyMust
	// RecursionPolicyMustNot forbids recursive sub-invocation at any level.
	RecursionPolicyMustNot
)

// String returns the lowercase wire spelling of the policy.
func (p RecursionPolicy) String() string {
	switch p {
	case RecursionPolicyMay:
		return "may"
	case RecursionPolicyMust:
		return "must"
	case RecursionPolicyMustNot:
		return "must_not"
	default:
		return "unspecified"
	}
}

// ParseRecursionPolicy converts a user-supplied policy spelling into a
// RecursionPolicy. "no" is accepted as an alias for "must_not".
func ParseRecursionPolicy(s string) (RecursionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "may":
		return RecursionPolicyMay, nil
	case "must":
		return RecursionPolicyMust, nil
	case "must_not", "no":
		return RecursionPolicyMustNot, nil
	default:
		return RecursionPolicyUnspecified, validationErrorf("invalid recursion policy %q (valid: may, must, must_not, no)", s)
	}
}

// ModelSpec selects a reasoning model and sampling temperature for a request.
type ModelSpec struct {
	Model       string   `json:"model,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// AgentSpec describes one group of agent executions requested by the caller.
type AgentSpec struct {
	// Count is the number of individual executions expanded from this spec.
	Count int `json:"count"`
	// RecursionPolicy governs team formation for executions of this spec.
	RecursionPolicy RecursionPolicy `json:"recursion_policy"`
	// Name optionally hints a specific registry identity to execute as.
	Name string `json:"name,omitempty"`
	// ModelSpec optionally overrides the request-level model selection.
	ModelSpec *ModelSpec `json:"model_spec,omitempty"`
}

// MaxDepthCeiling is the hard safety ceiling for requested recursion depth.
const MaxDepthCeiling = 10

// UserRequest is the caller-facing request shape. Construct it through
// NewUserRequestBuilder so validation happens before the value exists.
type UserRequest struct {
	Query          string         `json:"query"`
	Context        string         `json:"context,omitempty"`
	StructuredData map[string]any `json:"structured_data,omitempty"`
	ModelSpec      *ModelSpec     `json:"model_spec,omitempty"`
	MaxDepth       int            `json:"max_depth"`
	Agents         []AgentSpec    `json:"agents"`
}

// UserRequestBuilder assembles and validates a UserRequest. Validation errors
// accumulate and surface from Build, so chained calls never panic.
type UserRequestBuilder struct {
	req  UserRequest
	errs []error
}

// NewUserRequestBuilder returns an empty builder.
func NewUserRequestBuilder() *UserRequestBuilder {
	return &UserRequestBuilder{}
}

// Query sets the main query text. An empty or blank query is rejected.
func (b *UserRequestBuilder) Query(query string) *UserRequestBuilder {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		b.errs = append(b.errs, validationErrorf("query cannot be empty"))
		return b
	}
	b.req.Query = trimmed
	return b
}

// Context sets optional free-form context for the request.
func (b *UserRequestBuilder) Context(context string) *UserRequestBuilder {
	b.req.Context = strings.TrimSpace(context)
	return b
}

// StructuredData attaches an opaque key/value payload.
func (b *UserRequestBuilder) StructuredData(data map[string]any) *UserRequestBuilder {
	if len(data) == 0 {
		return b
	}
	b.req.StructuredData = make(map[string]any, len(data))
	for k, v := range data {
		b.req.StructuredData[k] = v
	}
	return b
}

// Model sets the model specification. Temperature must lie in [0, 2].
func (b *UserRequestBuilder) Model(model string, temperature *float64) *UserRequestBuilder {
	if model == "" && temperature == nil {
		return b
	}
	if temperature != nil && (*temperature < 0.0 || *temperature > 2.0) {
		b.errs = append(b.errs, validationErrorf("temperature must be between 0.0 and 2.0, got %v", *temperature))
		return b
	}
	b.req.ModelSpec = &ModelSpec{Model: model, Temperature: temperature}
	return b
}

// MaxDepth sets the maximum recursion depth (1..MaxDepthCeiling).
func (b *UserRequestBuilder) MaxDepth(depth int) *UserRequestBuilder {
	if depth < 1 {
		b.errs = append(b.errs, validationErrorf("max depth must be at least 1, got %d", depth))
		return b
	}
	if depth > MaxDepthCeiling {
		b.errs = append(b.errs, validationErrorf("max depth cannot exceed %d for safety, got %d", MaxDepthCeiling, depth))
		return b
	}
	b.req.MaxDepth = depth
	return b
}

// AddAgent appends an agent specification. Count must be at least 1.
func (b *UserRequestBuilder) AddAgent(count int, policy RecursionPolicy, name string) *UserRequestBuilder {
	if count < 1 {
		b.errs = append(b.errs, validationErrorf("agent count must be at least 1, got %d", count))
		return b
	}
	b.req.Agents = append(b.req.Agents, AgentSpec{Count: count, RecursionPolicy: policy, Name: name})
	return b
}

// ParseAgents parses a comma-separated agent list in the forms "name",
// "name:count" or "name:count:policy" and appends one AgentSpec per entry.
func (b *UserRequestBuilder) ParseAgents(agents string) *UserRequestBuilder {
	for _, entry := range strings.Split(agents, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.Split(entry, ":")
		name := strings.TrimSpace(parts[0])
		count := 1
		policy := RecursionPolicyUnspecified

		if len(parts) > 3 {
			b.errs = append(b.errs, validationErrorf("invalid agent specification %q (use name, name:count or name:count:policy)", entry))
			continue
		}
		if len(parts) >= 2 {
			n, err := strconv.Atoi(strings.TrimSpace(parts[1]))
			if err != nil {
				b.errs = append(b.errs, validationErrorf("invalid agent count in %q: %q is not a number", entry, parts[1]))
				continue
			}
			count = n
		}
		if len(parts) == 3 {
			p, err := ParseRecursionPolicy(parts[2])
			if err != nil {
				b.errs = append(b.errs, err)
				continue
			}
			policy = p
		}

		b.AddAgent(count, policy, name)
	}
	return b
}

// Build validates the accumulated state and returns the request. A request
// without agent specs receives one default spec (count 1, policy MAY), and a
// request without a max depth receives depth 1.
func (b *UserRequestBuilder) Build() (*UserRequest, error) {
	if b.req.Query == "" && len(b.errs) == 0 {
		b.errs = append(b.errs, validationErrorf("query is required"))
	}
	if len(b.errs) > 0 {
		msgs := make([]string, len(b.errs))
		for i, err := range b.errs {
			msgs[i] = err.Error()
		}
		return nil, fmt.Errorf("%w: build failed: %s", ErrValidation, strings.Join(msgs, "; "))
	}

	req := b.req
	if req.MaxDepth == 0 {
		req.MaxDepth = 1
	}
	if len(req.Agents) == 0 {
		req.Agents = []AgentSpec{{Count: 1, RecursionPolicy: RecursionPolicyMay}}
	}

	// Copy the spec slice so later builder reuse cannot alias the result.
	req.Agents = append([]AgentSpec(nil), req.Agents...)

	return &req, nil
}
