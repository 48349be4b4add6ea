// Package policy gates which online sources the assistant may cite.
// Decisions are expressed as a rego policy evaluated per URL.
package policy

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/open-policy-agent/opa/rego"
)

// Engine is the OPA policy engine for search-result admission.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.search_policy.allow"),
		rego.Module("search_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// NewEngineFromFile loads a rego policy from path, falling back to
// DefaultPolicy when path is empty.
func NewEngineFromFile(ctx context.Context, path string) (*Engine, error) {
	if path == "" {
		return NewEngine(ctx, DefaultPolicy)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy %s: %w", path, err)
	}
	return NewEngine(ctx, string(content))
}

// AllowURL reports whether a search result URL may be fetched and cited.
// Malformed URLs and evaluation failures are treated as denied.
func (e *Engine) AllowURL(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return false
	}
	input := map[string]interface{}{
		"host": strings.ToLower(u.Hostname()),
	}

	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil || len(results) == 0 || len(results[0].Expressions) == 0 {
		return false
	}
	allowed, ok := results[0].Expressions[0].Value.(bool)
	return ok && allowed
}

// DefaultPolicy admits Indian government sources only.
const DefaultPolicy = `
package search_policy

default allow = false

allow {
	endswith(input.host, ".gov.in")
}

allow {
	input.host == "gov.in"
}

allow {
	endswith(input.host, ".nic.in")
}

allow {
	input.host == "nic.in"
}
`
